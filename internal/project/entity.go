package project

import "time"

// Project is the parent container for work items. EndDate, when set, is the
// upper boundary for member item due dates.
type Project struct {
	ID          string     `yaml:"id" json:"id"`
	Name        string     `yaml:"name" json:"name"`
	Description string     `yaml:"description,omitempty" json:"description,omitempty"`
	StartDate   *time.Time `yaml:"start_date,omitempty" json:"startDate,omitempty"`
	EndDate     *time.Time `yaml:"end_date,omitempty" json:"endDate,omitempty"`
	CreatedAt   time.Time  `yaml:"created_at" json:"createdAt"`
	UpdatedAt   time.Time  `yaml:"updated_at" json:"updatedAt"`
}
