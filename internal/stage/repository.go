package stage

import "context"

type Repository interface {
	Create(ctx context.Context, s *Stage) error
	Get(ctx context.Context, id string) (*Stage, error)
	List(ctx context.Context) ([]*Stage, error)
	Update(ctx context.Context, s *Stage) error
	Delete(ctx context.Context, id string) error
}
