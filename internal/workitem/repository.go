package workitem

import "context"

type Repository interface {
	Create(ctx context.Context, w *WorkItem) error
	Get(ctx context.Context, id string) (*WorkItem, error)
	List(ctx context.Context, projectID, stageKey string) ([]*WorkItem, error)
	Update(ctx context.Context, w *WorkItem) error
	Delete(ctx context.Context, id string) error
}
