package repositoryimpl

import (
	"context"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/kshimizu/taskboard/internal/stage"
	"github.com/kshimizu/taskboard/pkg/cerr"
	"github.com/kshimizu/taskboard/pkg/storage"
)

const stagesPrefix = "stages"

type YAMLRepository struct {
	storage storage.Storage
}

func NewYAMLRepository(s storage.Storage) *YAMLRepository {
	return &YAMLRepository{storage: s}
}

func path(id string) string {
	return fmt.Sprintf("%s/%s.yaml", stagesPrefix, id)
}

func (r *YAMLRepository) Create(ctx context.Context, s *stage.Stage) error {
	exists, err := r.storage.Exists(ctx, path(s.ID))
	if err != nil {
		return cerr.WrapStorageWriteError("stage", err)
	}
	if exists {
		return cerr.NewError(cerr.AlreadyExists, "stage already exists", nil)
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to marshal stage: %w", err))
	}
	if err := r.storage.Write(ctx, path(s.ID), data); err != nil {
		return cerr.WrapStorageWriteError("stage", err)
	}
	return nil
}

func (r *YAMLRepository) Get(ctx context.Context, id string) (*stage.Stage, error) {
	data, err := r.storage.Read(ctx, path(id))
	if err != nil {
		return nil, cerr.WrapStorageReadError("stage", err)
	}
	var s stage.Stage
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to unmarshal stage: %w", err))
	}
	return &s, nil
}

func (r *YAMLRepository) List(ctx context.Context) ([]*stage.Stage, error) {
	paths, err := r.storage.List(ctx, stagesPrefix)
	if err != nil {
		return nil, cerr.WrapStorageReadError("stages", err)
	}

	sort.Strings(paths)

	var all []*stage.Stage
	for _, p := range paths {
		data, err := r.storage.Read(ctx, p)
		if err != nil {
			continue
		}
		var s stage.Stage
		if err := yaml.Unmarshal(data, &s); err != nil {
			continue
		}
		all = append(all, &s)
	}
	return all, nil
}

func (r *YAMLRepository) Update(ctx context.Context, s *stage.Stage) error {
	exists, err := r.storage.Exists(ctx, path(s.ID))
	if err != nil {
		return cerr.WrapStorageWriteError("stage", err)
	}
	if !exists {
		return cerr.NewError(cerr.NotFound, "stage not found", nil)
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to marshal stage: %w", err))
	}
	if err := r.storage.Write(ctx, path(s.ID), data); err != nil {
		return cerr.WrapStorageWriteError("stage", err)
	}
	return nil
}

func (r *YAMLRepository) Delete(ctx context.Context, id string) error {
	if err := r.storage.Delete(ctx, path(id)); err != nil {
		return cerr.WrapStorageDeleteError("stage", err)
	}
	return nil
}
