package stage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/kshimizu/taskboard/pkg/cerr"
)

// Catalog is the ordered, in-memory view of the stage set, backed by a
// Repository. It owns stage identity and ordering; all lookups go through
// normalized keys. When the backing set is empty, reads serve the fallback
// default catalog so dependent components never see zero stages.
type Catalog struct {
	mu     sync.RWMutex
	repo   Repository
	stages []*Stage
}

func NewCatalog(repo Repository) *Catalog {
	return &Catalog{repo: repo}
}

// Load replaces the in-memory view with the repository contents, ordered by
// Order ascending with ties broken by stored order.
func (c *Catalog) Load(ctx context.Context) error {
	stages, err := c.repo.List(ctx)
	if err != nil {
		return err
	}
	sort.SliceStable(stages, func(i, j int) bool {
		return stages[i].Order < stages[j].Order
	})
	c.mu.Lock()
	c.stages = stages
	c.mu.Unlock()
	return nil
}

// List returns the ordered stage sequence, or the fallback default set when
// the catalog is empty.
func (c *Catalog) List() []*Stage {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.stages) == 0 {
		return DefaultStages()
	}
	out := make([]*Stage, len(c.stages))
	copy(out, c.stages)
	return out
}

// Resolve looks a stage up by normalized key against the effective stage
// set (fallback included).
func (c *Catalog) Resolve(key string) (*Stage, bool) {
	want := NormalizeKey(key)
	if want == "" {
		return nil, false
	}
	for _, s := range c.List() {
		if NormalizeKey(s.Key) == want {
			return s, true
		}
	}
	return nil, false
}

// Get returns a stage by id from the effective stage set.
func (c *Catalog) Get(id string) (*Stage, bool) {
	for _, s := range c.List() {
		if s.ID == id {
			return s, true
		}
	}
	return nil, false
}

// Create adds a stage named name with the given palette token. The key is
// derived from the name; a collision with an existing key is rejected
// rather than silently renamed.
func (c *Catalog) Create(ctx context.Context, name, colorName string) (*Stage, error) {
	key := NormalizeKey(name)
	if key == "" {
		return nil, cerr.NewError(cerr.InvalidArgument, "stage name is required", nil).
			AddDetail("name", "must not be blank")
	}
	if colorName == "" {
		colorName = DefaultColorName
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	order := 0
	for _, s := range c.stages {
		if NormalizeKey(s.Key) == key {
			return nil, cerr.NewError(cerr.AlreadyExists, "stage key already exists", nil).
				AddMeta("key", key)
		}
		if s.Order > order {
			order = s.Order
		}
	}

	now := time.Now()
	s := &Stage{
		ID:        ulid.Make().String(),
		Key:       key,
		Name:      name,
		ColorName: colorName,
		ColorHex:  ColorHexFor(colorName),
		Order:     order + 1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := c.repo.Create(ctx, s); err != nil {
		return nil, err
	}
	c.stages = append(c.stages, s)
	return s, nil
}

// Rename updates a stage's display name and/or color. The key never
// changes, so items referencing the stage stay valid. Unknown color tokens
// fall back to the default palette entry instead of failing.
func (c *Catalog) Rename(ctx context.Context, id, name, colorName string) (*Stage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var target *Stage
	for _, s := range c.stages {
		if s.ID == id {
			target = s
			break
		}
	}
	if target == nil {
		return nil, cerr.NewError(cerr.NotFound, "stage not found", nil)
	}

	updated := *target
	if name != "" {
		updated.Name = name
	}
	if colorName != "" {
		if !KnownColor(colorName) {
			colorName = DefaultColorName
		}
		updated.ColorName = colorName
		updated.ColorHex = ColorHexFor(colorName)
	}
	updated.UpdatedAt = time.Now()

	if err := c.repo.Update(ctx, &updated); err != nil {
		return nil, err
	}
	*target = updated
	return target, nil
}

// Remove deletes a stage after check approves it. The check runs under the
// catalog write lock so the eligibility decision and the removal are atomic
// with respect to other catalog operations.
func (c *Catalog) Remove(ctx context.Context, id string, check func(*Stage) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := -1
	for i, s := range c.stages {
		if s.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return cerr.NewError(cerr.NotFound, "stage not found", nil)
	}

	if check != nil {
		if err := check(c.stages[idx]); err != nil {
			return err
		}
	}
	if err := c.repo.Delete(ctx, id); err != nil {
		return err
	}
	c.stages = append(c.stages[:idx], c.stages[idx+1:]...)
	return nil
}
