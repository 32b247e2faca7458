package stage_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kshimizu/taskboard/internal/stage"
	"github.com/kshimizu/taskboard/internal/stage/repositoryimpl"
	"github.com/kshimizu/taskboard/pkg/cerr"
	"github.com/kshimizu/taskboard/pkg/storage"
)

func newCatalog(t *testing.T) *stage.Catalog {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	c := stage.NewCatalog(repositoryimpl.NewYAMLRepository(store))
	require.NoError(t, c.Load(context.Background()))
	return c
}

func TestCatalogDefaultsWhenEmpty(t *testing.T) {
	c := newCatalog(t)

	stages := c.List()
	require.Len(t, stages, 7)
	require.Equal(t, "todo", stages[0].Key)
	require.Equal(t, "cancelled", stages[6].Key)

	// The fallback set resolves like stored stages.
	s, ok := c.Resolve("In Progress")
	require.True(t, ok)
	require.Equal(t, "inprogress", s.Key)
}

func TestCatalogCreate(t *testing.T) {
	ctx := context.Background()
	c := newCatalog(t)

	s, err := c.Create(ctx, "Code Review", "blue")
	require.NoError(t, err)
	require.Equal(t, "codereview", s.Key)
	require.Equal(t, "Code Review", s.Name)
	require.Equal(t, "#0d6efd", s.ColorHex)
	require.Equal(t, 1, s.Order)
	require.NotEmpty(t, s.ID)

	// Once a stage is stored the fallback set no longer applies.
	stages := c.List()
	require.Len(t, stages, 1)

	// New stages append after the highest existing order.
	s2, err := c.Create(ctx, "Blocked", "red")
	require.NoError(t, err)
	require.Equal(t, 2, s2.Order)
}

func TestCatalogCreateBlankName(t *testing.T) {
	c := newCatalog(t)

	_, err := c.Create(context.Background(), "   ", "purple")
	require.Error(t, err)
	require.True(t, cerr.IsCode(err, cerr.InvalidArgument))
}

func TestCatalogCreateDuplicateKey(t *testing.T) {
	ctx := context.Background()
	c := newCatalog(t)

	_, err := c.Create(ctx, "Code Review", "blue")
	require.NoError(t, err)

	// Different spelling, same normalized key.
	_, err = c.Create(ctx, "code-review", "green")
	require.Error(t, err)
	require.True(t, cerr.IsCode(err, cerr.AlreadyExists))
}

func TestCatalogCreateDefaultColor(t *testing.T) {
	c := newCatalog(t)

	s, err := c.Create(context.Background(), "Triage", "")
	require.NoError(t, err)
	require.Equal(t, stage.DefaultColorName, s.ColorName)
	require.Equal(t, stage.DefaultColorHex, s.ColorHex)
}

func TestCatalogRenameKeepsKey(t *testing.T) {
	ctx := context.Background()
	c := newCatalog(t)

	s, err := c.Create(ctx, "Code Review", "blue")
	require.NoError(t, err)

	renamed, err := c.Rename(ctx, s.ID, "Peer Review", "green")
	require.NoError(t, err)
	require.Equal(t, "Peer Review", renamed.Name)
	require.Equal(t, "codereview", renamed.Key, "rename must never regenerate the key")
	require.Equal(t, "#198754", renamed.ColorHex)

	// Items addressed by the old key still resolve.
	got, ok := c.Resolve("code review")
	require.True(t, ok)
	require.Equal(t, renamed.ID, got.ID)
}

func TestCatalogRenameUnknownColorFallsBack(t *testing.T) {
	ctx := context.Background()
	c := newCatalog(t)

	s, err := c.Create(ctx, "Triage", "blue")
	require.NoError(t, err)

	renamed, err := c.Rename(ctx, s.ID, "", "chartreuse")
	require.NoError(t, err)
	require.Equal(t, stage.DefaultColorName, renamed.ColorName)
	require.Equal(t, "Triage", renamed.Name)
}

func TestCatalogRemove(t *testing.T) {
	ctx := context.Background()
	c := newCatalog(t)

	s, err := c.Create(ctx, "Triage", "blue")
	require.NoError(t, err)

	checked := false
	err = c.Remove(ctx, s.ID, func(got *stage.Stage) error {
		checked = true
		require.Equal(t, s.ID, got.ID)
		return nil
	})
	require.NoError(t, err)
	require.True(t, checked)

	_, ok := c.Get(s.ID)
	require.False(t, ok)
}

func TestCatalogRemoveVetoed(t *testing.T) {
	ctx := context.Background()
	c := newCatalog(t)

	s, err := c.Create(ctx, "Triage", "blue")
	require.NoError(t, err)

	veto := cerr.NewError(cerr.FailedPrecondition, "stage still has tasks", nil)
	err = c.Remove(ctx, s.ID, func(*stage.Stage) error { return veto })
	require.ErrorIs(t, err, veto)

	// A vetoed removal leaves the stage in place.
	_, ok := c.Get(s.ID)
	require.True(t, ok)
}

func TestCatalogRemoveNotFound(t *testing.T) {
	c := newCatalog(t)
	err := c.Remove(context.Background(), "no-such-id", nil)
	require.True(t, cerr.IsCode(err, cerr.NotFound))
}

func TestCatalogLoadOrdersStages(t *testing.T) {
	ctx := context.Background()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	repo := repositoryimpl.NewYAMLRepository(store)

	c := stage.NewCatalog(repo)
	require.NoError(t, c.Load(ctx))
	for _, name := range []string{"Alpha", "Beta", "Gamma"} {
		_, err := c.Create(ctx, name, "purple")
		require.NoError(t, err)
	}

	// A fresh catalog over the same repository sees the same order.
	reloaded := stage.NewCatalog(repo)
	require.NoError(t, reloaded.Load(ctx))
	stages := reloaded.List()
	require.Len(t, stages, 3)
	require.Equal(t, "alpha", stages[0].Key)
	require.Equal(t, "beta", stages[1].Key)
	require.Equal(t, "gamma", stages[2].Key)
}
