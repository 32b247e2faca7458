package stage_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/kshimizu/taskboard/internal/eventbus"
	"github.com/kshimizu/taskboard/internal/stage"
	"github.com/kshimizu/taskboard/internal/stage/repositoryimpl"
	"github.com/kshimizu/taskboard/internal/workitem"
	"github.com/kshimizu/taskboard/pkg/cerr"
	"github.com/kshimizu/taskboard/pkg/storage"
)

// indexRemover deletes through the catalog gated by a live item count, like
// the board coordinator does in production wiring.
type indexRemover struct {
	catalog *stage.Catalog
	index   *workitem.Index
}

func (r *indexRemover) RemoveStage(ctx context.Context, stageID string) error {
	return r.catalog.Remove(ctx, stageID, func(s *stage.Stage) error {
		if n := r.index.CountIn(s.Key); n > 0 {
			return cerr.NewError(cerr.FailedPrecondition, "stage still has tasks", nil).
				AddMeta("blockingCount", n)
		}
		return nil
	})
}

func newStageHandler(t *testing.T) (http.Handler, *stage.Catalog, *workitem.Index) {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	catalog := stage.NewCatalog(repositoryimpl.NewYAMLRepository(store))
	require.NoError(t, catalog.Load(context.Background()))

	index := workitem.NewIndex()
	srv := stage.NewServer(catalog, &indexRemover{catalog: catalog, index: index}, eventbus.New())

	r := chi.NewRouter()
	r.Use(cerr.NewJSONResponseChiMiddleware())
	srv.RegisterRoutes(r)
	return r, catalog, index
}

func TestStageServerListDefaults(t *testing.T) {
	h, _, _ := newStageHandler(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stages", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Stages []*stage.Stage `json:"stages"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Stages, 7)
	require.Equal(t, "todo", resp.Stages[0].Key)
}

func TestStageServerCreate(t *testing.T) {
	h, _, _ := newStageHandler(t)

	body := strings.NewReader(`{"name":"Code Review","colorName":"blue"}`)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/stages", body))
	require.Equal(t, http.StatusOK, rec.Code)

	var created stage.Stage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.Equal(t, "codereview", created.Key)
	require.Equal(t, "#0d6efd", created.ColorHex)
}

func TestStageServerCreateDuplicate(t *testing.T) {
	h, _, _ := newStageHandler(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/stages", strings.NewReader(`{"name":"Review"}`)))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/stages", strings.NewReader(`{"name":"re-view"}`)))
	require.Equal(t, http.StatusConflict, rec.Code)

	var errResp struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	require.Equal(t, "AlreadyExists", errResp.Code)
}

func TestStageServerCreateBlankName(t *testing.T) {
	h, _, _ := newStageHandler(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/stages", strings.NewReader(`{"name":"  "}`)))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var errResp struct {
		Code    string        `json:"code"`
		Details []cerr.Detail `json:"details"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	require.Equal(t, "InvalidArgument", errResp.Code)
	require.NotEmpty(t, errResp.Details)
}

func TestStageServerDeleteBlocked(t *testing.T) {
	h, catalog, index := newStageHandler(t)

	s, err := catalog.Create(context.Background(), "Review", "pink")
	require.NoError(t, err)
	index.Upsert(&workitem.WorkItem{ID: "01A", Title: "t", StageKey: "review", CreatedAt: time.Now()})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/stages/"+s.ID, nil))
	require.Equal(t, http.StatusPreconditionFailed, rec.Code)

	var errResp struct {
		Code string         `json:"code"`
		Meta map[string]any `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	require.Equal(t, "FailedPrecondition", errResp.Code)
	require.Equal(t, float64(1), errResp.Meta["blockingCount"])

	// The stage is still there.
	_, ok := catalog.Get(s.ID)
	require.True(t, ok)
}

func TestStageServerDeleteEmpty(t *testing.T) {
	h, catalog, _ := newStageHandler(t)

	s, err := catalog.Create(context.Background(), "Review", "pink")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/stages/"+s.ID, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	_, ok := catalog.Get(s.ID)
	require.False(t, ok)
}

func TestStageServerRename(t *testing.T) {
	h, catalog, _ := newStageHandler(t)

	s, err := catalog.Create(context.Background(), "Code Review", "blue")
	require.NoError(t, err)

	body := strings.NewReader(`{"name":"Peer Review","colorName":"green"}`)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/stages/"+s.ID, body))
	require.Equal(t, http.StatusOK, rec.Code)

	var updated stage.Stage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	require.Equal(t, "Peer Review", updated.Name)
	require.Equal(t, "codereview", updated.Key)
}
