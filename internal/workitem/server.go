package workitem

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oklog/ulid/v2"

	"github.com/kshimizu/taskboard/internal/eventbus"
	"github.com/kshimizu/taskboard/internal/project"
	"github.com/kshimizu/taskboard/internal/stage"
	"github.com/kshimizu/taskboard/pkg/cerr"
)

// ProgressFunc derives the initial percentage for an item created directly
// into a stage. Wired to the board progress mapper.
type ProgressFunc func(stageKey string) int

type Server struct {
	repo        Repository
	index       *Index
	catalog     *stage.Catalog
	projectRepo project.Repository
	progressFor ProgressFunc
	bus         *eventbus.Bus
}

func NewServer(
	repo Repository,
	index *Index,
	catalog *stage.Catalog,
	projectRepo project.Repository,
	progressFor ProgressFunc,
	bus *eventbus.Bus,
) *Server {
	return &Server{
		repo:        repo,
		index:       index,
		catalog:     catalog,
		projectRepo: projectRepo,
		progressFor: progressFor,
		bus:         bus,
	}
}

func (s *Server) RegisterRoutes(r chi.Router) {
	r.Get("/tasks", s.handleList)
	r.Post("/tasks", s.handleCreate)
	r.Get("/tasks/{id}", s.handleGet)
	r.Put("/tasks/{id}", s.handleUpdate)
	r.Delete("/tasks/{id}", s.handleDelete)
}

type listTasksResponse struct {
	Tasks []*WorkItem `json:"tasks"`
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	items, err := s.repo.List(ctx, r.URL.Query().Get("project"), r.URL.Query().Get("stage"))
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	if items == nil {
		items = []*WorkItem{}
	}
	cerr.SetJSONResponse(ctx, listTasksResponse{Tasks: items})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	item, err := s.repo.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, item)
}

type createTaskRequest struct {
	ProjectID      string     `json:"projectId"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Priority       Priority   `json:"priority"`
	StageKey       string     `json:"stageKey"`
	Assignees      []string   `json:"assignees"`
	DueDate        *time.Time `json:"dueDate"`
	Tags           []string   `json:"tags"`
	EstimatedHours float64    `json:"estimatedHours"`
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "invalid request body", err)
		return
	}

	// Default to the first stage of the catalog, matching how new cards
	// land in the leftmost column.
	stageKey := req.StageKey
	if stageKey == "" {
		stageKey = s.catalog.List()[0].Key
	}
	st, ok := s.catalog.Resolve(stageKey)
	if !ok {
		cerr.SetNewJSONError(ctx, cerr.FailedPrecondition, "unknown stage "+stageKey, nil)
		return
	}

	now := time.Now()
	item := &WorkItem{
		ID:             ulid.Make().String(),
		ProjectID:      req.ProjectID,
		Title:          req.Title,
		Description:    req.Description,
		Priority:       req.Priority,
		StageKey:       st.Key,
		Assignees:      req.Assignees,
		DueDate:        req.DueDate,
		Tags:           req.Tags,
		EstimatedHours: req.EstimatedHours,
		Progress:       s.progressFor(st.Key),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := item.Validate(s.projectEnd(r, item.ProjectID)); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	if err := s.repo.Create(ctx, item); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	s.index.Upsert(item)
	s.bus.PublishNew(eventbus.EventTypeTaskCreated, item.ID, map[string]string{"stage": item.StageKey})
	cerr.SetJSONResponse(ctx, item)
}

type updateTaskRequest struct {
	Title          *string    `json:"title"`
	Description    *string    `json:"description"`
	Priority       *Priority  `json:"priority"`
	Assignees      []string   `json:"assignees"`
	DueDate        *time.Time `json:"dueDate"`
	Tags           []string   `json:"tags"`
	EstimatedHours *float64   `json:"estimatedHours"`
	ActualHours    *float64   `json:"actualHours"`
}

// handleUpdate edits item fields. Stage assignment is deliberately not
// editable here; stage changes go through the move endpoints so they get
// confirmation and progress handling.
func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req updateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "invalid request body", err)
		return
	}
	item, err := s.repo.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}

	if req.Title != nil {
		item.Title = *req.Title
	}
	if req.Description != nil {
		item.Description = *req.Description
	}
	if req.Priority != nil {
		item.Priority = *req.Priority
	}
	if req.Assignees != nil {
		item.Assignees = req.Assignees
	}
	if req.DueDate != nil {
		item.DueDate = req.DueDate
	}
	if req.Tags != nil {
		item.Tags = req.Tags
	}
	if req.EstimatedHours != nil {
		item.EstimatedHours = *req.EstimatedHours
	}
	if req.ActualHours != nil {
		item.ActualHours = *req.ActualHours
	}
	item.UpdatedAt = time.Now()

	if err := item.Validate(s.projectEnd(r, item.ProjectID)); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	if err := s.repo.Update(ctx, item); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	s.index.Upsert(item)
	s.bus.PublishNew(eventbus.EventTypeTaskUpdated, item.ID, map[string]string{"stage": item.StageKey})
	cerr.SetJSONResponse(ctx, item)
}

type deleteTaskResponse struct {
	ID string `json:"id"`
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	if err := s.repo.Delete(ctx, id); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	s.index.Remove(id)
	s.bus.PublishNew(eventbus.EventTypeTaskDeleted, id, nil)
	cerr.SetJSONResponse(ctx, deleteTaskResponse{ID: id})
}

// projectEnd resolves the parent project's end boundary, if any. Lookup
// failures are treated as "no boundary" so a missing project record never
// blocks item edits.
func (s *Server) projectEnd(r *http.Request, projectID string) *time.Time {
	if projectID == "" || s.projectRepo == nil {
		return nil
	}
	p, err := s.projectRepo.Get(r.Context(), projectID)
	if err != nil {
		return nil
	}
	return p.EndDate
}
