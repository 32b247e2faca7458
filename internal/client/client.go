package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/kshimizu/taskboard/internal/board"
	"github.com/kshimizu/taskboard/internal/project"
	"github.com/kshimizu/taskboard/internal/stage"
	"github.com/kshimizu/taskboard/internal/workitem"
)

// Client is the JSON API client used by the CLI.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: http.DefaultClient,
	}
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr apiError
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Message != "" {
			return fmt.Errorf("%s: %s", resp.Status, apiErr.Message)
		}
		return fmt.Errorf("unexpected status: %s", resp.Status)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

type listStagesResponse struct {
	Stages []*stage.Stage `json:"stages"`
}

func (c *Client) ListStages(ctx context.Context) ([]*stage.Stage, error) {
	var resp listStagesResponse
	if err := c.do(ctx, http.MethodGet, "/api/stages", nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to list stages: %w", err)
	}
	return resp.Stages, nil
}

type createStageRequest struct {
	Name      string `json:"name"`
	ColorName string `json:"colorName"`
}

func (c *Client) CreateStage(ctx context.Context, name, colorName string) (*stage.Stage, error) {
	var created stage.Stage
	err := c.do(ctx, http.MethodPost, "/api/stages", createStageRequest{Name: name, ColorName: colorName}, &created)
	if err != nil {
		return nil, fmt.Errorf("failed to create stage: %w", err)
	}
	return &created, nil
}

func (c *Client) DeleteStage(ctx context.Context, stageID string) error {
	if err := c.do(ctx, http.MethodDelete, "/api/stages/"+stageID, nil, nil); err != nil {
		return fmt.Errorf("failed to delete stage: %w", err)
	}
	return nil
}

type listTasksResponse struct {
	Tasks []*workitem.WorkItem `json:"tasks"`
}

func (c *Client) ListTasks(ctx context.Context, projectID, stageKey string) ([]*workitem.WorkItem, error) {
	path := "/api/tasks"
	sep := "?"
	if projectID != "" {
		path += sep + "project=" + projectID
		sep = "&"
	}
	if stageKey != "" {
		path += sep + "stage=" + stageKey
	}
	var resp listTasksResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return resp.Tasks, nil
}

type createTaskRequest struct {
	ProjectID   string            `json:"projectId,omitempty"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Priority    workitem.Priority `json:"priority,omitempty"`
	StageKey    string            `json:"stageKey,omitempty"`
}

func (c *Client) CreateTask(ctx context.Context, projectID, title, description, stageKey string) (*workitem.WorkItem, error) {
	var created workitem.WorkItem
	err := c.do(ctx, http.MethodPost, "/api/tasks", createTaskRequest{
		ProjectID:   projectID,
		Title:       title,
		Description: description,
		StageKey:    stageKey,
	}, &created)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return &created, nil
}

type proposeMoveRequest struct {
	TaskID     string `json:"taskId"`
	ToStageKey string `json:"toStageKey"`
}

func (c *Client) ProposeMove(ctx context.Context, taskID, toStageKey string) (*board.Move, error) {
	var move board.Move
	err := c.do(ctx, http.MethodPost, "/api/board/moves", proposeMoveRequest{TaskID: taskID, ToStageKey: toStageKey}, &move)
	if err != nil {
		return nil, fmt.Errorf("failed to propose move: %w", err)
	}
	return &move, nil
}

func (c *Client) ConfirmMove(ctx context.Context, token string) (*board.MoveResult, error) {
	var result board.MoveResult
	err := c.do(ctx, http.MethodPost, "/api/board/moves/"+token+"/confirm", nil, &result)
	if err != nil {
		return nil, fmt.Errorf("failed to confirm move: %w", err)
	}
	return &result, nil
}

func (c *Client) CancelMove(ctx context.Context, token string) error {
	if err := c.do(ctx, http.MethodPost, "/api/board/moves/"+token+"/cancel", nil, nil); err != nil {
		return fmt.Errorf("failed to cancel move: %w", err)
	}
	return nil
}

type boardColumn struct {
	Stage     *stage.Stage         `json:"stage"`
	Tasks     []*workitem.WorkItem `json:"tasks"`
	Aggregate board.Aggregate      `json:"aggregate"`
}

type boardResponse struct {
	Columns []boardColumn `json:"columns"`
}

// Board returns the full snapshot as column tuples for display.
func (c *Client) Board(ctx context.Context) ([]*stage.Stage, map[string][]*workitem.WorkItem, error) {
	var resp boardResponse
	if err := c.do(ctx, http.MethodGet, "/api/board", nil, &resp); err != nil {
		return nil, nil, fmt.Errorf("failed to fetch board: %w", err)
	}
	stages := make([]*stage.Stage, 0, len(resp.Columns))
	items := make(map[string][]*workitem.WorkItem, len(resp.Columns))
	for _, col := range resp.Columns {
		stages = append(stages, col.Stage)
		items[col.Stage.Key] = col.Tasks
	}
	return stages, items, nil
}

type listProjectsResponse struct {
	Projects []*project.Project `json:"projects"`
}

func (c *Client) ListProjects(ctx context.Context) ([]*project.Project, error) {
	var resp listProjectsResponse
	if err := c.do(ctx, http.MethodGet, "/api/projects", nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return resp.Projects, nil
}
