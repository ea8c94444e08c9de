package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "github.com/arkgate/server/internal/utils/errors"
)

// ErrMsgNoTaskID is returned when submission succeeds without a task identifier.
const ErrMsgNoTaskID = "No task ID returned from video generation API"

// HTTPTaskClient talks to the content generation task endpoint over plain HTTP.
type HTTPTaskClient struct {
	client      *http.Client
	endpoint    string
	apiKey      string
	callTimeout time.Duration
}

// NewHTTPTaskClient creates a task client for endpoint, the task collection URL.
func NewHTTPTaskClient(client *http.Client, endpoint, apiKey string, callTimeout time.Duration) *HTTPTaskClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPTaskClient{
		client:      client,
		endpoint:    strings.TrimRight(endpoint, "/"),
		apiKey:      apiKey,
		callTimeout: callTimeout,
	}
}

type createTaskResponse struct {
	ID string `json:"id"`
}

type taskStatusResponse struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Content *struct {
		VideoURL string `json:"video_url"`
	} `json:"content,omitempty"`
}

// CreateTask submits a generation task.
func (c *HTTPTaskClient) CreateTask(ctx context.Context, req *TaskRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", apperrors.Internal("marshal task request", err)
	}

	respBody, err := c.do(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return "", err
	}

	var created createTaskResponse
	if err := json.Unmarshal(respBody, &created); err != nil {
		return "", apperrors.Upstream(err.Error(), err)
	}
	if created.ID == "" {
		return "", apperrors.Upstream(ErrMsgNoTaskID, nil)
	}
	return created.ID, nil
}

// GetTask fetches one status snapshot.
func (c *HTTPTaskClient) GetTask(ctx context.Context, taskID string) (*Task, error) {
	respBody, err := c.do(ctx, http.MethodGet, c.endpoint+"/"+url.PathEscape(taskID), nil)
	if err != nil {
		return nil, err
	}

	var status taskStatusResponse
	if err := json.Unmarshal(respBody, &status); err != nil {
		return nil, apperrors.Upstream(err.Error(), err)
	}
	var raw map[string]any
	if err := json.Unmarshal(respBody, &raw); err != nil {
		return nil, apperrors.Upstream(err.Error(), err)
	}

	task := &Task{
		ID:     taskID,
		Status: status.Status,
		Raw:    raw,
	}
	if status.Content != nil {
		task.VideoURL = status.Content.VideoURL
	}
	return task, nil
}

// do performs one authenticated call and returns the body of a 2xx response.
// Non-2xx bodies are passed through as the error message.
func (c *HTTPTaskClient) do(ctx context.Context, method, target string, body []byte) ([]byte, error) {
	if c.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.callTimeout)
		defer cancel()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, apperrors.Internal("create request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, apperrors.Upstream(err.Error(), err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.Upstream(err.Error(), err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := strings.TrimSpace(string(respBody))
		if msg == "" {
			msg = fmt.Sprintf("unexpected status code: %d", resp.StatusCode)
		}
		return nil, apperrors.Upstream(msg, nil).WithDetails(map[string]any{
			"upstream_status": resp.StatusCode,
			"method":          method,
		})
	}
	return respBody, nil
}
