// Package plannerclient is a typed HTTP client for the lesson planner API.
package plannerclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/noah-isme/lesson-planner-api/internal/dto"
	"github.com/noah-isme/lesson-planner-api/internal/models"
)

const defaultTimeout = 10 * time.Second

// APIError is a non-2xx response decoded from the error envelope.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("planner api: unexpected status %d", e.Status)
	}
	return fmt.Sprintf("planner api: %s (%d): %s", e.Code, e.Status, e.Message)
}

type envelope struct {
	Data       json.RawMessage    `json:"data"`
	Error      *apiError          `json:"error"`
	Pagination *models.Pagination `json:"pagination"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Client talks to the planner API. It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu         sync.Mutex
	weekSeq    uint64
	weekCancel context.CancelFunc
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout of the default http.Client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// New creates a client for the API rooted at baseURL, including any prefix.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Week fetches the assembled week containing date. Starting a new Week call
// cancels the one still in flight, which then returns context.Canceled.
func (c *Client) Week(ctx context.Context, date time.Time) (*dto.WeekTimetable, error) {
	ctx, done := c.beginWeek(ctx)
	defer done()

	var week dto.WeekTimetable
	query := url.Values{"start_date": {date.Format(dateLayout)}}
	if _, err := c.do(ctx, http.MethodGet, "/lessons/week", query, nil, &week); err != nil {
		return nil, err
	}
	return &week, nil
}

func (c *Client) beginWeek(parent context.Context) (context.Context, func()) {
	ctx, cancel := context.WithCancel(parent)

	c.mu.Lock()
	if c.weekCancel != nil {
		c.weekCancel()
	}
	c.weekSeq++
	seq := c.weekSeq
	c.weekCancel = cancel
	c.mu.Unlock()

	return ctx, func() {
		c.mu.Lock()
		if c.weekSeq == seq {
			c.weekCancel = nil
		}
		c.mu.Unlock()
		cancel()
	}
}

// CycleDay reports the cycle position of date.
func (c *Client) CycleDay(ctx context.Context, date time.Time) (*dto.CycleDayInfo, error) {
	var info dto.CycleDayInfo
	query := url.Values{"date": {date.Format(dateLayout)}}
	if _, err := c.do(ctx, http.MethodGet, "/settings/cycle-day", query, nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Settings returns the planner settings.
func (c *Client) Settings(ctx context.Context) (*dto.SettingsResponse, error) {
	var settings dto.SettingsResponse
	if _, err := c.do(ctx, http.MethodGet, "/settings", nil, nil, &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

// Subjects lists subjects, optionally only the active ones.
func (c *Client) Subjects(ctx context.Context, activeOnly bool) ([]models.Subject, error) {
	var query url.Values
	if activeOnly {
		query = url.Values{"is_active": {"true"}}
	}
	var subjects []models.Subject
	if _, err := c.do(ctx, http.MethodGet, "/subjects", query, nil, &subjects); err != nil {
		return nil, err
	}
	return subjects, nil
}

// CreateLesson plans a lesson.
func (c *Client) CreateLesson(ctx context.Context, req dto.CreateLessonRequest) (*dto.LessonDetail, error) {
	var lesson dto.LessonDetail
	if _, err := c.do(ctx, http.MethodPost, "/lessons", nil, req, &lesson); err != nil {
		return nil, err
	}
	return &lesson, nil
}

// Lesson fetches a lesson with its subject and attachments.
func (c *Client) Lesson(ctx context.Context, id string) (*dto.LessonDetail, error) {
	var lesson dto.LessonDetail
	if _, err := c.do(ctx, http.MethodGet, "/lessons/"+url.PathEscape(id), nil, nil, &lesson); err != nil {
		return nil, err
	}
	return &lesson, nil
}

// DeleteLesson removes a lesson and its attachments.
func (c *Client) DeleteLesson(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/lessons/"+url.PathEscape(id), nil, nil, nil)
	return err
}

// AddNote attaches a note to a lesson.
func (c *Client) AddNote(ctx context.Context, lessonID string, req dto.CreateNoteRequest) (*models.Note, error) {
	var note models.Note
	if _, err := c.do(ctx, http.MethodPost, lessonPath(lessonID, "notes"), nil, req, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

// AddResource attaches a resource to a lesson.
func (c *Client) AddResource(ctx context.Context, lessonID string, req dto.CreateResourceRequest) (*models.Resource, error) {
	var resource models.Resource
	if _, err := c.do(ctx, http.MethodPost, lessonPath(lessonID, "resources"), nil, req, &resource); err != nil {
		return nil, err
	}
	return &resource, nil
}

// AddTodo attaches a todo to a lesson.
func (c *Client) AddTodo(ctx context.Context, lessonID string, req dto.CreateTodoRequest) (*dto.TodoItem, error) {
	var todo dto.TodoItem
	if _, err := c.do(ctx, http.MethodPost, lessonPath(lessonID, "todos"), nil, req, &todo); err != nil {
		return nil, err
	}
	return &todo, nil
}

// ToggleTodo flips a todo's completion.
func (c *Client) ToggleTodo(ctx context.Context, lessonID, todoID string) (*dto.TodoItem, error) {
	var todo dto.TodoItem
	path := lessonPath(lessonID, "todos", todoID, "toggle")
	if _, err := c.do(ctx, http.MethodPatch, path, nil, nil, &todo); err != nil {
		return nil, err
	}
	return &todo, nil
}

// ExportWeek renders the week containing date and returns its download link.
func (c *Client) ExportWeek(ctx context.Context, date time.Time, format string) (*dto.WeekExportResult, error) {
	var result dto.WeekExportResult
	query := url.Values{"start_date": {date.Format(dateLayout)}, "format": {format}}
	if _, err := c.do(ctx, http.MethodGet, "/lessons/week/export", query, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

const dateLayout = "2006-01-02"

func lessonPath(lessonID string, parts ...string) string {
	segments := []string{"/lessons", url.PathEscape(lessonID)}
	for _, part := range parts {
		segments = append(segments, url.PathEscape(part))
	}
	return strings.Join(segments, "/")
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) (*models.Pagination, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNoContent {
		return nil, nil
	}

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s %s: %w", method, path, err)
	}

	var env envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil && res.StatusCode < 300 {
			return nil, fmt.Errorf("decode %s %s: %w", method, path, err)
		}
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		apiErr := &APIError{Status: res.StatusCode}
		if env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
		}
		return nil, apiErr
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, fmt.Errorf("decode %s %s data: %w", method, path, err)
		}
	}
	return env.Pagination, nil
}
