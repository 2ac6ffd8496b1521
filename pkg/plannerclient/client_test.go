package plannerclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lesson-planner-api/internal/dto"
)

func writeData(t *testing.T, w http.ResponseWriter, status int, data interface{}) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(map[string]interface{}{"data": data}))
}

func TestWeekDecodesEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/lessons/week", r.URL.Path)
		assert.Equal(t, "2025-01-29", r.URL.Query().Get("start_date"))
		label := "A"
		writeData(t, w, http.StatusOK, dto.WeekTimetable{WeekStart: "2025-01-27", PrimaryWeek: &label, PeriodsPerDay: 6})
	}))
	defer server.Close()

	client := New(server.URL + "/api/v1/")
	week, err := client.Week(context.Background(), time.Date(2025, 1, 29, 0, 0, 0, 0, time.UTC))

	require.NoError(t, err)
	assert.Equal(t, "2025-01-27", week.WeekStart)
	assert.Equal(t, "A", *week.PrimaryWeek)
	assert.Equal(t, 6, week.PeriodsPerDay)
}

func TestErrorEnvelopeBecomesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":{"code":"CONFIGURATION_ERROR","message":"cycle start date is not configured"}}`))
	}))
	defer server.Close()

	_, err := New(server.URL).CycleDay(context.Background(), time.Date(2025, 1, 29, 0, 0, 0, 0, time.UTC))

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "CONFIGURATION_ERROR", apiErr.Code)
	assert.Contains(t, err.Error(), "cycle start date is not configured")
}

func TestNonEnvelopeErrorKeepsStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream timeout", http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := New(server.URL).Settings(context.Background())

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Empty(t, apiErr.Code)
}

func TestMutationsSendJSON(t *testing.T) {
	var seen []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Method+" "+r.URL.Path)
		switch r.Method {
		case http.MethodPost:
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			var req dto.CreateTodoRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			writeData(t, w, http.StatusCreated, dto.TodoItem{ID: "t-1", Content: req.Content})
		case http.MethodPatch:
			writeData(t, w, http.StatusOK, dto.TodoItem{ID: "t-1", IsCompleted: true})
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		}
	}))
	defer server.Close()

	client := New(server.URL)
	todo, err := client.AddTodo(context.Background(), "l-1", dto.CreateTodoRequest{Content: "print worksheets"})
	require.NoError(t, err)
	assert.Equal(t, "print worksheets", todo.Content)

	todo, err = client.ToggleTodo(context.Background(), "l-1", "t-1")
	require.NoError(t, err)
	assert.True(t, todo.IsCompleted)

	require.NoError(t, client.DeleteLesson(context.Background(), "l-1"))

	assert.Equal(t, []string{
		"POST /lessons/l-1/todos",
		"PATCH /lessons/l-1/todos/t-1/toggle",
		"DELETE /lessons/l-1",
	}, seen)
}

func TestNewWeekRequestCancelsPrevious(t *testing.T) {
	firstArrived := make(chan struct{})
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("start_date") == "2025-01-27" {
			close(firstArrived)
			select {
			case <-r.Context().Done():
			case <-release:
			}
			return
		}
		writeData(t, w, http.StatusOK, dto.WeekTimetable{WeekStart: "2025-02-03"})
	}))
	defer server.Close()
	defer close(release)

	client := New(server.URL)
	firstErr := make(chan error, 1)
	go func() {
		_, err := client.Week(context.Background(), time.Date(2025, 1, 27, 0, 0, 0, 0, time.UTC))
		firstErr <- err
	}()
	<-firstArrived

	week, err := client.Week(context.Background(), time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "2025-02-03", week.WeekStart)

	select {
	case err := <-firstErr:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("superseded week request was not cancelled")
	}
}

func TestCallerCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := New(server.URL).Subjects(ctx, true)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
