package comments

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"hatesaway-server/gallery"
	"hatesaway-server/middleware"
	"hatesaway-server/stores/memory"

	"github.com/go-chi/chi/v5"
)

func newRequest(method, body, drawingID string) *http.Request {
	req := httptest.NewRequest(method, "/api/drawings/"+drawingID+"/comments", strings.NewReader(body))
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", drawingID)
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	ctx = context.WithValue(ctx, middleware.UserIDContextKey, "u1")
	return req.WithContext(ctx)
}

func TestHandleCreate_Success(t *testing.T) {
	svc := gallery.NewService(memory.NewKVStore())
	handler := HandleCreate(svc)

	rec := httptest.NewRecorder()
	handler(rec, newRequest(http.MethodPost, `{"content":"love it"}`, "d1"))

	if rec.Code != http.StatusCreated {
		t.Fatalf("Status code mismatch: got %d, want %d", rec.Code, http.StatusCreated)
	}
	var resp CommentResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	c := resp.Comment
	if c.DrawingID != "d1" || c.UserID != "u1" || c.Content != "love it" {
		t.Errorf("Unexpected comment: %+v", c)
	}
}

func TestHandleCreate_EmptyContent(t *testing.T) {
	handler := HandleCreate(gallery.NewService(memory.NewKVStore()))

	rec := httptest.NewRecorder()
	handler(rec, newRequest(http.MethodPost, `{"content":"  "}`, "d1"))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Status code mismatch: got %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestHandleList(t *testing.T) {
	svc := gallery.NewService(memory.NewKVStore())
	create := HandleCreate(svc)
	for _, target := range []string{"d1", "d2", "d1"} {
		create(httptest.NewRecorder(), newRequest(http.MethodPost, `{"content":"hi"}`, target))
	}

	rec := httptest.NewRecorder()
	HandleList(svc)(rec, newRequest(http.MethodGet, "", "d1"))

	var resp CommentsResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(resp.Comments) != 2 {
		t.Errorf("Expected 2 comments, got %d", len(resp.Comments))
	}
}

func TestHandleList_Empty(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleList(gallery.NewService(memory.NewKVStore()))(rec, newRequest(http.MethodGet, "", "d1"))

	if strings.TrimSpace(rec.Body.String()) != `{"comments":[]}` {
		t.Errorf("Expected empty comments array, got %s", rec.Body.String())
	}
}
