package comments

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"hatesaway-server/core"
	"hatesaway-server/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"
)

type (
	CreateCommentRequest struct {
		Content string `json:"content"`
	}

	CommentsResponse struct {
		Comments []core.Comment `json:"comments"`
	}

	CommentResponse struct {
		Comment core.Comment `json:"comment"`
	}

	CommentStore interface {
		SaveComment(ctx context.Context, c core.Comment) error
		GetComments(ctx context.Context, drawingID string) ([]core.Comment, error)
	}
)

// HandleList returns a drawing's comments, oldest first
func HandleList(store CommentStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		drawingID := chi.URLParam(r, "id")

		comments, err := store.GetComments(r.Context(), drawingID)
		if err != nil {
			logrus.WithField("error", err).Error("Failed to list comments")
			http.Error(w, "Failed to list comments", http.StatusInternalServerError)
			return
		}
		if comments == nil {
			comments = []core.Comment{}
		}

		render.JSON(w, r, CommentsResponse{Comments: comments})
	}
}

// HandleCreate appends a comment by the caller
func HandleCreate(store CommentStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		drawingID := chi.URLParam(r, "id")

		var req CreateCommentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logrus.WithField("error", err).Error("Failed to decode request")
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		c, err := core.NewComment(drawingID, middleware.UserID(r.Context()), req.Content, time.Now())
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := store.SaveComment(r.Context(), c); err != nil {
			if errors.Is(err, core.ErrMissingField) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			logrus.WithField("error", err).Error("Failed to save comment")
			http.Error(w, "Failed to save comment", http.StatusInternalServerError)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, CommentResponse{Comment: c})
	}
}
