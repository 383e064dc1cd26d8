package drawings

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"hatesaway-server/canvas"
	"hatesaway-server/core"
	"hatesaway-server/gallery"
	"hatesaway-server/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"
)

type (
	CreateDrawingRequest struct {
		ImageURL string `json:"imageUrl"`
	}

	DrawingResponse struct {
		core.Drawing
		IsLiked bool `json:"isLiked"`
	}

	Gallery interface {
		FeedPage(ctx context.Context, userID string, q gallery.FeedQuery) (gallery.DrawingsPage, error)
		SaveDrawing(ctx context.Context, d core.Drawing) error
		GetDrawing(ctx context.Context, id string) (core.Drawing, bool, error)
		IsLiked(ctx context.Context, drawingID, userID string) (bool, error)
		DeleteDrawing(ctx context.Context, id string) error
		Like(ctx context.Context, drawingID, userID string) (gallery.LikeResult, error)
	}
)

// HandleList returns one page of the caller's feed
func HandleList(g Gallery) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := gallery.FeedQuery{
			Sort:     gallery.SortLatest,
			Page:     atoiOr(r.URL.Query().Get("page"), 1),
			PageSize: atoiOr(r.URL.Query().Get("pageSize"), gallery.DefaultPageSize),
		}
		if r.URL.Query().Get("sort") == string(gallery.SortPopular) {
			q.Sort = gallery.SortPopular
		}

		page, err := g.FeedPage(r.Context(), middleware.UserID(r.Context()), q)
		if err != nil {
			logrus.WithField("error", err).Error("Failed to load feed")
			http.Error(w, "Failed to load drawings", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, page)
	}
}

// HandleCreate stores an uploaded image as a new drawing by the caller
func HandleCreate(g Gallery) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateDrawingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logrus.WithField("error", err).Error("Failed to decode request")
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if !canvas.IsValidImageDataURL(req.ImageURL) {
			http.Error(w, "imageUrl must be an image data URL", http.StatusBadRequest)
			return
		}
		imageURL, err := fitImage(req.ImageURL)
		if err != nil {
			logrus.WithField("error", err).Warn("Rejected uploaded image")
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		d, err := core.NewDrawing(imageURL, middleware.UserID(r.Context()), time.Now())
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := g.SaveDrawing(r.Context(), d); err != nil {
			logrus.WithField("error", err).Error("Failed to save drawing")
			http.Error(w, "Failed to save drawing", http.StatusInternalServerError)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, d)
	}
}

var errImageTooLarge = errors.New("image is too large to process")

// fitImage downscales uploads larger than the default canvas. Images whose
// header cannot be read are stored as given.
func fitImage(dataURL string) (string, error) {
	w, h, err := canvas.ImageDimensions(dataURL)
	if err != nil {
		logrus.WithField("error", err).Debug("Storing undecodable image unchanged")
		return dataURL, nil
	}
	if w*h > canvas.MaxWidth*canvas.MaxHeight {
		return "", errImageTooLarge
	}
	if w <= canvas.DefaultWidth && h <= canvas.DefaultHeight {
		return dataURL, nil
	}
	return canvas.Compress(dataURL, canvas.DefaultWidth, canvas.DefaultHeight)
}

// HandleGet returns a drawing and whether the caller likes it
func HandleGet(g Gallery) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		d, found, err := g.GetDrawing(r.Context(), id)
		if err != nil {
			logrus.WithField("error", err).Error("Failed to get drawing")
			http.Error(w, "Failed to get drawing", http.StatusInternalServerError)
			return
		}
		if !found {
			http.Error(w, "Drawing not found", http.StatusNotFound)
			return
		}

		liked, err := g.IsLiked(r.Context(), id, middleware.UserID(r.Context()))
		if err != nil {
			logrus.WithField("error", err).Error("Failed to read likes")
			http.Error(w, "Failed to get drawing", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, DrawingResponse{Drawing: d, IsLiked: liked})
	}
}

// HandleDelete removes a drawing; deleting an unknown id succeeds
func HandleDelete(g Gallery) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		if err := g.DeleteDrawing(r.Context(), id); err != nil {
			logrus.WithField("error", err).Error("Failed to delete drawing")
			http.Error(w, "Failed to delete drawing", http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// HandleLike toggles the caller's like on a drawing
func HandleLike(g Gallery) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		userID := middleware.UserID(r.Context())
		if userID == "" {
			http.Error(w, "Missing user id", http.StatusBadRequest)
			return
		}

		result, err := g.Like(r.Context(), id, userID)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"error":      err,
				"drawing_id": id,
			}).Error("Failed to toggle like")
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, gallery.LikeResult{Success: false})
			return
		}

		render.JSON(w, r, result)
	}
}

func atoiOr(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}
