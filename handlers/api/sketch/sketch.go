package sketch

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"hatesaway-server/canvas"
	"hatesaway-server/core"
	"hatesaway-server/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"
)

type (
	StartRequest struct {
		Width      int    `json:"width"`
		Height     int    `json:"height"`
		Background string `json:"background"`
	}

	EraseRequest struct {
		Enabled bool `json:"enabled"`
	}

	BrushRequest struct {
		Color string  `json:"color"`
		Size  float64 `json:"size"`
	}

	ResizeRequest struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	}

	OptionsResponse struct {
		Colors     []string  `json:"colors"`
		BrushSizes []float64 `json:"brushSizes"`
		MaxWidth   int       `json:"maxWidth"`
		MaxHeight  int       `json:"maxHeight"`
	}

	StateResponse struct {
		Width     int    `json:"width"`
		Height    int    `json:"height"`
		Strokes   int    `json:"strokes"`
		CanUndo   bool   `json:"canUndo"`
		CanRedo   bool   `json:"canRedo"`
		EraseMode bool   `json:"eraseMode"`
		State     string `json:"state"`
	}

	ExportResponse struct {
		ImageURL string `json:"imageUrl"`
		Size     string `json:"size"`
	}

	Thrower interface {
		ThrowAway(ctx context.Context, surface canvas.Surface, userID string) (core.Drawing, error)
	}
)

// Defaults are used for fields a start request leaves out.
type Defaults struct {
	Width      int
	Height     int
	Background string
}

// HandleStart replaces the caller's sketch with a blank one
func HandleStart(sessions *Sessions, defaults Defaults) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := StartRequest{Width: defaults.Width, Height: defaults.Height, Background: defaults.Background}
		if r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				logrus.WithField("error", err).Error("Failed to decode request")
				http.Error(w, "Invalid request body", http.StatusBadRequest)
				return
			}
		}

		if err := canvas.ValidateSize(req.Width, req.Height); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		sk := sessions.Start(middleware.UserID(r.Context()), req.Width, req.Height, req.Background)

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, stateOf(sk))
	}
}

// HandleStroke adds one finished stroke to the caller's sketch
func HandleStroke(sessions *Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var st canvas.Stroke
		if err := json.NewDecoder(r.Body).Decode(&st); err != nil {
			logrus.WithField("error", err).Error("Failed to decode request")
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if len(st.Points) == 0 {
			http.Error(w, "Stroke has no points", http.StatusBadRequest)
			return
		}

		sk, ok := sessions.Lookup(middleware.UserID(r.Context()))
		if !ok {
			http.Error(w, "Canvas not initialized", http.StatusConflict)
			return
		}
		sk.AddStroke(st)

		render.JSON(w, r, stateOf(sk))
	}
}

// HandleCommand runs undo, redo, clear, reset, erase, brush or resize on the
// caller's sketch. Reset starts a session when the caller has none.
func HandleCommand(sessions *Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())
		sk, ok := sessions.Lookup(userID)

		switch command := chi.URLParam(r, "command"); command {
		case "undo":
			sk.Undo()
		case "redo":
			sk.Redo()
		case "clear":
			sk.Clear()
		case "reset":
			if !ok {
				sk = sessions.Start(userID, 0, 0, "")
			}
			sk.Reset()
		case "erase":
			var req EraseRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "Invalid request body", http.StatusBadRequest)
				return
			}
			sk.SetEraseMode(req.Enabled)
		case "brush":
			var req BrushRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "Invalid request body", http.StatusBadRequest)
				return
			}
			if req.Color != "" {
				sk.SetColor(req.Color)
			}
			sk.SetBrushSize(req.Size)
		case "resize":
			var req ResizeRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "Invalid request body", http.StatusBadRequest)
				return
			}
			if err := canvas.ValidateSize(req.Width, req.Height); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			sk.Resize(req.Width, req.Height)
		default:
			http.Error(w, "Unknown canvas command", http.StatusNotFound)
			return
		}

		render.JSON(w, r, stateOf(sk))
	}
}

// HandleExport renders the caller's sketch as a PNG data URL
func HandleExport(sessions *Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sk := sessions.Get(middleware.UserID(r.Context()))

		select {
		case res := <-canvas.ExportAsync(sk):
			if res.Err != nil {
				writeExportError(w, res.Err)
				return
			}
			render.JSON(w, r, ExportResponse{
				ImageURL: res.ImageURL,
				Size:     canvas.FormatFileSize(canvas.Base64Size(res.ImageURL)),
			})
		case <-r.Context().Done():
			logrus.Debug("Client went away during export")
		}
	}
}

// HandleThrow exports the caller's sketch, saves it and clears the sketch
func HandleThrow(sessions *Sessions, thrower Thrower) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())
		sk := sessions.Get(userID)

		d, err := thrower.ThrowAway(r.Context(), sk, userID)
		if err != nil {
			writeExportError(w, err)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, d)
	}
}

// HandleOptions lists the palette, brush sizes and size limits
func HandleOptions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, OptionsResponse{
			Colors:     canvas.PresetColors,
			BrushSizes: canvas.BrushSizes,
			MaxWidth:   canvas.MaxWidth,
			MaxHeight:  canvas.MaxHeight,
		})
	}
}

func writeExportError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, canvas.ErrTooLarge):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, canvas.ErrNotInitialized):
		http.Error(w, "Canvas not initialized", http.StatusConflict)
	case errors.Is(err, canvas.ErrExportInProgress):
		http.Error(w, "Export already in progress", http.StatusConflict)
	default:
		logrus.WithField("error", err).Error("Failed to export canvas")
		http.Error(w, "Failed to export canvas", http.StatusInternalServerError)
	}
}

func stateOf(sk *canvas.Sketch) StateResponse {
	w, h := sk.Size()
	return StateResponse{
		Width:     w,
		Height:    h,
		Strokes:   len(sk.Strokes()),
		CanUndo:   sk.CanUndo(),
		CanRedo:   sk.CanRedo(),
		EraseMode: sk.EraseMode(),
		State:     sk.State().String(),
	}
}
