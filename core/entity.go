package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// Storage keys for the persisted collections.
const (
	DrawingsKey = "hatesaway_drawings"
	CommentsKey = "hatesaway_comments"
	LikesKey    = "hatesaway_likes"
	UserIDKey   = "hatesaway_user_id"
)

var ErrMissingField = errors.New("missing required field")

type (
	// Drawing is a thrown-away picture. Only Likes changes after creation.
	Drawing struct {
		ID        string `json:"id"`
		ImageURL  string `json:"imageUrl"`
		UserID    string `json:"userId"`
		Likes     int    `json:"likes"`
		CreatedAt int64  `json:"createdAt"` // epoch milliseconds
	}

	Comment struct {
		ID        string `json:"id"`
		DrawingID string `json:"drawingId"`
		UserID    string `json:"userId"`
		Content   string `json:"content"`
		CreatedAt int64  `json:"createdAt"`
	}

	// KVStore is the storage port every collection is persisted through.
	// Get reports found=false for a missing key; that is not an error.
	KVStore interface {
		Get(ctx context.Context, key string) (value string, found bool, err error)
		Set(ctx context.Context, key, value string) error
		Remove(ctx context.Context, key string) error
	}

	// Availability is implemented by stores that can be present but unusable,
	// e.g. a profile store on a request that carries no client state.
	Availability interface {
		Available() bool
	}
)

// Available reports whether kv can be used at all. A nil store is the
// "no persistent storage in this environment" case.
func Available(kv KVStore) bool {
	if kv == nil {
		return false
	}
	if a, ok := kv.(Availability); ok {
		return a.Available()
	}
	return true
}

// NewDrawing builds a drawing with a fresh id and zero likes.
func NewDrawing(imageURL, userID string, now time.Time) (Drawing, error) {
	d := Drawing{
		ID:        ulid.Make().String(),
		ImageURL:  imageURL,
		UserID:    userID,
		CreatedAt: now.UnixMilli(),
	}
	return d, d.Validate()
}

func (d Drawing) Validate() error {
	switch {
	case d.ID == "":
		return fmt.Errorf("drawing: %w: id", ErrMissingField)
	case d.ImageURL == "":
		return fmt.Errorf("drawing: %w: imageUrl", ErrMissingField)
	case d.Likes < 0:
		return fmt.Errorf("drawing %s: likes must not be negative", d.ID)
	}
	return nil
}

// NewComment builds a comment with a fresh id.
func NewComment(drawingID, userID, content string, now time.Time) (Comment, error) {
	c := Comment{
		ID:        ulid.Make().String(),
		DrawingID: drawingID,
		UserID:    userID,
		Content:   content,
		CreatedAt: now.UnixMilli(),
	}
	return c, c.Validate()
}

func (c Comment) Validate() error {
	switch {
	case c.ID == "":
		return fmt.Errorf("comment: %w: id", ErrMissingField)
	case c.DrawingID == "":
		return fmt.Errorf("comment: %w: drawingId", ErrMissingField)
	case strings.TrimSpace(c.Content) == "":
		return fmt.Errorf("comment: %w: content", ErrMissingField)
	}
	return nil
}

// LikeKey is the composite ledger key "<drawingId>:<userId>".
func LikeKey(drawingID, userID string) string {
	return drawingID + ":" + userID
}

// SplitLikeKey splits a ledger key at its first colon. Drawing ids never
// contain a colon, user ids may.
func SplitLikeKey(key string) (drawingID, userID string, ok bool) {
	drawingID, userID, ok = strings.Cut(key, ":")
	return drawingID, userID, ok
}
