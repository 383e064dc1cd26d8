package gallery

import (
	"context"

	"hatesaway-server/core"

	"github.com/sirupsen/logrus"
)

// SaveComment appends c to the comment log.
func (s *Service) SaveComment(ctx context.Context, c core.Comment) error {
	if err := c.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var comments []core.Comment
	if err := load(ctx, s.kv, core.CommentsKey, &comments); err != nil {
		return err
	}
	comments = append(comments, c)
	if err := save(ctx, s.kv, core.CommentsKey, comments); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"comment_id": c.ID,
		"drawing_id": c.DrawingID,
	}).Info("Comment saved")
	return nil
}

// GetComments returns comments in the order they were written. An empty
// drawingID returns the whole log.
func (s *Service) GetComments(ctx context.Context, drawingID string) ([]core.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var comments []core.Comment
	if err := load(ctx, s.kv, core.CommentsKey, &comments); err != nil {
		return nil, err
	}
	out := make([]core.Comment, 0, len(comments))
	for _, c := range comments {
		if drawingID == "" || c.DrawingID == drawingID {
			out = append(out, c)
		}
	}
	return out, nil
}
