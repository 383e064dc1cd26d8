package gallery

import (
	"context"

	"hatesaway-server/core"

	"github.com/sirupsen/logrus"
)

type SweepReport struct {
	LikesRemoved    int `json:"likesRemoved"`
	CommentsRemoved int `json:"commentsRemoved"`
}

// SweepOrphans drops likes and comments whose drawing no longer exists.
func (s *Service) SweepOrphans(ctx context.Context) (SweepReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var report SweepReport
	if !core.Available(s.kv) {
		return report, nil
	}

	drawings, err := s.drawings(ctx)
	if err != nil {
		return report, err
	}
	exists := make(map[string]struct{}, len(drawings))
	for _, d := range drawings {
		exists[d.ID] = struct{}{}
	}

	var likes []string
	if err := load(ctx, s.kv, core.LikesKey, &likes); err != nil {
		return report, err
	}
	keptLikes := likes[:0]
	for _, k := range likes {
		drawingID, _, ok := core.SplitLikeKey(k)
		if _, live := exists[drawingID]; ok && live {
			keptLikes = append(keptLikes, k)
			continue
		}
		report.LikesRemoved++
	}
	if report.LikesRemoved > 0 {
		if err := save(ctx, s.kv, core.LikesKey, keptLikes); err != nil {
			return report, err
		}
	}

	var comments []core.Comment
	if err := load(ctx, s.kv, core.CommentsKey, &comments); err != nil {
		return report, err
	}
	keptComments := comments[:0]
	for _, c := range comments {
		if _, live := exists[c.DrawingID]; live {
			keptComments = append(keptComments, c)
			continue
		}
		report.CommentsRemoved++
	}
	if report.CommentsRemoved > 0 {
		if err := save(ctx, s.kv, core.CommentsKey, keptComments); err != nil {
			return report, err
		}
	}

	logrus.WithFields(logrus.Fields{
		"likes_removed":    report.LikesRemoved,
		"comments_removed": report.CommentsRemoved,
	}).Info("Orphan sweep finished")
	return report, nil
}
