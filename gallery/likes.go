package gallery

import (
	"context"
	"errors"
	"slices"

	"hatesaway-server/core"

	"github.com/sirupsen/logrus"
)

// LikeResult is returned to clients after a toggle.
type LikeResult struct {
	Success bool `json:"success"`
	Likes   int  `json:"likes"`
	IsLiked bool `json:"isLiked"`
}

// ToggleLike flips the (drawing, user) relation and moves the drawing's
// counter by one, never below zero. It reports whether the relation now
// exists. An unknown drawing still flips the relation; no counter moves.
func (s *Service) ToggleLike(ctx context.Context, drawingID, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	liked, _, err := s.toggleLocked(ctx, drawingID, userID)
	return liked, err
}

// Like toggles and reports the counter this toggle produced.
func (s *Service) Like(ctx context.Context, drawingID, userID string) (LikeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	liked, count, err := s.toggleLocked(ctx, drawingID, userID)
	if err != nil {
		return LikeResult{}, err
	}
	return LikeResult{Success: true, Likes: count, IsLiked: liked}, nil
}

// toggleLocked requires s.mu held for writing. count is the drawing's
// counter after the toggle, 0 for an unknown drawing.
func (s *Service) toggleLocked(ctx context.Context, drawingID, userID string) (liked bool, count int, err error) {
	if !core.Available(s.kv) {
		return false, 0, nil
	}

	var likes []string
	if err := load(ctx, s.kv, core.LikesKey, &likes); err != nil {
		return false, 0, err
	}
	key := core.LikeKey(drawingID, userID)

	prev := slices.Clone(likes)
	if i := slices.Index(likes, key); i >= 0 {
		likes = slices.Delete(likes, i, i+1)
	} else {
		likes = append(likes, key)
		liked = true
	}
	if err := save(ctx, s.kv, core.LikesKey, likes); err != nil {
		return false, 0, err
	}

	delta := -1
	if liked {
		delta = 1
	}
	count, err = s.adjustLikes(ctx, drawingID, delta)
	if err != nil {
		if rerr := save(ctx, s.kv, core.LikesKey, prev); rerr != nil {
			err = errors.Join(err, rerr)
		}
		return false, 0, err
	}

	logrus.WithFields(logrus.Fields{
		"drawing_id": drawingID,
		"user_id":    userID,
		"liked":      liked,
		"likes":      count,
	}).Info("Like toggled")
	return liked, count, nil
}

func (s *Service) adjustLikes(ctx context.Context, drawingID string, delta int) (int, error) {
	drawings, err := s.drawings(ctx)
	if err != nil {
		return 0, err
	}
	i := slices.IndexFunc(drawings, func(d core.Drawing) bool { return d.ID == drawingID })
	if i < 0 {
		return 0, nil
	}
	drawings[i].Likes = max(0, drawings[i].Likes+delta)
	if err := save(ctx, s.kv, core.DrawingsKey, drawings); err != nil {
		return 0, err
	}
	return drawings[i].Likes, nil
}

// IsLiked reports whether userID has liked drawingID.
func (s *Service) IsLiked(ctx context.Context, drawingID, userID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	likes, err := s.likeSet(ctx)
	if err != nil {
		return false, err
	}
	_, ok := likes[core.LikeKey(drawingID, userID)]
	return ok, nil
}

func (s *Service) likeSet(ctx context.Context) (map[string]struct{}, error) {
	var likes []string
	if err := load(ctx, s.kv, core.LikesKey, &likes); err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(likes))
	for _, k := range likes {
		set[k] = struct{}{}
	}
	return set, nil
}
