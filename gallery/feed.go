package gallery

import (
	"context"
	"slices"

	"hatesaway-server/core"
	"hatesaway-server/identity"
)

type SortOrder string

const (
	SortLatest  SortOrder = "latest"
	SortPopular SortOrder = "popular"

	DefaultPageSize = 20
	MaxPageSize     = 100
)

// FeedItem is a drawing as seen by one user.
type FeedItem struct {
	core.Drawing
	IsLiked    bool   `json:"isLiked"`
	AuthorName string `json:"authorName"`
}

type FeedQuery struct {
	Sort     SortOrder
	Page     int // 1-based
	PageSize int
}

type DrawingsPage struct {
	Drawings []FeedItem `json:"drawings"`
	HasMore  bool       `json:"hasMore"`
	Page     int        `json:"page"`
	Total    int        `json:"total"`
}

// Feed joins every drawing with userID's like state. It never writes.
func (s *Service) Feed(ctx context.Context, userID string) ([]FeedItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	drawings, err := s.drawings(ctx)
	if err != nil {
		return nil, err
	}
	likes, err := s.likeSet(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]FeedItem, 0, len(drawings))
	for _, d := range drawings {
		_, liked := likes[core.LikeKey(d.ID, userID)]
		items = append(items, FeedItem{
			Drawing:    d,
			IsLiked:    liked,
			AuthorName: identity.DisplayName(d.UserID),
		})
	}
	return items, nil
}

// FeedPage returns one page of the feed in the requested order.
func (s *Service) FeedPage(ctx context.Context, userID string, q FeedQuery) (DrawingsPage, error) {
	items, err := s.Feed(ctx, userID)
	if err != nil {
		return DrawingsPage{}, err
	}

	if q.Sort == SortPopular {
		slices.SortStableFunc(items, func(a, b FeedItem) int { return b.Likes - a.Likes })
	}

	page := max(q.Page, 1)
	size := q.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	size = min(size, MaxPageSize)

	start := min((page-1)*size, len(items))
	end := min(start+size, len(items))
	return DrawingsPage{
		Drawings: items[start:end],
		HasMore:  end < len(items),
		Page:     page,
		Total:    len(items),
	}, nil
}
