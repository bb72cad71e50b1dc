package reviews

import (
	"context"
	"time"
)

type Service interface {
	FetchReviews(ctx context.Context, appID string, limit int) ([]string, error)
	FetchEntries(ctx context.Context, appID string, limit int) ([]Review, error)
}

type Review struct {
	ID      string    `json:"id"`
	Title   string    `json:"title"`
	Content string    `json:"content"`
	Author  string    `json:"author"`
	Updated time.Time `json:"updated"`
	Rating  int       `json:"rating"`
}

// Text renders a review the way it is sent to the summarizer.
func (r *Review) Text() string {
	return r.Title + " - " + r.Content
}
