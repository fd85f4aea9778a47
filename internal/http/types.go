package httpapi

import (
	"newsdesk-service/internal/models"
	"newsdesk-service/internal/newsroom"
)

type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// RateLimitResponse is the body of a 429.
type RateLimitResponse struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	RetryAfter int64  `json:"retry_after"`
}

type ArticlesResponse struct {
	Articles []newsroom.ArticleSummary `json:"articles"`
	Count    int                       `json:"count"`
}

type CommentRequest struct {
	AuthorName  string `json:"author_name"`
	AuthorEmail string `json:"author_email"`
	Content     string `json:"content"`
	ParentID    *uint  `json:"parent_id,omitempty"`
}

type EpaperResponse struct {
	*models.Epaper
	DownloadURL string `json:"download_url"`
	ShortURL    string `json:"short_url"`
}
