package model

import "time"

// Blog post statuses.
const (
	PostDraft     = "draft"
	PostPublished = "published"
	PostArchived  = "archived"
)

// ValidPostStatus reports whether s is a known blog post status.
func ValidPostStatus(s string) bool {
	switch s {
	case PostDraft, PostPublished, PostArchived:
		return true
	}
	return false
}

// BlogPost is a CMS article. The slug is unique and URL-safe.
// PublishedAt is set once, on the first transition to published.
type BlogPost struct {
	ID          uint64     `json:"id"`           // blog_posts.id
	Title       string     `json:"title"`        // blog_posts.title
	Slug        string     `json:"slug"`         // blog_posts.slug
	Excerpt     string     `json:"excerpt"`      // blog_posts.excerpt
	Content     string     `json:"content"`      // blog_posts.content
	Category    string     `json:"category"`     // blog_posts.category (may be empty)
	Status      string     `json:"status"`       // blog_posts.status
	AuthorID    uint64     `json:"author_id"`    // blog_posts.author_id
	PublishedAt *time.Time `json:"published_at"` // blog_posts.published_at (nullable)
	CreatedAt   time.Time  `json:"created_at"`   // blog_posts.created_at
	UpdatedAt   time.Time  `json:"updated_at"`   // blog_posts.updated_at
}
