package memory

import (
	"context"
	"sort"

	"github.com/brightline/agency-server/internal/model"
	"github.com/brightline/agency-server/internal/store"
)

func (s *Store) CreateBlogPost(ctx context.Context, p *model.BlogPost) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.blogPosts {
		if existing.Slug == p.Slug {
			return store.ErrSlugExists
		}
	}
	p.ID = s.next("blog_posts")
	if p.Status == "" {
		p.Status = model.PostDraft
	}
	p.CreatedAt = now()
	p.UpdatedAt = p.CreatedAt
	if p.Status == model.PostPublished && p.PublishedAt == nil {
		ts := p.CreatedAt
		p.PublishedAt = &ts
	}
	s.blogPosts[p.ID] = *p
	return nil
}

func (s *Store) BlogPostByID(ctx context.Context, id uint64) (*model.BlogPost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.blogPosts[id]; ok {
		return &p, nil
	}
	return nil, nil
}

func (s *Store) BlogPostBySlug(ctx context.Context, slug string) (*model.BlogPost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.blogPosts {
		if p.Slug == slug {
			p := p
			return &p, nil
		}
	}
	return nil, nil
}

// UpdateBlogPost merges the provided fields. PublishedAt is stamped
// on the first transition to published and never cleared afterwards.
func (s *Store) UpdateBlogPost(ctx context.Context, id uint64, upd store.BlogPostUpdate) (*model.BlogPost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.blogPosts[id]
	if !ok {
		return nil, nil
	}
	if upd.Slug != nil && *upd.Slug != p.Slug {
		for _, other := range s.blogPosts {
			if other.ID != id && other.Slug == *upd.Slug {
				return nil, store.ErrSlugExists
			}
		}
		p.Slug = *upd.Slug
	}
	if upd.Title != nil {
		p.Title = *upd.Title
	}
	if upd.Excerpt != nil {
		p.Excerpt = *upd.Excerpt
	}
	if upd.Content != nil {
		p.Content = *upd.Content
	}
	if upd.Category != nil {
		p.Category = *upd.Category
	}
	if upd.Status != nil {
		p.Status = *upd.Status
		if p.Status == model.PostPublished && p.PublishedAt == nil {
			ts := now()
			p.PublishedAt = &ts
		}
	}
	p.UpdatedAt = now()
	s.blogPosts[id] = p
	return &p, nil
}

func (s *Store) DeleteBlogPost(ctx context.Context, id uint64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blogPosts[id]; !ok {
		return false, nil
	}
	delete(s.blogPosts, id)
	return true, nil
}

// ListBlogPosts returns posts newest first, optionally filtered by
// status and category.
func (s *Store) ListBlogPosts(ctx context.Context, f store.BlogPostFilter) ([]model.BlogPost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.BlogPost{}
	for _, p := range s.blogPosts {
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *Store) AppendAudit(ctx context.Context, e *model.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = s.next("audit_logs")
	e.CreatedAt = now()
	s.auditLogs = append(s.auditLogs, *e)
	return nil
}

// ListAudit returns the newest entries first, capped at limit.
func (s *Store) ListAudit(ctx context.Context, limit int) ([]model.AuditLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.auditLogs)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]model.AuditLog, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, s.auditLogs[i])
	}
	return out, nil
}
