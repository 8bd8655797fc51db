package mysql

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/brightline/agency-server/internal/model"
	"github.com/brightline/agency-server/internal/store"
)

const postCols = "id,title,slug,excerpt,content,category,status,author_id,published_at,created_at,updated_at"

func scanPost(scan func(dest ...interface{}) error) (*model.BlogPost, error) {
	var p model.BlogPost
	var publishedAt sql.NullTime
	err := scan(&p.ID, &p.Title, &p.Slug, &p.Excerpt, &p.Content, &p.Category, &p.Status, &p.AuthorID, &publishedAt, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if publishedAt.Valid {
		ts := publishedAt.Time
		p.PublishedAt = &ts
	}
	return &p, nil
}

func (s *Store) CreateBlogPost(ctx context.Context, p *model.BlogPost) error {
	if p.Status == "" {
		p.Status = model.PostDraft
	}
	if p.Status == model.PostPublished && p.PublishedAt == nil {
		ts := time.Now().UTC()
		p.PublishedAt = &ts
	}
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO blog_posts (title, slug, excerpt, content, category, status, author_id, published_at) VALUES (?,?,?,?,?,?,?,?)",
		p.Title, p.Slug, p.Excerpt, p.Content, p.Category, p.Status, p.AuthorID, p.PublishedAt)
	if err != nil {
		if isDup(err) {
			return store.ErrSlugExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	created, err := s.BlogPostByID(ctx, p.ID)
	if err != nil {
		return err
	}
	p.CreatedAt = created.CreatedAt
	p.UpdatedAt = created.UpdatedAt
	return nil
}

func (s *Store) BlogPostByID(ctx context.Context, id uint64) (*model.BlogPost, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+postCols+" FROM blog_posts WHERE id=? LIMIT 1", id)
	return scanPost(row.Scan)
}

func (s *Store) BlogPostBySlug(ctx context.Context, slug string) (*model.BlogPost, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+postCols+" FROM blog_posts WHERE slug=? LIMIT 1", slug)
	return scanPost(row.Scan)
}

func (s *Store) UpdateBlogPost(ctx context.Context, id uint64, upd store.BlogPostUpdate) (*model.BlogPost, error) {
	p, err := s.BlogPostByID(ctx, id)
	if err != nil || p == nil {
		return nil, err
	}
	if upd.Title != nil {
		p.Title = *upd.Title
	}
	if upd.Slug != nil {
		p.Slug = *upd.Slug
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
			ts := time.Now().UTC()
			p.PublishedAt = &ts
		}
	}
	if _, err := s.db.ExecContext(ctx,
		"UPDATE blog_posts SET title=?, slug=?, excerpt=?, content=?, category=?, status=?, published_at=? WHERE id=?",
		p.Title, p.Slug, p.Excerpt, p.Content, p.Category, p.Status, p.PublishedAt, id); err != nil {
		if isDup(err) {
			return nil, store.ErrSlugExists
		}
		return nil, err
	}
	return s.BlogPostByID(ctx, id)
}

func (s *Store) DeleteBlogPost(ctx context.Context, id uint64) (bool, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM blog_posts WHERE id=?", id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) ListBlogPosts(ctx context.Context, f store.BlogPostFilter) ([]model.BlogPost, error) {
	q := "SELECT " + postCols + " FROM blog_posts"
	conds := []string{}
	args := []interface{}{}
	if f.Status != "" {
		conds = append(conds, "status=?")
		args = append(args, f.Status)
	}
	if f.Category != "" {
		conds = append(conds, "category=?")
		args = append(args, f.Category)
	}
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY id DESC"
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.BlogPost{}
	for rows.Next() {
		p, err := scanPost(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (s *Store) AppendAudit(ctx context.Context, e *model.AuditLog) error {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO audit_logs (actor_id, action, entity_type, entity_id) VALUES (?,?,?,?)",
		e.ActorID, e.Action, e.EntityType, e.EntityID)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = uint64(id)
	return nil
}

func (s *Store) ListAudit(ctx context.Context, limit int) ([]model.AuditLog, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, actor_id, action, entity_type, entity_id, created_at FROM audit_logs ORDER BY id DESC LIMIT ?",
		limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.AuditLog{}
	for rows.Next() {
		var e model.AuditLog
		if err := rows.Scan(&e.ID, &e.ActorID, &e.Action, &e.EntityType, &e.EntityID, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
