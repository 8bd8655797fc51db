package mysql

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/brightline/agency-server/internal/model"
	"github.com/brightline/agency-server/internal/store"
)

const submissionCols = "id,name,email,phone,city,service,message,status,created_at,updated_at"

func (s *Store) CreateSubmission(ctx context.Context, sub *model.Submission) error {
	if sub.Status == "" {
		sub.Status = model.SubmissionNew
	}
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO submissions (name, email, phone, city, service, message, status) VALUES (?,?,?,?,?,?,?)",
		sub.Name, sub.Email, sub.Phone, sub.City, sub.Service, sub.Message, sub.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	sub.ID = uint64(id)
	created, err := s.SubmissionByID(ctx, sub.ID)
	if err != nil {
		return err
	}
	sub.CreatedAt = created.CreatedAt
	sub.UpdatedAt = created.UpdatedAt
	return nil
}

func (s *Store) SubmissionByID(ctx context.Context, id uint64) (*model.Submission, error) {
	var sub model.Submission
	err := s.db.QueryRowContext(ctx,
		"SELECT "+submissionCols+" FROM submissions WHERE id=? LIMIT 1", id).Scan(
		&sub.ID, &sub.Name, &sub.Email, &sub.Phone, &sub.City, &sub.Service, &sub.Message, &sub.Status, &sub.CreatedAt, &sub.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (s *Store) UpdateSubmission(ctx context.Context, id uint64, upd store.SubmissionUpdate) (*model.Submission, error) {
	sub, err := s.SubmissionByID(ctx, id)
	if err != nil || sub == nil {
		return nil, err
	}
	if upd.Status != nil {
		sub.Status = *upd.Status
	}
	if upd.Service != nil {
		sub.Service = *upd.Service
	}
	if upd.City != nil {
		sub.City = *upd.City
	}
	if _, err := s.db.ExecContext(ctx,
		"UPDATE submissions SET status=?, service=?, city=? WHERE id=?",
		sub.Status, sub.Service, sub.City, id); err != nil {
		return nil, err
	}
	return s.SubmissionByID(ctx, id)
}

func (s *Store) DeleteSubmission(ctx context.Context, id uint64) (bool, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM submissions WHERE id=?", id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) ListSubmissions(ctx context.Context, f store.SubmissionFilter) ([]model.Submission, error) {
	q := "SELECT " + submissionCols + " FROM submissions"
	conds := []string{}
	args := []interface{}{}
	if f.Status != "" {
		conds = append(conds, "status=?")
		args = append(args, f.Status)
	}
	if f.Service != "" {
		conds = append(conds, "service=?")
		args = append(args, f.Service)
	}
	if !f.Since.IsZero() {
		conds = append(conds, "created_at >= ?")
		args = append(args, f.Since)
	}
	if !f.Until.IsZero() {
		conds = append(conds, "created_at <= ?")
		args = append(args, f.Until)
	}
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY created_at DESC, id DESC"
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Submission{}
	for rows.Next() {
		var sub model.Submission
		if err := rows.Scan(&sub.ID, &sub.Name, &sub.Email, &sub.Phone, &sub.City, &sub.Service, &sub.Message, &sub.Status, &sub.CreatedAt, &sub.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

func (s *Store) CreateNote(ctx context.Context, n *model.Note) error {
	parent, err := s.SubmissionByID(ctx, n.SubmissionID)
	if err != nil {
		return err
	}
	if parent == nil {
		return store.ErrNotFound
	}
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO notes (submission_id, user_id, body) VALUES (?,?,?)",
		n.SubmissionID, n.UserID, n.Body)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	n.ID = uint64(id)
	return s.db.QueryRowContext(ctx,
		"SELECT created_at FROM notes WHERE id=?", n.ID).Scan(&n.CreatedAt)
}

func (s *Store) ListNotes(ctx context.Context, submissionID uint64) ([]model.Note, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, submission_id, user_id, body, created_at FROM notes WHERE submission_id=? ORDER BY id",
		submissionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Note{}
	for rows.Next() {
		var n model.Note
		if err := rows.Scan(&n.ID, &n.SubmissionID, &n.UserID, &n.Body, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}
