package memory

import (
	"context"
	"sort"

	"github.com/brightline/agency-server/internal/model"
	"github.com/brightline/agency-server/internal/store"
)

func (s *Store) CreateSubmission(ctx context.Context, sub *model.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub.ID = s.next("submissions")
	if sub.Status == "" {
		sub.Status = model.SubmissionNew
	}
	sub.CreatedAt = now()
	sub.UpdatedAt = sub.CreatedAt
	s.submissions[sub.ID] = *sub
	return nil
}

func (s *Store) SubmissionByID(ctx context.Context, id uint64) (*model.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sub, ok := s.submissions[id]; ok {
		return &sub, nil
	}
	return nil, nil
}

func (s *Store) UpdateSubmission(ctx context.Context, id uint64, upd store.SubmissionUpdate) (*model.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.submissions[id]
	if !ok {
		return nil, nil
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
	sub.UpdatedAt = now()
	s.submissions[id] = sub
	return &sub, nil
}

func (s *Store) DeleteSubmission(ctx context.Context, id uint64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.submissions[id]; !ok {
		return false, nil
	}
	delete(s.submissions, id)
	for nid, n := range s.notes {
		if n.SubmissionID == id {
			delete(s.notes, nid)
		}
	}
	return true, nil
}

// ListSubmissions returns leads newest first, optionally filtered by
// status, service and creation date range.
func (s *Store) ListSubmissions(ctx context.Context, f store.SubmissionFilter) ([]model.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Submission, 0, len(s.submissions))
	for _, sub := range s.submissions {
		if f.Status != "" && sub.Status != f.Status {
			continue
		}
		if f.Service != "" && sub.Service != f.Service {
			continue
		}
		if !f.Since.IsZero() && sub.CreatedAt.Before(f.Since) {
			continue
		}
		if !f.Until.IsZero() && sub.CreatedAt.After(f.Until) {
			continue
		}
		out = append(out, sub)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) CreateNote(ctx context.Context, n *model.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.submissions[n.SubmissionID]; !ok {
		return store.ErrNotFound
	}
	n.ID = s.next("notes")
	n.CreatedAt = now()
	s.notes[n.ID] = *n
	return nil
}

// ListNotes returns a submission's notes in insertion order.
func (s *Store) ListNotes(ctx context.Context, submissionID uint64) ([]model.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Note{}
	for _, n := range s.notes {
		if n.SubmissionID == submissionID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
