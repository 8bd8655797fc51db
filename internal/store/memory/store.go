// Package memory implements store.Store on plain maps guarded by a
// single mutex. It is selected when no database is configured and is
// intended for single-instance/dev deployments: state lives in the
// process and is not shared across processes.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/brightline/agency-server/internal/model"
)

// Store holds every entity in its own map keyed by an auto-increment
// id. All methods take the one mutex, so each operation is atomic
// with respect to every other; CreateOrderFromCart relies on that for
// its all-or-nothing guarantee.
type Store struct {
	mu sync.Mutex

	users         map[uint64]model.User
	refreshTokens map[uint64]model.RefreshToken
	resetTokens   map[uint64]model.PasswordResetToken
	otpCodes      map[uint64]model.OTPCode
	submissions   map[uint64]model.Submission
	notes         map[uint64]model.Note
	addons        map[uint64]model.AddonProduct
	cartItems     map[uint64]model.CartItem
	orders        map[uint64]model.Order
	orderItems    map[uint64]model.OrderItem
	revisions     map[uint64]model.OrderRevision
	blogPosts     map[uint64]model.BlogPost
	auditLogs     []model.AuditLog

	seq map[string]uint64
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		users:         make(map[uint64]model.User),
		refreshTokens: make(map[uint64]model.RefreshToken),
		resetTokens:   make(map[uint64]model.PasswordResetToken),
		otpCodes:      make(map[uint64]model.OTPCode),
		submissions:   make(map[uint64]model.Submission),
		notes:         make(map[uint64]model.Note),
		addons:        make(map[uint64]model.AddonProduct),
		cartItems:     make(map[uint64]model.CartItem),
		orders:        make(map[uint64]model.Order),
		orderItems:    make(map[uint64]model.OrderItem),
		revisions:     make(map[uint64]model.OrderRevision),
		blogPosts:     make(map[uint64]model.BlogPost),
		seq:           make(map[string]uint64),
	}
}

// next returns the next id for the named sequence. Caller must hold mu.
func (s *Store) next(name string) uint64 {
	s.seq[name]++
	return s.seq[name]
}

func now() time.Time { return time.Now().UTC() }

// Seed inserts the default add-on catalog if the catalog is empty.
// It runs once at startup so a zero-config process has something to
// sell immediately.
func (s *Store) Seed(ctx context.Context) error {
	s.mu.Lock()
	empty := len(s.addons) == 0
	s.mu.Unlock()
	if !empty {
		return nil
	}
	defaults := []model.AddonProduct{
		{Name: "Logo Design", PriceCents: 200000, Description: "Custom logo with three concepts and two revision rounds.", IsActive: true},
		{Name: "Landing Page", PriceCents: 450000, Description: "Single-page site with copy, design and deployment.", IsActive: true},
		{Name: "SEO Audit", PriceCents: 150000, Description: "Technical and content audit with a prioritized fix list.", IsActive: true},
		{Name: "Social Media Kit", PriceCents: 120000, Description: "Profile, cover and post templates for three platforms.", IsActive: true},
	}
	for i := range defaults {
		if err := s.CreateAddon(ctx, &defaults[i]); err != nil {
			return err
		}
	}
	return nil
}
