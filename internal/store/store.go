package store

import (
	"context"
	"time"

	"github.com/brightline/agency-server/internal/model"
)

// Store is the storage contract implemented by both backends. The
// process picks exactly one implementation at startup and uses it for
// its whole lifetime.
//
// Conventions shared by all implementations:
//   - lookups for a missing id return (nil, nil), absence is not an
//     error;
//   - updates against a missing id return (nil, nil);
//   - deletes of a missing id return (false, nil);
//   - lists return newest-first where a created-at ordering is
//     meaningful, insertion order otherwise;
//   - uniqueness violations return the package sentinel errors.
type Store interface {
	// Users. CreateUser assigns ID and timestamps; email must already
	// be normalized (lowercased, trimmed) by the caller.
	CreateUser(ctx context.Context, u *model.User) error
	UserByID(ctx context.Context, id uint64) (*model.User, error)
	UserByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateUser(ctx context.Context, id uint64, upd UserUpdate) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	SetUserPassword(ctx context.Context, id uint64, hash string) error

	// Refresh tokens (session store). Only SHA-256 hashes are kept.
	StoreRefreshToken(ctx context.Context, userID uint64, tokenHash string, expiresAt time.Time) error
	RefreshTokenUser(ctx context.Context, tokenHash string) (uint64, error)
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
	RevokeUserRefreshTokens(ctx context.Context, userID uint64) error

	// Password reset tokens. CreateResetToken marks any prior unused
	// token for the same user as used, so at most one token is active
	// per user. ResetTokenOwner returns (nil, nil) for unknown, used
	// or expired tokens; it does not consume. ConsumeResetToken is
	// idempotent.
	CreateResetToken(ctx context.Context, userID uint64, tokenHash string, expiresAt time.Time) error
	ResetTokenOwner(ctx context.Context, tokenHash string) (*model.User, error)
	ConsumeResetToken(ctx context.Context, tokenHash string) error

	// OTP codes, matched by (email, code). CreateOTP invalidates prior
	// unused codes for the same email.
	CreateOTP(ctx context.Context, email, code string, expiresAt time.Time) error
	ValidOTP(ctx context.Context, email, code string) (bool, error)
	ConsumeOTP(ctx context.Context, email, code string) error

	// Submissions (leads) and their append-only notes. CreateNote
	// returns ErrNotFound when the submission does not exist.
	CreateSubmission(ctx context.Context, s *model.Submission) error
	SubmissionByID(ctx context.Context, id uint64) (*model.Submission, error)
	UpdateSubmission(ctx context.Context, id uint64, upd SubmissionUpdate) (*model.Submission, error)
	DeleteSubmission(ctx context.Context, id uint64) (bool, error)
	ListSubmissions(ctx context.Context, f SubmissionFilter) ([]model.Submission, error)
	CreateNote(ctx context.Context, n *model.Note) error
	ListNotes(ctx context.Context, submissionID uint64) ([]model.Note, error)

	// Add-on products.
	CreateAddon(ctx context.Context, p *model.AddonProduct) error
	AddonByID(ctx context.Context, id uint64) (*model.AddonProduct, error)
	UpdateAddon(ctx context.Context, id uint64, upd AddonUpdate) (*model.AddonProduct, error)
	DeleteAddon(ctx context.Context, id uint64) (bool, error)
	ListAddons(ctx context.Context, activeOnly bool) ([]model.AddonProduct, error)

	// Cart. UpsertCartItem increments the quantity of an existing
	// (user, product) line instead of inserting a duplicate.
	UpsertCartItem(ctx context.Context, userID, productID uint64, qty uint32) (*model.CartItem, error)
	UpdateCartItemQty(ctx context.Context, userID, itemID uint64, qty uint32) (*model.CartItem, error)
	DeleteCartItem(ctx context.Context, userID, itemID uint64) (bool, error)
	ListCartItems(ctx context.Context, userID uint64) ([]model.CartItem, error)

	// Orders. CreateOrderFromCart atomically inserts the order with
	// its item snapshots and clears the user's cart: either all of it
	// happens or none of it does. SetOrderStatus enforces the legal
	// transition table and returns ErrInvalidTransition otherwise.
	CreateOrderFromCart(ctx context.Context, o *model.Order, items []model.OrderItem) error
	OrderByID(ctx context.Context, id uint64) (*model.Order, error)
	ListOrders(ctx context.Context, f OrderFilter) ([]model.Order, error)
	OrderItems(ctx context.Context, orderID uint64) ([]model.OrderItem, error)
	SetOrderStatus(ctx context.Context, id uint64, status string) error

	// Order revisions. CreateRevision returns ErrNotFound when the
	// order does not exist.
	CreateRevision(ctx context.Context, r *model.OrderRevision) error
	SetRevisionStatus(ctx context.Context, id uint64, status string) (bool, error)
	ListRevisions(ctx context.Context, orderID uint64) ([]model.OrderRevision, error)

	// Blog posts.
	CreateBlogPost(ctx context.Context, p *model.BlogPost) error
	BlogPostByID(ctx context.Context, id uint64) (*model.BlogPost, error)
	BlogPostBySlug(ctx context.Context, slug string) (*model.BlogPost, error)
	UpdateBlogPost(ctx context.Context, id uint64, upd BlogPostUpdate) (*model.BlogPost, error)
	DeleteBlogPost(ctx context.Context, id uint64) (bool, error)
	ListBlogPosts(ctx context.Context, f BlogPostFilter) ([]model.BlogPost, error)

	// Audit trail, append-only.
	AppendAudit(ctx context.Context, e *model.AuditLog) error
	ListAudit(ctx context.Context, limit int) ([]model.AuditLog, error)
}

// UserUpdate carries the fields an admin may change on a user. Nil
// fields are left untouched.
type UserUpdate struct {
	Name     *string
	Role     *string
	IsActive *bool
}

// SubmissionUpdate carries staff-editable lead fields.
type SubmissionUpdate struct {
	Status  *string
	Service *string
	City    *string
}

// SubmissionFilter narrows ListSubmissions. Zero values match all.
type SubmissionFilter struct {
	Status  string
	Service string
	Since   time.Time
	Until   time.Time
}

// AddonUpdate carries catalog-editable fields.
type AddonUpdate struct {
	Name        *string
	PriceCents  *int64
	Description *string
	IsActive    *bool
}

// OrderFilter narrows ListOrders. Zero values match all.
type OrderFilter struct {
	UserID uint64
	Status string
}

// BlogPostUpdate carries CMS-editable fields. Status changes flow
// through here too; the first move to published stamps PublishedAt.
type BlogPostUpdate struct {
	Title    *string
	Slug     *string
	Excerpt  *string
	Content  *string
	Category *string
	Status   *string
}

// BlogPostFilter narrows ListBlogPosts. Zero values match all.
type BlogPostFilter struct {
	Status   string
	Category string
}
