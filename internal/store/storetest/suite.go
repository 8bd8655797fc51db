// Package storetest holds a conformance suite run against every
// store.Store implementation so both backends keep the same
// observable behavior.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/brightline/agency-server/internal/model"
	"github.com/brightline/agency-server/internal/store"
)

// Factory builds a fresh, empty store for one subtest.
type Factory func(t *testing.T) store.Store

// RunSuite exercises the full Store contract against the factory's
// implementation.
func RunSuite(t *testing.T, factory Factory) {
	t.Run("Users", func(t *testing.T) { testUsers(t, factory) })
	t.Run("RefreshTokens", func(t *testing.T) { testRefreshTokens(t, factory) })
	t.Run("ResetTokens", func(t *testing.T) { testResetTokens(t, factory) })
	t.Run("OTP", func(t *testing.T) { testOTP(t, factory) })
	t.Run("Submissions", func(t *testing.T) { testSubmissions(t, factory) })
	t.Run("Notes", func(t *testing.T) { testNotes(t, factory) })
	t.Run("Addons", func(t *testing.T) { testAddons(t, factory) })
	t.Run("Cart", func(t *testing.T) { testCart(t, factory) })
	t.Run("Orders", func(t *testing.T) { testOrders(t, factory) })
	t.Run("Revisions", func(t *testing.T) { testRevisions(t, factory) })
	t.Run("Blog", func(t *testing.T) { testBlog(t, factory) })
	t.Run("Audit", func(t *testing.T) { testAudit(t, factory) })
}

func newUser(t *testing.T, s store.Store, email string) *model.User {
	t.Helper()
	u := &model.User{
		Name:         "Test User",
		Email:        email,
		PasswordHash: "$2a$10$notarealhashnotarealhashnotarealhash",
		Role:         model.RoleCustomer,
		IsActive:     true,
	}
	require.NoError(t, s.CreateUser(context.Background(), u))
	require.NotZero(t, u.ID)
	return u
}

func newAddon(t *testing.T, s store.Store, name string, price int64, active bool) *model.AddonProduct {
	t.Helper()
	p := &model.AddonProduct{Name: name, PriceCents: price, IsActive: active}
	require.NoError(t, s.CreateAddon(context.Background(), p))
	return p
}

func testUsers(t *testing.T, factory Factory) {
	s := factory(t)
	ctx := context.Background()

	u := newUser(t, s, "a@example.com")

	// Duplicate email must be rejected, case of the stored value.
	dup := &model.User{Name: "Other", Email: "a@example.com", PasswordHash: "x", Role: model.RoleCustomer, IsActive: true}
	require.ErrorIs(t, s.CreateUser(ctx, dup), store.ErrEmailExists)

	got, err := s.UserByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "a@example.com", got.Email)

	got, err = s.UserByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, u.ID, got.ID)

	// Missing ids read as absence, not as errors.
	got, err = s.UserByID(ctx, 9999)
	require.NoError(t, err)
	require.Nil(t, got)

	name := "Renamed"
	inactive := false
	got, err = s.UpdateUser(ctx, u.ID, store.UserUpdate{Name: &name, IsActive: &inactive})
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "Renamed", got.Name)
	require.False(t, got.IsActive)

	got, err = s.UpdateUser(ctx, 9999, store.UserUpdate{Name: &name})
	require.NoError(t, err)
	require.Nil(t, got)

	require.NoError(t, s.SetUserPassword(ctx, u.ID, "newhash"))
	got, err = s.UserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "newhash", got.PasswordHash)

	require.ErrorIs(t, s.SetUserPassword(ctx, 9999, "h"), store.ErrNotFound)

	newUser(t, s, "b@example.com")
	all, err := s.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func testRefreshTokens(t *testing.T, factory Factory) {
	s := factory(t)
	ctx := context.Background()
	u := newUser(t, s, "rt@example.com")

	exp := time.Now().UTC().Add(time.Hour)
	require.NoError(t, s.StoreRefreshToken(ctx, u.ID, "hash-1", exp))
	require.NoError(t, s.StoreRefreshToken(ctx, u.ID, "hash-2", exp))

	uid, err := s.RefreshTokenUser(ctx, "hash-1")
	require.NoError(t, err)
	require.Equal(t, u.ID, uid)

	uid, err = s.RefreshTokenUser(ctx, "unknown")
	require.NoError(t, err)
	require.Zero(t, uid)

	// Expired tokens stop validating.
	require.NoError(t, s.StoreRefreshToken(ctx, u.ID, "hash-old", time.Now().UTC().Add(-time.Minute)))
	uid, err = s.RefreshTokenUser(ctx, "hash-old")
	require.NoError(t, err)
	require.Zero(t, uid)

	require.NoError(t, s.RevokeRefreshToken(ctx, "hash-1"))
	uid, err = s.RefreshTokenUser(ctx, "hash-1")
	require.NoError(t, err)
	require.Zero(t, uid)

	// Revoke-all kills every remaining session.
	require.NoError(t, s.RevokeUserRefreshTokens(ctx, u.ID))
	uid, err = s.RefreshTokenUser(ctx, "hash-2")
	require.NoError(t, err)
	require.Zero(t, uid)
}

func testResetTokens(t *testing.T, factory Factory) {
	s := factory(t)
	ctx := context.Background()
	u := newUser(t, s, "reset@example.com")

	exp := time.Now().UTC().Add(time.Hour)
	require.NoError(t, s.CreateResetToken(ctx, u.ID, "first", exp))

	owner, err := s.ResetTokenOwner(ctx, "first")
	require.NoError(t, err)
	require.NotNil(t, owner)
	require.Equal(t, u.ID, owner.ID)

	// A newer token invalidates the previous one.
	require.NoError(t, s.CreateResetToken(ctx, u.ID, "second", exp))
	owner, err = s.ResetTokenOwner(ctx, "first")
	require.NoError(t, err)
	require.Nil(t, owner)
	owner, err = s.ResetTokenOwner(ctx, "second")
	require.NoError(t, err)
	require.NotNil(t, owner)

	// Consuming is single use; a consumed token never validates again.
	require.NoError(t, s.ConsumeResetToken(ctx, "second"))
	owner, err = s.ResetTokenOwner(ctx, "second")
	require.NoError(t, err)
	require.Nil(t, owner)
	require.NoError(t, s.ConsumeResetToken(ctx, "second")) // idempotent

	// Expired tokens never resolve to an owner.
	require.NoError(t, s.CreateResetToken(ctx, u.ID, "stale", time.Now().UTC().Add(-time.Minute)))
	owner, err = s.ResetTokenOwner(ctx, "stale")
	require.NoError(t, err)
	require.Nil(t, owner)
}

func testOTP(t *testing.T, factory Factory) {
	s := factory(t)
	ctx := context.Background()

	exp := time.Now().UTC().Add(10 * time.Minute)
	require.NoError(t, s.CreateOTP(ctx, "one@example.com", "111111", exp))
	require.NoError(t, s.CreateOTP(ctx, "two@example.com", "111111", exp))

	// The same digits issued to another address never cross-validate.
	ok, err := s.ValidOTP(ctx, "one@example.com", "111111")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, s.ConsumeOTP(ctx, "one@example.com", "111111"))
	ok, err = s.ValidOTP(ctx, "one@example.com", "111111")
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = s.ValidOTP(ctx, "two@example.com", "111111")
	require.NoError(t, err)
	require.True(t, ok)

	// A fresh code replaces the previous unused one.
	require.NoError(t, s.CreateOTP(ctx, "two@example.com", "222222", exp))
	ok, err = s.ValidOTP(ctx, "two@example.com", "111111")
	require.NoError(t, err)
	require.False(t, ok)
	ok, err = s.ValidOTP(ctx, "two@example.com", "222222")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = s.ValidOTP(ctx, "two@example.com", "999999")
	require.NoError(t, err)
	require.False(t, ok)
}

func testSubmissions(t *testing.T, factory Factory) {
	s := factory(t)
	ctx := context.Background()

	first := &model.Submission{Name: "Alice", Email: "alice@example.com", Service: "seo", Message: "hello"}
	require.NoError(t, s.CreateSubmission(ctx, first))
	require.NotZero(t, first.ID)
	require.Equal(t, model.SubmissionNew, first.Status)

	second := &model.Submission{Name: "Bob", Email: "bob@example.com", Service: "design", Message: "hi"}
	require.NoError(t, s.CreateSubmission(ctx, second))

	got, err := s.SubmissionByID(ctx, first.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "Alice", got.Name)

	got, err = s.SubmissionByID(ctx, 9999)
	require.NoError(t, err)
	require.Nil(t, got)

	status := model.SubmissionInProgress
	got, err = s.UpdateSubmission(ctx, first.ID, store.SubmissionUpdate{Status: &status})
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, model.SubmissionInProgress, got.Status)

	// Newest first.
	all, err := s.ListSubmissions(ctx, store.SubmissionFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, second.ID, all[0].ID)

	byStatus, err := s.ListSubmissions(ctx, store.SubmissionFilter{Status: model.SubmissionInProgress})
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	require.Equal(t, first.ID, byStatus[0].ID)

	byService, err := s.ListSubmissions(ctx, store.SubmissionFilter{Service: "design"})
	require.NoError(t, err)
	require.Len(t, byService, 1)

	deleted, err := s.DeleteSubmission(ctx, second.ID)
	require.NoError(t, err)
	require.True(t, deleted)
	deleted, err = s.DeleteSubmission(ctx, second.ID)
	require.NoError(t, err)
	require.False(t, deleted)
}

func testNotes(t *testing.T, factory Factory) {
	s := factory(t)
	ctx := context.Background()

	u := newUser(t, s, "staff@example.com")
	sub := &model.Submission{Name: "Lead", Email: "lead@example.com", Message: "call me"}
	require.NoError(t, s.CreateSubmission(ctx, sub))

	n1 := &model.Note{SubmissionID: sub.ID, UserID: u.ID, Body: "called, no answer"}
	require.NoError(t, s.CreateNote(ctx, n1))
	n2 := &model.Note{SubmissionID: sub.ID, UserID: u.ID, Body: "reached, sending quote"}
	require.NoError(t, s.CreateNote(ctx, n2))

	// Notes against a missing submission are rejected.
	bad := &model.Note{SubmissionID: 9999, UserID: u.ID, Body: "nope"}
	require.ErrorIs(t, s.CreateNote(ctx, bad), store.ErrNotFound)

	notes, err := s.ListNotes(ctx, sub.ID)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	require.Equal(t, "called, no answer", notes[0].Body)
	require.Equal(t, "reached, sending quote", notes[1].Body)
}

func testAddons(t *testing.T, factory Factory) {
	s := factory(t)
	ctx := context.Background()

	active := newAddon(t, s, "Logo Design", 200000, true)
	newAddon(t, s, "Retired Offer", 100000, false)

	got, err := s.AddonByID(ctx, active.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, int64(200000), got.PriceCents)

	price := int64(250000)
	got, err = s.UpdateAddon(ctx, active.ID, store.AddonUpdate{PriceCents: &price})
	require.NoError(t, err)
	require.Equal(t, int64(250000), got.PriceCents)

	all, err := s.ListAddons(ctx, false)
	require.NoError(t, err)
	require.Len(t, all, 2)

	activeOnly, err := s.ListAddons(ctx, true)
	require.NoError(t, err)
	require.Len(t, activeOnly, 1)
	require.Equal(t, active.ID, activeOnly[0].ID)

	deleted, err := s.DeleteAddon(ctx, active.ID)
	require.NoError(t, err)
	require.True(t, deleted)
	deleted, err = s.DeleteAddon(ctx, active.ID)
	require.NoError(t, err)
	require.False(t, deleted)
}

func testCart(t *testing.T, factory Factory) {
	s := factory(t)
	ctx := context.Background()

	u := newUser(t, s, "cart@example.com")
	p1 := newAddon(t, s, "Landing Page", 450000, true)
	p2 := newAddon(t, s, "SEO Audit", 150000, true)

	it, err := s.UpsertCartItem(ctx, u.ID, p1.ID, 1)
	require.NoError(t, err)
	require.Equal(t, uint32(1), it.Quantity)

	// Adding the same product again merges into the existing line.
	it, err = s.UpsertCartItem(ctx, u.ID, p1.ID, 2)
	require.NoError(t, err)
	require.Equal(t, uint32(3), it.Quantity)

	_, err = s.UpsertCartItem(ctx, u.ID, 9999, 1)
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.UpsertCartItem(ctx, u.ID, p2.ID, 1)
	require.NoError(t, err)

	items, err := s.ListCartItems(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, p1.ID, items[0].AddonProductID)

	upd, err := s.UpdateCartItemQty(ctx, u.ID, items[0].ID, 5)
	require.NoError(t, err)
	require.NotNil(t, upd)
	require.Equal(t, uint32(5), upd.Quantity)

	// Another user cannot touch the line.
	other := newUser(t, s, "other@example.com")
	upd, err = s.UpdateCartItemQty(ctx, other.ID, items[0].ID, 1)
	require.NoError(t, err)
	require.Nil(t, upd)
	gone, err := s.DeleteCartItem(ctx, other.ID, items[0].ID)
	require.NoError(t, err)
	require.False(t, gone)

	gone, err = s.DeleteCartItem(ctx, u.ID, items[1].ID)
	require.NoError(t, err)
	require.True(t, gone)
	items, err = s.ListCartItems(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
}

func testOrders(t *testing.T, factory Factory) {
	s := factory(t)
	ctx := context.Background()

	u := newUser(t, s, "buyer@example.com")
	p := newAddon(t, s, "Logo Design", 200000, true)
	_, err := s.UpsertCartItem(ctx, u.ID, p.ID, 2)
	require.NoError(t, err)

	// Empty snapshot never creates an order.
	empty := &model.Order{UserID: u.ID, ContactName: "B", ContactEmail: "buyer@example.com"}
	require.ErrorIs(t, s.CreateOrderFromCart(ctx, empty, nil), store.ErrEmptyCart)
	left, err := s.ListCartItems(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, left, 1) // cart untouched after the failure

	ord := &model.Order{UserID: u.ID, TotalCents: 400000, ContactName: "Buyer", ContactEmail: "buyer@example.com"}
	items := []model.OrderItem{{ProductName: p.Name, PriceCents: p.PriceCents, Quantity: 2}}
	require.NoError(t, s.CreateOrderFromCart(ctx, ord, items))
	require.NotZero(t, ord.ID)
	require.Equal(t, model.OrderPending, ord.Status)

	// Checkout cleared the cart.
	left, err = s.ListCartItems(ctx, u.ID)
	require.NoError(t, err)
	require.Empty(t, left)

	snap, err := s.OrderItems(ctx, ord.ID)
	require.NoError(t, err)
	require.Len(t, snap, 1)
	require.Equal(t, int64(200000), snap[0].PriceCents)

	// Later price changes never touch the snapshot.
	price := int64(999999)
	_, err = s.UpdateAddon(ctx, p.ID, store.AddonUpdate{PriceCents: &price})
	require.NoError(t, err)
	snap, err = s.OrderItems(ctx, ord.ID)
	require.NoError(t, err)
	require.Equal(t, int64(200000), snap[0].PriceCents)
	got, err := s.OrderByID(ctx, ord.ID)
	require.NoError(t, err)
	require.Equal(t, int64(400000), got.TotalCents)

	// Transition table.
	require.ErrorIs(t, s.SetOrderStatus(ctx, ord.ID, model.OrderCompleted), store.ErrInvalidTransition)
	require.NoError(t, s.SetOrderStatus(ctx, ord.ID, model.OrderInProgress))
	require.NoError(t, s.SetOrderStatus(ctx, ord.ID, model.OrderCompleted))
	require.ErrorIs(t, s.SetOrderStatus(ctx, ord.ID, model.OrderCancelled), store.ErrInvalidTransition)
	require.ErrorIs(t, s.SetOrderStatus(ctx, 9999, model.OrderCancelled), store.ErrNotFound)

	got, err = s.OrderByID(ctx, ord.ID)
	require.NoError(t, err)
	require.Equal(t, model.OrderCompleted, got.Status)

	orders, err := s.ListOrders(ctx, store.OrderFilter{UserID: u.ID})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	orders, err = s.ListOrders(ctx, store.OrderFilter{Status: model.OrderPending})
	require.NoError(t, err)
	require.Empty(t, orders)
}

func testRevisions(t *testing.T, factory Factory) {
	s := factory(t)
	ctx := context.Background()

	u := newUser(t, s, "rev@example.com")
	p := newAddon(t, s, "Landing Page", 450000, true)
	ord := &model.Order{UserID: u.ID, TotalCents: 450000, ContactName: "R", ContactEmail: "rev@example.com"}
	require.NoError(t, s.CreateOrderFromCart(ctx, ord, []model.OrderItem{{ProductName: p.Name, PriceCents: p.PriceCents, Quantity: 1}}))

	r := &model.OrderRevision{OrderID: ord.ID, Description: "swap hero image"}
	require.NoError(t, s.CreateRevision(ctx, r))
	require.Equal(t, model.RevisionPending, r.Status)

	bad := &model.OrderRevision{OrderID: 9999, Description: "nope"}
	require.ErrorIs(t, s.CreateRevision(ctx, bad), store.ErrNotFound)

	ok, err := s.SetRevisionStatus(ctx, r.ID, model.RevisionResolved)
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = s.SetRevisionStatus(ctx, 9999, model.RevisionResolved)
	require.NoError(t, err)
	require.False(t, ok)

	revs, err := s.ListRevisions(ctx, ord.ID)
	require.NoError(t, err)
	require.Len(t, revs, 1)
	require.Equal(t, model.RevisionResolved, revs[0].Status)
}

func testBlog(t *testing.T, factory Factory) {
	s := factory(t)
	ctx := context.Background()
	u := newUser(t, s, "author@example.com")

	p1 := &model.BlogPost{Title: "First", Slug: "first", Content: "...", Category: "news", Status: model.PostDraft, AuthorID: u.ID}
	require.NoError(t, s.CreateBlogPost(ctx, p1))
	require.Nil(t, p1.PublishedAt)

	dup := &model.BlogPost{Title: "Other", Slug: "first", Status: model.PostDraft, AuthorID: u.ID}
	require.ErrorIs(t, s.CreateBlogPost(ctx, dup), store.ErrSlugExists)

	got, err := s.BlogPostBySlug(ctx, "first")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, p1.ID, got.ID)

	// First publish stamps PublishedAt; it survives archive/republish.
	published := model.PostPublished
	got, err = s.UpdateBlogPost(ctx, p1.ID, store.BlogPostUpdate{Status: &published})
	require.NoError(t, err)
	require.NotNil(t, got.PublishedAt)
	stamp := *got.PublishedAt

	archived := model.PostArchived
	_, err = s.UpdateBlogPost(ctx, p1.ID, store.BlogPostUpdate{Status: &archived})
	require.NoError(t, err)
	got, err = s.UpdateBlogPost(ctx, p1.ID, store.BlogPostUpdate{Status: &published})
	require.NoError(t, err)
	require.Equal(t, stamp.Unix(), got.PublishedAt.Unix())

	// Slug collisions on update are rejected too.
	p2 := &model.BlogPost{Title: "Second", Slug: "second", Status: model.PostDraft, AuthorID: u.ID}
	require.NoError(t, s.CreateBlogPost(ctx, p2))
	slug := "first"
	_, err = s.UpdateBlogPost(ctx, p2.ID, store.BlogPostUpdate{Slug: &slug})
	require.ErrorIs(t, err, store.ErrSlugExists)

	posts, err := s.ListBlogPosts(ctx, store.BlogPostFilter{Status: model.PostPublished})
	require.NoError(t, err)
	require.Len(t, posts, 1)
	posts, err = s.ListBlogPosts(ctx, store.BlogPostFilter{})
	require.NoError(t, err)
	require.Len(t, posts, 2)
	require.Equal(t, p2.ID, posts[0].ID) // newest first

	deleted, err := s.DeleteBlogPost(ctx, p2.ID)
	require.NoError(t, err)
	require.True(t, deleted)
	deleted, err = s.DeleteBlogPost(ctx, p2.ID)
	require.NoError(t, err)
	require.False(t, deleted)
}

func testAudit(t *testing.T, factory Factory) {
	s := factory(t)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		e := &model.AuditLog{ActorID: 1, Action: "test.action", EntityType: "thing", EntityID: uint64(i)}
		require.NoError(t, s.AppendAudit(ctx, e))
		require.NotZero(t, e.ID)
	}

	entries, err := s.ListAudit(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.Equal(t, uint64(3), entries[0].EntityID) // newest first

	limited, err := s.ListAudit(ctx, 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
}
