package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightline/agency-server/internal/model"
	"github.com/brightline/agency-server/internal/store"
	"github.com/brightline/agency-server/internal/store/memory"
)

// publishRecorder captures published events so tests can assert on
// them without a broker.
type publishRecorder struct {
	queues []string
	events []interface{}
	err    error
}

func (p *publishRecorder) publish(ctx context.Context, queueName string, event interface{}) error {
	p.queues = append(p.queues, queueName)
	p.events = append(p.events, event)
	return p.err
}

func newOrderFixture(t *testing.T) (*OrderService, *memory.Store, *publishRecorder) {
	t.Helper()
	st := memory.New()
	rec := &publishRecorder{}
	svc := NewOrderService(st, NewAuditService(st))
	svc.publish = rec.publish
	return svc, st, rec
}

func seedCustomer(t *testing.T, st *memory.Store, email string) *model.User {
	t.Helper()
	u := &model.User{Name: "Customer", Email: email, PasswordHash: "x", Role: model.RoleCustomer, IsActive: true}
	require.NoError(t, st.CreateUser(context.Background(), u))
	return u
}

func seedProduct(t *testing.T, st *memory.Store, name string, price int64, active bool) *model.AddonProduct {
	t.Helper()
	p := &model.AddonProduct{Name: name, PriceCents: price, IsActive: active}
	require.NoError(t, st.CreateAddon(context.Background(), p))
	return p
}

func TestAddToCartRules(t *testing.T) {
	svc, st, _ := newOrderFixture(t)
	ctx := context.Background()
	u := seedCustomer(t, st, "c@example.com")
	active := seedProduct(t, st, "Logo Design", 200000, true)
	retired := seedProduct(t, st, "Retired", 100000, false)

	_, err := svc.AddToCart(ctx, u.ID, active.ID, 0)
	assert.ErrorIs(t, err, ErrQuantity)

	// Inactive and missing products are rejected identically.
	_, err = svc.AddToCart(ctx, u.ID, retired.ID, 1)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = svc.AddToCart(ctx, u.ID, 9999, 1)
	assert.ErrorIs(t, err, store.ErrNotFound)

	it, err := svc.AddToCart(ctx, u.ID, active.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), it.Quantity)
	it, err = svc.AddToCart(ctx, u.ID, active.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, uint32(3), it.Quantity, "same product merges into one line")
}

func TestCheckout(t *testing.T) {
	svc, st, rec := newOrderFixture(t)
	ctx := context.Background()
	u := seedCustomer(t, st, "c@example.com")
	logo := seedProduct(t, st, "Logo Design", 200000, true)
	seo := seedProduct(t, st, "SEO Audit", 150000, true)

	_, _, err := svc.Checkout(ctx, u.ID, Contact{Name: "C", Email: "c@example.com"}, "")
	assert.ErrorIs(t, err, store.ErrEmptyCart)

	_, err = svc.AddToCart(ctx, u.ID, logo.ID, 2)
	require.NoError(t, err)
	_, err = svc.AddToCart(ctx, u.ID, seo.ID, 1)
	require.NoError(t, err)

	ord, items, err := svc.Checkout(ctx, u.ID, Contact{Name: "C", Email: "c@example.com", Phone: "555"}, "rush please")
	require.NoError(t, err)
	assert.Equal(t, model.OrderPending, ord.Status)
	assert.Equal(t, int64(2*200000+150000), ord.TotalCents)
	require.Len(t, items, 2)
	assert.Equal(t, "Logo Design", items[0].ProductName)
	assert.Equal(t, int64(200000), items[0].PriceCents)

	// Cart is empty afterwards.
	left, err := st.ListCartItems(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, left)

	// One order.created event went out.
	require.Len(t, rec.queues, 1)
	assert.Equal(t, OrderCreatedQueue, rec.queues[0])

	// Raising the catalog price later never changes the order.
	price := int64(999999)
	_, err = st.UpdateAddon(ctx, logo.ID, store.AddonUpdate{PriceCents: &price})
	require.NoError(t, err)
	snap, err := st.OrderItems(ctx, ord.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(200000), snap[0].PriceCents)
	got, err := st.OrderByID(ctx, ord.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2*200000+150000), got.TotalCents)
}

func TestCheckoutPublishFailureDoesNotAbort(t *testing.T) {
	svc, st, rec := newOrderFixture(t)
	rec.err = errors.New("broker down")
	ctx := context.Background()
	u := seedCustomer(t, st, "c@example.com")
	p := seedProduct(t, st, "Logo Design", 200000, true)
	_, err := svc.AddToCart(ctx, u.ID, p.ID, 1)
	require.NoError(t, err)

	ord, _, err := svc.Checkout(ctx, u.ID, Contact{Name: "C", Email: "c@example.com"}, "")
	require.NoError(t, err)
	assert.NotZero(t, ord.ID)
}

// failingStore wraps a real store and makes order creation blow up,
// simulating a write failure mid-checkout.
type failingStore struct {
	store.Store
}

var errInjected = errors.New("injected write failure")

func (f *failingStore) CreateOrderFromCart(ctx context.Context, o *model.Order, items []model.OrderItem) error {
	return errInjected
}

func TestCheckoutFailureLeavesCartIntact(t *testing.T) {
	st := memory.New()
	wrapped := &failingStore{Store: st}
	svc := NewOrderService(wrapped, NewAuditService(st))
	svc.publish = (&publishRecorder{}).publish
	ctx := context.Background()

	u := seedCustomer(t, st, "c@example.com")
	p := seedProduct(t, st, "Logo Design", 200000, true)
	_, err := svc.AddToCart(ctx, u.ID, p.ID, 2)
	require.NoError(t, err)

	_, _, err = svc.Checkout(ctx, u.ID, Contact{Name: "C", Email: "c@example.com"}, "")
	require.ErrorIs(t, err, errInjected)

	// Nothing was half-done: the cart still holds the line and no
	// order exists.
	left, err := st.ListCartItems(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, left, 1)
	orders, err := st.ListOrders(ctx, store.OrderFilter{UserID: u.ID})
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func checkoutOrder(t *testing.T, svc *OrderService, st *memory.Store, u *model.User) *model.Order {
	t.Helper()
	ctx := context.Background()
	p := seedProduct(t, st, "Landing Page", 450000, true)
	_, err := svc.AddToCart(ctx, u.ID, p.ID, 1)
	require.NoError(t, err)
	ord, _, err := svc.Checkout(ctx, u.ID, Contact{Name: u.Name, Email: u.Email}, "")
	require.NoError(t, err)
	return ord
}

func TestUpdateStatusRules(t *testing.T) {
	svc, st, _ := newOrderFixture(t)
	ctx := context.Background()
	owner := seedCustomer(t, st, "owner@example.com")
	other := seedCustomer(t, st, "other@example.com")
	staff := &model.User{ID: 999, Role: model.RoleManager}

	ord := checkoutOrder(t, svc, st, owner)

	// A stranger cannot touch the order at all.
	err := svc.UpdateStatus(ctx, ord.ID, model.OrderCancelled, other)
	assert.ErrorIs(t, err, ErrForbidden)

	// The owner may only cancel while pending.
	err = svc.UpdateStatus(ctx, ord.ID, model.OrderCompleted, owner)
	assert.ErrorIs(t, err, ErrForbidden)
	require.NoError(t, svc.UpdateStatus(ctx, ord.ID, model.OrderCancelled, owner))

	// Cancelled is terminal even for staff.
	err = svc.UpdateStatus(ctx, ord.ID, model.OrderInProgress, staff)
	assert.ErrorIs(t, err, store.ErrInvalidTransition)

	// Staff walk the full pipeline on a fresh order.
	ord2 := checkoutOrder(t, svc, st, owner)
	require.NoError(t, svc.UpdateStatus(ctx, ord2.ID, model.OrderInProgress, staff))

	// Once work started the owner can no longer cancel.
	err = svc.UpdateStatus(ctx, ord2.ID, model.OrderCancelled, owner)
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, svc.UpdateStatus(ctx, ord2.ID, model.OrderCompleted, staff))

	err = svc.UpdateStatus(ctx, 9999, model.OrderCancelled, staff)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

// TestOrderWithRevisionScenario follows an order through checkout,
// work, a customer revision request and resolution.
func TestOrderWithRevisionScenario(t *testing.T) {
	svc, st, _ := newOrderFixture(t)
	ctx := context.Background()
	owner := seedCustomer(t, st, "owner@example.com")
	other := seedCustomer(t, st, "other@example.com")
	staff := &model.User{ID: 999, Role: model.RoleAdmin}

	ord := checkoutOrder(t, svc, st, owner)

	// Revisions are not accepted while the order is still pending.
	_, err := svc.RequestRevision(ctx, ord.ID, "make the logo bigger", owner)
	assert.ErrorIs(t, err, ErrRevisionClosed)

	require.NoError(t, svc.UpdateStatus(ctx, ord.ID, model.OrderInProgress, staff))

	// Only the owner (or staff) may file one.
	_, err = svc.RequestRevision(ctx, ord.ID, "sneaky", other)
	assert.ErrorIs(t, err, ErrForbidden)

	rev, err := svc.RequestRevision(ctx, ord.ID, "make the logo bigger", owner)
	require.NoError(t, err)
	assert.Equal(t, model.RevisionPending, rev.Status)

	ok, err := st.SetRevisionStatus(ctx, rev.ID, model.RevisionResolved)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, svc.UpdateStatus(ctx, ord.ID, model.OrderCompleted, staff))

	// Completed orders still accept revision requests.
	_, err = svc.RequestRevision(ctx, ord.ID, "one more tweak", owner)
	require.NoError(t, err)

	revs, err := st.ListRevisions(ctx, ord.ID)
	require.NoError(t, err)
	assert.Len(t, revs, 2)

	// The audit trail recorded the order lifecycle.
	entries, err := st.ListAudit(ctx, 50)
	require.NoError(t, err)
	assert.NotEmpty(t, entries)
}

func TestRevisionOnMissingOrder(t *testing.T) {
	svc, st, _ := newOrderFixture(t)
	owner := seedCustomer(t, st, "owner@example.com")

	_, err := svc.RequestRevision(context.Background(), 9999, "hello", owner)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
