//go:build unit

package commands_test

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"storefront-checkout/internal/domain/order"
	"storefront-checkout/internal/infra"
	"storefront-checkout/internal/pkg/clock"
	"storefront-checkout/internal/pkg/errs"
	"storefront-checkout/internal/usecase/commands"
	"storefront-checkout/tests/common/builder"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- in-memory collaborators ----

type stockRow struct {
	OnHand   int32
	Reserved int32
}

type fakeLedger struct {
	mu          sync.Mutex
	rows        map[uuid.UUID]*stockRow
	calls       []string
	failCommit  bool
	failRelease bool
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{rows: map[uuid.UUID]*stockRow{}}
}

func (l *fakeLedger) add(productID uuid.UUID, onHand int32) {
	l.rows[productID] = &stockRow{OnHand: onHand}
}

func (l *fakeLedger) Reserve(_ context.Context, productID uuid.UUID, qty int32) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, "reserve")
	row, ok := l.rows[productID]
	if !ok {
		return infra.WrapRepoErr("inventory record not found", nil, infra.KindNotFound)
	}
	if row.OnHand-row.Reserved < qty {
		return infra.WrapRepoErr("insufficient available stock", nil, infra.KindConflict)
	}
	row.Reserved += qty
	return nil
}

func (l *fakeLedger) Release(_ context.Context, productID uuid.UUID, qty int32) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, "release")
	if l.failRelease {
		return infra.WrapRepoErr("release failed", errs.New("connection reset"))
	}
	row, ok := l.rows[productID]
	if !ok {
		return infra.WrapRepoErr("inventory record not found", nil, infra.KindNotFound)
	}
	row.Reserved -= qty
	if row.Reserved < 0 {
		row.Reserved = 0
	}
	return nil
}

func (l *fakeLedger) Commit(_ context.Context, productID uuid.UUID, qty int32) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, "commit")
	if l.failCommit {
		return infra.WrapRepoErr("commit failed", errs.New("connection reset"))
	}
	row, ok := l.rows[productID]
	if !ok {
		return infra.WrapRepoErr("inventory record not found", nil, infra.KindNotFound)
	}
	if row.Reserved < qty || row.OnHand < qty {
		return infra.WrapRepoErr("commit exceeds reservation", nil, infra.KindConflict)
	}
	row.OnHand -= qty
	row.Reserved -= qty
	return nil
}

func (l *fakeLedger) snapshot() map[uuid.UUID]stockRow {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[uuid.UUID]stockRow, len(l.rows))
	for id, row := range l.rows {
		out[id] = *row
	}
	return out
}

func (l *fakeLedger) restore(saved map[uuid.UUID]stockRow) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for id, row := range saved {
		copied := row
		l.rows[id] = &copied
	}
}

type fakeCouponRepo struct {
	mu          sync.Mutex
	snap        *commands.CouponSnapshot
	uses        int32
	failCommit  bool
	commitCalls int
	findCalls   int
}

func (r *fakeCouponRepo) FindByCode(_ context.Context, code string) (*commands.CouponSnapshot, error) {
	r.mu.Lock()
	r.findCalls++
	r.mu.Unlock()
	if r.snap == nil || r.snap.Code != code {
		return nil, infra.WrapRepoErr("coupon not found", nil, infra.KindNotFound)
	}
	copied := *r.snap
	return &copied, nil
}

func (r *fakeCouponRepo) CommitUsage(_ context.Context, couponID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commitCalls++
	if r.snap == nil || r.snap.ID != couponID {
		return infra.WrapRepoErr("coupon not found", nil, infra.KindNotFound)
	}
	if r.failCommit {
		return infra.WrapRepoErr("coupon usage limit exhausted", nil, infra.KindConflict)
	}
	r.uses++
	return nil
}

type fakeOrderRepo struct {
	mu          sync.Mutex
	created     []*order.Order
	statuses    map[uuid.UUID]order.Status
	transitions []string
	failCreate  bool
}

type orderRepoState struct {
	created     []*order.Order
	statuses    map[uuid.UUID]order.Status
	transitions []string
}

func (r *fakeOrderRepo) Create(_ context.Context, o *order.Order) (uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreate {
		return uuid.Nil, infra.WrapRepoErr("insert failed", errs.New("boom"))
	}
	if r.statuses == nil {
		r.statuses = map[uuid.UUID]order.Status{}
	}
	r.created = append(r.created, o)
	r.statuses[o.ID()] = o.Status()
	return o.ID(), nil
}

func (r *fakeOrderRepo) UpdateStatus(_ context.Context, id uuid.UUID, from, to order.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.statuses[id]
	if !ok {
		return infra.WrapRepoErr("order not found", nil, infra.KindNotFound)
	}
	if current != from {
		return infra.WrapRepoErr("order status changed concurrently", nil, infra.KindConflict)
	}
	if !from.CanTransitionTo(to) {
		return infra.WrapRepoErr("invalid transition", nil, infra.KindConflict)
	}
	r.statuses[id] = to
	r.transitions = append(r.transitions, from.String()+">"+to.String())
	return nil
}

func (r *fakeOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*commands.OrderSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.created {
		if o.ID() == id {
			return &commands.OrderSnapshot{
				ID:       o.ID(),
				Status:   r.statuses[o.ID()],
				CouponID: o.CouponID(),
				Items:    o.Items(),
			}, nil
		}
	}
	return nil, infra.WrapRepoErr("order not found", nil, infra.KindNotFound)
}

func (r *fakeOrderRepo) status(id uuid.UUID) order.Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.statuses[id]
}

func (r *fakeOrderRepo) state() orderRepoState {
	r.mu.Lock()
	defer r.mu.Unlock()
	statuses := make(map[uuid.UUID]order.Status, len(r.statuses))
	for id, s := range r.statuses {
		statuses[id] = s
	}
	return orderRepoState{
		created:     slices.Clone(r.created),
		statuses:    statuses,
		transitions: slices.Clone(r.transitions),
	}
}

func (r *fakeOrderRepo) restore(saved orderRepoState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created = saved.created
	r.statuses = saved.statuses
	r.transitions = saved.transitions
}

// fakeUoW mirrors the transactional contract: when the callback fails, every
// write it made is undone.
type fakeUoW struct {
	ledger *fakeLedger
	orders *fakeOrderRepo
}

func (u *fakeUoW) Within(ctx context.Context, fn func(ctx context.Context, tx commands.Tx) error) error {
	ledgerBefore := u.ledger.snapshot()
	ordersBefore := u.orders.state()
	if err := fn(ctx, fakeTx{uow: u}); err != nil {
		u.ledger.restore(ledgerBefore)
		u.orders.restore(ordersBefore)
		return err
	}
	return nil
}

type fakeTx struct {
	uow *fakeUoW
}

func (t fakeTx) Inventory() commands.InventoryLedger { return t.uow.ledger }
func (t fakeTx) Orders() commands.OrderRepository    { return t.uow.orders }

type recordedEvent struct {
	Type    string
	Payload any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (p *recordingPublisher) Publish(_ context.Context, eventType string, payload any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{Type: eventType, Payload: payload})
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

// ---- fixture ----

type checkoutFixture struct {
	ledger  *fakeLedger
	coupons *fakeCouponRepo
	orders  *fakeOrderRepo
	uow     *fakeUoW
	events  *recordingPublisher
	clock   *clock.MockClock
	uc      commands.CheckoutCommands
}

func newCheckoutFixture(policy commands.CheckoutPolicy) *checkoutFixture {
	if policy.Currency == "" {
		policy.Currency = "INR"
	}
	f := &checkoutFixture{
		ledger:  newFakeLedger(),
		coupons: &fakeCouponRepo{},
		orders:  &fakeOrderRepo{},
		events:  &recordingPublisher{},
		clock:   clock.NewMockClock(time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)),
	}
	f.uow = &fakeUoW{ledger: f.ledger, orders: f.orders}
	f.uc = commands.NewCheckoutCommands(f.ledger, f.coupons, f.orders, f.uow, f.events, f.clock, policy)
	return f
}

func strPtr(s string) *string { return &s }

// ---- tests ----

func TestCheckout(t *testing.T) {
	t.Run("creates a pending order and holds stock", func(t *testing.T) {
		f := newCheckoutFixture(commands.CheckoutPolicy{})
		cart := builder.NewCartBuilder().WithLine(1000, 2).WithLine(1500, 1)
		for _, line := range cart.Lines {
			f.ledger.add(line.ProductID, 10)
		}

		view, err := f.uc.Checkout(context.Background(), cart.BuildParams())
		require.NoError(t, err)
		require.NotNil(t, view)

		assert.Equal(t, order.StatusPending.String(), view.Status)
		assert.Equal(t, int64(3500), view.SubtotalCents)
		assert.Equal(t, int64(0), view.DiscountCents)
		assert.Equal(t, int64(3500), view.TotalCents)
		assert.Equal(t, "INR", view.Currency)
		require.Len(t, view.Items, 2)
		assert.Equal(t, cart.Lines[0].ProductID, view.Items[0].ProductID)
		assert.Equal(t, cart.Lines[1].ProductID, view.Items[1].ProductID)

		for _, line := range cart.Lines {
			row := f.ledger.snapshot()[line.ProductID]
			assert.Equal(t, line.Quantity, row.Reserved)
			assert.Equal(t, int32(10), row.OnHand)
		}

		require.Len(t, f.orders.created, 1)
		assert.Equal(t, []string{commands.EventOrderCompleted}, f.events.types())
	})

	t.Run("applies percent coupon to the total", func(t *testing.T) {
		f := newCheckoutFixture(commands.CheckoutPolicy{})
		f.coupons.snap = builder.NewCouponBuilder().BuildSnapshot()

		cart := builder.NewCartBuilder().WithLine(1299, 2)
		f.ledger.add(cart.Lines[0].ProductID, 5)

		params := cart.BuildParams()
		params.CouponCode = strPtr("save10")

		view, err := f.uc.Checkout(context.Background(), params)
		require.NoError(t, err)

		assert.Equal(t, int64(2598), view.SubtotalCents)
		assert.Equal(t, int64(259), view.DiscountCents)
		assert.Equal(t, int64(2339), view.TotalCents)
		require.NotNil(t, view.CouponCode)
		assert.Equal(t, "SAVE10", *view.CouponCode)

		assert.Equal(t, int32(1), f.coupons.uses)
		assert.Equal(t, []string{commands.EventOrderCompleted, commands.EventCouponApplied}, f.events.types())
	})

	t.Run("empty cart", func(t *testing.T) {
		f := newCheckoutFixture(commands.CheckoutPolicy{})

		_, err := f.uc.Checkout(context.Background(), commands.CheckoutParams{})
		assert.ErrorIs(t, err, commands.ErrEmptyCart)
		assert.Empty(t, f.orders.created)
	})

	t.Run("empty cart wins over a bad coupon", func(t *testing.T) {
		f := newCheckoutFixture(commands.CheckoutPolicy{})

		params := commands.CheckoutParams{CouponCode: strPtr("NOSUCH")}
		_, err := f.uc.Checkout(context.Background(), params)
		assert.ErrorIs(t, err, commands.ErrEmptyCart)
		assert.Zero(t, f.coupons.findCalls)
	})

	t.Run("unknown coupon rejects before any reservation", func(t *testing.T) {
		f := newCheckoutFixture(commands.CheckoutPolicy{})
		cart := builder.NewCartBuilder().WithLine(1000, 1)
		f.ledger.add(cart.Lines[0].ProductID, 5)

		params := cart.BuildParams()
		params.CouponCode = strPtr("NOSUCH")

		_, err := f.uc.Checkout(context.Background(), params)
		assert.ErrorIs(t, err, commands.ErrInvalidCoupon)
		assert.Empty(t, f.ledger.calls)
		assert.Empty(t, f.orders.created)
	})

	t.Run("expired coupon rejects the order", func(t *testing.T) {
		f := newCheckoutFixture(commands.CheckoutPolicy{})
		past := f.clock.Now().Add(-time.Hour)
		f.coupons.snap = builder.NewCouponBuilder().
			WithWindow(past.Add(-24*time.Hour), past).
			BuildSnapshot()

		cart := builder.NewCartBuilder().WithLine(1000, 1)
		f.ledger.add(cart.Lines[0].ProductID, 5)

		params := cart.BuildParams()
		params.CouponCode = strPtr("SAVE10")

		_, err := f.uc.Checkout(context.Background(), params)
		assert.ErrorIs(t, err, commands.ErrInvalidCoupon)
		assert.Empty(t, f.orders.created)
	})

	t.Run("shortage mid-cart releases every hold already taken", func(t *testing.T) {
		f := newCheckoutFixture(commands.CheckoutPolicy{})
		cart := builder.NewCartBuilder().WithLine(1000, 2).WithLine(2000, 3)
		f.ledger.add(cart.Lines[0].ProductID, 10)
		f.ledger.add(cart.Lines[1].ProductID, 1) // not enough for qty 3

		before := f.ledger.snapshot()

		_, err := f.uc.Checkout(context.Background(), cart.BuildParams())
		require.ErrorIs(t, err, commands.ErrInsufficientStock)

		var shortage *commands.StockShortageError
		require.ErrorAs(t, err, &shortage)
		assert.Equal(t, cart.Lines[1].ProductID, shortage.ProductID)

		if diff := cmp.Diff(before, f.ledger.snapshot()); diff != "" {
			t.Errorf("ledger changed after failed checkout (-before +after):\n%s", diff)
		}
		assert.Empty(t, f.orders.created)
		assert.Empty(t, f.events.types())
	})

	t.Run("unknown product releases and reports not found", func(t *testing.T) {
		f := newCheckoutFixture(commands.CheckoutPolicy{})
		cart := builder.NewCartBuilder().WithLine(1000, 1).WithLine(2000, 1)
		f.ledger.add(cart.Lines[0].ProductID, 5)
		// second product never added to the ledger

		before := f.ledger.snapshot()

		_, err := f.uc.Checkout(context.Background(), cart.BuildParams())
		assert.ErrorIs(t, err, commands.ErrProductNotFound)

		if diff := cmp.Diff(before, f.ledger.snapshot()); diff != "" {
			t.Errorf("ledger changed after failed checkout (-before +after):\n%s", diff)
		}
	})

	t.Run("order write failure compensates reservations", func(t *testing.T) {
		f := newCheckoutFixture(commands.CheckoutPolicy{})
		f.orders.failCreate = true

		cart := builder.NewCartBuilder().WithLine(1000, 2)
		f.ledger.add(cart.Lines[0].ProductID, 10)

		before := f.ledger.snapshot()

		_, err := f.uc.Checkout(context.Background(), cart.BuildParams())
		assert.ErrorIs(t, err, commands.ErrPersistenceFailed)

		if diff := cmp.Diff(before, f.ledger.snapshot()); diff != "" {
			t.Errorf("ledger changed after failed checkout (-before +after):\n%s", diff)
		}
		assert.Empty(t, f.events.types())
	})

	t.Run("cancelled context cleans up mid-reservation", func(t *testing.T) {
		f := newCheckoutFixture(commands.CheckoutPolicy{})
		cart := builder.NewCartBuilder().WithLine(1000, 1)
		f.ledger.add(cart.Lines[0].ProductID, 5)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := f.uc.Checkout(ctx, cart.BuildParams())
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, int32(0), f.ledger.snapshot()[cart.Lines[0].ProductID].Reserved)
	})
}

func TestCheckoutCouponCapRace(t *testing.T) {
	// The cap is re-checked when usage is committed; these cases simulate a
	// concurrent order exhausting it between validation and finalization.
	t.Run("lenient mode keeps the order and logs", func(t *testing.T) {
		f := newCheckoutFixture(commands.CheckoutPolicy{StrictCouponLimit: false})
		f.coupons.snap = builder.NewCouponBuilder().WithUsageLimit(100, 99).BuildSnapshot()
		f.coupons.failCommit = true

		cart := builder.NewCartBuilder().WithLine(1000, 1)
		f.ledger.add(cart.Lines[0].ProductID, 5)

		params := cart.BuildParams()
		params.CouponCode = strPtr("SAVE10")

		view, err := f.uc.Checkout(context.Background(), params)
		require.NoError(t, err)

		assert.Equal(t, order.StatusPending.String(), view.Status)
		assert.Equal(t, int64(100), view.DiscountCents)
		assert.Equal(t, int32(1), f.ledger.snapshot()[cart.Lines[0].ProductID].Reserved)
		assert.Empty(t, f.orders.transitions)
		// No usage was recorded, so no coupon event may go out.
		assert.Equal(t, []string{commands.EventOrderCompleted}, f.events.types())
	})

	t.Run("strict mode cancels the order and releases stock", func(t *testing.T) {
		f := newCheckoutFixture(commands.CheckoutPolicy{StrictCouponLimit: true})
		f.coupons.snap = builder.NewCouponBuilder().WithUsageLimit(100, 99).BuildSnapshot()
		f.coupons.failCommit = true

		cart := builder.NewCartBuilder().WithLine(1000, 1)
		f.ledger.add(cart.Lines[0].ProductID, 5)

		params := cart.BuildParams()
		params.CouponCode = strPtr("SAVE10")

		_, err := f.uc.Checkout(context.Background(), params)
		require.ErrorIs(t, err, commands.ErrInvalidCoupon)

		assert.Equal(t, int32(0), f.ledger.snapshot()[cart.Lines[0].ProductID].Reserved)
		assert.Equal(t, []string{"PENDING>CANCELLED"}, f.orders.transitions)
		assert.Empty(t, f.events.types())
	})
}

func TestCheckoutConcurrency(t *testing.T) {
	t.Run("last unit goes to exactly one of many concurrent checkouts", func(t *testing.T) {
		f := newCheckoutFixture(commands.CheckoutPolicy{})
		productID := uuid.New()
		f.ledger.add(productID, 1)

		const attempts = 16
		var wg sync.WaitGroup
		results := make([]error, attempts)

		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				cart := builder.NewCartBuilder().WithProductLine(productID, 1000, 1)
				_, err := f.uc.Checkout(context.Background(), cart.BuildParams())
				results[i] = err
			}(i)
		}
		wg.Wait()

		var wins, shortages int
		for _, err := range results {
			switch {
			case err == nil:
				wins++
			case errors.Is(err, commands.ErrInsufficientStock):
				shortages++
			default:
				t.Fatalf("unexpected error: %v", err)
			}
		}

		assert.Equal(t, 1, wins)
		assert.Equal(t, attempts-1, shortages)
		assert.Equal(t, int32(1), f.ledger.snapshot()[productID].Reserved)
		assert.Len(t, f.orders.created, 1)
	})
}
