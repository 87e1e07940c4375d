package orders

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"home-kitchen-market/internal/models"
)

// --- fakes ---

type fakeOrderRepo struct {
	orders map[string]*models.Order
	seq    int
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[string]*models.Order)}
}

func (r *fakeOrderRepo) Create(_ context.Context, order *models.Order) (*models.Order, error) {
	r.seq++
	stored := *order
	stored.ID = fmt.Sprintf("ord-%d", r.seq)
	stored.Status = models.OrderPlaced
	stored.PaymentStatus = models.PaymentPending
	r.orders[stored.ID] = &stored
	copied := stored
	return &copied, nil
}

func (r *fakeOrderRepo) FindByID(_ context.Context, orderID string) (*models.Order, error) {
	order, ok := r.orders[orderID]
	if !ok {
		return nil, models.ErrNotFound
	}
	copied := *order
	return &copied, nil
}

func (r *fakeOrderRepo) ListByCustomer(_ context.Context, customerID string, page, limit int) ([]*models.Order, int, error) {
	var out []*models.Order
	for _, o := range r.orders {
		if o.CustomerID == customerID {
			copied := *o
			out = append(out, &copied)
		}
	}
	return out, len(out), nil
}

func (r *fakeOrderRepo) ListByVendor(_ context.Context, vendorID string, page, limit int) ([]*models.Order, int, error) {
	var out []*models.Order
	for _, o := range r.orders {
		if o.VendorID == vendorID {
			copied := *o
			out = append(out, &copied)
		}
	}
	return out, len(out), nil
}

func (r *fakeOrderRepo) UpdateStatus(_ context.Context, orderID string, from, to models.OrderStatus) (*models.Order, error) {
	order, ok := r.orders[orderID]
	if !ok {
		return nil, models.ErrNotFound
	}
	if order.Status != from {
		return nil, models.ErrInvalidTransition
	}
	order.Status = to
	copied := *order
	return &copied, nil
}

func (r *fakeOrderRepo) CancelForCustomer(_ context.Context, orderID, customerID string) (*models.Order, error) {
	order, ok := r.orders[orderID]
	if !ok || order.CustomerID != customerID {
		return nil, models.ErrNotFound
	}
	if order.Status.IsTerminal() {
		return nil, models.ErrInvalidState
	}
	order.Status = models.OrderCancelled
	copied := *order
	return &copied, nil
}

func (r *fakeOrderRepo) SetPaymentResult(_ context.Context, orderID string, status models.PaymentStatus) (*models.Order, error) {
	order, ok := r.orders[orderID]
	if !ok {
		return nil, models.ErrNotFound
	}
	if order.PaymentStatus != models.PaymentPending {
		return nil, models.ErrInvalidState
	}
	order.PaymentStatus = status
	copied := *order
	return &copied, nil
}

type fakeCatalog struct {
	menus map[string]*models.Menu
}

func (c *fakeCatalog) GetMenu(_ context.Context, menuID string) (*models.Menu, error) {
	menu, ok := c.menus[menuID]
	if !ok {
		return nil, models.ErrNotFound
	}
	copied := *menu
	return &copied, nil
}

type fakeAddressBook struct {
	owned map[string]string // addressID -> userID
}

func (a *fakeAddressBook) GetAddress(_ context.Context, addressID, userID string) (*models.Address, error) {
	if a.owned[addressID] != userID {
		return nil, models.ErrNotFound
	}
	return &models.Address{ID: addressID, UserID: userID}, nil
}

type statusNotifier struct {
	changed []models.OrderStatus
}

func (n *statusNotifier) OrderStatusChanged(_ context.Context, order *models.Order) {
	n.changed = append(n.changed, order.Status)
}

// --- fixtures ---

func futureDate(days int) string {
	return time.Now().UTC().AddDate(0, 0, days).Format("2006-01-02")
}

func placeRequest() models.PlaceOrderRequest {
	return models.PlaceOrderRequest{
		MenuID:        "menu-1",
		Quantity:      2,
		DeliveryDate:  futureDate(1),
		DeliverySlot:  "lunch",
		AddressID:     "addr-1",
		PaymentMethod: "upi",
	}
}

func newTestService(repo *fakeOrderRepo, catalog *fakeCatalog, notifier *statusNotifier) *Service {
	if catalog == nil {
		catalog = &fakeCatalog{menus: map[string]*models.Menu{
			"menu-1": {ID: "menu-1", VendorID: "vendor-1", Price: 8500, IsAvailable: true},
		}}
	}
	addrs := &fakeAddressBook{owned: map[string]string{"addr-1": "cust-1"}}
	if notifier == nil {
		return NewService(repo, catalog, addrs, nil)
	}
	return NewService(repo, catalog, addrs, notifier)
}

// --- tests ---

func TestPlaceOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("snapshots the catalog price at placement", func(t *testing.T) {
		repo := newFakeOrderRepo()
		catalog := &fakeCatalog{menus: map[string]*models.Menu{
			"menu-1": {ID: "menu-1", VendorID: "vendor-1", Price: 8500, IsAvailable: true},
		}}
		svc := newTestService(repo, catalog, nil)

		order, err := svc.Place(ctx, "cust-1", placeRequest())
		if err != nil {
			t.Fatalf("Place returned error: %v", err)
		}
		if order.UnitAmount != 8500 || order.TotalAmount != 17000 {
			t.Errorf("snapshot = %d x2 = %d, want 8500 x2 = 17000", order.UnitAmount, order.TotalAmount)
		}
		if order.Status != models.OrderPlaced || order.PaymentStatus != models.PaymentPending {
			t.Errorf("new order = %s/%s, want placed/pending", order.Status, order.PaymentStatus)
		}

		// A later menu price change must not reach the stored order.
		catalog.menus["menu-1"].Price = 9900
		reread, err := svc.GetOrderForCustomer(ctx, order.ID, "cust-1")
		if err != nil {
			t.Fatalf("GetOrderForCustomer returned error: %v", err)
		}
		if reread.TotalAmount != 17000 {
			t.Errorf("total after catalog change = %d, want the original 17000", reread.TotalAmount)
		}
	})

	t.Run("rejects an unavailable menu", func(t *testing.T) {
		catalog := &fakeCatalog{menus: map[string]*models.Menu{
			"menu-1": {ID: "menu-1", VendorID: "vendor-1", Price: 8500, IsAvailable: false},
		}}
		svc := newTestService(newFakeOrderRepo(), catalog, nil)

		_, err := svc.Place(ctx, "cust-1", placeRequest())
		if !errors.Is(err, models.ErrNotEligible) {
			t.Fatalf("err = %v, want ErrNotEligible", err)
		}
	})

	t.Run("rejects a delivery date in the past", func(t *testing.T) {
		svc := newTestService(newFakeOrderRepo(), nil, nil)
		req := placeRequest()
		req.DeliveryDate = "2020-01-01"

		_, err := svc.Place(ctx, "cust-1", req)
		if !errors.Is(err, models.ErrInvalidInput) {
			t.Fatalf("err = %v, want ErrInvalidInput", err)
		}
	})

	t.Run("rejects someone else's delivery address", func(t *testing.T) {
		svc := newTestService(newFakeOrderRepo(), nil, nil)
		_, err := svc.Place(ctx, "cust-2", placeRequest())
		if !errors.Is(err, models.ErrNotFound) {
			t.Fatalf("err = %v, want ErrNotFound", err)
		}
	})
}

func TestAdvanceStatus(t *testing.T) {
	ctx := context.Background()

	place := func(t *testing.T, svc *Service) *models.Order {
		t.Helper()
		order, err := svc.Place(ctx, "cust-1", placeRequest())
		if err != nil {
			t.Fatalf("Place returned error: %v", err)
		}
		return order
	}

	t.Run("walks the pipeline one step at a time", func(t *testing.T) {
		notifier := &statusNotifier{}
		svc := newTestService(newFakeOrderRepo(), nil, notifier)
		order := place(t, svc)

		steps := []models.OrderStatus{
			models.OrderConfirmed,
			models.OrderPreparing,
			models.OrderOutForDelivery,
			models.OrderDelivered,
		}
		for _, next := range steps {
			updated, err := svc.AdvanceStatus(ctx, order.ID, next, "vendor-1", models.RoleVendor)
			if err != nil {
				t.Fatalf("advance to %s returned error: %v", next, err)
			}
			if updated.Status != next {
				t.Fatalf("status = %s, want %s", updated.Status, next)
			}
		}
		// Customers get notified when the food leaves and when it lands.
		if len(notifier.changed) != 2 {
			t.Fatalf("notifier saw %d transitions, want 2", len(notifier.changed))
		}
		if notifier.changed[0] != models.OrderOutForDelivery || notifier.changed[1] != models.OrderDelivered {
			t.Errorf("notified on %v, want [out_for_delivery delivered]", notifier.changed)
		}
	})

	t.Run("rejects skipping a step", func(t *testing.T) {
		svc := newTestService(newFakeOrderRepo(), nil, nil)
		order := place(t, svc)

		_, err := svc.AdvanceStatus(ctx, order.ID, models.OrderPreparing, "vendor-1", models.RoleVendor)
		if !errors.Is(err, models.ErrInvalidTransition) {
			t.Fatalf("err = %v, want ErrInvalidTransition", err)
		}
	})

	t.Run("rejects moving backwards or sideways", func(t *testing.T) {
		svc := newTestService(newFakeOrderRepo(), nil, nil)
		order := place(t, svc)

		for _, target := range []models.OrderStatus{models.OrderPlaced, models.OrderCancelled, "unknown"} {
			if _, err := svc.AdvanceStatus(ctx, order.ID, target, "vendor-1", models.RoleVendor); !errors.Is(err, models.ErrInvalidTransition) {
				t.Errorf("advance to %q err = %v, want ErrInvalidTransition", target, err)
			}
		}
	})

	t.Run("rejects customers driving the pipeline", func(t *testing.T) {
		svc := newTestService(newFakeOrderRepo(), nil, nil)
		order := place(t, svc)

		_, err := svc.AdvanceStatus(ctx, order.ID, models.OrderConfirmed, "cust-1", models.RoleCustomer)
		if !errors.Is(err, models.ErrInvalidTransition) {
			t.Fatalf("err = %v, want ErrInvalidTransition", err)
		}
	})

	t.Run("hides the order from a different vendor", func(t *testing.T) {
		svc := newTestService(newFakeOrderRepo(), nil, nil)
		order := place(t, svc)

		_, err := svc.AdvanceStatus(ctx, order.ID, models.OrderConfirmed, "vendor-2", models.RoleVendor)
		if !errors.Is(err, models.ErrNotFound) {
			t.Fatalf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("rejects advancing a cancelled order", func(t *testing.T) {
		svc := newTestService(newFakeOrderRepo(), nil, nil)
		order := place(t, svc)
		if _, err := svc.Cancel(ctx, order.ID, "cust-1"); err != nil {
			t.Fatalf("Cancel returned error: %v", err)
		}

		_, err := svc.AdvanceStatus(ctx, order.ID, models.OrderConfirmed, "vendor-1", models.RoleVendor)
		if !errors.Is(err, models.ErrInvalidTransition) {
			t.Fatalf("err = %v, want ErrInvalidTransition", err)
		}
	})
}

func TestRecordPaymentResult(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newFakeOrderRepo(), nil, nil)

	order, err := svc.Place(ctx, "cust-1", placeRequest())
	if err != nil {
		t.Fatalf("Place returned error: %v", err)
	}

	settled, err := svc.RecordPaymentResult(ctx, order.ID, true)
	if err != nil {
		t.Fatalf("RecordPaymentResult returned error: %v", err)
	}
	if settled.PaymentStatus != models.PaymentPaid {
		t.Errorf("payment status = %q, want paid", settled.PaymentStatus)
	}

	// The pending-only guard makes a duplicate settlement a conflict, not a
	// silent overwrite.
	if _, err := svc.RecordPaymentResult(ctx, order.ID, false); !errors.Is(err, models.ErrInvalidState) {
		t.Fatalf("duplicate settlement err = %v, want ErrInvalidState", err)
	}
	reread, err := svc.GetOrderForCustomer(ctx, order.ID, "cust-1")
	if err != nil {
		t.Fatalf("GetOrderForCustomer returned error: %v", err)
	}
	if reread.PaymentStatus != models.PaymentPaid {
		t.Errorf("payment status after duplicate = %q, want the original paid", reread.PaymentStatus)
	}
}

func TestCancelOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("cancels from any state before delivered", func(t *testing.T) {
		svc := newTestService(newFakeOrderRepo(), nil, nil)
		order, _ := svc.Place(ctx, "cust-1", placeRequest())
		if _, err := svc.AdvanceStatus(ctx, order.ID, models.OrderConfirmed, "vendor-1", models.RoleVendor); err != nil {
			t.Fatalf("advance returned error: %v", err)
		}

		cancelled, err := svc.Cancel(ctx, order.ID, "cust-1")
		if err != nil {
			t.Fatalf("Cancel returned error: %v", err)
		}
		if cancelled.Status != models.OrderCancelled {
			t.Errorf("status = %q, want cancelled", cancelled.Status)
		}
	})

	t.Run("rejects cancelling a delivered order", func(t *testing.T) {
		repo := newFakeOrderRepo()
		svc := newTestService(repo, nil, nil)
		order, _ := svc.Place(ctx, "cust-1", placeRequest())
		repo.orders[order.ID].Status = models.OrderDelivered

		_, err := svc.Cancel(ctx, order.ID, "cust-1")
		if !errors.Is(err, models.ErrInvalidState) {
			t.Fatalf("err = %v, want ErrInvalidState", err)
		}
	})

	t.Run("hides the order from a non-owner", func(t *testing.T) {
		svc := newTestService(newFakeOrderRepo(), nil, nil)
		order, _ := svc.Place(ctx, "cust-1", placeRequest())

		_, err := svc.Cancel(ctx, order.ID, "cust-2")
		if !errors.Is(err, models.ErrNotFound) {
			t.Fatalf("err = %v, want ErrNotFound", err)
		}
	})
}

func TestGetOrderDetails(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newFakeOrderRepo(), nil, nil)
	order, _ := svc.Place(ctx, "cust-1", placeRequest())

	cases := []struct {
		name    string
		userID  string
		role    string
		wantErr error
	}{
		{"customer sees their order", "cust-1", models.RoleCustomer, nil},
		{"vendor sees the order", "vendor-1", models.RoleVendor, nil},
		{"admin sees the order", "someone", models.RoleAdmin, nil},
		{"stranger gets not found", "cust-2", models.RoleCustomer, models.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.GetOrderDetails(ctx, order.ID, tc.userID, tc.role)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("err = %v, want %v", err, tc.wantErr)
			}
		})
	}
}
