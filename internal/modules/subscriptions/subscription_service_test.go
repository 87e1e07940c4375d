package subscriptions

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"home-kitchen-market/internal/models"
)

// --- fakes ---

type fakeSubscriptionRepo struct {
	subs map[string]*models.Subscription
	seq  int
}

func newFakeSubscriptionRepo() *fakeSubscriptionRepo {
	return &fakeSubscriptionRepo{subs: make(map[string]*models.Subscription)}
}

func (r *fakeSubscriptionRepo) newID() string {
	r.seq++
	return fmt.Sprintf("sub-%d", r.seq)
}

func (r *fakeSubscriptionRepo) Create(_ context.Context, sub *models.Subscription) (*models.Subscription, error) {
	stored := *sub
	stored.ID = r.newID()
	stored.Status = models.SubscriptionActive
	stored.PaymentStatus = models.PaymentPending
	stored.MealsDelivered = 0
	r.subs[stored.ID] = &stored
	copied := stored
	return &copied, nil
}

func (r *fakeSubscriptionRepo) FindByID(_ context.Context, subscriptionID string) (*models.Subscription, error) {
	sub, ok := r.subs[subscriptionID]
	if !ok {
		return nil, models.ErrNotFound
	}
	copied := *sub
	return &copied, nil
}

func (r *fakeSubscriptionRepo) ListByCustomer(_ context.Context, customerID string, page, limit int) ([]*models.Subscription, int, error) {
	var out []*models.Subscription
	for _, s := range r.subs {
		if s.CustomerID == customerID {
			copied := *s
			out = append(out, &copied)
		}
	}
	return out, len(out), nil
}

func (r *fakeSubscriptionRepo) UpdateStatus(_ context.Context, subscriptionID string, from, to models.SubscriptionStatus) (*models.Subscription, error) {
	sub, ok := r.subs[subscriptionID]
	if !ok {
		return nil, models.ErrNotFound
	}
	if sub.Status != from {
		return nil, models.ErrInvalidState
	}
	sub.Status = to
	copied := *sub
	return &copied, nil
}

func (r *fakeSubscriptionRepo) CancelFromAny(_ context.Context, subscriptionID, customerID string) (*models.Subscription, error) {
	sub, ok := r.subs[subscriptionID]
	if !ok || sub.CustomerID != customerID {
		return nil, models.ErrNotFound
	}
	if sub.Status != models.SubscriptionActive && sub.Status != models.SubscriptionPaused {
		return nil, models.ErrInvalidState
	}
	sub.Status = models.SubscriptionCancelled
	copied := *sub
	return &copied, nil
}

func (r *fakeSubscriptionRepo) RecordDelivery(_ context.Context, subscriptionID string) (*models.Subscription, *models.Subscription, error) {
	sub, ok := r.subs[subscriptionID]
	if !ok {
		return nil, nil, models.ErrNotFound
	}
	if sub.Status != models.SubscriptionActive || sub.MealsDelivered >= sub.TotalMeals {
		return nil, nil, models.ErrInvalidState
	}
	sub.MealsDelivered++
	if sub.MealsDelivered >= sub.TotalMeals {
		sub.Status = models.SubscriptionCompleted
	}

	var renewal *models.Subscription
	if sub.Status == models.SubscriptionCompleted && sub.AutoRenewal {
		duration := sub.EndDate.Sub(sub.StartDate)
		start := sub.EndDate.AddDate(0, 0, 1)
		renewal = &models.Subscription{
			ID:            r.newID(),
			CustomerID:    sub.CustomerID,
			VendorID:      sub.VendorID,
			PlanType:      sub.PlanType,
			DeliveryDays:  sub.DeliveryDays,
			StartDate:     start,
			EndDate:       start.Add(duration),
			PricePerMeal:  sub.PricePerMeal,
			TotalMeals:    sub.TotalMeals,
			Status:        models.SubscriptionActive,
			PaymentStatus: models.PaymentPending,
			AutoRenewal:   sub.AutoRenewal,
			Preference:    sub.Preference,
		}
		stored := *renewal
		r.subs[stored.ID] = &stored
	}
	copied := *sub
	return &copied, renewal, nil
}

func (r *fakeSubscriptionRepo) SetPaymentResult(_ context.Context, subscriptionID string, status models.PaymentStatus) (*models.Subscription, error) {
	sub, ok := r.subs[subscriptionID]
	if !ok {
		return nil, models.ErrNotFound
	}
	if sub.PaymentStatus != models.PaymentPending {
		return nil, models.ErrInvalidState
	}
	sub.PaymentStatus = status
	copied := *sub
	return &copied, nil
}

type fakeVendorCatalog struct {
	vendors map[string]*models.Vendor
}

func (c *fakeVendorCatalog) GetVendor(_ context.Context, vendorID string) (*models.Vendor, error) {
	vendor, ok := c.vendors[vendorID]
	if !ok {
		return nil, models.ErrNotFound
	}
	copied := *vendor
	return &copied, nil
}

type completionNotifier struct {
	completed int
	renewed   int
}

func (n *completionNotifier) SubscriptionCompleted(_ context.Context, sub, renewal *models.Subscription) {
	n.completed++
	if renewal != nil {
		n.renewed++
	}
}

// --- fixtures ---

func createRequest() models.CreateSubscriptionRequest {
	return models.CreateSubscriptionRequest{
		VendorID:     "vendor-1",
		PlanType:     models.PlanWeekly,
		DeliveryDays: []string{"monday", "wednesday", "friday"},
		StartDate:    "2026-09-01",
		EndDate:      "2026-09-30",
		PricePerMeal: 5000,
		TotalMeals:   3,
	}
}

func newTestService(repo *fakeSubscriptionRepo, notifier *completionNotifier) *Service {
	catalog := &fakeVendorCatalog{vendors: map[string]*models.Vendor{
		"vendor-1": {ID: "vendor-1", KitchenName: "Amma's Kitchen", IsActive: true},
		"vendor-2": {ID: "vendor-2", KitchenName: "Closed Kitchen", IsActive: false},
	}}
	if notifier == nil {
		return NewService(repo, catalog, nil)
	}
	return NewService(repo, catalog, notifier)
}

// --- tests ---

func TestCreateSubscription(t *testing.T) {
	ctx := context.Background()

	t.Run("purchases a plan in active state with payment pending", func(t *testing.T) {
		svc := newTestService(newFakeSubscriptionRepo(), nil)
		sub, err := svc.Create(ctx, "cust-1", createRequest())
		if err != nil {
			t.Fatalf("Create returned error: %v", err)
		}
		if sub.Status != models.SubscriptionActive || sub.PaymentStatus != models.PaymentPending {
			t.Errorf("new plan = %s/%s, want active/pending", sub.Status, sub.PaymentStatus)
		}
		if sub.TotalAmount() != 15000 {
			t.Errorf("contract total = %d, want 5000 x 3 = 15000", sub.TotalAmount())
		}
		if !sub.DeliveryDays.Contains(time.Wednesday) || sub.DeliveryDays.Contains(time.Sunday) {
			t.Errorf("delivery days = %v, want mon/wed/fri", sub.DeliveryDays.Names())
		}
	})

	t.Run("rejects an inactive vendor", func(t *testing.T) {
		svc := newTestService(newFakeSubscriptionRepo(), nil)
		req := createRequest()
		req.VendorID = "vendor-2"
		if _, err := svc.Create(ctx, "cust-1", req); !errors.Is(err, models.ErrNotEligible) {
			t.Fatalf("err = %v, want ErrNotEligible", err)
		}
	})

	t.Run("rejects an end date before the start date", func(t *testing.T) {
		svc := newTestService(newFakeSubscriptionRepo(), nil)
		req := createRequest()
		req.EndDate = "2026-08-01"
		if _, err := svc.Create(ctx, "cust-1", req); !errors.Is(err, models.ErrInvalidInput) {
			t.Fatalf("err = %v, want ErrInvalidInput", err)
		}
	})

	t.Run("rejects an unknown weekday", func(t *testing.T) {
		svc := newTestService(newFakeSubscriptionRepo(), nil)
		req := createRequest()
		req.DeliveryDays = []string{"caturday"}
		if _, err := svc.Create(ctx, "cust-1", req); !errors.Is(err, models.ErrInvalidInput) {
			t.Fatalf("err = %v, want ErrInvalidInput", err)
		}
	})
}

func TestRecordDelivery(t *testing.T) {
	ctx := context.Background()

	purchase := func(t *testing.T, svc *Service, autoRenew bool) *models.Subscription {
		t.Helper()
		req := createRequest()
		req.AutoRenewal = autoRenew
		sub, err := svc.Create(ctx, "cust-1", req)
		if err != nil {
			t.Fatalf("Create returned error: %v", err)
		}
		return sub
	}

	t.Run("increments the delivered counter up to the cap", func(t *testing.T) {
		repo := newFakeSubscriptionRepo()
		svc := newTestService(repo, nil)
		sub := purchase(t, svc, false)

		for want := 1; want <= sub.TotalMeals; want++ {
			res, err := svc.RecordDelivery(ctx, sub.ID, "vendor-1", models.RoleVendor)
			if err != nil {
				t.Fatalf("delivery %d returned error: %v", want, err)
			}
			if res.Subscription.MealsDelivered != want {
				t.Fatalf("meals_delivered = %d, want %d", res.Subscription.MealsDelivered, want)
			}
		}

		// The counter never passes total_meals; the plan is completed now.
		_, err := svc.RecordDelivery(ctx, sub.ID, "vendor-1", models.RoleVendor)
		if !errors.Is(err, models.ErrInvalidState) {
			t.Fatalf("delivery past the cap err = %v, want ErrInvalidState", err)
		}
		final, _ := repo.FindByID(ctx, sub.ID)
		if final.MealsDelivered != sub.TotalMeals {
			t.Errorf("meals_delivered = %d, want exactly %d", final.MealsDelivered, sub.TotalMeals)
		}
		if final.Status != models.SubscriptionCompleted {
			t.Errorf("status = %q, want completed", final.Status)
		}
	})

	t.Run("the final delivery creates a renewal when auto-renewal is on", func(t *testing.T) {
		repo := newFakeSubscriptionRepo()
		notifier := &completionNotifier{}
		svc := newTestService(repo, notifier)
		sub := purchase(t, svc, true)

		var last *models.RecordDeliveryResult
		for i := 0; i < sub.TotalMeals; i++ {
			res, err := svc.RecordDelivery(ctx, sub.ID, "vendor-1", models.RoleVendor)
			if err != nil {
				t.Fatalf("delivery %d returned error: %v", i+1, err)
			}
			last = res
		}

		if last.Renewal == nil {
			t.Fatal("expected the completing delivery to return a renewal")
		}
		renewal := last.Renewal
		if renewal.ID == sub.ID {
			t.Error("the renewal must be a new plan, not the completed one")
		}
		if renewal.MealsDelivered != 0 || renewal.Status != models.SubscriptionActive || renewal.PaymentStatus != models.PaymentPending {
			t.Errorf("renewal = %d delivered, %s/%s; want 0 delivered, active/pending",
				renewal.MealsDelivered, renewal.Status, renewal.PaymentStatus)
		}
		if wantStart := sub.EndDate.AddDate(0, 0, 1); !renewal.StartDate.Equal(wantStart) {
			t.Errorf("renewal starts %s, want the day after the old end (%s)",
				renewal.StartDate.Format("2006-01-02"), wantStart.Format("2006-01-02"))
		}
		if renewal.PricePerMeal != sub.PricePerMeal || renewal.TotalMeals != sub.TotalMeals {
			t.Error("the renewal must carry the same terms")
		}

		// The completed plan stays completed; only the renewal moves on.
		old, _ := repo.FindByID(ctx, sub.ID)
		if old.Status != models.SubscriptionCompleted {
			t.Errorf("old plan status = %q, want completed", old.Status)
		}
		if notifier.completed != 1 || notifier.renewed != 1 {
			t.Errorf("notifier saw completed=%d renewed=%d, want 1/1", notifier.completed, notifier.renewed)
		}
	})

	t.Run("completion without auto-renewal creates nothing", func(t *testing.T) {
		repo := newFakeSubscriptionRepo()
		svc := newTestService(repo, nil)
		sub := purchase(t, svc, false)

		var last *models.RecordDeliveryResult
		for i := 0; i < sub.TotalMeals; i++ {
			res, err := svc.RecordDelivery(ctx, sub.ID, "vendor-1", models.RoleVendor)
			if err != nil {
				t.Fatalf("delivery returned error: %v", err)
			}
			last = res
		}
		if last.Renewal != nil {
			t.Error("no renewal may be created without auto-renewal")
		}
		if len(repo.subs) != 1 {
			t.Errorf("repo holds %d plans, want just the completed one", len(repo.subs))
		}
	})

	t.Run("paused plans do not accept deliveries", func(t *testing.T) {
		svc := newTestService(newFakeSubscriptionRepo(), nil)
		sub := purchase(t, svc, false)
		if _, err := svc.Pause(ctx, sub.ID, "cust-1"); err != nil {
			t.Fatalf("Pause returned error: %v", err)
		}

		_, err := svc.RecordDelivery(ctx, sub.ID, "vendor-1", models.RoleVendor)
		if !errors.Is(err, models.ErrInvalidState) {
			t.Fatalf("err = %v, want ErrInvalidState", err)
		}
	})

	t.Run("only the plan's vendor may record", func(t *testing.T) {
		svc := newTestService(newFakeSubscriptionRepo(), nil)
		sub := purchase(t, svc, false)

		if _, err := svc.RecordDelivery(ctx, sub.ID, "vendor-9", models.RoleVendor); !errors.Is(err, models.ErrNotFound) {
			t.Fatalf("other vendor err = %v, want ErrNotFound", err)
		}
		if _, err := svc.RecordDelivery(ctx, sub.ID, "cust-1", models.RoleCustomer); !errors.Is(err, models.ErrInvalidState) {
			t.Fatalf("customer err = %v, want ErrInvalidState", err)
		}
	})
}

func TestPauseResumeCancel(t *testing.T) {
	ctx := context.Background()

	purchase := func(t *testing.T, svc *Service) *models.Subscription {
		t.Helper()
		sub, err := svc.Create(ctx, "cust-1", createRequest())
		if err != nil {
			t.Fatalf("Create returned error: %v", err)
		}
		return sub
	}

	t.Run("pause and resume round-trip", func(t *testing.T) {
		svc := newTestService(newFakeSubscriptionRepo(), nil)
		sub := purchase(t, svc)

		paused, err := svc.Pause(ctx, sub.ID, "cust-1")
		if err != nil {
			t.Fatalf("Pause returned error: %v", err)
		}
		if paused.Status != models.SubscriptionPaused {
			t.Errorf("status = %q, want paused", paused.Status)
		}

		// A paused plan reports no next delivery.
		next, err := svc.NextDelivery(ctx, sub.ID, "cust-1", models.RoleCustomer, time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC))
		if err != nil {
			t.Fatalf("NextDelivery returned error: %v", err)
		}
		if !next.None {
			t.Error("a paused plan must report no next delivery")
		}

		resumed, err := svc.Resume(ctx, sub.ID, "cust-1")
		if err != nil {
			t.Fatalf("Resume returned error: %v", err)
		}
		if resumed.Status != models.SubscriptionActive {
			t.Errorf("status = %q, want active", resumed.Status)
		}
	})

	t.Run("pausing twice conflicts", func(t *testing.T) {
		svc := newTestService(newFakeSubscriptionRepo(), nil)
		sub := purchase(t, svc)
		if _, err := svc.Pause(ctx, sub.ID, "cust-1"); err != nil {
			t.Fatalf("Pause returned error: %v", err)
		}
		if _, err := svc.Pause(ctx, sub.ID, "cust-1"); !errors.Is(err, models.ErrInvalidState) {
			t.Fatalf("second pause err = %v, want ErrInvalidState", err)
		}
	})

	t.Run("resuming an active plan conflicts", func(t *testing.T) {
		svc := newTestService(newFakeSubscriptionRepo(), nil)
		sub := purchase(t, svc)
		if _, err := svc.Resume(ctx, sub.ID, "cust-1"); !errors.Is(err, models.ErrInvalidState) {
			t.Fatalf("err = %v, want ErrInvalidState", err)
		}
	})

	t.Run("cancel works from active and paused but not completed", func(t *testing.T) {
		repo := newFakeSubscriptionRepo()
		svc := newTestService(repo, nil)

		active := purchase(t, svc)
		if cancelled, err := svc.Cancel(ctx, active.ID, "cust-1"); err != nil || cancelled.Status != models.SubscriptionCancelled {
			t.Fatalf("cancel from active = %v, %v", cancelled, err)
		}

		paused := purchase(t, svc)
		if _, err := svc.Pause(ctx, paused.ID, "cust-1"); err != nil {
			t.Fatalf("Pause returned error: %v", err)
		}
		if _, err := svc.Cancel(ctx, paused.ID, "cust-1"); err != nil {
			t.Fatalf("cancel from paused returned error: %v", err)
		}

		completed := purchase(t, svc)
		repo.subs[completed.ID].Status = models.SubscriptionCompleted
		if _, err := svc.Cancel(ctx, completed.ID, "cust-1"); !errors.Is(err, models.ErrInvalidState) {
			t.Fatalf("cancel from completed err = %v, want ErrInvalidState", err)
		}
	})

	t.Run("hides the plan from a non-owner", func(t *testing.T) {
		svc := newTestService(newFakeSubscriptionRepo(), nil)
		sub := purchase(t, svc)
		if _, err := svc.Pause(ctx, sub.ID, "cust-2"); !errors.Is(err, models.ErrNotFound) {
			t.Fatalf("err = %v, want ErrNotFound", err)
		}
		if _, err := svc.Cancel(ctx, sub.ID, "cust-2"); !errors.Is(err, models.ErrNotFound) {
			t.Fatalf("err = %v, want ErrNotFound", err)
		}
	})
}

func TestNextDeliveryEndpointShape(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newFakeSubscriptionRepo(), nil)
	sub, err := svc.Create(ctx, "cust-1", createRequest())
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	resp, err := svc.NextDelivery(ctx, sub.ID, "cust-1", models.RoleCustomer, time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("NextDelivery returned error: %v", err)
	}
	if resp.None || resp.NextDelivery != "2026-09-02" {
		t.Errorf("next = %q none=%v, want 2026-09-02", resp.NextDelivery, resp.None)
	}
}
