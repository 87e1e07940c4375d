package notifications

import (
	"context"
	"fmt"
	"log"
	"strings"

	"home-kitchen-market/internal/models"
	emailSvc "home-kitchen-market/pkg/email"
)

// UserDirectoryInterface resolves a user id to a deliverable identity.
type UserDirectoryInterface interface {
	FindByID(ctx context.Context, userID string) (*models.User, error)
}

// VendorDirectoryInterface resolves a vendor id to its kitchen name.
type VendorDirectoryInterface interface {
	GetVendor(ctx context.Context, vendorID string) (*models.Vendor, error)
}

// Notifier sends lifecycle emails. Every method is fire-and-forget: a
// notification failure is logged and never fails the state transition that
// triggered it. A nil *Notifier is a valid no-op, so the API runs fine
// without email configured.
type Notifier struct {
	emailer emailSvc.ServiceInterface
	tm      *emailSvc.TemplateManager
	users   UserDirectoryInterface
	vendors VendorDirectoryInterface
}

// New creates a notifier over the given sender and directories.
func New(emailer emailSvc.ServiceInterface, tm *emailSvc.TemplateManager, users UserDirectoryInterface, vendors VendorDirectoryInterface) *Notifier {
	return &Notifier{emailer: emailer, tm: tm, users: users, vendors: vendors}
}

// PaymentReceived emails the customer a receipt for a settled intent.
func (n *Notifier) PaymentReceived(ctx context.Context, intent *models.PaymentIntent) {
	if n == nil {
		return
	}
	user, err := n.users.FindByID(ctx, intent.CustomerID)
	if err != nil {
		log.Printf("notifications: resolving customer %s: %v", intent.CustomerID, err)
		return
	}

	amount := fmt.Sprintf("%s %d.%02d", intent.Currency, intent.Amount/100, intent.Amount%100)
	html, err := n.tm.GeneratePaymentReceivedHTML(emailSvc.TemplateData{Name: user.Nickname, Amount: amount})
	if err != nil {
		log.Printf("notifications: rendering payment receipt: %v", err)
		return
	}
	plain := fmt.Sprintf("Thank you %s, we received your payment of %s.", user.Nickname, amount)

	if err := n.emailer.SendEmail(ctx, user.Email, "Payment received", plain, html); err != nil {
		log.Printf("notifications: sending payment receipt to %s: %v", user.Email, err)
	}
}

// OrderStatusChanged emails the customer when their order goes out for
// delivery or is delivered.
func (n *Notifier) OrderStatusChanged(ctx context.Context, order *models.Order) {
	if n == nil {
		return
	}
	user, err := n.users.FindByID(ctx, order.CustomerID)
	if err != nil {
		log.Printf("notifications: resolving customer %s: %v", order.CustomerID, err)
		return
	}
	kitchen := n.kitchenName(ctx, order.VendorID)

	status := strings.ReplaceAll(string(order.Status), "_", " ")
	html, err := n.tm.GenerateOrderStatusHTML(emailSvc.TemplateData{Name: user.Nickname, Status: status, Kitchen: kitchen})
	if err != nil {
		log.Printf("notifications: rendering order status: %v", err)
		return
	}
	plain := fmt.Sprintf("Hello %s, your order from %s is now %s.", user.Nickname, kitchen, status)

	if err := n.emailer.SendEmail(ctx, user.Email, "Your order is "+status, plain, html); err != nil {
		log.Printf("notifications: sending order status to %s: %v", user.Email, err)
	}
}

// SubscriptionCompleted emails the customer when a plan finishes, noting
// whether it auto-renewed.
func (n *Notifier) SubscriptionCompleted(ctx context.Context, sub *models.Subscription, renewal *models.Subscription) {
	if n == nil {
		return
	}
	user, err := n.users.FindByID(ctx, sub.CustomerID)
	if err != nil {
		log.Printf("notifications: resolving customer %s: %v", sub.CustomerID, err)
		return
	}
	kitchen := n.kitchenName(ctx, sub.VendorID)

	html, err := n.tm.GeneratePlanCompletedHTML(emailSvc.TemplateData{Name: user.Nickname, Kitchen: kitchen, Renewed: renewal != nil})
	if err != nil {
		log.Printf("notifications: rendering plan completion: %v", err)
		return
	}
	plain := fmt.Sprintf("Hello %s, your meal plan with %s is complete.", user.Nickname, kitchen)
	if renewal != nil {
		plain += " It has been renewed automatically."
	}

	if err := n.emailer.SendEmail(ctx, user.Email, "Your meal plan is complete", plain, html); err != nil {
		log.Printf("notifications: sending plan completion to %s: %v", user.Email, err)
	}
}

func (n *Notifier) kitchenName(ctx context.Context, vendorID string) string {
	vendor, err := n.vendors.GetVendor(ctx, vendorID)
	if err != nil {
		log.Printf("notifications: resolving vendor %s: %v", vendorID, err)
		return "your home kitchen"
	}
	return vendor.KitchenName
}
