package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// SubscriptionStatus is the single enumerated state of a recurring plan.
type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionPaused    SubscriptionStatus = "paused"
	SubscriptionCompleted SubscriptionStatus = "completed"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
)

// IsTerminal reports whether no further subscription transition is permitted.
func (s SubscriptionStatus) IsTerminal() bool {
	return s == SubscriptionCompleted || s == SubscriptionCancelled
}

// PlanType distinguishes the billing cadence of a subscription.
type PlanType string

const (
	PlanWeekly  PlanType = "weekly"
	PlanMonthly PlanType = "monthly"
)

// WeekdaySet is a bitmask over the seven weekdays (bit 0 = Sunday, matching
// time.Weekday). It is the calendar rule deciding which dates produce a
// delivery, independent of any particular week.
type WeekdaySet uint8

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// WeekdaySetFromNames builds a WeekdaySet from lowercase weekday names.
func WeekdaySetFromNames(names []string) (WeekdaySet, error) {
	var set WeekdaySet
	for _, n := range names {
		day, ok := weekdayNames[strings.ToLower(n)]
		if !ok {
			return 0, fmt.Errorf("%w: unknown weekday %q", ErrInvalidInput, n)
		}
		set |= 1 << uint(day)
	}
	if set == 0 {
		return 0, fmt.Errorf("%w: delivery weekday set must not be empty", ErrInvalidInput)
	}
	return set, nil
}

// Contains reports whether the set includes the given weekday.
func (s WeekdaySet) Contains(d time.Weekday) bool {
	return s&(1<<uint(d)) != 0
}

// Names returns the lowercase weekday names in calendar order.
func (s WeekdaySet) Names() []string {
	names := make([]string, 0, 7)
	for d := time.Sunday; d <= time.Saturday; d++ {
		if s.Contains(d) {
			names = append(names, strings.ToLower(d.String()))
		}
	}
	return names
}

func (s WeekdaySet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Names())
}

func (s *WeekdaySet) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return err
	}
	set, err := WeekdaySetFromNames(names)
	if err != nil {
		return err
	}
	*s = set
	return nil
}

// MealPreference records the dietary constraints applied to every delivery
// of a subscription.
type MealPreference struct {
	VegetarianOnly bool     `json:"vegetarian_only"`
	SpiceLevel     string   `json:"spice_level"`
	Exclusions     []string `json:"exclusions,omitempty"`
}

// Subscription is a recurring delivery plan between one consumer and one
// vendor. PricePerMeal is in integer minor currency units.
type Subscription struct {
	ID             string             `json:"id"`
	CustomerID     string             `json:"customer_id"`
	VendorID       string             `json:"vendor_id"`
	PlanType       PlanType           `json:"plan_type"`
	DeliveryDays   WeekdaySet         `json:"delivery_days"`
	StartDate      time.Time          `json:"start_date"`
	EndDate        time.Time          `json:"end_date"`
	PricePerMeal   int64              `json:"price_per_meal"`
	TotalMeals     int                `json:"total_meals"`
	MealsDelivered int                `json:"meals_delivered"`
	Status         SubscriptionStatus `json:"status"`
	PaymentStatus  PaymentStatus      `json:"payment_status"`
	AutoRenewal    bool               `json:"auto_renewal"`
	Preference     MealPreference     `json:"meal_preference"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

// TotalAmount is the full contract price of the plan in minor units. The
// payment intent for a subscription purchase must match this exactly.
func (s *Subscription) TotalAmount() int64 {
	return s.PricePerMeal * int64(s.TotalMeals)
}

// CreateSubscriptionRequest is the body for purchasing a new plan.
type CreateSubscriptionRequest struct {
	VendorID     string         `json:"vendor_id" validate:"required"`
	PlanType     PlanType       `json:"plan_type" validate:"required,oneof=weekly monthly"`
	DeliveryDays []string       `json:"delivery_days" validate:"required,min=1,max=7,dive,oneof=sunday monday tuesday wednesday thursday friday saturday"`
	StartDate    string         `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate      string         `json:"end_date" validate:"required,datetime=2006-01-02"`
	PricePerMeal int64          `json:"price_per_meal" validate:"required,gt=0"`
	TotalMeals   int            `json:"total_meals" validate:"required,gt=0"`
	AutoRenewal  bool           `json:"auto_renewal"`
	Preference   MealPreference `json:"meal_preference"`
}

// RecordDeliveryResult is returned by a delivery-fulfillment event. Renewal
// is non-nil only when the delivery completed the plan and auto-renewal
// created a successor.
type RecordDeliveryResult struct {
	Subscription *Subscription `json:"subscription"`
	Renewal      *Subscription `json:"renewal,omitempty"`
}

// NextDeliveryResponse reports the next date the weekday rule produces, or
// none when the plan's end date passes first.
type NextDeliveryResponse struct {
	SubscriptionID string `json:"subscription_id"`
	NextDelivery   string `json:"next_delivery,omitempty"`
	None           bool   `json:"none"`
}
