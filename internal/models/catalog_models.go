package models

import "time"

// Menu is the read-only catalog view this service consumes at placement
// time. Price is in integer minor currency units; the order ledger copies
// it into a snapshot so later catalog changes never touch placed orders.
type Menu struct {
	ID           string    `json:"id"`
	VendorID     string    `json:"vendor_id"`
	Name         string    `json:"name"`
	Price        int64     `json:"price"`
	IsVegetarian bool      `json:"is_vegetarian"`
	SpiceLevel   string    `json:"spice_level"`
	IsAvailable  bool      `json:"is_available"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Vendor is the read-only identity of a home kitchen.
type Vendor struct {
	ID          string    `json:"id"`
	KitchenName string    `json:"kitchen_name"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}
