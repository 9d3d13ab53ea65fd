// Package inventory tracks the vehicle stock and matches it against what
// leads are shopping for.
package inventory

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("inventory: not found")

type VehicleStatus string

const (
	StatusInStock VehicleStatus = "in_stock"
	StatusOnHold  VehicleStatus = "on_hold"
	StatusSold    VehicleStatus = "sold"
)

var validVehicleStatuses = map[VehicleStatus]bool{
	StatusInStock: true,
	StatusOnHold:  true,
	StatusSold:    true,
}

func IsValidVehicleStatus(s VehicleStatus) bool { return validVehicleStatuses[s] }

type Vehicle struct {
	ID        uuid.UUID
	Make      string
	Model     string
	Year      int
	Price     float64
	Mileage   *int
	VIN       *string
	Status    VehicleStatus
	CreatedAt time.Time
}

// Interest records what a lead is shopping for. All fields besides the lead
// are optional; an empty interest matches nothing.
type Interest struct {
	ID        uuid.UUID
	LeadID    uuid.UUID
	VehicleID *uuid.UUID
	Make      *string
	Model     *string
	MinYear   *int
	MaxPrice  *float64
	CreatedAt time.Time
}
