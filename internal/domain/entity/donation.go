package entity

import "time"

// DonationStatus is the lifecycle state of a donation listing.
type DonationStatus string

const (
	StatusAvailable DonationStatus = "AVAILABLE"
	StatusBooked    DonationStatus = "BOOKED"
	StatusExpired   DonationStatus = "EXPIRED"
)

// Donation is a listed food donation. CreatedByID is set once at creation and
// is the only identity allowed to mutate or delete the record. ClaimedByID is
// non-empty exactly when Status is BOOKED.
type Donation struct {
	ID          string
	Name        string
	Location    string
	Latitude    float64
	Longitude   float64
	Category    string
	IsHalal     bool
	Portion     int
	ExpiredTime *time.Time
	Description string
	PhotoURL    string
	Status      DonationStatus
	CreatedByID string
	ClaimedByID string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsOwner reports whether the given user created this donation.
func (d *Donation) IsOwner(userID string) bool {
	return d.CreatedByID == userID
}
