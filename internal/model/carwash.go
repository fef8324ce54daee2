package model

import "time"

// CarWash represents a registered car-wash venue as stored in the
// `car_washes` table. A car wash is created once by an administrative
// onboarding action and is immutable afterwards; booking flows only
// ever read it.
//
// Fields:
//  ID            – primary key identifier.
//  Name          – display name of the car wash.
//  Address       – street address shown to customers.
//  Phone         – contact phone number.
//  AvgPriceCents – average service price in cents.
//  OpensAt       – opening time of day ("08:00").
//  ClosesAt      – closing time of day ("18:00").
//  Description   – free-form description.
//  Services      – comma-separated list of offered services.
//  CreatedAt     – timestamp of creation.
//  UpdatedAt     – timestamp of last update.
type CarWash struct {
	ID            uint64    // car_washes.id
	Name          string    // car_washes.name
	Address       string    // car_washes.address
	Phone         string    // car_washes.phone
	AvgPriceCents uint32    // car_washes.avg_price_cents
	OpensAt       string    // car_washes.opens_at
	ClosesAt      string    // car_washes.closes_at
	Description   string    // car_washes.description
	Services      []string  // car_washes.services (CSV column)
	CreatedAt     time.Time // car_washes.created_at
	UpdatedAt     time.Time // car_washes.updated_at
}
