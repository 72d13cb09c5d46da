package models

import "time"

// Car is the vehicle of a driver profile (one per driver).
type Car struct {
	ID          int64     `json:"id"`
	OwnerID     int64     `json:"owner"`
	PlateNumber string    `json:"plate_number"`
	Model       string    `json:"model"`
	Color       string    `json:"color"`
	CreatedAt   time.Time `json:"created_at"`
	ModifiedAt  time.Time `json:"modified_at"`
}
