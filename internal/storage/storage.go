// Package storage declares the persistence contracts of the service.
// Implementations live in the postgres and memory subpackages.
package storage

import (
	"context"

	"profile-service/internal/models"
)

// Repositories hands out the per-entity repositories. Outside a transaction
// every call is its own unit of work.
type Repositories interface {
	Profiles() ProfileRepository
	Addresses() AddressRepository
	Cars() CarRepository
	Geo() GeoRepository
}

// Store is the root persistence handle.
type Store interface {
	Repositories

	// RunInTx runs fn in one atomic unit of work. Nothing fn writes is visible
	// to other callers before fn returns nil; a non-nil error discards it all.
	RunInTx(ctx context.Context, fn func(tx Repositories) error) error
	Close()
}

type ProfileRepository interface {
	// Create inserts p and fills its ID and timestamps.
	Create(ctx context.Context, p *models.Profile) error
	ByID(ctx context.Context, id int64) (*models.Profile, error)
	ByCaller(ctx context.Context, uid models.CallerID, kind models.Kind) (*models.Profile, error)
	// ByCallerForUpdate is ByCaller that also locks the row until the
	// surrounding transaction ends.
	ByCallerForUpdate(ctx context.Context, uid models.CallerID, kind models.Kind) (*models.Profile, error)
	// Update writes every mutable field of p and refreshes ModifiedAt.
	Update(ctx context.Context, p *models.Profile) error
	SetConfirmed(ctx context.Context, id int64, confirmed bool) error
	// RequestReview unconfirms the profile and stamps ReviewRequestedAt.
	RequestReview(ctx context.Context, id int64) error
	// Delete fails with ErrReferenced while an address or car belongs to the profile.
	Delete(ctx context.Context, id int64) error
}

type AddressRepository interface {
	// Create inserts a and fills its ID. Owner and city must exist.
	Create(ctx context.Context, a *models.Address) error
	// ByID returns the address with its owner's identity and kind filled in.
	ByID(ctx context.Context, id int64) (*models.Address, error)
	ByOwner(ctx context.Context, profileID int64) ([]models.Address, error)
	ListByCaller(ctx context.Context, uid models.CallerID) ([]models.AddressView, error)
	// Update writes city, line and postal code. The owner never changes.
	Update(ctx context.Context, a *models.Address) error
	Delete(ctx context.Context, id int64) error
}

type CarRepository interface {
	Create(ctx context.Context, c *models.Car) error
	ByOwner(ctx context.Context, profileID int64) (*models.Car, error)
	Update(ctx context.Context, c *models.Car) error
	Delete(ctx context.Context, id int64) error
}

type GeoRepository interface {
	Provinces(ctx context.Context) ([]models.Province, error)
	CitiesOf(ctx context.Context, provinceID int64) ([]models.City, error)
	CityByID(ctx context.Context, id int64) (*models.City, error)
	// DeleteCity fails with ErrReferenced while an address points at the city.
	DeleteCity(ctx context.Context, id int64) error
}
