package vehicles

import (
	"context"
	"errors"
	"fmt"

	"profile-service/internal/invariants"
	"profile-service/internal/models"
	"profile-service/internal/storage"
)

var (
	// ErrNoDriver means the caller has no driver profile.
	ErrNoDriver = fmt.Errorf("vehicle: driver profile: %w", storage.ErrNotFound)
	// ErrNotFound means the driver has no vehicle yet.
	ErrNotFound = fmt.Errorf("vehicle: %w", storage.ErrNotFound)
)

// Catalog lists the allow-listed values. *allowlist.Store implements it.
type Catalog interface {
	Models() []string
	Colors() []string
}

// Service contains vehicle business logic.
type Service struct {
	store   storage.Store
	engine  *invariants.Engine
	catalog Catalog
}

func NewService(store storage.Store, engine *invariants.Engine, catalog Catalog) *Service {
	return &Service{store: store, engine: engine, catalog: catalog}
}

// Options returns the allowed models and colors.
func (s *Service) Options() Options {
	return Options{Models: s.catalog.Models(), Colors: s.catalog.Colors()}
}

// Get returns the vehicle of the caller's driver profile.
func (s *Service) Get(ctx context.Context, uid models.CallerID) (*models.Car, error) {
	const op = "vehicles.Get"

	owner, err := s.store.Profiles().ByCaller(ctx, uid, models.KindDriver)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, driverErr(err))
	}
	c, err := s.store.Cars().ByOwner(ctx, owner.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, carErr(err))
	}
	return c, nil
}

// Create registers the driver's vehicle. A driver has at most one.
func (s *Service) Create(ctx context.Context, uid models.CallerID, req CarRequest) (*models.Car, error) {
	const op = "vehicles.Create"

	c := &models.Car{PlateNumber: req.PlateNumber, Model: req.Model, Color: req.Color}
	if err := s.engine.ValidateCar(c); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	err := s.store.RunInTx(ctx, func(tx storage.Repositories) error {
		owner, err := tx.Profiles().ByCallerForUpdate(ctx, uid, models.KindDriver)
		if err != nil {
			return driverErr(err)
		}
		c.OwnerID = owner.ID
		return tx.Cars().Create(ctx, c)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}

// Update changes the driver's vehicle. Model and color are checked against
// the current allow-lists even when unchanged.
func (s *Service) Update(ctx context.Context, uid models.CallerID, req CarUpdate) (*models.Car, error) {
	const op = "vehicles.Update"

	var updated *models.Car
	err := s.store.RunInTx(ctx, func(tx storage.Repositories) error {
		owner, err := tx.Profiles().ByCallerForUpdate(ctx, uid, models.KindDriver)
		if err != nil {
			return driverErr(err)
		}
		c, err := tx.Cars().ByOwner(ctx, owner.ID)
		if err != nil {
			return carErr(err)
		}
		req.apply(c)
		if err := s.engine.ValidateCar(c); err != nil {
			return err
		}
		if err := tx.Cars().Update(ctx, c); err != nil {
			return err
		}
		updated = c
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return updated, nil
}

// Delete removes the driver's vehicle.
func (s *Service) Delete(ctx context.Context, uid models.CallerID) error {
	const op = "vehicles.Delete"

	err := s.store.RunInTx(ctx, func(tx storage.Repositories) error {
		owner, err := tx.Profiles().ByCallerForUpdate(ctx, uid, models.KindDriver)
		if err != nil {
			return driverErr(err)
		}
		c, err := tx.Cars().ByOwner(ctx, owner.ID)
		if err != nil {
			return carErr(err)
		}
		return tx.Cars().Delete(ctx, c.ID)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func driverErr(err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return ErrNoDriver
	}
	return err
}

func carErr(err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
