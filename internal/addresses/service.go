package addresses

import (
	"context"
	"errors"
	"fmt"
	"time"

	"profile-service/internal/events"
	"profile-service/internal/invariants"
	"profile-service/internal/models"
	"profile-service/internal/storage"
	"profile-service/pkg/logger"
	rredis "profile-service/pkg/redis"
)

var (
	// ErrNoProfile means the caller has no profile of the kind the path needs.
	ErrNoProfile = fmt.Errorf("address: owner profile: %w", storage.ErrNotFound)
	// ErrAddressExists rejects a second address on the driver path.
	ErrAddressExists = fmt.Errorf("address: %w", storage.Conflict(storage.FieldOwner))
)

// Cache is the address-list cache. *redis.Client implements it.
// CacheAddresses must refuse with rredis.ErrStale when the list was
// invalidated after CachedAddresses reported gen.
type Cache interface {
	CachedAddresses(ctx context.Context, uid models.CallerID) (list []models.AddressView, gen int64, err error)
	CacheAddresses(ctx context.Context, uid models.CallerID, gen int64, list []models.AddressView) error
	InvalidateAddresses(ctx context.Context, uid models.CallerID) error
}

type Option func(*Service)

func WithCache(c Cache) Option { return func(s *Service) { s.cache = c } }

func WithPublisher(p events.Publisher) Option { return func(s *Service) { s.pub = p } }

// WithDowngradeObserver is called once per driver unconfirmed by an edit.
func WithDowngradeObserver(fn func()) Option { return func(s *Service) { s.onDowngrade = fn } }

func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// Service contains address business logic.
type Service struct {
	store       storage.Store
	guard       Guard
	cache       Cache
	pub         events.Publisher
	onDowngrade func()
	log         logger.ILogger
	now         func() time.Time
}

func NewService(store storage.Store, log logger.ILogger, opts ...Option) *Service {
	s := &Service{store: store, log: log, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns every address of every profile of uid.
func (s *Service) List(ctx context.Context, uid models.CallerID) ([]models.AddressView, error) {
	const op = "addresses.List"

	fill := s.cache != nil
	var gen int64
	if s.cache != nil {
		list, g, err := s.cache.CachedAddresses(ctx, uid)
		switch {
		case err == nil:
			return list, nil
		case errors.Is(err, rredis.ErrMiss):
			gen = g
		default:
			// no generation to guard a fill with
			fill = false
			s.log.Warning("address cache read failed", logger.Int64("uid", int64(uid)), logger.Error(err))
		}
	}

	list, err := s.store.Addresses().ListByCaller(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if fill {
		err := s.cache.CacheAddresses(ctx, uid, gen, list)
		if err != nil && !errors.Is(err, rredis.ErrStale) {
			s.log.Warning("address cache write failed", logger.Int64("uid", int64(uid)), logger.Error(err))
		}
	}
	return list, nil
}

// Add attaches a new address to the caller's User profile.
func (s *Service) Add(ctx context.Context, uid models.CallerID, req AddRequest) (*models.Address, error) {
	const op = "addresses.Add"

	var created *models.Address
	err := s.store.RunInTx(ctx, func(tx storage.Repositories) error {
		owner, err := tx.Profiles().ByCaller(ctx, uid, models.KindUser)
		if err != nil {
			return ownerErr(err)
		}
		created, err = s.create(ctx, tx, owner, req)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.invalidate(ctx, uid)
	return created, nil
}

// Edit updates one of the caller's addresses. A driver owner loses
// confirmation in the same transaction.
func (s *Service) Edit(ctx context.Context, uid models.CallerID, id int64, req EditRequest) (*EditResult, error) {
	const op = "addresses.Edit"

	var res *EditResult
	err := s.store.RunInTx(ctx, func(tx storage.Repositories) error {
		a, err := tx.Addresses().ByID(ctx, id)
		if err != nil {
			return notFound(err)
		}
		if err := s.guard.AuthorizeMutation(uid, a); err != nil {
			return err
		}
		owner, err := tx.Profiles().ByID(ctx, a.OwnerID)
		if err != nil {
			return err
		}
		res, err = s.edit(ctx, tx, owner, a, req)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.afterEdit(ctx, uid, res)
	return res, nil
}

// Delete removes one of the caller's addresses.
func (s *Service) Delete(ctx context.Context, uid models.CallerID, id int64) error {
	const op = "addresses.Delete"

	err := s.store.RunInTx(ctx, func(tx storage.Repositories) error {
		a, err := tx.Addresses().ByID(ctx, id)
		if err != nil {
			return notFound(err)
		}
		if err := s.guard.AuthorizeMutation(uid, a); err != nil {
			return err
		}
		return tx.Addresses().Delete(ctx, a.ID)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.invalidate(ctx, uid)
	return nil
}

// GetDriverAddress returns the single address of the caller's driver profile.
func (s *Service) GetDriverAddress(ctx context.Context, uid models.CallerID) (*models.Address, error) {
	const op = "addresses.GetDriverAddress"

	owner, err := s.store.Profiles().ByCaller(ctx, uid, models.KindDriver)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ownerErr(err))
	}
	list, err := s.store.Addresses().ByOwner(ctx, owner.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return &list[0], nil
}

// CreateDriverAddress gives the caller's driver profile its address.
// A driver has at most one.
func (s *Service) CreateDriverAddress(ctx context.Context, uid models.CallerID, req AddRequest) (*models.Address, error) {
	const op = "addresses.CreateDriverAddress"

	var created *models.Address
	err := s.store.RunInTx(ctx, func(tx storage.Repositories) error {
		owner, err := tx.Profiles().ByCallerForUpdate(ctx, uid, models.KindDriver)
		if err != nil {
			return ownerErr(err)
		}
		existing, err := tx.Addresses().ByOwner(ctx, owner.ID)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return ErrAddressExists
		}
		created, err = s.create(ctx, tx, owner, req)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.invalidate(ctx, uid)
	return created, nil
}

// EditDriverAddress edits the driver's single address and unconfirms the
// driver in the same transaction.
func (s *Service) EditDriverAddress(ctx context.Context, uid models.CallerID, req EditRequest) (*EditResult, error) {
	const op = "addresses.EditDriverAddress"

	var res *EditResult
	err := s.store.RunInTx(ctx, func(tx storage.Repositories) error {
		owner, err := tx.Profiles().ByCallerForUpdate(ctx, uid, models.KindDriver)
		if err != nil {
			return ownerErr(err)
		}
		list, err := tx.Addresses().ByOwner(ctx, owner.ID)
		if err != nil {
			return err
		}
		if len(list) == 0 {
			return ErrNotFound
		}
		a := &list[0]
		if err := s.guard.AuthorizeMutation(uid, a); err != nil {
			return err
		}
		res, err = s.edit(ctx, tx, owner, a, req)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.afterEdit(ctx, uid, res)
	return res, nil
}

func (s *Service) create(ctx context.Context, tx storage.Repositories, owner *models.Profile, req AddRequest) (*models.Address, error) {
	if err := checkCity(ctx, tx, req.CityID); err != nil {
		return nil, err
	}
	a := &models.Address{
		OwnerID:    owner.ID,
		CityID:     req.CityID,
		Line:       req.Line,
		PostalCode: req.PostalCode,
	}
	if err := tx.Addresses().Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) edit(ctx context.Context, tx storage.Repositories, owner *models.Profile, a *models.Address, req EditRequest) (*EditResult, error) {
	req.apply(a)
	if err := checkCity(ctx, tx, a.CityID); err != nil {
		return nil, err
	}
	if err := tx.Addresses().Update(ctx, a); err != nil {
		return nil, err
	}

	res := &EditResult{Address: a, OwnerKind: owner.Kind}
	res.Downgraded = s.guard.OnAddressEdited(owner)
	if owner.Kind == models.KindDriver {
		// every edit restarts the review, so older decisions no longer apply
		if err := tx.Profiles().RequestReview(ctx, owner.ID); err != nil {
			return nil, err
		}
		res.owner = owner
	}
	return res, nil
}

// afterEdit runs once the edit is committed.
func (s *Service) afterEdit(ctx context.Context, uid models.CallerID, res *EditResult) {
	s.invalidate(ctx, uid)
	if res.Downgraded && s.onDowngrade != nil {
		s.onDowngrade()
	}
	if res.owner == nil || s.pub == nil {
		return
	}
	ev := events.ConfirmationRequired(res.owner, events.ReasonAddressEdited, s.now())
	if err := events.PublishConfirmationRequired(ctx, s.pub, ev); err != nil {
		s.log.Error("publish confirmation_required failed",
			logger.Int64("uid", int64(uid)), logger.String("event_id", ev.EventID), logger.Error(err))
	}
}

func (s *Service) invalidate(ctx context.Context, uid models.CallerID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateAddresses(ctx, uid); err != nil {
		s.log.Warning("address cache invalidation failed", logger.Int64("uid", int64(uid)), logger.Error(err))
	}
}

func checkCity(ctx context.Context, tx storage.Repositories, cityID int64) error {
	if _, err := tx.Geo().CityByID(ctx, cityID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return invariants.InvalidField("city")
		}
		return err
	}
	return nil
}

func ownerErr(err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return ErrNoProfile
	}
	return err
}

func notFound(err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
