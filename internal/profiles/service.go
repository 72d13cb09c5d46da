package profiles

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
)

var (
	// ErrNotFound means the caller has no profile of the requested kind.
	ErrNotFound = fmt.Errorf("profile: %w", storage.ErrNotFound)
	// ErrStaleDecision rejects a confirmation decided before the latest
	// review request.
	ErrStaleDecision = errors.New("profile: confirmation decision predates the latest review request")
)

// AvatarChecker reports whether an uploaded avatar object exists.
// *objectstore.Store implements it.
type AvatarChecker interface {
	Exists(ctx context.Context, key string) (bool, error)
}

type Option func(*Service)

func WithAvatarChecker(c AvatarChecker) Option { return func(s *Service) { s.avatars = c } }

func WithPublisher(p events.Publisher) Option { return func(s *Service) { s.pub = p } }

func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// Service contains profile business logic.
type Service struct {
	store   storage.Store
	engine  *invariants.Engine
	avatars AvatarChecker
	pub     events.Publisher
	log     logger.ILogger
	now     func() time.Time
}

func NewService(store storage.Store, engine *invariants.Engine, log logger.ILogger, opts ...Option) *Service {
	s := &Service{store: store, engine: engine, log: log, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the caller's profile of kind.
func (s *Service) Get(ctx context.Context, uid models.CallerID, kind models.Kind) (*models.Profile, error) {
	const op = "profiles.Get"

	p, err := s.store.Profiles().ByCaller(ctx, uid, kind)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, notFound(err))
	}
	return p, nil
}

// Create stores the caller's first profile of kind. The confirmation flag
// is decided by kind, never by the request.
func (s *Service) Create(ctx context.Context, uid models.CallerID, kind models.Kind, req CreateRequest) (*models.Profile, error) {
	const op = "profiles.Create"

	p := req.profile(uid, kind)
	s.engine.PrepareForCreate(p)
	if err := s.engine.ValidateForSave(p); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.checkAvatar(ctx, p.Avatar); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	err := s.store.RunInTx(ctx, func(tx storage.Repositories) error {
		return tx.Profiles().Create(ctx, p)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if p.Kind == models.KindDriver {
		s.requireConfirmation(ctx, p, events.ReasonProfileCreated)
	}
	return p, nil
}

// Update applies a partial update to the caller's profile of kind. The
// result must still be saveable.
func (s *Service) Update(ctx context.Context, uid models.CallerID, kind models.Kind, req UpdateRequest) (*models.Profile, error) {
	const op = "profiles.Update"

	var updated *models.Profile
	err := s.store.RunInTx(ctx, func(tx storage.Repositories) error {
		p, err := tx.Profiles().ByCallerForUpdate(ctx, uid, kind)
		if err != nil {
			return notFound(err)
		}
		prevAvatar := p.Avatar
		req.apply(p)
		if err := s.engine.ValidateForSave(p); err != nil {
			return err
		}
		if p.Avatar != prevAvatar {
			if err := s.checkAvatar(ctx, p.Avatar); err != nil {
				return err
			}
		}
		if err := tx.Profiles().Update(ctx, p); err != nil {
			return err
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return updated, nil
}

// Delete removes the caller's profile of kind. A profile that still owns an
// address or a vehicle is kept and storage.ErrReferenced returned.
func (s *Service) Delete(ctx context.Context, uid models.CallerID, kind models.Kind) error {
	const op = "profiles.Delete"

	err := s.store.RunInTx(ctx, func(tx storage.Repositories) error {
		p, err := tx.Profiles().ByCallerForUpdate(ctx, uid, kind)
		if err != nil {
			return notFound(err)
		}
		return tx.Profiles().Delete(ctx, p.ID)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// SetConfirmation records a review decision for the caller's driver profile.
// A decision made before the profile last requested review is rejected with
// ErrStaleDecision. Decision times carry whole seconds, so the request time
// is compared at the same precision.
func (s *Service) SetConfirmation(ctx context.Context, uid models.CallerID, confirmed bool, decidedAt time.Time) (*models.Profile, error) {
	const op = "profiles.SetConfirmation"

	var p *models.Profile
	err := s.store.RunInTx(ctx, func(tx storage.Repositories) error {
		var err error
		p, err = tx.Profiles().ByCallerForUpdate(ctx, uid, models.KindDriver)
		if err != nil {
			return notFound(err)
		}
		if decidedAt.Before(p.ReviewRequestedAt.Truncate(time.Second)) {
			return ErrStaleDecision
		}
		if p.Confirmed == confirmed {
			return nil
		}
		p.Confirmed = confirmed
		return tx.Profiles().SetConfirmed(ctx, p.ID, confirmed)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

func (s *Service) checkAvatar(ctx context.Context, key string) error {
	if key == "" || s.avatars == nil {
		return nil
	}
	ok, err := s.avatars.Exists(ctx, key)
	if err != nil {
		return err
	}
	if !ok {
		return invariants.InvalidField("avatar")
	}
	return nil
}

func (s *Service) requireConfirmation(ctx context.Context, p *models.Profile, reason string) {
	if s.pub == nil {
		return
	}
	ev := events.ConfirmationRequired(p, reason, s.now())
	if err := events.PublishConfirmationRequired(ctx, s.pub, ev); err != nil {
		s.log.Error("publish confirmation_required failed",
			logger.Int64("uid", int64(p.UserID)), logger.String("event_id", ev.EventID), logger.Error(err))
	}
}

func notFound(err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
