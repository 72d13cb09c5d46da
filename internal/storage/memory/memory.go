// Package memory is an in-process storage.Store. A transaction works on a
// copy of the whole state under one lock and the copy replaces the state only
// when the transaction succeeds.
package memory

import (
	"context"
	"maps"
	"sync"
	"time"

	"profile-service/internal/models"
	"profile-service/internal/storage"
)

type Option func(*Store)

// WithClock replaces time.Now for created/modified timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

type Store struct {
	mu  sync.Mutex
	st  *state
	now func() time.Time
}

var _ storage.Store = (*Store)(nil)

func New(opts ...Option) *Store {
	s := &Store{st: newState(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) RunInTx(ctx context.Context, fn func(tx storage.Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.st.clone()
	if err := fn(repos{s: s, st: snap}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.st = snap
	return nil
}

func (s *Store) Profiles() storage.ProfileRepository  { return profileRepo{repos{s: s}} }
func (s *Store) Addresses() storage.AddressRepository { return addressRepo{repos{s: s}} }
func (s *Store) Cars() storage.CarRepository          { return carRepo{repos{s: s}} }
func (s *Store) Geo() storage.GeoRepository           { return geoRepo{repos{s: s}} }

func (s *Store) Close() {}

// repos runs against the transaction snapshot when st is set and against the
// live state under the store lock otherwise.
type repos struct {
	s  *Store
	st *state
}

func (r repos) Profiles() storage.ProfileRepository  { return profileRepo{r} }
func (r repos) Addresses() storage.AddressRepository { return addressRepo{r} }
func (r repos) Cars() storage.CarRepository          { return carRepo{r} }
func (r repos) Geo() storage.GeoRepository           { return geoRepo{r} }

func (r repos) with(fn func(st *state) error) error {
	if r.st != nil {
		return fn(r.st)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return fn(r.s.st)
}

type state struct {
	profiles  map[int64]models.Profile
	addresses map[int64]models.Address
	cars      map[int64]models.Car
	provinces map[int64]models.Province
	cities    map[int64]models.City

	nextProfile int64
	nextAddress int64
	nextCar     int64
}

func newState() *state {
	return &state{
		profiles:  map[int64]models.Profile{},
		addresses: map[int64]models.Address{},
		cars:      map[int64]models.Car{},
		provinces: map[int64]models.Province{},
		cities:    map[int64]models.City{},
	}
}

// clone is shallow per row; rows are plain values.
func (st *state) clone() *state {
	c := *st
	c.profiles = maps.Clone(st.profiles)
	c.addresses = maps.Clone(st.addresses)
	c.cars = maps.Clone(st.cars)
	c.provinces = maps.Clone(st.provinces)
	c.cities = maps.Clone(st.cities)
	return &c
}
