package addresses

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"profile-service/internal/events"
	"profile-service/internal/invariants"
	"profile-service/internal/models"
	"profile-service/internal/storage"
	"profile-service/internal/storage/memory"
	"profile-service/pkg/kafka"
	"profile-service/pkg/logger"
	rredis "profile-service/pkg/redis"
)

type published struct {
	topic, key string
	value      any
}

type fakePublisher struct {
	mu   sync.Mutex
	msgs []published
	err  error
}

func (f *fakePublisher) Publish(_ context.Context, topic, key string, value any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, published{topic, key, value})
	return f.err
}

type fakeCache struct {
	lists       map[models.CallerID][]models.AddressView
	gens        map[models.CallerID]int64
	invalidated []models.CallerID
	reads       int
	stale       int
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		lists: map[models.CallerID][]models.AddressView{},
		gens:  map[models.CallerID]int64{},
	}
}

func (c *fakeCache) CachedAddresses(_ context.Context, uid models.CallerID) ([]models.AddressView, int64, error) {
	c.reads++
	list, ok := c.lists[uid]
	if !ok {
		return nil, c.gens[uid], rredis.ErrMiss
	}
	return list, c.gens[uid], nil
}

func (c *fakeCache) CacheAddresses(_ context.Context, uid models.CallerID, gen int64, list []models.AddressView) error {
	if c.gens[uid] != gen {
		c.stale++
		return rredis.ErrStale
	}
	c.lists[uid] = list
	return nil
}

func (c *fakeCache) InvalidateAddresses(_ context.Context, uid models.CallerID) error {
	c.gens[uid]++
	delete(c.lists, uid)
	c.invalidated = append(c.invalidated, uid)
	return nil
}

var fixedNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newStore(t *testing.T) *memory.Store {
	t.Helper()
	st := memory.New(memory.WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, st.Seed(memory.DefaultGeo()))
	return st
}

func seedProfile(t *testing.T, st storage.Store, uid models.CallerID, kind models.Kind, confirmed bool) *models.Profile {
	t.Helper()
	p := &models.Profile{
		UserID:      uid,
		Kind:        kind,
		FirstName:   "Reza",
		LastName:    "Karimi",
		PhoneNumber: fmt.Sprintf("+98912%d%06d", kind, uid),
		Confirmed:   confirmed,
	}
	if kind == models.KindDriver {
		p.NationalID = fmt.Sprintf("%010d", uid)
		p.Avatar = "avatars/drivers/me_0a1b2c3d.jpg"
	}
	require.NoError(t, st.Profiles().Create(context.Background(), p))
	return p
}

func strp(s string) *string { return &s }
func intp(i int64) *int64   { return &i }

func TestAddAndList(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	seedProfile(t, st, 7, models.KindUser, true)
	svc := NewService(st, logger.NewNop())

	a, err := svc.Add(ctx, 7, AddRequest{CityID: 2, Line: "Valiasr St. 12", PostalCode: "1234567890"})
	require.NoError(t, err)
	assert.NotZero(t, a.ID)

	list, err := svc.List(ctx, 7)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Shahriar", list[0].City)
	assert.Equal(t, "Valiasr St. 12", list[0].Line)
}

func TestAddWithoutProfile(t *testing.T) {
	svc := NewService(newStore(t), logger.NewNop())

	_, err := svc.Add(context.Background(), 7, AddRequest{CityID: 1, Line: "x"})
	require.ErrorIs(t, err, ErrNoProfile)
}

func TestAddUnknownCity(t *testing.T) {
	st := newStore(t)
	seedProfile(t, st, 7, models.KindUser, true)
	svc := NewService(st, logger.NewNop())

	_, err := svc.Add(context.Background(), 7, AddRequest{CityID: 99, Line: "x"})
	var verr *invariants.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "city", verr.Field)
	assert.Equal(t, invariants.ReasonInvalidField, verr.Reason)
}

func TestMutationsOfForeignAddressAreNotFound(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	seedProfile(t, st, 7, models.KindUser, true)
	seedProfile(t, st, 8, models.KindUser, true)
	svc := NewService(st, logger.NewNop())

	a, err := svc.Add(ctx, 7, AddRequest{CityID: 1, Line: "mine"})
	require.NoError(t, err)

	_, err = svc.Edit(ctx, 8, a.ID, EditRequest{Line: strp("stolen")})
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, svc.Delete(ctx, 8, a.ID), ErrNotFound)

	// same answer as an id that does not exist at all
	_, err = svc.Edit(ctx, 8, 4242, EditRequest{Line: strp("x")})
	require.ErrorIs(t, err, ErrNotFound)

	got, err := st.Addresses().ByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "mine", got.Line)
}

func TestEditUserAddressKeepsConfirmation(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	p := seedProfile(t, st, 7, models.KindUser, true)
	pub := &fakePublisher{}
	svc := NewService(st, logger.NewNop(), WithPublisher(pub))

	a, err := svc.Add(ctx, 7, AddRequest{CityID: 1, Line: "old"})
	require.NoError(t, err)

	res, err := svc.Edit(ctx, 7, a.ID, EditRequest{Line: strp("new"), CityID: intp(5)})
	require.NoError(t, err)
	assert.False(t, res.Downgraded)
	assert.Equal(t, models.KindUser, res.OwnerKind)

	got, err := st.Profiles().ByID(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, got.Confirmed)
	assert.Empty(t, pub.msgs)

	saved, err := st.Addresses().ByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "new", saved.Line)
	assert.Equal(t, int64(5), saved.CityID)
	assert.Equal(t, p.ID, saved.OwnerID)
}

func TestEditDriverAddressDowngrades(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	p := seedProfile(t, st, 9, models.KindDriver, true)
	pub := &fakePublisher{}
	downgrades := 0
	svc := NewService(st, logger.NewNop(),
		WithPublisher(pub),
		WithDowngradeObserver(func() { downgrades++ }),
		WithClock(func() time.Time { return fixedNow }))

	_, err := svc.CreateDriverAddress(ctx, 9, AddRequest{CityID: 1, Line: "garage"})
	require.NoError(t, err)

	res, err := svc.EditDriverAddress(ctx, 9, EditRequest{Line: strp("new garage")})
	require.NoError(t, err)
	assert.True(t, res.Downgraded)

	got, err := st.Profiles().ByID(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, got.Confirmed)
	assert.Equal(t, 1, downgrades)

	require.Len(t, pub.msgs, 1)
	assert.Equal(t, kafka.TopicConfirmationRequired, pub.msgs[0].topic)
	assert.Equal(t, "9", pub.msgs[0].key)
	ev := pub.msgs[0].value.(events.ConfirmationRequiredEvent)
	assert.Equal(t, events.ReasonAddressEdited, ev.Reason)
	assert.Equal(t, p.ID, ev.ProfileID)
	assert.Equal(t, "2026-03-01T09:00:00Z", ev.OccurredAt)

	// already unconfirmed: still re-review, no second downgrade
	res, err = svc.EditDriverAddress(ctx, 9, EditRequest{Line: strp("again")})
	require.NoError(t, err)
	assert.False(t, res.Downgraded)
	assert.Equal(t, 1, downgrades)
	assert.Len(t, pub.msgs, 2)
}

func TestEditByIDOfDriverAddressDowngrades(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	p := seedProfile(t, st, 9, models.KindDriver, true)
	svc := NewService(st, logger.NewNop())

	a, err := svc.CreateDriverAddress(ctx, 9, AddRequest{CityID: 1, Line: "garage"})
	require.NoError(t, err)

	res, err := svc.Edit(ctx, 9, a.ID, EditRequest{PostalCode: strp("1111111111")})
	require.NoError(t, err)
	assert.True(t, res.Downgraded)

	got, err := st.Profiles().ByID(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, got.Confirmed)
}

func TestPublishFailureDoesNotFailEdit(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	seedProfile(t, st, 9, models.KindDriver, true)
	svc := NewService(st, logger.NewNop(), WithPublisher(&fakePublisher{err: errors.New("broker down")}))

	_, err := svc.CreateDriverAddress(ctx, 9, AddRequest{CityID: 1, Line: "garage"})
	require.NoError(t, err)
	_, err = svc.EditDriverAddress(ctx, 9, EditRequest{Line: strp("x")})
	require.NoError(t, err)
}

func TestDriverSingleAddress(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	seedProfile(t, st, 9, models.KindDriver, false)
	svc := NewService(st, logger.NewNop())

	_, err := svc.GetDriverAddress(ctx, 9)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = svc.EditDriverAddress(ctx, 9, EditRequest{Line: strp("x")})
	require.ErrorIs(t, err, ErrNotFound)

	a, err := svc.CreateDriverAddress(ctx, 9, AddRequest{CityID: 3, Line: "garage"})
	require.NoError(t, err)

	_, err = svc.CreateDriverAddress(ctx, 9, AddRequest{CityID: 4, Line: "second"})
	require.ErrorIs(t, err, ErrAddressExists)
	require.ErrorIs(t, err, storage.ErrConflict)

	got, err := svc.GetDriverAddress(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)

	_, err = svc.GetDriverAddress(ctx, 10)
	require.ErrorIs(t, err, ErrNoProfile)
}

// failingConfirm makes every RequestReview inside a transaction fail.
type failingConfirm struct{ *memory.Store }

func (f failingConfirm) RunInTx(ctx context.Context, fn func(tx storage.Repositories) error) error {
	return f.Store.RunInTx(ctx, func(tx storage.Repositories) error {
		return fn(failingTx{tx})
	})
}

type failingTx struct{ storage.Repositories }

func (f failingTx) Profiles() storage.ProfileRepository {
	return failingProfiles{f.Repositories.Profiles()}
}

type failingProfiles struct{ storage.ProfileRepository }

func (failingProfiles) RequestReview(context.Context, int64) error {
	return errors.New("disk full")
}

func TestEditIsAtomic(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	p := seedProfile(t, st, 9, models.KindDriver, true)
	a := &models.Address{OwnerID: p.ID, CityID: 1, Line: "garage"}
	require.NoError(t, st.Addresses().Create(ctx, a))

	pub := &fakePublisher{}
	svc := NewService(failingConfirm{st}, logger.NewNop(), WithPublisher(pub))

	_, err := svc.EditDriverAddress(ctx, 9, EditRequest{Line: strp("moved")})
	require.Error(t, err)

	got, err := st.Addresses().ByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "garage", got.Line)

	owner, err := st.Profiles().ByID(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, owner.Confirmed)
	assert.Empty(t, pub.msgs)
}

func TestCacheReadThroughAndInvalidation(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	seedProfile(t, st, 7, models.KindUser, true)
	cache := newFakeCache()
	svc := NewService(st, logger.NewNop(), WithCache(cache))

	list, err := svc.List(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, list)
	require.Contains(t, cache.lists, models.CallerID(7))

	a, err := svc.Add(ctx, 7, AddRequest{CityID: 1, Line: "home"})
	require.NoError(t, err)
	assert.NotContains(t, cache.lists, models.CallerID(7))

	list, err = svc.List(ctx, 7)
	require.NoError(t, err)
	require.Len(t, list, 1)

	// served from cache
	list, err = svc.List(ctx, 7)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 3, cache.reads)

	_, err = svc.Edit(ctx, 7, a.ID, EditRequest{Line: strp("flat")})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, 7, a.ID))
	assert.Equal(t, []models.CallerID{7, 7, 7}, cache.invalidated)

	// failed mutation leaves the cache alone
	_, err = svc.Edit(ctx, 7, a.ID, EditRequest{Line: strp("gone")})
	require.ErrorIs(t, err, ErrNotFound)
	assert.Len(t, cache.invalidated, 3)
}

// slowLister runs afterList between reading the list and returning it.
type slowLister struct {
	*memory.Store
	afterList func()
}

func (s slowLister) Addresses() storage.AddressRepository {
	return slowAddresses{s.Store.Addresses(), s.afterList}
}

type slowAddresses struct {
	storage.AddressRepository
	afterList func()
}

func (a slowAddresses) ListByCaller(ctx context.Context, uid models.CallerID) ([]models.AddressView, error) {
	list, err := a.AddressRepository.ListByCaller(ctx, uid)
	if a.afterList != nil {
		a.afterList()
	}
	return list, err
}

func TestListDoesNotCacheListInvalidatedWhileReading(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	seedProfile(t, st, 7, models.KindUser, true)
	cache := newFakeCache()
	writer := NewService(st, logger.NewNop(), WithCache(cache))

	var added *models.Address
	reader := NewService(slowLister{st, func() {
		var err error
		added, err = writer.Add(ctx, 7, AddRequest{CityID: 1, Line: "home"})
		require.NoError(t, err)
	}}, logger.NewNop(), WithCache(cache))

	list, err := reader.List(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.NotContains(t, cache.lists, models.CallerID(7))
	assert.Equal(t, 1, cache.stale)

	list, err = writer.List(ctx, 7)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, added.ID, list[0].ID)
	assert.Equal(t, list, cache.lists[7])
}

func TestListAcrossProfiles(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	seedProfile(t, st, 7, models.KindUser, true)
	seedProfile(t, st, 7, models.KindDriver, true)
	svc := NewService(st, logger.NewNop())

	_, err := svc.Add(ctx, 7, AddRequest{CityID: 1, Line: "home"})
	require.NoError(t, err)
	_, err = svc.CreateDriverAddress(ctx, 7, AddRequest{CityID: 6, Line: "garage"})
	require.NoError(t, err)

	list, err := svc.List(ctx, 7)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}
