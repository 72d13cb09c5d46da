package memory

import (
	"context"

	"profile-service/internal/models"
	"profile-service/internal/storage"
)

type profileRepo struct{ repos }

func (r profileRepo) Create(_ context.Context, p *models.Profile) error {
	return r.with(func(st *state) error {
		if err := st.checkProfileUnique(p, 0); err != nil {
			return err
		}
		st.nextProfile++
		p.ID = st.nextProfile
		now := r.s.now()
		p.CreatedAt, p.ModifiedAt, p.ReviewRequestedAt = now, now, now
		st.profiles[p.ID] = *p
		return nil
	})
}

func (r profileRepo) ByID(_ context.Context, id int64) (*models.Profile, error) {
	var out *models.Profile
	err := r.with(func(st *state) error {
		p, ok := st.profiles[id]
		if !ok {
			return storage.ErrNotFound
		}
		out = &p
		return nil
	})
	return out, err
}

func (r profileRepo) ByCaller(_ context.Context, uid models.CallerID, kind models.Kind) (*models.Profile, error) {
	var out *models.Profile
	err := r.with(func(st *state) error {
		p, ok := st.profileOf(uid, kind)
		if !ok {
			return storage.ErrNotFound
		}
		out = &p
		return nil
	})
	return out, err
}

// ByCallerForUpdate needs no extra locking: transactions are serialised.
func (r profileRepo) ByCallerForUpdate(ctx context.Context, uid models.CallerID, kind models.Kind) (*models.Profile, error) {
	return r.ByCaller(ctx, uid, kind)
}

func (r profileRepo) Update(_ context.Context, p *models.Profile) error {
	return r.with(func(st *state) error {
		cur, ok := st.profiles[p.ID]
		if !ok {
			return storage.ErrNotFound
		}
		if err := st.checkProfileUnique(p, p.ID); err != nil {
			return err
		}
		p.UserID, p.Kind, p.CreatedAt = cur.UserID, cur.Kind, cur.CreatedAt
		p.ReviewRequestedAt = cur.ReviewRequestedAt
		p.ModifiedAt = r.s.now()
		st.profiles[p.ID] = *p
		return nil
	})
}

func (r profileRepo) SetConfirmed(_ context.Context, id int64, confirmed bool) error {
	return r.with(func(st *state) error {
		p, ok := st.profiles[id]
		if !ok {
			return storage.ErrNotFound
		}
		p.Confirmed = confirmed
		p.ModifiedAt = r.s.now()
		st.profiles[id] = p
		return nil
	})
}

func (r profileRepo) RequestReview(_ context.Context, id int64) error {
	return r.with(func(st *state) error {
		p, ok := st.profiles[id]
		if !ok {
			return storage.ErrNotFound
		}
		now := r.s.now()
		p.Confirmed = false
		p.ModifiedAt, p.ReviewRequestedAt = now, now
		st.profiles[id] = p
		return nil
	})
}

func (r profileRepo) Delete(_ context.Context, id int64) error {
	return r.with(func(st *state) error {
		if _, ok := st.profiles[id]; !ok {
			return storage.ErrNotFound
		}
		for _, a := range st.addresses {
			if a.OwnerID == id {
				return storage.ErrReferenced
			}
		}
		for _, c := range st.cars {
			if c.OwnerID == id {
				return storage.ErrReferenced
			}
		}
		delete(st.profiles, id)
		return nil
	})
}

func (st *state) profileOf(uid models.CallerID, kind models.Kind) (models.Profile, bool) {
	for _, p := range st.profiles {
		if p.UserID == uid && p.Kind == kind {
			return p, true
		}
	}
	return models.Profile{}, false
}

// checkProfileUnique ignores the row with id self.
func (st *state) checkProfileUnique(p *models.Profile, self int64) error {
	for id, other := range st.profiles {
		if id == self {
			continue
		}
		switch {
		case self == 0 && other.UserID == p.UserID && other.Kind == p.Kind:
			return storage.Conflict(storage.FieldUID)
		case other.PhoneNumber == p.PhoneNumber:
			return storage.Conflict(storage.FieldPhoneNumber)
		case p.NationalID != "" && other.NationalID == p.NationalID:
			return storage.Conflict(storage.FieldNationalID)
		}
	}
	return nil
}
