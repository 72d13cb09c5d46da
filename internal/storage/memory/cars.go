package memory

import (
	"context"

	"profile-service/internal/models"
	"profile-service/internal/storage"
)

type carRepo struct{ repos }

func (r carRepo) Create(_ context.Context, c *models.Car) error {
	return r.with(func(st *state) error {
		if _, ok := st.profiles[c.OwnerID]; !ok {
			return storage.ErrNotFound
		}
		if err := st.checkCarUnique(c, 0); err != nil {
			return err
		}
		st.nextCar++
		c.ID = st.nextCar
		now := r.s.now()
		c.CreatedAt, c.ModifiedAt = now, now
		st.cars[c.ID] = *c
		return nil
	})
}

func (r carRepo) ByOwner(_ context.Context, profileID int64) (*models.Car, error) {
	var out *models.Car
	err := r.with(func(st *state) error {
		for _, c := range st.cars {
			if c.OwnerID == profileID {
				out = &c
				return nil
			}
		}
		return storage.ErrNotFound
	})
	return out, err
}

func (r carRepo) Update(_ context.Context, c *models.Car) error {
	return r.with(func(st *state) error {
		cur, ok := st.cars[c.ID]
		if !ok {
			return storage.ErrNotFound
		}
		c.OwnerID, c.CreatedAt = cur.OwnerID, cur.CreatedAt
		if err := st.checkCarUnique(c, c.ID); err != nil {
			return err
		}
		c.ModifiedAt = r.s.now()
		st.cars[c.ID] = *c
		return nil
	})
}

func (r carRepo) Delete(_ context.Context, id int64) error {
	return r.with(func(st *state) error {
		if _, ok := st.cars[id]; !ok {
			return storage.ErrNotFound
		}
		delete(st.cars, id)
		return nil
	})
}

func (st *state) checkCarUnique(c *models.Car, self int64) error {
	for id, other := range st.cars {
		if id == self {
			continue
		}
		if other.PlateNumber == c.PlateNumber {
			return storage.Conflict(storage.FieldPlateNumber)
		}
		if other.OwnerID == c.OwnerID {
			return storage.Conflict(storage.FieldOwner)
		}
	}
	return nil
}
