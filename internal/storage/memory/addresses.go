package memory

import (
	"cmp"
	"context"
	"slices"

	"profile-service/internal/models"
	"profile-service/internal/storage"
)

type addressRepo struct{ repos }

func (r addressRepo) Create(_ context.Context, a *models.Address) error {
	return r.with(func(st *state) error {
		owner, ok := st.profiles[a.OwnerID]
		if !ok {
			return storage.ErrNotFound
		}
		if _, ok := st.cities[a.CityID]; !ok {
			return storage.ErrNotFound
		}
		st.nextAddress++
		a.ID = st.nextAddress
		a.OwnerUserID, a.OwnerKind = owner.UserID, owner.Kind
		st.addresses[a.ID] = *a
		return nil
	})
}

func (r addressRepo) ByID(_ context.Context, id int64) (*models.Address, error) {
	var out *models.Address
	err := r.with(func(st *state) error {
		a, ok := st.addresses[id]
		if !ok {
			return storage.ErrNotFound
		}
		out = st.withOwner(a)
		return nil
	})
	return out, err
}

func (r addressRepo) ByOwner(_ context.Context, profileID int64) ([]models.Address, error) {
	var out []models.Address
	err := r.with(func(st *state) error {
		for _, a := range st.addresses {
			if a.OwnerID == profileID {
				out = append(out, *st.withOwner(a))
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b models.Address) int { return cmp.Compare(a.ID, b.ID) })
	return out, err
}

func (r addressRepo) ListByCaller(_ context.Context, uid models.CallerID) ([]models.AddressView, error) {
	var rows []models.Address
	views := []models.AddressView{}
	err := r.with(func(st *state) error {
		for _, a := range st.addresses {
			if st.profiles[a.OwnerID].UserID == uid {
				rows = append(rows, a)
			}
		}
		slices.SortFunc(rows, func(a, b models.Address) int { return cmp.Compare(a.ID, b.ID) })
		for _, a := range rows {
			views = append(views, models.AddressView{
				ID:         a.ID,
				City:       st.cities[a.CityID].Name,
				Line:       a.Line,
				PostalCode: a.PostalCode,
			})
		}
		return nil
	})
	return views, err
}

func (r addressRepo) Update(_ context.Context, a *models.Address) error {
	return r.with(func(st *state) error {
		cur, ok := st.addresses[a.ID]
		if !ok {
			return storage.ErrNotFound
		}
		if _, ok := st.cities[a.CityID]; !ok {
			return storage.ErrNotFound
		}
		cur.CityID, cur.Line, cur.PostalCode = a.CityID, a.Line, a.PostalCode
		st.addresses[a.ID] = cur
		a.OwnerID = cur.OwnerID
		return nil
	})
}

func (r addressRepo) Delete(_ context.Context, id int64) error {
	return r.with(func(st *state) error {
		if _, ok := st.addresses[id]; !ok {
			return storage.ErrNotFound
		}
		delete(st.addresses, id)
		return nil
	})
}

func (st *state) withOwner(a models.Address) *models.Address {
	owner := st.profiles[a.OwnerID]
	a.OwnerUserID, a.OwnerKind = owner.UserID, owner.Kind
	return &a
}
