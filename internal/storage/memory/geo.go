package memory

import (
	"cmp"
	"context"
	"slices"

	"profile-service/internal/models"
	"profile-service/internal/storage"
)

type geoRepo struct{ repos }

func (r geoRepo) Provinces(_ context.Context) ([]models.Province, error) {
	out := []models.Province{}
	err := r.with(func(st *state) error {
		for _, p := range st.provinces {
			out = append(out, p)
		}
		return nil
	})
	slices.SortFunc(out, func(a, b models.Province) int { return cmp.Compare(a.ID, b.ID) })
	return out, err
}

func (r geoRepo) CitiesOf(_ context.Context, provinceID int64) ([]models.City, error) {
	out := []models.City{}
	err := r.with(func(st *state) error {
		if _, ok := st.provinces[provinceID]; !ok {
			return storage.ErrNotFound
		}
		for _, c := range st.cities {
			if c.ProvinceID == provinceID {
				out = append(out, c)
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b models.City) int { return cmp.Compare(a.ID, b.ID) })
	return out, err
}

func (r geoRepo) CityByID(_ context.Context, id int64) (*models.City, error) {
	var out *models.City
	err := r.with(func(st *state) error {
		c, ok := st.cities[id]
		if !ok {
			return storage.ErrNotFound
		}
		out = &c
		return nil
	})
	return out, err
}

func (r geoRepo) DeleteCity(_ context.Context, id int64) error {
	return r.with(func(st *state) error {
		if _, ok := st.cities[id]; !ok {
			return storage.ErrNotFound
		}
		for _, a := range st.addresses {
			if a.CityID == id {
				return storage.ErrReferenced
			}
		}
		delete(st.cities, id)
		return nil
	})
}

// Seed loads reference geography. Cities must name a seeded province.
func (s *Store) Seed(provinces []models.Province, cities []models.City) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range provinces {
		s.st.provinces[p.ID] = p
	}
	for _, c := range cities {
		if _, ok := s.st.provinces[c.ProvinceID]; !ok {
			return storage.ErrNotFound
		}
		s.st.cities[c.ID] = c
	}
	return nil
}

// DefaultGeo mirrors the geography seeded by the SQL migrations.
func DefaultGeo() ([]models.Province, []models.City) {
	provinces := []models.Province{
		{ID: 1, Name: "Tehran", Latitude: "35.6892", Longitude: "51.3890"},
		{ID: 2, Name: "Isfahan", Latitude: "32.6546", Longitude: "51.6680"},
	}
	cities := []models.City{
		{ID: 1, Name: "Tehran", Latitude: "35.6892", Longitude: "51.3890", ProvinceID: 1},
		{ID: 2, Name: "Shahriar", Latitude: "35.6597", Longitude: "51.0592", ProvinceID: 1},
		{ID: 3, Name: "Eslamshahr", Latitude: "35.5522", Longitude: "51.2350", ProvinceID: 1},
		{ID: 4, Name: "Varamin", Latitude: "35.3242", Longitude: "51.6457", ProvinceID: 1},
		{ID: 5, Name: "Isfahan", Latitude: "32.6546", Longitude: "51.6680", ProvinceID: 2},
		{ID: 6, Name: "Kashan", Latitude: "33.9850", Longitude: "51.4100", ProvinceID: 2},
	}
	return provinces, cities
}
