package postgres

import (
	"context"
	"fmt"

	"profile-service/internal/models"
	"profile-service/internal/storage"
)

type geoRepo struct{ q querier }

func (r geoRepo) Provinces(ctx context.Context) ([]models.Province, error) {
	const op = "storage.postgres.geo.Provinces"

	rows, err := r.q.Query(ctx, `SELECT id, name, latitude, longitude FROM provinces ORDER BY id`)
	if err != nil {
		return nil, mapErr(op, err, false)
	}
	defer rows.Close()

	out := []models.Province{}
	for rows.Next() {
		var p models.Province
		if err := rows.Scan(&p.ID, &p.Name, &p.Latitude, &p.Longitude); err != nil {
			return nil, mapErr(op, err, false)
		}
		out = append(out, p)
	}
	return out, mapErr(op, rows.Err(), false)
}

func (r geoRepo) CitiesOf(ctx context.Context, provinceID int64) ([]models.City, error) {
	const op = "storage.postgres.geo.CitiesOf"

	var exists bool
	if err := r.q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM provinces WHERE id = $1)`, provinceID).Scan(&exists); err != nil {
		return nil, mapErr(op, err, false)
	}
	if !exists {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	rows, err := r.q.Query(ctx, `
		SELECT id, name, latitude, longitude, province_id
		FROM cities WHERE province_id = $1 ORDER BY id`, provinceID)
	if err != nil {
		return nil, mapErr(op, err, false)
	}
	defer rows.Close()

	out := []models.City{}
	for rows.Next() {
		var c models.City
		if err := rows.Scan(&c.ID, &c.Name, &c.Latitude, &c.Longitude, &c.ProvinceID); err != nil {
			return nil, mapErr(op, err, false)
		}
		out = append(out, c)
	}
	return out, mapErr(op, rows.Err(), false)
}

func (r geoRepo) CityByID(ctx context.Context, id int64) (*models.City, error) {
	const op = "storage.postgres.geo.CityByID"

	var c models.City
	err := r.q.QueryRow(ctx, `
		SELECT id, name, latitude, longitude, province_id FROM cities WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.Latitude, &c.Longitude, &c.ProvinceID)
	if err != nil {
		return nil, mapErr(op, err, false)
	}
	return &c, nil
}

func (r geoRepo) DeleteCity(ctx context.Context, id int64) error {
	const op = "storage.postgres.geo.DeleteCity"

	tag, err := r.q.Exec(ctx, `DELETE FROM cities WHERE id = $1`, id)
	if err != nil {
		return mapErr(op, err, true)
	}
	return affected(op, tag)
}
