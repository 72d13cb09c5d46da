package postgres

import (
	"context"

	"profile-service/internal/models"
)

type addressRepo struct{ q querier }

const addressSelect = `
	SELECT a.id, a.owner_id, a.city_id, a.address, COALESCE(a.postal_code, ''), p.uid, p.kind
	FROM addresses a JOIN profiles p ON p.id = a.owner_id`

func scanAddress(row interface{ Scan(...any) error }) (*models.Address, error) {
	var (
		a    models.Address
		uid  int64
		kind int16
	)
	if err := row.Scan(&a.ID, &a.OwnerID, &a.CityID, &a.Line, &a.PostalCode, &uid, &kind); err != nil {
		return nil, err
	}
	a.OwnerUserID, a.OwnerKind = models.CallerID(uid), models.Kind(kind)
	return &a, nil
}

func (r addressRepo) Create(ctx context.Context, a *models.Address) error {
	const op = "storage.postgres.addresses.Create"

	var (
		uid  int64
		kind int16
	)
	err := r.q.QueryRow(ctx, `
		WITH ins AS (
			INSERT INTO addresses (owner_id, city_id, address, postal_code)
			VALUES ($1, $2, $3, NULLIF($4, ''))
			RETURNING id, owner_id
		)
		SELECT ins.id, p.uid, p.kind FROM ins JOIN profiles p ON p.id = ins.owner_id`,
		a.OwnerID, a.CityID, a.Line, a.PostalCode,
	).Scan(&a.ID, &uid, &kind)
	if err != nil {
		return mapErr(op, err, false)
	}
	a.OwnerUserID, a.OwnerKind = models.CallerID(uid), models.Kind(kind)
	return nil
}

func (r addressRepo) ByID(ctx context.Context, id int64) (*models.Address, error) {
	const op = "storage.postgres.addresses.ByID"

	a, err := scanAddress(r.q.QueryRow(ctx, addressSelect+` WHERE a.id = $1`, id))
	if err != nil {
		return nil, mapErr(op, err, false)
	}
	return a, nil
}

func (r addressRepo) ByOwner(ctx context.Context, profileID int64) ([]models.Address, error) {
	const op = "storage.postgres.addresses.ByOwner"

	rows, err := r.q.Query(ctx, addressSelect+` WHERE a.owner_id = $1 ORDER BY a.id`, profileID)
	if err != nil {
		return nil, mapErr(op, err, false)
	}
	defer rows.Close()

	var out []models.Address
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			return nil, mapErr(op, err, false)
		}
		out = append(out, *a)
	}
	return out, mapErr(op, rows.Err(), false)
}

func (r addressRepo) ListByCaller(ctx context.Context, uid models.CallerID) ([]models.AddressView, error) {
	const op = "storage.postgres.addresses.ListByCaller"

	rows, err := r.q.Query(ctx, `
		SELECT a.id, c.name, a.address, COALESCE(a.postal_code, '')
		FROM addresses a
		JOIN profiles p ON p.id = a.owner_id
		JOIN cities c ON c.id = a.city_id
		WHERE p.uid = $1
		ORDER BY a.id`, int64(uid))
	if err != nil {
		return nil, mapErr(op, err, false)
	}
	defer rows.Close()

	out := []models.AddressView{}
	for rows.Next() {
		var v models.AddressView
		if err := rows.Scan(&v.ID, &v.City, &v.Line, &v.PostalCode); err != nil {
			return nil, mapErr(op, err, false)
		}
		out = append(out, v)
	}
	return out, mapErr(op, rows.Err(), false)
}

func (r addressRepo) Update(ctx context.Context, a *models.Address) error {
	const op = "storage.postgres.addresses.Update"

	err := r.q.QueryRow(ctx, `
		UPDATE addresses SET city_id = $2, address = $3, postal_code = NULLIF($4, '')
		WHERE id = $1
		RETURNING owner_id`,
		a.ID, a.CityID, a.Line, a.PostalCode,
	).Scan(&a.OwnerID)
	return mapErr(op, err, false)
}

func (r addressRepo) Delete(ctx context.Context, id int64) error {
	const op = "storage.postgres.addresses.Delete"

	tag, err := r.q.Exec(ctx, `DELETE FROM addresses WHERE id = $1`, id)
	if err != nil {
		return mapErr(op, err, true)
	}
	return affected(op, tag)
}
