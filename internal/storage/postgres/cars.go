package postgres

import (
	"context"

	"profile-service/internal/models"
)

type carRepo struct{ q querier }

func (r carRepo) Create(ctx context.Context, c *models.Car) error {
	const op = "storage.postgres.cars.Create"

	err := r.q.QueryRow(ctx, `
		INSERT INTO cars (owner_id, plate_number, model, color)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, modified_at`,
		c.OwnerID, c.PlateNumber, c.Model, c.Color,
	).Scan(&c.ID, &c.CreatedAt, &c.ModifiedAt)
	return mapErr(op, err, false)
}

func (r carRepo) ByOwner(ctx context.Context, profileID int64) (*models.Car, error) {
	const op = "storage.postgres.cars.ByOwner"

	var c models.Car
	err := r.q.QueryRow(ctx, `
		SELECT id, owner_id, plate_number, model, color, created_at, modified_at
		FROM cars WHERE owner_id = $1`, profileID,
	).Scan(&c.ID, &c.OwnerID, &c.PlateNumber, &c.Model, &c.Color, &c.CreatedAt, &c.ModifiedAt)
	if err != nil {
		return nil, mapErr(op, err, false)
	}
	return &c, nil
}

func (r carRepo) Update(ctx context.Context, c *models.Car) error {
	const op = "storage.postgres.cars.Update"

	err := r.q.QueryRow(ctx, `
		UPDATE cars SET plate_number = $2, model = $3, color = $4, modified_at = NOW()
		WHERE id = $1
		RETURNING owner_id, created_at, modified_at`,
		c.ID, c.PlateNumber, c.Model, c.Color,
	).Scan(&c.OwnerID, &c.CreatedAt, &c.ModifiedAt)
	return mapErr(op, err, false)
}

func (r carRepo) Delete(ctx context.Context, id int64) error {
	const op = "storage.postgres.cars.Delete"

	tag, err := r.q.Exec(ctx, `DELETE FROM cars WHERE id = $1`, id)
	if err != nil {
		return mapErr(op, err, true)
	}
	return affected(op, tag)
}
