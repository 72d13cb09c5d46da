package postgres

import (
	"context"

	"profile-service/internal/models"
)

type profileRepo struct{ q querier }

const profileColumns = `id, uid, kind, first_name, last_name, phone_number,
	COALESCE(national_id, ''), COALESCE(avatar, ''), is_confirmed, register_date, modification_date, review_requested_at`

func scanProfile(row interface{ Scan(...any) error }) (*models.Profile, error) {
	var (
		p    models.Profile
		uid  int64
		kind int16
	)
	err := row.Scan(&p.ID, &uid, &kind, &p.FirstName, &p.LastName, &p.PhoneNumber,
		&p.NationalID, &p.Avatar, &p.Confirmed, &p.CreatedAt, &p.ModifiedAt, &p.ReviewRequestedAt)
	if err != nil {
		return nil, err
	}
	p.UserID, p.Kind = models.CallerID(uid), models.Kind(kind)
	return &p, nil
}

func (r profileRepo) Create(ctx context.Context, p *models.Profile) error {
	const op = "storage.postgres.profiles.Create"

	err := r.q.QueryRow(ctx, `
		INSERT INTO profiles (uid, kind, first_name, last_name, phone_number, national_id, avatar, is_confirmed)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''), $8)
		RETURNING id, register_date, modification_date, review_requested_at`,
		int64(p.UserID), int16(p.Kind), p.FirstName, p.LastName, p.PhoneNumber, p.NationalID, p.Avatar, p.Confirmed,
	).Scan(&p.ID, &p.CreatedAt, &p.ModifiedAt, &p.ReviewRequestedAt)
	return mapErr(op, err, false)
}

func (r profileRepo) ByID(ctx context.Context, id int64) (*models.Profile, error) {
	const op = "storage.postgres.profiles.ByID"

	p, err := scanProfile(r.q.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id))
	if err != nil {
		return nil, mapErr(op, err, false)
	}
	return p, nil
}

func (r profileRepo) ByCaller(ctx context.Context, uid models.CallerID, kind models.Kind) (*models.Profile, error) {
	const op = "storage.postgres.profiles.ByCaller"

	p, err := scanProfile(r.q.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE uid = $1 AND kind = $2`, int64(uid), int16(kind)))
	if err != nil {
		return nil, mapErr(op, err, false)
	}
	return p, nil
}

func (r profileRepo) ByCallerForUpdate(ctx context.Context, uid models.CallerID, kind models.Kind) (*models.Profile, error) {
	const op = "storage.postgres.profiles.ByCallerForUpdate"

	p, err := scanProfile(r.q.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE uid = $1 AND kind = $2 FOR UPDATE`, int64(uid), int16(kind)))
	if err != nil {
		return nil, mapErr(op, err, false)
	}
	return p, nil
}

func (r profileRepo) Update(ctx context.Context, p *models.Profile) error {
	const op = "storage.postgres.profiles.Update"

	var (
		uid  int64
		kind int16
	)
	err := r.q.QueryRow(ctx, `
		UPDATE profiles SET
			first_name = $2, last_name = $3, phone_number = $4,
			national_id = NULLIF($5, ''), avatar = NULLIF($6, ''), is_confirmed = $7,
			modification_date = NOW()
		WHERE id = $1
		RETURNING uid, kind, register_date, modification_date`,
		p.ID, p.FirstName, p.LastName, p.PhoneNumber, p.NationalID, p.Avatar, p.Confirmed,
	).Scan(&uid, &kind, &p.CreatedAt, &p.ModifiedAt)
	if err != nil {
		return mapErr(op, err, false)
	}
	p.UserID, p.Kind = models.CallerID(uid), models.Kind(kind)
	return nil
}

func (r profileRepo) SetConfirmed(ctx context.Context, id int64, confirmed bool) error {
	const op = "storage.postgres.profiles.SetConfirmed"

	tag, err := r.q.Exec(ctx,
		`UPDATE profiles SET is_confirmed = $2, modification_date = NOW() WHERE id = $1`, id, confirmed)
	if err != nil {
		return mapErr(op, err, false)
	}
	return affected(op, tag)
}

func (r profileRepo) RequestReview(ctx context.Context, id int64) error {
	const op = "storage.postgres.profiles.RequestReview"

	tag, err := r.q.Exec(ctx, `
		UPDATE profiles SET is_confirmed = FALSE, review_requested_at = NOW(), modification_date = NOW()
		WHERE id = $1`, id)
	if err != nil {
		return mapErr(op, err, false)
	}
	return affected(op, tag)
}

func (r profileRepo) Delete(ctx context.Context, id int64) error {
	const op = "storage.postgres.profiles.Delete"

	tag, err := r.q.Exec(ctx, `DELETE FROM profiles WHERE id = $1`, id)
	if err != nil {
		return mapErr(op, err, true)
	}
	return affected(op, tag)
}
