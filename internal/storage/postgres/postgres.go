// Package postgres implements storage.Store on PostgreSQL through pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"profile-service/internal/storage"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Store struct {
	pool *pgxpool.Pool
}

var _ storage.Store = (*Store)(nil)

// New wraps an open pool. Migrations must already be applied.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) RunInTx(ctx context.Context, fn func(tx storage.Repositories) error) error {
	return pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(tx pgx.Tx) error {
		return fn(repos{q: tx})
	})
}

func (s *Store) Profiles() storage.ProfileRepository  { return profileRepo{q: s.pool} }
func (s *Store) Addresses() storage.AddressRepository { return addressRepo{q: s.pool} }
func (s *Store) Cars() storage.CarRepository          { return carRepo{q: s.pool} }
func (s *Store) Geo() storage.GeoRepository           { return geoRepo{q: s.pool} }

func (s *Store) Close() { s.pool.Close() }

type repos struct{ q querier }

func (r repos) Profiles() storage.ProfileRepository  { return profileRepo{q: r.q} }
func (r repos) Addresses() storage.AddressRepository { return addressRepo{q: r.q} }
func (r repos) Cars() storage.CarRepository          { return carRepo{q: r.q} }
func (r repos) Geo() storage.GeoRepository           { return geoRepo{q: r.q} }

// constraintFields maps unique constraint names from the migrations to the
// field reported in storage.ConflictError.
var constraintFields = map[string]string{
	"profiles_uid_kind_key":     storage.FieldUID,
	"profiles_phone_number_key": storage.FieldPhoneNumber,
	"profiles_national_id_key":  storage.FieldNationalID,
	"cars_plate_number_key":     storage.FieldPlateNumber,
	"cars_owner_id_key":         storage.FieldOwner,
}

// mapErr translates driver errors into storage sentinels. onDelete selects
// how a foreign key violation reads: a delete that would orphan rows, or an
// insert/update that points at a missing row.
func mapErr(op string, err error, onDelete bool) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			field, ok := constraintFields[pgErr.ConstraintName]
			if !ok {
				field = pgErr.ConstraintName
			}
			return fmt.Errorf("%s: %w", op, storage.Conflict(field))
		case pgerrcode.ForeignKeyViolation, pgerrcode.RestrictViolation:
			if onDelete {
				return fmt.Errorf("%s: %w", op, storage.ErrReferenced)
			}
			return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func affected(op string, tag pgconn.CommandTag) error {
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	return nil
}
