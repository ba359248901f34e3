package setting

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/clover/pkg/database"
	apperrors "github.com/Ramsey-B/clover/pkg/errors"
	"github.com/Ramsey-B/clover/pkg/settings"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// Repository reads module settings from the shop configuration table. It is read at call time so
// back office changes apply to the next request.
type Repository struct {
	db     database.DB
	logger ectologger.Logger
	tables database.Tables
}

func NewRepository(db database.DB, logger ectologger.Logger, tables database.Tables) *Repository {
	return &Repository{db: db, logger: logger, tables: tables}
}

// Get returns the raw value of key. A missing key or NULL value reads as the empty string.
func (r *Repository) Get(ctx context.Context, key string) (string, error) {
	ctx, span := tracing.StartSpan(ctx, "setting.Repository.Get")
	defer span.End()

	sb := database.NewSelectBuilder(r.db.Flavor())
	sb.Select("value")
	sb.From(r.tables.Configuration())
	sb.Where(sb.Equal("name", key))
	sb.Limit(1)

	query, args := sb.Build()
	var value sql.NullString
	if err := database.Conn(ctx, r.db).GetContext(ctx, &value, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		r.logger.WithContext(ctx).WithError(err).WithField("key", key).Error("Failed to read setting")
		return "", apperrors.NewStorageError("setting read", err)
	}
	return value.String, nil
}

func (r *Repository) GetInt(ctx context.Context, key string) (int, error) {
	raw, err := r.Get(ctx, key)
	if err != nil {
		return 0, err
	}
	return settings.ParseInt(raw), nil
}

func (r *Repository) GetBool(ctx context.Context, key string) (bool, error) {
	raw, err := r.Get(ctx, key)
	if err != nil {
		return false, err
	}
	return settings.ParseBool(raw), nil
}

// Update writes value for key, replacing any previous value.
func (r *Repository) Update(ctx context.Context, key, value string) error {
	ctx, span := tracing.StartSpan(ctx, "setting.Repository.Update")
	defer span.End()

	return r.db.WithTx(ctx, nil, func(ctx context.Context) error {
		conn := database.Conn(ctx, r.db)

		db := database.NewDeleteBuilder(r.db.Flavor())
		db.DeleteFrom(r.tables.Configuration())
		db.Where(db.Equal("name", key))
		query, args := db.Build()
		if _, err := conn.ExecContext(ctx, query, args...); err != nil {
			return apperrors.NewStorageError("setting update", err)
		}

		ib := database.NewInsertBuilder(r.db.Flavor())
		ib.InsertInto(r.tables.Configuration())
		ib.Cols("name", "value")
		ib.Values(key, value)
		query, args = ib.Build()
		if _, err := conn.ExecContext(ctx, query, args...); err != nil {
			return apperrors.NewStorageError("setting update", err)
		}
		return nil
	})
}

var _ settings.Reader = (*Repository)(nil)
