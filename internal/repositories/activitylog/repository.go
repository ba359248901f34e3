package activitylog

import (
	"context"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/clover/pkg/database"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Writer records operator-facing outcomes of relationship writes against a product.
type Writer interface {
	LogSuccess(ctx context.Context, message string, productID models.ProductID)
	LogError(ctx context.Context, message string, productID models.ProductID)
}

type Entry struct {
	ID        int64            `db:"id_log" json:"id"`
	Level     Level            `db:"level" json:"level"`
	Message   string           `db:"message" json:"message"`
	ProductID models.ProductID `db:"id_product" json:"id_product"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
}

// Repository persists entries in the module log table and mirrors them to the service logger.
// A failure to persist is only reported to the service logger.
type Repository struct {
	db     database.DB
	logger ectologger.Logger
	tables database.Tables
}

func NewRepository(db database.DB, logger ectologger.Logger, tables database.Tables) *Repository {
	return &Repository{db: db, logger: logger, tables: tables}
}

func (r *Repository) LogSuccess(ctx context.Context, message string, productID models.ProductID) {
	r.write(ctx, LevelSuccess, message, productID)
}

func (r *Repository) LogError(ctx context.Context, message string, productID models.ProductID) {
	r.write(ctx, LevelError, message, productID)
}

func (r *Repository) write(ctx context.Context, level Level, message string, productID models.ProductID) {
	ctx, span := tracing.StartSpan(ctx, "activitylog.Repository.write")
	defer span.End()

	logger := r.logger.WithContext(ctx).WithFields(map[string]any{
		"id_product": productID,
		"level":      level,
	})
	if level == LevelError {
		logger.Warn(message)
	} else {
		logger.Info(message)
	}

	ib := database.NewInsertBuilder(r.db.Flavor())
	ib.InsertInto(r.tables.Log())
	ib.Cols("level", "message", "id_product", "created_at")
	ib.Values(level, message, productID, time.Now().UTC())

	query, args := ib.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		logger.WithError(err).Error("Failed to persist activity log entry")
	}
}

// ListByProduct returns the most recent entries for a product, newest first.
func (r *Repository) ListByProduct(ctx context.Context, productID models.ProductID, limit int) ([]Entry, error) {
	ctx, span := tracing.StartSpan(ctx, "activitylog.Repository.ListByProduct")
	defer span.End()

	sb := database.NewSelectBuilder(r.db.Flavor())
	sb.Select("id_log", "level", "message", "id_product", "created_at")
	sb.From(r.tables.Log())
	sb.Where(sb.Equal("id_product", productID))
	sb.OrderBy("id_log").Desc()
	if limit > 0 {
		sb.Limit(limit)
	}

	query, args := sb.Build()
	entries := []Entry{}
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list activity log entries")
		return nil, err
	}
	return entries, nil
}
