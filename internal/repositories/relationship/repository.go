package relationship

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Gobusters/ectologger"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/clover/internal/repositories/activitylog"
	"github.com/Ramsey-B/clover/pkg/database"
	apperrors "github.com/Ramsey-B/clover/pkg/errors"
	"github.com/Ramsey-B/clover/pkg/messages"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

const relatedColumn = "related_id_product"

// Repository stores curated product relationships. Rows are written in one direction only and
// read in both, so a pair (a, b) relates a to b and b to a.
type Repository struct {
	db       database.DB
	logger   ectologger.Logger
	activity activitylog.Writer
	tables   database.Tables
}

func NewRepository(db database.DB, logger ectologger.Logger, activity activitylog.Writer, tables database.Tables) *Repository {
	return &Repository{
		db:       db,
		logger:   logger,
		activity: activity,
		tables:   tables,
	}
}

// Lookup returns the distinct products linked to productID through either column. A limit of
// zero or less returns every link. An empty result is an empty slice with a nil error.
func (r *Repository) Lookup(ctx context.Context, productID models.ProductID, limit int) ([]models.ProductID, error) {
	ctx, span := tracing.StartSpan(ctx, "relationship.Repository.Lookup")
	defer span.End()

	sb := database.NewSelectBuilder(r.db.Flavor())
	sb.Distinct()
	sb.Select(sb.As(
		fmt.Sprintf("CASE WHEN id_product1 = %s THEN id_product2 ELSE id_product1 END", sb.Var(productID)),
		relatedColumn,
	))
	sb.From(r.tables.Relationships())
	sb.Where(
		sb.Or(
			sb.Equal("id_product1", productID),
			sb.Equal("id_product2", productID),
		),
		sb.NotEqual("id_product1", sqlbuilder.Raw("id_product2")),
	)
	if limit > 0 {
		sb.Limit(limit)
	}

	query, args := sb.Build()
	related := []models.ProductID{}
	if err := database.Conn(ctx, r.db).SelectContext(ctx, &related, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithField("id_product", productID).Error("Failed to look up related products")
		return nil, apperrors.NewStorageError("relationship lookup", err)
	}

	return related, nil
}

// Insert writes one row (productID, relatedID) per related id as a single statement. Related ids
// that are not positive or equal productID are skipped.
func (r *Repository) Insert(ctx context.Context, productID models.ProductID, relatedIDs []models.ProductID) error {
	ctx, span := tracing.StartSpan(ctx, "relationship.Repository.Insert")
	defer span.End()

	ib := database.NewInsertBuilder(r.db.Flavor())
	ib.InsertInto(r.tables.Relationships())
	ib.Cols("id_product1", "id_product2")
	for _, relatedID := range relatedIDs {
		if !relatedID.Valid() || relatedID == productID {
			continue
		}
		ib.Values(productID, relatedID)
	}
	if ib.NumValue() == 0 {
		return nil
	}

	query, args := ib.Build()
	if _, err := database.Conn(ctx, r.db).ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewStorageError("relationship insert", err)
	}
	return nil
}

// Set links productID to each related id. Writes are best effort: a failure is recorded in the
// activity log and never returned, so a bulk product edit is not aborted by one bad link.
func (r *Repository) Set(ctx context.Context, productID models.ProductID, relatedIDs ...models.ProductID) {
	ctx, span := tracing.StartSpan(ctx, "relationship.Repository.Set")
	defer span.End()

	if len(relatedIDs) == 0 {
		return
	}

	if err := r.Insert(ctx, productID, relatedIDs); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"id_product":  productID,
			"related_ids": relatedIDs,
		}).Error("Failed to set related products")
		r.activity.LogError(ctx, messages.Sprintf(ctx, messages.SetRelatedFailed, storageDetail(err)), productID)
	}
}

// Delete removes every row that references productID in either column and returns the number of
// rows removed.
func (r *Repository) Delete(ctx context.Context, productID models.ProductID) (int64, error) {
	ctx, span := tracing.StartSpan(ctx, "relationship.Repository.Delete")
	defer span.End()

	db := database.NewDeleteBuilder(r.db.Flavor())
	db.DeleteFrom(r.tables.Relationships())
	db.Where(
		db.Or(
			db.Equal("id_product1", productID),
			db.Equal("id_product2", productID),
		),
	)

	query, args := db.Build()
	result, err := database.Conn(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		return 0, apperrors.NewStorageError("relationship delete", err)
	}
	rows, _ := result.RowsAffected()
	return rows, nil
}

// Remove deletes every relationship touching productID and reports whether the delete ran without
// a storage error. Removing a product with no relationships succeeds.
func (r *Repository) Remove(ctx context.Context, productID models.ProductID) bool {
	ctx, span := tracing.StartSpan(ctx, "relationship.Repository.Remove")
	defer span.End()

	id := strconv.FormatInt(int64(productID), 10)

	rows, err := r.Delete(ctx, productID)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithField("id_product", productID).Error("Failed to remove product relationships")
		r.activity.LogError(ctx, messages.Sprintf(ctx, messages.RelationshipNotRemove, id, storageDetail(err)), productID)
		return false
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"id_product": productID,
		"rows":       rows,
	}).Debug("Removed product relationships")
	r.activity.LogSuccess(ctx, messages.Sprintf(ctx, messages.RelationshipRemoved, id), productID)
	return true
}

// storageDetail is the driver message without the operation prefix added by StorageError.
func storageDetail(err error) string {
	if storageErr, ok := apperrors.AsStorageError(err); ok {
		return storageErr.Err.Error()
	}
	return err.Error()
}
