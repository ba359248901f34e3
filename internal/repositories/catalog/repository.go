package catalog

import (
	"context"
	"database/sql"
	"errors"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/clover/pkg/database"
	apperrors "github.com/Ramsey-B/clover/pkg/errors"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// Repository reads the shop catalog. It never writes to catalog tables.
type Repository struct {
	db     database.DB
	logger ectologger.Logger
	tables database.Tables
	langID int64
}

func NewRepository(db database.DB, logger ectologger.Logger, tables database.Tables, langID int64) *Repository {
	return &Repository{db: db, logger: logger, tables: tables, langID: langID}
}

// GetProductCategories returns the ids of every category the product belongs to.
func (r *Repository) GetProductCategories(ctx context.Context, productID models.ProductID) ([]int64, error) {
	ctx, span := tracing.StartSpan(ctx, "catalog.Repository.GetProductCategories")
	defer span.End()

	sb := database.NewSelectBuilder(r.db.Flavor())
	sb.Select("id_category")
	sb.From(r.tables.CategoryProduct())
	sb.Where(sb.Equal("id_product", productID))
	sb.OrderBy("position")

	query, args := sb.Build()
	categories := []int64{}
	if err := database.Conn(ctx, r.db).SelectContext(ctx, &categories, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithField("id_product", productID).Error("Failed to get product categories")
		return nil, apperrors.NewStorageError("product categories", err)
	}
	return categories, nil
}

// Assemble loads the catalog fields a presentation needs for one product.
func (r *Repository) Assemble(ctx context.Context, productID models.ProductID) (models.AssembledProduct, error) {
	ctx, span := tracing.StartSpan(ctx, "catalog.Repository.Assemble")
	defer span.End()

	sb := database.NewSelectBuilder(r.db.Flavor())
	sb.Select(
		"p.id_product",
		"p.reference",
		"p.price",
		"p.active",
		"p.id_category_default",
		sb.As("COALESCE(pl.name, '')", "name"),
		sb.As("COALESCE(pl.link_rewrite, '')", "link_rewrite"),
	)
	sb.From(sb.As(r.tables.Product(), "p"))
	sb.JoinWithOption(database.LeftJoin, sb.As(r.tables.ProductLang(), "pl"),
		"pl.id_product = p.id_product",
		sb.Equal("pl.id_lang", r.langID),
	)
	sb.Where(sb.Equal("p.id_product", productID))
	sb.Limit(1)

	query, args := sb.Build()
	var product models.AssembledProduct
	if err := database.Conn(ctx, r.db).GetContext(ctx, &product, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.AssembledProduct{}, httperror.NewHTTPError(http.StatusNotFound, "product not found")
		}
		r.logger.WithContext(ctx).WithError(err).WithField("id_product", productID).Error("Failed to assemble product")
		return models.AssembledProduct{}, apperrors.NewStorageError("product assembly", err)
	}
	return product, nil
}
