package rules

import (
	"context"

	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/clover/pkg/database"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/settings"
)

// CategoryRule keeps candidates that share at least one category with the product. A product in
// no category adds no constraint.
type CategoryRule struct {
	tables     database.Tables
	categories CategoryLookup
}

func NewCategoryRule(tables database.Tables, categories CategoryLookup) *CategoryRule {
	return &CategoryRule{tables: tables, categories: categories}
}

func (r *CategoryRule) Name() string   { return "category" }
func (r *CategoryRule) Toggle() string { return settings.RelationCategory }

func (r *CategoryRule) Contribute(ctx context.Context, sb *database.SelectBuilder, productID models.ProductID) error {
	categories, err := r.categories.GetProductCategories(ctx, productID)
	if err != nil {
		return err
	}
	if len(categories) == 0 {
		return nil
	}

	sb.Join(sb.As(r.tables.CategoryProduct(), "cp"), "cp.id_product = "+candidateColumn)
	sb.Where(sb.In("cp.id_category", sqlbuilder.Flatten(categories)...))
	return nil
}

// DefaultCategoryRule keeps candidates whose default category is the product's default category.
type DefaultCategoryRule struct {
	tables database.Tables
}

func NewDefaultCategoryRule(tables database.Tables) *DefaultCategoryRule {
	return &DefaultCategoryRule{tables: tables}
}

func (r *DefaultCategoryRule) Name() string   { return "default_category" }
func (r *DefaultCategoryRule) Toggle() string { return settings.RelationDefaultCategory }

func (r *DefaultCategoryRule) Contribute(_ context.Context, sb *database.SelectBuilder, productID models.ProductID) error {
	sb.Join(sb.As(r.tables.Product(), "pc"), ProductAlias+".id_category_default = pc.id_category_default")
	sb.Where(sb.Equal("pc.id_product", productID))
	return nil
}
