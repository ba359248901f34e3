package rules

import (
	"context"

	"github.com/Ramsey-B/clover/pkg/database"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/settings"
)

// FeatureRule keeps candidates that share at least one (feature, value) pair with the product.
// It filters through a subquery instead of a join so it never multiplies candidate rows.
type FeatureRule struct {
	tables database.Tables
}

func NewFeatureRule(tables database.Tables) *FeatureRule {
	return &FeatureRule{tables: tables}
}

func (r *FeatureRule) Name() string   { return "feature" }
func (r *FeatureRule) Toggle() string { return settings.RelationFeatures }

func (r *FeatureRule) Contribute(_ context.Context, sb *database.SelectBuilder, productID models.ProductID) error {
	sub := sb.Subquery()
	sub.Select("fp2.id_product")
	sub.From(sub.As(r.tables.FeatureProduct(), "fp1"))
	sub.Join(sub.As(r.tables.FeatureProduct(), "fp2"),
		"fp2.id_feature = fp1.id_feature",
		"fp2.id_feature_value = fp1.id_feature_value",
	)
	sub.Where(sub.Equal("fp1.id_product", productID))

	sb.Where(sb.In(candidateColumn, sub))
	return nil
}
