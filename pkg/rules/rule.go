// Package rules composes the rule-based related products query. Each Rule adds its own aliased
// join and where clause, so any subset of rules can be active at once.
package rules

import (
	"context"

	"github.com/Ramsey-B/clover/pkg/database"
	"github.com/Ramsey-B/clover/pkg/models"
)

// ProductAlias is the alias of the candidate product table in the outer query.
const ProductAlias = "p"

const candidateColumn = ProductAlias + ".id_product"

type Rule interface {
	Name() string
	// Toggle is the settings key that enables the rule. Rules with an empty toggle always apply.
	Toggle() string
	Contribute(ctx context.Context, sb *database.SelectBuilder, productID models.ProductID) error
}

// CategoryLookup lists the categories a product belongs to.
type CategoryLookup interface {
	GetProductCategories(ctx context.Context, productID models.ProductID) ([]int64, error)
}
