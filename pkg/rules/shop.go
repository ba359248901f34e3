package rules

import (
	"context"

	"github.com/Ramsey-B/clover/pkg/database"
	"github.com/Ramsey-B/clover/pkg/models"
)

// ShopRule restricts candidates to products associated with one shop of a multistore catalog.
type ShopRule struct {
	tables database.Tables
	shopID int64
}

func NewShopRule(tables database.Tables, shopID int64) *ShopRule {
	return &ShopRule{tables: tables, shopID: shopID}
}

func (r *ShopRule) Name() string   { return "shop" }
func (r *ShopRule) Toggle() string { return "" }

func (r *ShopRule) Contribute(_ context.Context, sb *database.SelectBuilder, _ models.ProductID) error {
	sb.Join(sb.As(r.tables.ProductShop(), "ps"),
		"ps.id_product = "+candidateColumn,
		sb.Equal("ps.id_shop", r.shopID),
	)
	return nil
}
