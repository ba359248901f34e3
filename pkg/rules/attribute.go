package rules

import (
	"context"

	"github.com/Ramsey-B/clover/pkg/database"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/settings"
)

// AttributeRule keeps candidates sharing a product column with the product, where 0 means the
// attribute is unset. Unset never matches, even between two products that both lack it.
type AttributeRule struct {
	name   string
	toggle string
	column string
	alias  string
	tables database.Tables
}

func NewManufacturerRule(tables database.Tables) *AttributeRule {
	return &AttributeRule{
		name:   "manufacturer",
		toggle: settings.RelationManufacturer,
		column: "id_manufacturer",
		alias:  "pm",
		tables: tables,
	}
}

func NewSupplierRule(tables database.Tables) *AttributeRule {
	return &AttributeRule{
		name:   "supplier",
		toggle: settings.RelationSuppliers,
		column: "id_supplier",
		alias:  "psu",
		tables: tables,
	}
}

func (r *AttributeRule) Name() string   { return r.name }
func (r *AttributeRule) Toggle() string { return r.toggle }

func (r *AttributeRule) Contribute(_ context.Context, sb *database.SelectBuilder, productID models.ProductID) error {
	matched := r.alias + "." + r.column
	sb.Join(sb.As(r.tables.Product(), r.alias), ProductAlias+"."+r.column+" = "+matched)
	sb.Where(
		sb.Equal(r.alias+".id_product", productID),
		sb.NotEqual(matched, 0),
	)
	return nil
}
