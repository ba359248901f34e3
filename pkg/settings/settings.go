// Package settings reads the toggles and limits that drive related products resolution.
package settings

import (
	"context"
	"strconv"
	"strings"
)

const Prefix = "JB_RELPROD_"

// Keys read by the candidate query composer. A missing key reads as false or zero.
const (
	ProductsQuantity        = Prefix + "PRODUCTS_QUANTITY"
	RelationCategory        = Prefix + "RELATION_CATEGORY"
	RelationDefaultCategory = Prefix + "RELATION_DEFAULT_CATEGORY"
	RelationManufacturer    = Prefix + "RELATION_MANUFACTURER"
	RelationSuppliers       = Prefix + "RELATION_SUPPLIERS"
	RelationFeatures        = Prefix + "RELATION_FEATURES"
)

type Reader interface {
	GetInt(ctx context.Context, key string) (int, error)
	GetBool(ctx context.Context, key string) (bool, error)
}

// ParseInt converts a stored value the way the shop back office writes them. Blank and
// unparsable values read as zero.
func ParseInt(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	if v, err := strconv.Atoi(raw); err == nil {
		return v
	}
	if b, err := strconv.ParseBool(raw); err == nil && b {
		return 1
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return int(f)
	}
	return 0
}

func ParseBool(raw string) bool {
	return ParseInt(raw) != 0
}

// Static is an in-memory Reader, used for fixed deployments and tests.
type Static map[string]string

func (s Static) GetInt(_ context.Context, key string) (int, error) {
	return ParseInt(s[key]), nil
}

func (s Static) GetBool(_ context.Context, key string) (bool, error) {
	return ParseBool(s[key]), nil
}
