// Package testutil provides an in-memory catalog database for package tests.
package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/clover/pkg/database"
)

const TablePrefix = "ps_"

var Tables = database.NewTables(TablePrefix)

var schema = []string{
	`CREATE TABLE ps_jb_relprod_relationships (
		id_product1 INTEGER NOT NULL,
		id_product2 INTEGER NOT NULL
	)`,
	`CREATE TABLE ps_jb_relprod_log (
		id_log INTEGER PRIMARY KEY AUTOINCREMENT,
		level TEXT NOT NULL,
		message TEXT NOT NULL,
		id_product INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE ps_configuration (
		name TEXT NOT NULL PRIMARY KEY,
		value TEXT
	)`,
	`CREATE TABLE ps_product (
		id_product INTEGER PRIMARY KEY,
		id_category_default INTEGER NOT NULL DEFAULT 0,
		id_manufacturer INTEGER NOT NULL DEFAULT 0,
		id_supplier INTEGER NOT NULL DEFAULT 0,
		reference TEXT NOT NULL DEFAULT '',
		price REAL NOT NULL DEFAULT 0,
		active INTEGER NOT NULL DEFAULT 1
	)`,
	`CREATE TABLE ps_product_lang (
		id_product INTEGER NOT NULL,
		id_lang INTEGER NOT NULL,
		name TEXT NOT NULL,
		link_rewrite TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE ps_product_shop (
		id_product INTEGER NOT NULL,
		id_shop INTEGER NOT NULL
	)`,
	`CREATE TABLE ps_category_product (
		id_category INTEGER NOT NULL,
		id_product INTEGER NOT NULL,
		position INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE ps_feature_product (
		id_feature INTEGER NOT NULL,
		id_product INTEGER NOT NULL,
		id_feature_value INTEGER NOT NULL
	)`,
}

// NopLogger discards every log entry.
func NopLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

// NewDB opens a fresh in-memory database with the catalog and module tables.
func NewDB(t *testing.T) database.DB {
	t.Helper()

	db, err := sqlx.Connect("sqlite3", ":memory:")
	require.NoError(t, err)

	// every connection to :memory: would otherwise see its own empty database
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	t.Cleanup(func() { _ = db.Close() })

	for _, stmt := range schema {
		_, err := db.ExecContext(t.Context(), stmt)
		require.NoError(t, err)
	}

	return database.NewDatabaseInstance(db, NopLogger())
}

// Product is a catalog row seeded by tests.
type Product struct {
	ID              int64
	DefaultCategory int64
	Manufacturer    int64
	Supplier        int64
	Name            string
	Price           float64
	Categories      []int64
	// Features maps id_feature to id_feature_value.
	Features map[int64]int64
	Shops    []int64
}

// SeedProducts inserts products with their language, category, feature and shop rows.
func SeedProducts(t *testing.T, db database.DB, products ...Product) {
	t.Helper()

	ctx := t.Context()
	for _, p := range products {
		_, err := db.ExecContext(ctx,
			`INSERT INTO ps_product (id_product, id_category_default, id_manufacturer, id_supplier, reference, price) VALUES (?, ?, ?, ?, ?, ?)`,
			p.ID, p.DefaultCategory, p.Manufacturer, p.Supplier, fmt.Sprintf("REF-%d", p.ID), p.Price,
		)
		require.NoError(t, err)

		name := p.Name
		if name == "" {
			name = fmt.Sprintf("Product %d", p.ID)
		}
		_, err = db.ExecContext(ctx,
			`INSERT INTO ps_product_lang (id_product, id_lang, name, link_rewrite) VALUES (?, 1, ?, ?)`,
			p.ID, name, strings.ToLower(strings.ReplaceAll(name, " ", "-")),
		)
		require.NoError(t, err)

		for i, category := range p.Categories {
			_, err = db.ExecContext(ctx, `INSERT INTO ps_category_product (id_category, id_product, position) VALUES (?, ?, ?)`, category, p.ID, i)
			require.NoError(t, err)
		}
		for feature, value := range p.Features {
			_, err = db.ExecContext(ctx, `INSERT INTO ps_feature_product (id_feature, id_product, id_feature_value) VALUES (?, ?, ?)`, feature, p.ID, value)
			require.NoError(t, err)
		}
		for _, shop := range p.Shops {
			_, err = db.ExecContext(ctx, `INSERT INTO ps_product_shop (id_product, id_shop) VALUES (?, ?)`, p.ID, shop)
			require.NoError(t, err)
		}
	}
}

// CountRows returns the number of rows in table.
func CountRows(t *testing.T, db database.DB, table string) int {
	t.Helper()

	var count int
	require.NoError(t, db.GetContext(t.Context(), &count, "SELECT COUNT(*) FROM "+table))
	return count
}

// DropTable removes table so statements against it fail with a storage error.
func DropTable(t *testing.T, db database.DB, table string) {
	t.Helper()

	_, err := db.ExecContext(t.Context(), "DROP TABLE "+table)
	require.NoError(t, err)
}
