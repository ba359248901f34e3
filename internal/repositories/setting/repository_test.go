package setting_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/clover/internal/repositories/setting"
	"github.com/Ramsey-B/clover/internal/testutil"
	apperrors "github.com/Ramsey-B/clover/pkg/errors"
	"github.com/Ramsey-B/clover/pkg/settings"
)

func TestRepository_ReadsTypedValues(t *testing.T) {
	db := testutil.NewDB(t)
	repo := setting.NewRepository(db, testutil.NopLogger(), testutil.Tables)
	ctx := context.Background()

	require.NoError(t, repo.Update(ctx, settings.ProductsQuantity, "8"))
	require.NoError(t, repo.Update(ctx, settings.RelationCategory, "1"))
	require.NoError(t, repo.Update(ctx, settings.RelationFeatures, "0"))

	limit, err := repo.GetInt(ctx, settings.ProductsQuantity)
	require.NoError(t, err)
	assert.Equal(t, 8, limit)

	category, err := repo.GetBool(ctx, settings.RelationCategory)
	require.NoError(t, err)
	assert.True(t, category)

	features, err := repo.GetBool(ctx, settings.RelationFeatures)
	require.NoError(t, err)
	assert.False(t, features)
}

func TestRepository_MissingKeyReadsAsZero(t *testing.T) {
	repo := setting.NewRepository(testutil.NewDB(t), testutil.NopLogger(), testutil.Tables)
	ctx := context.Background()

	limit, err := repo.GetInt(ctx, settings.ProductsQuantity)
	require.NoError(t, err)
	assert.Zero(t, limit)

	enabled, err := repo.GetBool(ctx, settings.RelationSuppliers)
	require.NoError(t, err)
	assert.False(t, enabled)
}

func TestRepository_UpdateReplaces(t *testing.T) {
	db := testutil.NewDB(t)
	repo := setting.NewRepository(db, testutil.NopLogger(), testutil.Tables)
	ctx := context.Background()

	require.NoError(t, repo.Update(ctx, settings.ProductsQuantity, "3"))
	require.NoError(t, repo.Update(ctx, settings.ProductsQuantity, "6"))

	limit, err := repo.GetInt(ctx, settings.ProductsQuantity)
	require.NoError(t, err)
	assert.Equal(t, 6, limit)
	assert.Equal(t, 1, testutil.CountRows(t, db, testutil.Tables.Configuration()))
}

func TestRepository_StorageFailure(t *testing.T) {
	db := testutil.NewDB(t)
	repo := setting.NewRepository(db, testutil.NopLogger(), testutil.Tables)
	testutil.DropTable(t, db, testutil.Tables.Configuration())

	_, err := repo.GetBool(context.Background(), settings.RelationCategory)
	require.Error(t, err)
	assert.True(t, apperrors.IsStorageError(err))
}
