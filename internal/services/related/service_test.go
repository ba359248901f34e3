package related_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/Gobusters/ectoerror/httperror"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/clover/internal/repositories/activitylog"
	"github.com/Ramsey-B/clover/internal/repositories/relationship"
	"github.com/Ramsey-B/clover/internal/services/related"
	"github.com/Ramsey-B/clover/internal/testutil"
	"github.com/Ramsey-B/clover/pkg/database"
	apperrors "github.com/Ramsey-B/clover/pkg/errors"
	"github.com/Ramsey-B/clover/pkg/events"
	"github.com/Ramsey-B/clover/pkg/metrics"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/settings"
)

type fakeResolver struct {
	products []models.ProductPresentation
	err      error
	locale   string
}

func (r *fakeResolver) Candidates(context.Context, models.ProductID) ([]models.ProductID, error) {
	ids := make([]models.ProductID, 0, len(r.products))
	for _, p := range r.products {
		ids = append(ids, p.ID)
	}
	return ids, r.err
}

func (r *fakeResolver) Resolve(_ context.Context, _ models.ProductID, locale string) ([]models.ProductPresentation, error) {
	r.locale = locale
	return r.products, r.err
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.RelationshipEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event events.RelationshipEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

type fixture struct {
	db        database.DB
	service   *related.Service
	store     *relationship.Repository
	activity  *activitylog.Repository
	resolver  *fakeResolver
	publisher *recordingPublisher
}

func newFixture(t *testing.T, values settings.Static) *fixture {
	t.Helper()

	db := testutil.NewDB(t)
	activity := activitylog.NewRepository(db, testutil.NopLogger(), testutil.Tables)
	store := relationship.NewRepository(db, testutil.NopLogger(), activity, testutil.Tables)
	resolver := &fakeResolver{}
	publisher := &recordingPublisher{}

	return &fixture{
		db:        db,
		service:   related.NewService(db, testutil.NopLogger(), store, resolver, values, activity, publisher),
		store:     store,
		activity:  activity,
		resolver:  resolver,
		publisher: publisher,
	}
}

func assertStatus(t *testing.T, err error, code int) {
	t.Helper()

	require.Error(t, err)
	require.True(t, httperror.IsHTTPError(err), "expected an http error, got %v", err)
	assert.Equal(t, code, httperror.GetStatusCode(err))
}

func TestService_ExplicitUsesConfiguredLimit(t *testing.T) {
	f := newFixture(t, settings.Static{settings.ProductsQuantity: "2"})
	ctx := context.Background()

	require.NoError(t, f.service.Set(ctx, 10, []models.ProductID{11, 12, 13}))

	capped, err := f.service.Explicit(ctx, 10, 0)
	require.NoError(t, err)
	assert.Len(t, capped, 2)

	all, err := f.service.Explicit(ctx, 10, 10)
	require.NoError(t, err)
	assert.ElementsMatch(t, []models.ProductID{11, 12, 13}, all)
}

func TestService_ExplicitStorageFailureIsInternalError(t *testing.T) {
	f := newFixture(t, settings.Static{})
	testutil.DropTable(t, f.db, testutil.Tables.Relationships())

	_, err := f.service.Explicit(context.Background(), 10, 5)
	assertStatus(t, err, http.StatusInternalServerError)
	assert.NotContains(t, err.Error(), "no such table")
}

func TestService_GetModes(t *testing.T) {
	f := newFixture(t, settings.Static{})
	ctx := context.Background()
	f.resolver.products = []models.ProductPresentation{{ID: 11, Name: "Blue Mug"}}
	f.store.Set(ctx, 10, 12)

	explicit, err := f.service.Get(ctx, 10, "", 0, "en")
	require.NoError(t, err)
	assert.Equal(t, models.ModeExplicit, explicit.Mode)
	assert.Equal(t, []models.ProductID{12}, explicit.ProductIDs)
	assert.Empty(t, explicit.Products)

	rules, err := f.service.Get(ctx, 10, models.ModeRules, 0, "fr")
	require.NoError(t, err)
	assert.Equal(t, models.ModeRules, rules.Mode)
	assert.Equal(t, f.resolver.products, rules.Products)
	assert.Equal(t, "fr", f.resolver.locale)

	_, err = f.service.Get(ctx, 10, "popular", 0, "en")
	assertStatus(t, err, http.StatusBadRequest)
}

func TestService_RuleBasedStorageFailure(t *testing.T) {
	f := newFixture(t, settings.Static{})
	f.resolver.err = apperrors.NewStorageError("candidate query", errors.New("connection reset"))

	_, err := f.service.RuleBased(context.Background(), 10, "en")
	assertStatus(t, err, http.StatusInternalServerError)
}

func TestService_RejectsInvalidIDs(t *testing.T) {
	f := newFixture(t, settings.Static{})
	ctx := context.Background()

	_, err := f.service.Explicit(ctx, 0, 5)
	assertStatus(t, err, http.StatusBadRequest)

	assertStatus(t, f.service.Set(ctx, 10, []models.ProductID{11, -1}), http.StatusBadRequest)
	assertStatus(t, f.service.Set(ctx, 10, []models.ProductID{10}), http.StatusBadRequest)
	assertStatus(t, f.service.Replace(ctx, -4, nil), http.StatusBadRequest)
	assertStatus(t, f.service.Remove(ctx, 0), http.StatusBadRequest)

	assert.Zero(t, testutil.CountRows(t, f.db, testutil.Tables.Relationships()))
	assert.Empty(t, f.publisher.events)
}

func TestService_SetPublishesEvent(t *testing.T) {
	f := newFixture(t, settings.Static{})

	require.NoError(t, f.service.Set(context.Background(), 10, []models.ProductID{11, 12}))

	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, events.TypeRelationshipSet, f.publisher.events[0].Type)
	assert.Equal(t, models.ProductID(10), f.publisher.events[0].ProductID)
	assert.Equal(t, []models.ProductID{11, 12}, f.publisher.events[0].RelatedIDs)
}

func TestService_SetStorageFailureIsAbsorbedWithoutEvent(t *testing.T) {
	f := newFixture(t, settings.Static{})
	testutil.DropTable(t, f.db, testutil.Tables.Relationships())
	ctx := context.Background()

	successBefore := promtestutil.ToFloat64(metrics.RelationshipWritesTotal.WithLabelValues("set", "success"))
	errorBefore := promtestutil.ToFloat64(metrics.RelationshipWritesTotal.WithLabelValues("set", "error"))

	require.NoError(t, f.service.Set(ctx, 10, []models.ProductID{11, 12}))

	assert.Empty(t, f.publisher.events)
	assert.Equal(t, successBefore, promtestutil.ToFloat64(metrics.RelationshipWritesTotal.WithLabelValues("set", "success")))
	assert.Equal(t, errorBefore+1, promtestutil.ToFloat64(metrics.RelationshipWritesTotal.WithLabelValues("set", "error")))

	entries, err := f.activity.ListByProduct(ctx, 10, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, activitylog.LevelError, entries[0].Level)
	assert.Contains(t, entries[0].Message, "no such table")
}

func TestService_SetEmptyIsNoop(t *testing.T) {
	f := newFixture(t, settings.Static{})

	require.NoError(t, f.service.Set(context.Background(), 10, nil))

	assert.Zero(t, testutil.CountRows(t, f.db, testutil.Tables.Relationships()))
	assert.Empty(t, f.publisher.events)
}

func TestService_PublishFailureDoesNotFailRequest(t *testing.T) {
	f := newFixture(t, settings.Static{})
	f.publisher.err = errors.New("broker down")

	require.NoError(t, f.service.Set(context.Background(), 10, []models.ProductID{11}))
	assert.Equal(t, 1, testutil.CountRows(t, f.db, testutil.Tables.Relationships()))
}

func TestService_Replace(t *testing.T) {
	f := newFixture(t, settings.Static{})
	ctx := context.Background()

	f.store.Set(ctx, 10, 11, 12)
	f.store.Set(ctx, 13, 10)

	require.NoError(t, f.service.Replace(ctx, 10, []models.ProductID{14, 15}))

	linked, err := f.store.Lookup(ctx, 10, 0)
	require.NoError(t, err)
	assert.ElementsMatch(t, []models.ProductID{14, 15}, linked)

	entries, err := f.activity.ListByProduct(ctx, 10, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, activitylog.LevelSuccess, entries[0].Level)
	assert.Equal(t, "Set 2 related products for Product ID:10", entries[0].Message)

	require.Len(t, f.publisher.events, 2)
	assert.Equal(t, events.TypeRelationshipRemoved, f.publisher.events[0].Type)
	assert.Equal(t, events.TypeRelationshipSet, f.publisher.events[1].Type)
}

func TestService_ReplaceRollsBackOnFailure(t *testing.T) {
	f := newFixture(t, settings.Static{})
	ctx := context.Background()
	f.store.Set(ctx, 10, 11)

	// a store whose insert always fails after the delete succeeded
	failing := &failingInsertStore{Repository: f.store}
	service := related.NewService(f.db, testutil.NopLogger(), failing, f.resolver, settings.Static{}, f.activity, f.publisher)

	err := service.Replace(ctx, 10, []models.ProductID{12})
	assertStatus(t, err, http.StatusInternalServerError)

	linked, err := f.store.Lookup(ctx, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, []models.ProductID{11}, linked)

	entries, err := f.activity.ListByProduct(ctx, 10, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, activitylog.LevelError, entries[0].Level)
	assert.Contains(t, entries[0].Message, "disk full")
	assert.Empty(t, f.publisher.events)
}

type failingInsertStore struct {
	*relationship.Repository
}

func (s *failingInsertStore) Insert(context.Context, models.ProductID, []models.ProductID) error {
	return apperrors.NewStorageError("relationship insert", errors.New("disk full"))
}

func TestService_Remove(t *testing.T) {
	f := newFixture(t, settings.Static{})
	ctx := context.Background()
	f.store.Set(ctx, 10, 11)

	require.NoError(t, f.service.Remove(ctx, 10))
	require.NoError(t, f.service.Remove(ctx, 10))

	linked, err := f.store.Lookup(ctx, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, linked)

	require.Len(t, f.publisher.events, 2)
	assert.Equal(t, events.TypeRelationshipRemoved, f.publisher.events[0].Type)
}

func TestService_RemoveFailure(t *testing.T) {
	f := newFixture(t, settings.Static{})
	testutil.DropTable(t, f.db, testutil.Tables.Relationships())

	err := f.service.Remove(context.Background(), 10)
	assertStatus(t, err, http.StatusInternalServerError)
	assert.Empty(t, f.publisher.events)
}
