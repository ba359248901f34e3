package related

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectolinq"
	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/clover/internal/repositories/activitylog"
	appctx "github.com/Ramsey-B/clover/pkg/context"
	"github.com/Ramsey-B/clover/pkg/database"
	apperrors "github.com/Ramsey-B/clover/pkg/errors"
	"github.com/Ramsey-B/clover/pkg/events"
	"github.com/Ramsey-B/clover/pkg/messages"
	"github.com/Ramsey-B/clover/pkg/metrics"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/settings"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

type RelationshipStore interface {
	Lookup(ctx context.Context, productID models.ProductID, limit int) ([]models.ProductID, error)
	Insert(ctx context.Context, productID models.ProductID, relatedIDs []models.ProductID) error
	Delete(ctx context.Context, productID models.ProductID) (int64, error)
	Remove(ctx context.Context, productID models.ProductID) bool
}

type CandidateResolver interface {
	Candidates(ctx context.Context, productID models.ProductID) ([]models.ProductID, error)
	Resolve(ctx context.Context, productID models.ProductID, locale string) ([]models.ProductPresentation, error)
}

// Service answers related products requests with one of two strategies picked by the caller:
// curated links from the relationship store or candidates derived from catalog rules.
type Service struct {
	db        database.DB
	logger    ectologger.Logger
	store     RelationshipStore
	resolver  CandidateResolver
	settings  settings.Reader
	activity  activitylog.Writer
	publisher events.Publisher
}

func NewService(
	db database.DB,
	logger ectologger.Logger,
	store RelationshipStore,
	resolver CandidateResolver,
	reader settings.Reader,
	activity activitylog.Writer,
	publisher events.Publisher,
) *Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Service{
		db:        db,
		logger:    logger,
		store:     store,
		resolver:  resolver,
		settings:  reader,
		activity:  activity,
		publisher: publisher,
	}
}

// Get resolves related products for productID with the given mode. A limit of zero or less uses
// the configured products quantity; it only applies to the explicit mode.
func (s *Service) Get(ctx context.Context, productID models.ProductID, mode models.ResolutionMode, limit int, locale string) (models.RelatedProductsResponse, error) {
	ctx, span := tracing.StartSpan(ctx, "related.Service.Get")
	defer span.End()

	if mode == "" {
		mode = models.ModeExplicit
	}
	if !mode.Valid() {
		return models.RelatedProductsResponse{}, httperror.NewHTTPError(http.StatusBadRequest, "mode must be one of explicit, rules")
	}

	response := models.RelatedProductsResponse{ProductID: productID, Mode: mode}
	switch mode {
	case models.ModeRules:
		products, err := s.RuleBased(ctx, productID, locale)
		if err != nil {
			return models.RelatedProductsResponse{}, err
		}
		response.Products = products
	default:
		ids, err := s.Explicit(ctx, productID, limit)
		if err != nil {
			return models.RelatedProductsResponse{}, err
		}
		response.ProductIDs = ids
	}
	return response, nil
}

func (s *Service) Explicit(ctx context.Context, productID models.ProductID, limit int) ([]models.ProductID, error) {
	ctx, span := tracing.StartSpan(ctx, "related.Service.Explicit")
	defer span.End()

	if err := validateProductID(productID); err != nil {
		return nil, err
	}

	start := time.Now()
	if limit <= 0 {
		configured, err := s.settings.GetInt(ctx, settings.ProductsQuantity)
		if err != nil {
			metrics.RecordResolution(string(models.ModeExplicit), "error", 0, time.Since(start).Seconds())
			return nil, toHTTPError(err)
		}
		limit = configured
	}

	related, err := s.store.Lookup(ctx, productID, limit)
	if err != nil {
		metrics.RecordResolution(string(models.ModeExplicit), "error", 0, time.Since(start).Seconds())
		return nil, toHTTPError(err)
	}
	metrics.RecordResolution(string(models.ModeExplicit), "success", len(related), time.Since(start).Seconds())
	return related, nil
}

func (s *Service) RuleBased(ctx context.Context, productID models.ProductID, locale string) ([]models.ProductPresentation, error) {
	ctx, span := tracing.StartSpan(ctx, "related.Service.RuleBased")
	defer span.End()

	if err := validateProductID(productID); err != nil {
		return nil, err
	}
	if locale == "" {
		locale = appctx.GetLocale(ctx)
	}

	start := time.Now()
	products, err := s.resolver.Resolve(ctx, productID, locale)
	if err != nil {
		metrics.RecordResolution(string(models.ModeRules), "error", 0, time.Since(start).Seconds())
		return nil, toHTTPError(err)
	}
	metrics.RecordResolution(string(models.ModeRules), "success", len(products), time.Since(start).Seconds())
	return products, nil
}

// Set adds curated links from productID to relatedIDs. The write is best effort: storage failures
// land in the activity log, not in the returned error, and publish no event.
func (s *Service) Set(ctx context.Context, productID models.ProductID, relatedIDs []models.ProductID) error {
	ctx, span := tracing.StartSpan(ctx, "related.Service.Set")
	defer span.End()

	if err := validateRelationship(productID, relatedIDs); err != nil {
		return err
	}
	if len(relatedIDs) == 0 {
		return nil
	}

	if err := s.store.Insert(ctx, productID, relatedIDs); err != nil {
		metrics.RecordRelationshipWrite("set", "error")
		s.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"id_product":  productID,
			"related_ids": relatedIDs,
		}).Error("Failed to set related products")
		s.activity.LogError(ctx, messages.Sprintf(ctx, messages.SetRelatedFailed, storageDetail(err)), productID)
		return nil
	}
	metrics.RecordRelationshipWrite("set", "success")

	s.logger.WithContext(ctx).WithFields(map[string]any{
		"id_product":  productID,
		"related_ids": relatedIDs,
	}).Info("Set related products")
	s.publish(ctx, events.TypeRelationshipSet, productID, relatedIDs)
	return nil
}

// Replace swaps every relationship touching productID for links to relatedIDs in one transaction.
func (s *Service) Replace(ctx context.Context, productID models.ProductID, relatedIDs []models.ProductID) error {
	ctx, span := tracing.StartSpan(ctx, "related.Service.Replace")
	defer span.End()

	if err := validateRelationship(productID, relatedIDs); err != nil {
		return err
	}

	err := s.db.WithTx(ctx, nil, func(ctx context.Context) error {
		if _, err := s.store.Delete(ctx, productID); err != nil {
			return err
		}
		return s.store.Insert(ctx, productID, relatedIDs)
	})
	if err != nil {
		metrics.RecordRelationshipWrite("replace", "error")
		s.logger.WithContext(ctx).WithError(err).WithField("id_product", productID).Error("Failed to replace related products")
		s.activity.LogError(ctx, messages.Sprintf(ctx, messages.ReplaceRelatedFailed, formatID(productID), storageDetail(err)), productID)
		return toHTTPError(err)
	}

	metrics.RecordRelationshipWrite("replace", "success")
	s.activity.LogSuccess(ctx, messages.Sprintf(ctx, messages.RelatedProductsSet, strconv.Itoa(len(relatedIDs)), formatID(productID)), productID)
	s.publish(ctx, events.TypeRelationshipRemoved, productID, nil)
	if len(relatedIDs) > 0 {
		s.publish(ctx, events.TypeRelationshipSet, productID, relatedIDs)
	}
	return nil
}

func (s *Service) Remove(ctx context.Context, productID models.ProductID) error {
	ctx, span := tracing.StartSpan(ctx, "related.Service.Remove")
	defer span.End()

	if err := validateProductID(productID); err != nil {
		return err
	}

	if !s.store.Remove(ctx, productID) {
		metrics.RecordRelationshipWrite("remove", "error")
		return httperror.NewHTTPError(http.StatusInternalServerError, "unable to remove product relationships")
	}

	metrics.RecordRelationshipWrite("remove", "success")
	s.publish(ctx, events.TypeRelationshipRemoved, productID, nil)
	return nil
}

// publish never fails the request; a lost event is logged.
func (s *Service) publish(ctx context.Context, eventType string, productID models.ProductID, relatedIDs []models.ProductID) {
	event := events.RelationshipEvent{
		Type:       eventType,
		ProductID:  productID,
		RelatedIDs: relatedIDs,
		RequestID:  appctx.GetRequestID(ctx),
		TraceID:    tracing.GetTraceID(ctx),
		Timestamp:  time.Now().UTC(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"id_product": productID,
			"type":       eventType,
		}).Warn("Failed to publish relationship event")
	}
}

func validateProductID(productID models.ProductID) error {
	if !productID.Valid() {
		return httperror.NewHTTPError(http.StatusBadRequest, "id_product must be a positive integer")
	}
	return nil
}

func validateRelationship(productID models.ProductID, relatedIDs []models.ProductID) error {
	if err := validateProductID(productID); err != nil {
		return err
	}
	invalid := ectolinq.Filter(relatedIDs, func(id models.ProductID) bool {
		return !id.Valid()
	})
	if len(invalid) > 0 {
		return httperror.NewHTTPError(http.StatusBadRequest, "related_ids must be positive integers")
	}
	if ectolinq.Contains(relatedIDs, productID) {
		return httperror.NewHTTPError(http.StatusBadRequest, "a product cannot be related to itself")
	}
	return nil
}

func toHTTPError(err error) error {
	if storageErr, ok := apperrors.AsStorageError(err); ok {
		return storageErr.ToHTTPError()
	}
	return err
}

func storageDetail(err error) string {
	if storageErr, ok := apperrors.AsStorageError(err); ok {
		return storageErr.Err.Error()
	}
	return err.Error()
}

func formatID(productID models.ProductID) string {
	return strconv.FormatInt(int64(productID), 10)
}
