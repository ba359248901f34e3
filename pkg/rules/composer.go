package rules

import (
	"context"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/clover/pkg/database"
	apperrors "github.com/Ramsey-B/clover/pkg/errors"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/presenter"
	"github.com/Ramsey-B/clover/pkg/settings"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// Composer builds the rule-based candidate query from the rules enabled in settings at call time.
type Composer struct {
	db        database.DB
	logger    ectologger.Logger
	settings  settings.Reader
	tables    database.Tables
	rules     []Rule
	assembler presenter.Assembler
	presenter presenter.Presenter
	display   presenter.Settings
}

type ComposerOptions struct {
	Tables     database.Tables
	ShopID     int64
	Categories CategoryLookup
	Assembler  presenter.Assembler
	Presenter  presenter.Presenter
	Display    presenter.Settings
}

func NewComposer(db database.DB, logger ectologger.Logger, reader settings.Reader, opts ComposerOptions) *Composer {
	return &Composer{
		db:        db,
		logger:    logger,
		settings:  reader,
		tables:    opts.Tables,
		rules:     DefaultRules(opts.Tables, opts.ShopID, opts.Categories),
		assembler: opts.Assembler,
		presenter: opts.Presenter,
		display:   opts.Display,
	}
}

// DefaultRules returns the match rules in pipeline order. The shop rule is only present for a
// configured shop.
func DefaultRules(tables database.Tables, shopID int64, categories CategoryLookup) []Rule {
	var rules []Rule
	if shopID > 0 {
		rules = append(rules, NewShopRule(tables, shopID))
	}
	return append(rules,
		NewCategoryRule(tables, categories),
		NewDefaultCategoryRule(tables),
		NewManufacturerRule(tables),
		NewSupplierRule(tables),
		NewFeatureRule(tables),
	)
}

// WithRules replaces the rule pipeline.
func (c *Composer) WithRules(rules ...Rule) *Composer {
	c.rules = rules
	return c
}

// Build assembles the candidate query for productID.
func (c *Composer) Build(ctx context.Context, productID models.ProductID) (*database.SelectBuilder, error) {
	ctx, span := tracing.StartSpan(ctx, "rules.Composer.Build")
	defer span.End()

	sb := database.NewSelectBuilder(c.db.Flavor())
	sb.Select(candidateColumn)
	sb.From(sb.As(c.tables.Product(), ProductAlias))

	limit, err := c.settings.GetInt(ctx, settings.ProductsQuantity)
	if err != nil {
		return nil, err
	}
	if limit > 0 {
		sb.Limit(limit)
	}

	for _, rule := range c.rules {
		enabled, err := c.enabled(ctx, rule)
		if err != nil {
			return nil, err
		}
		if !enabled {
			continue
		}
		if err := rule.Contribute(ctx, sb, productID); err != nil {
			c.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
				"id_product": productID,
				"rule":       rule.Name(),
			}).Error("Failed to apply related products rule")
			return nil, err
		}
	}

	sb.Where(sb.NotEqual(candidateColumn, productID))
	sb.GroupBy(candidateColumn)
	return sb, nil
}

func (c *Composer) enabled(ctx context.Context, rule Rule) (bool, error) {
	if rule.Toggle() == "" {
		return true, nil
	}
	return c.settings.GetBool(ctx, rule.Toggle())
}

// Candidates returns the distinct product ids matching every enabled rule. No match is an empty
// slice with a nil error.
func (c *Composer) Candidates(ctx context.Context, productID models.ProductID) ([]models.ProductID, error) {
	ctx, span := tracing.StartSpan(ctx, "rules.Composer.Candidates")
	defer span.End()

	sb, err := c.Build(ctx, productID)
	if err != nil {
		return nil, err
	}

	query, args := sb.Build()
	candidates := []models.ProductID{}
	if err := database.Conn(ctx, c.db).SelectContext(ctx, &candidates, query, args...); err != nil {
		c.logger.WithContext(ctx).WithError(err).WithField("id_product", productID).Error("Failed to query rule based candidates")
		return nil, apperrors.NewStorageError("candidate query", err)
	}
	return candidates, nil
}

// Resolve returns the presentations of the rule-based candidates for productID in locale.
func (c *Composer) Resolve(ctx context.Context, productID models.ProductID, locale string) ([]models.ProductPresentation, error) {
	ctx, span := tracing.StartSpan(ctx, "rules.Composer.Resolve")
	defer span.End()

	candidates, err := c.Candidates(ctx, productID)
	if err != nil {
		return nil, err
	}

	products := make([]models.ProductPresentation, 0, len(candidates))
	for _, candidate := range candidates {
		assembled, err := c.assembler.Assemble(ctx, candidate)
		if err != nil {
			return nil, err
		}
		products = append(products, c.presenter.Present(c.display, assembled, locale))
	}
	return products, nil
}
