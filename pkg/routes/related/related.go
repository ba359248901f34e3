package related

import (
	"context"
	"net/http"
	"strconv"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

var validate = validator.New()

type Service interface {
	Get(ctx context.Context, productID models.ProductID, mode models.ResolutionMode, limit int, locale string) (models.RelatedProductsResponse, error)
	Set(ctx context.Context, productID models.ProductID, relatedIDs []models.ProductID) error
	Replace(ctx context.Context, productID models.ProductID, relatedIDs []models.ProductID) error
	Remove(ctx context.Context, productID models.ProductID) error
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Register registers related products routes
func (h *Handler) Register(g *echo.Group) {
	g.GET("/:id/related", h.Get)
	g.POST("/:id/related", h.Set)
	g.PUT("/:id/related", h.Replace)
	g.DELETE("/:id/related", h.Remove)
}

// Get returns the related products of a product
func (h *Handler) Get(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "related_handler.Get")
	defer span.End()

	productID, err := productIDParam(c)
	if err != nil {
		return err
	}

	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return httperror.NewHTTPError(http.StatusBadRequest, "limit must be a non-negative integer")
		}
	}

	response, err := h.service.Get(ctx, productID, models.ResolutionMode(c.QueryParam("mode")), limit, c.QueryParam("locale"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, response)
}

// Set adds curated relationships
func (h *Handler) Set(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "related_handler.Set")
	defer span.End()

	productID, req, err := bindRelationship(c)
	if err != nil {
		return err
	}

	if err := h.service.Set(ctx, productID, req.RelatedIDs); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Replace swaps the curated relationships of a product
func (h *Handler) Replace(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "related_handler.Replace")
	defer span.End()

	productID, req, err := bindRelationship(c)
	if err != nil {
		return err
	}

	if err := h.service.Replace(ctx, productID, req.RelatedIDs); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Remove deletes every curated relationship touching a product
func (h *Handler) Remove(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "related_handler.Remove")
	defer span.End()

	productID, err := productIDParam(c)
	if err != nil {
		return err
	}

	if err := h.service.Remove(ctx, productID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func productIDParam(c echo.Context) (models.ProductID, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, httperror.NewHTTPError(http.StatusBadRequest, "id must be a positive integer")
	}
	return models.ProductID(id), nil
}

func bindRelationship(c echo.Context) (models.ProductID, models.SetRelatedProductsRequest, error) {
	productID, err := productIDParam(c)
	if err != nil {
		return 0, models.SetRelatedProductsRequest{}, err
	}

	var req models.SetRelatedProductsRequest
	if err := c.Bind(&req); err != nil {
		return 0, models.SetRelatedProductsRequest{}, httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return 0, models.SetRelatedProductsRequest{}, httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return productID, req, nil
}
