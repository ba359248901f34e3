package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/clover/pkg/context"
)

// QueryLocale overrides the Accept-Language header when present.
const QueryLocale = "locale"

func Context(defaultLocale string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			req := c.Request()

			requestID := req.Header.Get(echo.HeaderXRequestID)
			if requestID == "" {
				requestID = uuid.New().String()
			}
			c.Response().Header().Set(echo.HeaderXRequestID, requestID)

			locale := c.QueryParam(QueryLocale)
			if locale == "" {
				locale = req.Header.Get("Accept-Language")
			}
			if locale == "" {
				locale = defaultLocale
			}

			ctx := req.Context()
			ctx = context.SetRequestID(ctx, requestID)
			ctx = context.SetMethod(ctx, req.Method)
			ctx = context.SetRoute(ctx, req.URL.Path)
			ctx = context.SetRemoteIP(ctx, c.RealIP())
			ctx = context.SetLocale(ctx, locale)

			c.SetRequest(req.WithContext(ctx))

			return next(c)
		}
	}
}
