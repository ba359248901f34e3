package context

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	ctx = SetRequestID(ctx, "req-1")
	ctx = SetMethod(ctx, "GET")
	ctx = SetRoute(ctx, "/api/v1/products/10/related")
	ctx = SetRemoteIP(ctx, "10.0.0.1")
	ctx = SetLocale(ctx, "fr")

	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, "GET", GetMethod(ctx))
	assert.Equal(t, "/api/v1/products/10/related", GetRoute(ctx))
	assert.Equal(t, "10.0.0.1", GetRemoteIP(ctx))
	assert.Equal(t, "fr", GetLocale(ctx))
}

func TestMissingValues(t *testing.T) {
	ctx := context.Background()

	assert.Empty(t, GetRequestID(ctx))
	assert.Empty(t, GetLocale(ctx))
}
