package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestWithContextAndFromContext(t *testing.T) {
	logger := zap.NewNop()
	ctx := WithContext(context.Background(), logger)

	assert.Equal(t, logger, FromContext(ctx))
}

func TestFromContext_NotFound(t *testing.T) {
	logger := FromContext(context.Background())
	assert.NotNil(t, logger, "missing logger falls back to a no-op")
}

func TestWithRequestID(t *testing.T) {
	ctx, logger := WithRequestID(context.Background(), zap.NewNop(), "req-123")

	assert.NotNil(t, logger)
	assert.Equal(t, "req-123", GetRequestID(ctx))
	assert.Equal(t, logger, FromContext(ctx))
}

func TestWithCompanyAndUserID(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()

	ctx, logger = WithCompanyID(ctx, logger, "company-1")
	ctx, _ = WithUserID(ctx, logger, "user-1")

	assert.Equal(t, "company-1", GetCompanyID(ctx))
	assert.Equal(t, "user-1", GetUserID(ctx))
}

func TestGetters_Empty(t *testing.T) {
	ctx := context.Background()

	assert.Empty(t, GetRequestID(ctx))
	assert.Empty(t, GetCompanyID(ctx))
	assert.Empty(t, GetUserID(ctx))
}
