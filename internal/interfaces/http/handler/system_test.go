package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemHandler_Ping_NoAuthRequired(t *testing.T) {
	api := setupTestAPI(t)

	rec := api.request(t, http.MethodGet, "/api/v1/system/ping", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var ping PingResponse
	decodeData(t, rec, &ping)
	assert.Equal(t, "pong", ping.Message)
	assert.NotEmpty(t, ping.Timestamp)
}

func TestSystemHandler_GetSystemInfo(t *testing.T) {
	api := setupTestAPI(t)

	rec := api.request(t, http.MethodGet, "/api/v1/system/info", api.companyToken(t), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var info SystemInfoResponse
	decodeData(t, rec, &info)
	assert.Equal(t, "Ecobat Portal API", info.Name)
	assert.NotEmpty(t, info.GoVersion)
	assert.NotEmpty(t, info.Uptime)
}

func TestSystemHandler_Health_NoDatabase(t *testing.T) {
	api := setupTestAPI(t)

	rec := api.request(t, http.MethodGet, "/api/v1/system/health", api.companyToken(t), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var health HealthResponse
	decodeData(t, rec, &health)
	assert.Equal(t, "ok", health.Status)
	assert.Nil(t, health.Database)
}
