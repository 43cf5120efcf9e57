package gateway

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"weldgateway/pkg/storage"
)

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512B", formatBytes(512))
	assert.Equal(t, "1.00KiB", formatBytes(1024))
	assert.Equal(t, "1.50MiB", formatBytes(3*512*1024))
	assert.Equal(t, "2.00GiB", formatBytes(2<<30))
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "12.35%", formatPercent(12.345678))
}

func TestGatewayMeta(t *testing.T) {
	m := NewGatewayManager("weldgateway", WithDeviceCounter(func() int { return 4 }))
	meta := m.GetGatewayMeta()
	assert.Equal(t, "weldgateway", meta.Name)
	assert.NotEmpty(t, meta.ID)
	assert.Equal(t, 4, meta.Devices)
}

func TestGatewayMetaHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	InstallHandler(r.Group("/api/v1"), NewGatewayManager("weldgateway"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/gateway/meta", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var meta map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &meta))
	assert.Equal(t, "weldgateway", meta["name"])
	assert.Contains(t, meta, "hostname")
}

func TestGatewayInitKeepsIdentity(t *testing.T) {
	store, err := storage.NewFsClient(t.TempDir())
	require.NoError(t, err)

	first := NewGatewayManager("weldgateway")
	first.Init(store)
	id := first.GetGatewayMeta().ID

	second := NewGatewayManager("weldgateway")
	require.NotEqual(t, id, second.GetGatewayMeta().ID)
	second.Init(store)
	assert.Equal(t, id, second.GetGatewayMeta().ID)
}
