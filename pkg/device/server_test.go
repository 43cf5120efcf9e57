package device

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(m *Manager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	InstallHandler(r.Group("/api/v1"), m)
	return r
}

func do(r http.Handler, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestListDevicesHandler(t *testing.T) {
	m, _ := newFakeManager(t, "dock-1", "dock-2")
	r := newRouter(m)

	w := do(r, "/api/v1/devices")
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Devices []map[string]interface{} `json:"devices"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Devices, 2)
	assert.Equal(t, "dock-1", body.Devices[0]["name"])
	assert.Equal(t, "collecting", body.Devices[0]["collectStatus"])
	assert.NotContains(t, body.Devices[0], "state")

	w = do(r, "/api/v1/devices?exploded=true&filter="+url.QueryEscape(`{"name":"dock-2"}`))
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Devices, 1)
	assert.Equal(t, "dock-2", body.Devices[0]["name"])
	assert.Contains(t, body.Devices[0], "state")
}

func TestListDevicesBadFilter(t *testing.T) {
	m, _ := newFakeManager(t, "dock-1")
	w := do(newRouter(m), "/api/v1/devices?filter="+url.QueryEscape("{not json"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "10001")
}

func TestGetDeviceHandler(t *testing.T) {
	m, _ := newFakeManager(t, "dock-1")
	r := newRouter(m)

	w := do(r, "/api/v1/devices/dock-1")
	require.Equal(t, http.StatusOK, w.Code)
	var view map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, "id-dock-1", view["id"])
	assert.Equal(t, map[string]interface{}{"port": "/dev/dock-1"}, view["spec"])
	assert.Equal(t, map[string]interface{}{"cycles": float64(3)}, view["state"])

	w = do(r, "/api/v1/devices/dock-1?exploded=false")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "spec")

	w = do(r, "/api/v1/devices/missing")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Resource missing not found.")
}
