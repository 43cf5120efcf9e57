package device

import (
	"encoding/json"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"weldgateway/pkg/apis"
	"weldgateway/pkg/apis/response"
	"weldgateway/pkg/runtime"

	"k8s.io/klog/v2"
)

func InstallHandler(group *gin.RouterGroup, mgr *Manager) {
	group.GET("/devices", listDevices(mgr))
	group.GET("/devices/:name", getDeviceByName(mgr))
}

func listDevices(mgr *Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := c.Request.URL.Query()
		exploded := false
		filter := runtime.DeviceFilter{}
		if len(query) > 0 {
			v := query.Get(apis.Filter)
			if len(v) > 0 {
				if err := json.Unmarshal([]byte(v), &filter); err != nil {
					klog.V(3).InfoS("Failed to parse filter", "filter", v, "err", err)
					response.Abort(c, http.StatusBadRequest, response.ErrMalformedJSON)
					return
				}
			}
			exploded, _ = strconv.ParseBool(query.Get(apis.Exploded))
		}
		views, _ := mgr.ListDevices(&filter, exploded)

		c.JSON(http.StatusOK, &runtime.ResponseModel{Devices: views})
	}
}

func getDeviceByName(mgr *Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("name")
		exploded := true
		if v := c.Query(apis.Exploded); len(v) > 0 {
			exploded, _ = strconv.ParseBool(v)
		}
		view, err := mgr.GetDeviceByName(name, exploded)
		if err != nil {
			if os.IsNotExist(err) {
				response.Abort(c, http.StatusNotFound, response.ErrResourceNotFound(name))
				return
			}
			response.Abort(c, http.StatusInternalServerError, err)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}
