package gateway

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"weldgateway/pkg/apis/response"

	"k8s.io/klog/v2"
)

func InstallHandler(group *gin.RouterGroup, mgr *Manager) {
	group.GET("/gateway/meta", getGatewayMeta(mgr))
	group.GET("/gateway/stats", getGatewayStats(mgr))
	group.GET("/gateway/cpu", getGatewayCpu(mgr))
	group.GET("/gateway/mem", getGatewayMem(mgr))
	group.GET("/gateway/disk", getGatewayDisk(mgr))
}

func getGatewayMeta(mgr *Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, mgr.GetGatewayMeta())
	}
}

func getGatewayStats(mgr *Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		rm, err := mgr.Stats(c.Request.Context())
		if err != nil {
			klog.V(3).InfoS("Failed to read some host statistics", "err", err)
		}
		c.JSON(http.StatusOK, rm)
	}
}

func getGatewayCpu(mgr *Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		cpu, err := mgr.getGatewayCpu(c.Request.Context())
		if err != nil {
			klog.V(3).InfoS("Failed to read cpu usage", "err", err)
			response.Abort(c, http.StatusInternalServerError, err)
			return
		}
		c.JSON(http.StatusOK, ResponseModel{Cpu: cpu})
	}
}

func getGatewayMem(mgr *Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		mem, err := mgr.getGatewayMem(c.Request.Context())
		if err != nil {
			klog.V(3).InfoS("Failed to read memory usage", "err", err)
			response.Abort(c, http.StatusInternalServerError, err)
			return
		}
		c.JSON(http.StatusOK, ResponseModel{Mem: mem})
	}
}

func getGatewayDisk(mgr *Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		disk, err := mgr.getGatewayDisk(c.Request.Context())
		if err != nil {
			klog.V(3).InfoS("Failed to read disk usage", "err", err)
			response.Abort(c, http.StatusInternalServerError, err)
			return
		}
		c.JSON(http.StatusOK, ResponseModel{Disk: disk})
	}
}
