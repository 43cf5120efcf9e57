package web

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	"weldgateway/cmd/weldgateway/config"
	"weldgateway/pkg/device"
	"weldgateway/pkg/gateway"
	"weldgateway/pkg/generic"

	"k8s.io/klog/v2"
)

type Server struct {
	*generic.Server
	*config.Config
}

func NewServer(router *gin.Engine, port string, config *config.Config) (*Server, error) {
	s := &generic.Server{
		Router: router,
		Port:   port,
	}

	server := &Server{
		Server: s,
		Config: config,
	}

	server.InstallHandlers()

	return server, nil
}

func (s *Server) InstallHandlers() {
	v1 := s.Router.Group("/api/v1")
	device.InstallHandler(v1, s.Config.DeviceMgr)
	gateway.InstallHandler(v1, s.Config.GatewayMgr)
}

// Serve binds the port, serves in the background and returns the function
// that stops collectors and then the HTTP server. A port that cannot be bound
// is returned as an error.
func (s *Server) Serve() (func(ctx context.Context), error) {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", s.Port),
		Handler: s.Router,
	}
	tlsEnabled := len(s.Config.CertFile) != 0 && len(s.Config.KeyFile) != 0
	if tlsEnabled {
		x509KeyPair, err := tls.LoadX509KeyPair(s.Config.CertFile, s.Config.KeyFile)
		if err != nil {
			return nil, err
		}
		srv.TLSConfig = &tls.Config{
			Certificates: []tls.Certificate{x509KeyPair},
		}
	}

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return nil, fmt.Errorf("listen on port %s: %w", s.Port, err)
	}
	go func() {
		var err error
		if tlsEnabled {
			err = srv.ServeTLS(ln, "", "")
		} else {
			err = srv.Serve(ln)
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			klog.ErrorS(err, "Failed to serve", "port", s.Port)
		}
	}()

	return func(ctx context.Context) {
		srv.SetKeepAlivesEnabled(false)
		if err := s.Config.DeviceMgr.Shutdown(ctx); err != nil {
			klog.ErrorS(err, "Failed to stop collectors")
		}
		if err := srv.Shutdown(ctx); err != nil {
			klog.ErrorS(err, "Failed to stop http server")
		}
	}, nil
}
