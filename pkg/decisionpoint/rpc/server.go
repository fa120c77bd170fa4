// Package rpc provides the HTTP/JSON decision point server: a hand-
// rolled Echo REST API exposing the check operation and the full entity
// CRUD surface over [admin.Service].
//
// # Usage
//
//	svc, _ := admin.NewService(ctx, driver)
//	server, err := rpc.CreateServer(svc, ":8080")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer server.Stop(ctx)
package rpc

import (
	"context"
	"net/http"

	"github.com/diggyk/gatehouse/internal/logging"
	"github.com/diggyk/gatehouse/pkg/decisionpoint"
	"github.com/diggyk/gatehouse/pkg/gatehouse/admin"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

var logger = logging.GetLogger("gatehouse.rpc")

// Server is the HTTP decision point server.
type Server struct {
	echo *echo.Echo
}

// newRouter builds the Echo instance with every route wired to svc,
// without starting a listener. Split out from CreateServer so tests can
// exercise the full route table via httptest without binding a port.
func newRouter(svc *admin.Service) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	h := &handler{svc: svc}

	e.POST("/v1/check", h.check)

	e.POST("/v1/targets", h.addTarget)
	e.PATCH("/v1/targets/:type/:name", h.modifyTarget)
	e.DELETE("/v1/targets/:type/:name", h.removeTarget)
	e.GET("/v1/targets", h.getTargets)

	e.POST("/v1/actors", h.addActor)
	e.PATCH("/v1/actors/:type/:name", h.modifyActor)
	e.DELETE("/v1/actors/:type/:name", h.removeActor)
	e.GET("/v1/actors", h.getActors)

	e.POST("/v1/groups", h.addGroup)
	e.PATCH("/v1/groups/:name", h.modifyGroup)
	e.DELETE("/v1/groups/:name", h.removeGroup)
	e.GET("/v1/groups", h.getGroups)

	e.POST("/v1/roles", h.addRole)
	e.PATCH("/v1/roles/:name", h.modifyRole)
	e.DELETE("/v1/roles/:name", h.removeRole)
	e.GET("/v1/roles", h.getRoles)

	e.POST("/v1/policies", h.addPolicy)
	e.PUT("/v1/policies/:name", h.modifyPolicy)
	e.DELETE("/v1/policies/:name", h.removePolicy)
	e.GET("/v1/policies", h.getPolicies)

	return e
}

// CreateServer builds and starts an HTTP server exposing svc's check and
// CRUD operations, listening on addr. The server starts in a background
// goroutine; use the returned [decisionpoint.Server] to stop it.
func CreateServer(svc *admin.Service, addr string) (decisionpoint.Server, error) {
	e := newRouter(svc)

	go func() {
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.SysErrorf("decision point server exited: %+v", err)
		}
	}()

	logger.SysInfof("decision point listening on %s", addr)

	return &Server{echo: e}, nil
}

// Stop gracefully shuts down the server, waiting for active requests to
// complete or until ctx is cancelled.
func (s *Server) Stop(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
