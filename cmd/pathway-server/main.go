package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/sdhealth/pathway-tracker/cmd/pathway-server/container"
	"github.com/sdhealth/pathway-tracker/cmd/pathway-server/routes"
	"github.com/sdhealth/pathway-tracker/common/bootstrap"
	"github.com/sdhealth/pathway-tracker/common/server"
)

func main() {
	ctx := context.Background()

	components, err := bootstrap.Setup(ctx, "pathway-server")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to bootstrap pathway-server: %v\n", err)
		os.Exit(1)
	}
	defer components.Shutdown(ctx)

	serviceContainer, err := container.NewContainer(components)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize service container: %v\n", err)
		os.Exit(1)
	}

	e := setupEcho()
	setupMiddleware(e)
	setupHealthCheck(e, serviceContainer)
	registerRoutes(e, serviceContainer)

	srv := server.New("pathway-server", components.Config.Service.Port, e, components.Logger)
	if err := srv.Start(); err != nil {
		components.Logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

func setupEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	return e
}

func setupMiddleware(e *echo.Echo) {
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(echomw.Logger())
}

func setupHealthCheck(e *echo.Echo, c *container.Container) {
	e.GET("/health", func(ec echo.Context) error {
		if err := c.Components.Health(ec.Request().Context()); err != nil {
			return ec.JSON(http.StatusServiceUnavailable, map[string]string{
				"status": "unhealthy",
				"error":  err.Error(),
			})
		}
		return ec.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"service": "pathway-server",
		})
	})
}

func registerRoutes(e *echo.Echo, c *container.Container) {
	routes.RegisterDecisionPointRoutes(e, c)
	routes.RegisterOnPathwayRoutes(e, c)
}
