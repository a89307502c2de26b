package http

import "github.com/labstack/echo/v4"

// Handler defines HTTP route registration interface. Route groups that need
// throttling apply the supplied middleware.
type Handler interface {
	RegisterRoutes(e *echo.Echo, throttle ...echo.MiddlewareFunc)
}
