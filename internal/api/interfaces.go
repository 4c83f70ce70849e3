// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import "github.com/labstack/echo/v4"

// HealthHandler handles health and introspection endpoints
type HealthHandler interface {
	HandleHealth(c echo.Context) error
	HandleTime(c echo.Context) error
}

// TokenHandler issues and verifies signed tokens
type TokenHandler interface {
	HandleIssueToken(c echo.Context) error
	HandleVerifyToken(c echo.Context) error
	RequireToken(next echo.HandlerFunc) echo.HandlerFunc
}

// UploadHandler handles file upload operations
type UploadHandler interface {
	HandleUploadFile(c echo.Context) error
	HandleUploadAll(c echo.Context) error
	HandleContent(c echo.Context) error
}

// WeChatHandler exposes the vendor login and messaging flows
type WeChatHandler interface {
	HandleWebLogin(c echo.Context) error
	HandleMiniSession(c echo.Context) error
	HandleMiniUserInfo(c echo.Context) error
	HandleMiniTemplate(c echo.Context) error
}
