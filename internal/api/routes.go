// routes.go - Declarative route tree and registration helpers
package api

import (
	"net/http"
	"path"
	"strconv"

	"github.com/ctutil/backend/internal/logging"
	"github.com/ctutil/backend/internal/paging"
	"github.com/ctutil/backend/internal/response"
	"github.com/ctutil/backend/internal/storage"
	"github.com/ctutil/backend/internal/token"
	"github.com/ctutil/backend/internal/upload"
	"github.com/ctutil/backend/internal/wechat"
	"github.com/labstack/echo/v4"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Store              storage.Store
	Tokens             *token.Codec
	WebLogin           *wechat.WebLogin
	MiniProgram        *wechat.MiniProgram
	Logger             logging.Logger
	MultipartMaxMemory int64
	UploadCategories   []string
	Version            string
}

// Handlers holds all handler instances
type Handlers struct {
	Health HealthHandler
	Token  TokenHandler
	Upload UploadHandler
	WeChat WeChatHandler
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	log := deps.Logger
	if log == nil {
		log = logging.Nop()
	}
	return &Handlers{
		Health: NewHealthHandler(deps.Version),
		Token:  NewTokenHandler(deps.Tokens),
		Upload: NewUploadHandler(upload.NewManager(deps.Store, log), deps.MultipartMaxMemory, deps.UploadCategories),
		WeChat: NewWeChatHandler(deps.WebLogin, deps.MiniProgram, deps.Tokens, log),
	}
}

// Route is a node of the route tree. Nodes with children only contribute a
// path prefix and middleware; leaves are registered as endpoints.
type Route struct {
	Path       string
	Method     string
	Handler    echo.HandlerFunc
	Middleware []echo.MiddlewareFunc
	Children   []Route
}

// BuildRoutes returns the API route tree
func BuildRoutes(h *Handlers) []Route {
	var tree []Route
	tree = []Route{
		{Path: "/api", Children: []Route{
			{Path: "/health", Method: http.MethodGet, Handler: h.Health.HandleHealth},
			{Path: "/time", Method: http.MethodGet, Handler: h.Health.HandleTime},
			{Path: "/routes", Method: http.MethodGet, Handler: func(c echo.Context) error {
				return handleListRoutes(c, Paths(tree))
			}},
			{Path: "/token", Children: []Route{
				{Path: "", Method: http.MethodPost, Handler: h.Token.HandleIssueToken},
				{Path: "/verify", Method: http.MethodGet, Handler: h.Token.HandleVerifyToken},
			}},
			{Path: "/files/upload", Children: []Route{
				{Path: "", Method: http.MethodPost, Handler: h.Upload.HandleUploadFile},
				{Path: "/all", Method: http.MethodPost, Handler: h.Upload.HandleUploadAll},
			}},
			{Path: "/content", Method: http.MethodPost, Handler: h.Upload.HandleContent},
			{Path: "/wechat", Children: []Route{
				{Path: "/login", Method: http.MethodPost, Handler: h.WeChat.HandleWebLogin},
				{Path: "/mini", Children: []Route{
					{Path: "/session", Method: http.MethodPost, Handler: h.WeChat.HandleMiniSession},
					{Path: "/userinfo", Method: http.MethodPost, Handler: h.WeChat.HandleMiniUserInfo},
					{Path: "/template", Method: http.MethodPost, Handler: h.WeChat.HandleMiniTemplate,
						Middleware: []echo.MiddlewareFunc{h.Token.RequireToken}},
				}},
			}},
		}},
	}
	return tree
}

// Paths walks the tree and returns the full path of every leaf in
// declaration order
func Paths(routes []Route) []string {
	var out []string
	walk(routes, "/", nil, func(full string, _ Route, _ []echo.MiddlewareFunc) {
		out = append(out, full)
	})
	return out
}

// Register mounts every leaf of the tree on e. Middleware declared on a node
// applies to all leaves below it.
func Register(e *echo.Echo, routes []Route) {
	walk(routes, "/", nil, func(full string, r Route, mw []echo.MiddlewareFunc) {
		method := r.Method
		if method == "" {
			method = http.MethodGet
		}
		e.Add(method, full, r.Handler, mw...)
	})
}

func walk(routes []Route, prefix string, mw []echo.MiddlewareFunc, leaf func(string, Route, []echo.MiddlewareFunc)) {
	for _, r := range routes {
		full := path.Join(prefix, r.Path)
		chain := append(append([]echo.MiddlewareFunc{}, mw...), r.Middleware...)
		if len(r.Children) == 0 {
			leaf(full, r, chain)
			continue
		}
		walk(r.Children, full, chain, leaf)
	}
}

// handleListRoutes pages through the route paths with ?page= and ?size=
func handleListRoutes(c echo.Context, paths []string) error {
	page, size := 1, len(paths)
	if raw := c.QueryParam("page"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			return NewValidationError("page")
		}
		page = v
	}
	if raw := c.QueryParam("size"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			return NewValidationError("size")
		}
		size = v
	}

	return response.Success(c, map[string]any{
		"total": len(paths),
		"page":  page,
		"items": paging.Slice(paths, page, size),
	})
}

// SetupMiddleware configures common middleware
func SetupMiddleware(e *echo.Echo, log logging.Logger) {
	e.HTTPErrorHandler = NewErrorHandler(log)
}
