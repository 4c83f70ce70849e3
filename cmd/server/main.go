package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/ctutil/backend/internal/api"
	"github.com/ctutil/backend/internal/config"
	"github.com/ctutil/backend/internal/logging"
	"github.com/ctutil/backend/internal/storage"
	"github.com/ctutil/backend/internal/token"
	"github.com/ctutil/backend/internal/wechat"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// Get the executable's directory for config resolution
	exePath, err := os.Executable()
	if err != nil {
		fmt.Printf("Failed to get executable path: %v\n", err)
		os.Exit(1)
	}
	exeDir := filepath.Dir(exePath)

	// Load XML configuration
	configPath := filepath.Join(exeDir, "ctutil.config")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Printf("Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	slogger, err := logging.Setup(logging.Options{
		Level:      cfg.Logging.Level,
		File:       cfg.Logging.File,
		Format:     cfg.Logging.Format,
		ConfigFile: cfg.Logging.ConfigFile,
	})
	if err != nil {
		fmt.Printf("Failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	log := logging.NewSlogLogger(slogger)

	// Initialize storage
	fileStore, err := storage.NewLocalStore(cfg.Storage.StaticRoot)
	if err != nil {
		fmt.Printf("Failed to initialize storage: %v\n", err)
		os.Exit(1)
	}

	tokens := token.NewCodec(cfg.Token.Salt, token.WithExpiry(cfg.TokenExpiry()))

	wechatOpts := []wechat.Option{
		wechat.WithBaseURL(cfg.WeChat.BaseURL),
		wechat.WithTimeout(cfg.WeChatTimeout()),
	}
	webLogin := wechat.NewWebLogin(wechat.Credentials{
		AppID:     cfg.WeChat.WebAppID,
		AppSecret: cfg.WeChat.WebAppSecret,
	}, cfg.WeChat.WebRedirectURL, wechatOpts...)
	mini := wechat.NewMiniProgram(wechat.Credentials{
		AppID:     cfg.WeChat.MiniAppID,
		AppSecret: cfg.WeChat.MiniAppSecret,
	}, wechatOpts...)

	h := api.NewHandlers(&api.Dependencies{
		Store:              fileStore,
		Tokens:             tokens,
		WebLogin:           webLogin,
		MiniProgram:        mini,
		Logger:             log,
		MultipartMaxMemory: cfg.MultipartMaxMemory(),
		UploadCategories:   cfg.UploadCategories(),
		Version:            Version,
	})

	e := echo.New()
	e.HideBanner = true
	api.SetupMiddleware(e, log)

	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			return !cfg.Logging.EnableRequestLogging || c.Request().URL.Path == "/api/health"
		},
	}))

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 1024 * 4,
	}))

	// Body limit middleware
	e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	routes := api.BuildRoutes(h)
	api.Register(e, routes)

	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	fmt.Printf("\n")
	fmt.Printf("╔═══════════════════════════════════════════════════════════╗\n")
	fmt.Printf("║           CTUtil Server                                   ║\n")
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Version:    %-45s║\n", Version)
	fmt.Printf("║  Build Time: %-45s║\n", BuildTime)
	fmt.Printf("║  Routes:     %-45d║\n", len(api.Paths(routes)))
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Config:    %-46s║\n", configPath)
	fmt.Printf("║  Listen:    http://%-38s║\n", cfg.GetServerAddr())
	fmt.Printf("║  Static:    %-46s║\n", fileStore.Root())
	fmt.Printf("╚═══════════════════════════════════════════════════════════╝\n")
	fmt.Printf("\n")

	log.Info(context.Background(), "server starting", "addr", s.Addr, "version", Version)
	e.Logger.Fatal(e.StartServer(s))
}
