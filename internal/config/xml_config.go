// Package config provides XML-based configuration management.
package config

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// AppConfig represents the root XML configuration structure
type AppConfig struct {
	XMLName xml.Name `xml:"CTUtil"`

	Server  ServerConfig  `xml:"Server"`
	Storage StorageConfig `xml:"Storage"`
	Token   TokenConfig   `xml:"Token"`
	WeChat  WeChatConfig  `xml:"WeChat"`
	Logging LoggingConfig `xml:"Logging"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port         int    `xml:"Port"`
	BindAddress  string `xml:"BindAddress"`
	ReadTimeout  int    `xml:"ReadTimeoutSeconds"`
	WriteTimeout int    `xml:"WriteTimeoutSeconds"`
	IdleTimeout  int    `xml:"IdleTimeoutSeconds"`
	BodyLimit    string `xml:"BodyLimit"`
}

// StorageConfig contains upload storage settings
type StorageConfig struct {
	StaticRoot  string `xml:"StaticRoot"`
	MaxMemoryMB int    `xml:"MultipartMaxMemoryMB"`
	// Categories is a comma separated allow-list for ?category= on uploads
	Categories string `xml:"Categories"`
}

// TokenConfig contains signed token settings
type TokenConfig struct {
	Salt          string `xml:"Salt"`
	ExpirySeconds int    `xml:"ExpirySeconds"`
}

// WeChatConfig contains vendor application credentials
type WeChatConfig struct {
	BaseURL        string `xml:"BaseURL"`
	TimeoutSeconds int    `xml:"TimeoutSeconds"`
	WebAppID       string `xml:"WebAppID"`
	WebAppSecret   string `xml:"WebAppSecret"`
	WebRedirectURL string `xml:"WebRedirectURL"`
	MiniAppID      string `xml:"MiniAppID"`
	MiniAppSecret  string `xml:"MiniAppSecret"`
}

// LoggingConfig contains the logger settings
type LoggingConfig struct {
	Level      string `xml:"Level"`
	File       string `xml:"File"`
	Format     string `xml:"Format"`
	ConfigFile string `xml:"ConfigFile"`
	// EnableRequestLogging toggles the echo access log
	EnableRequestLogging bool `xml:"EnableRequestLogging"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:         8000,
			BindAddress:  "0.0.0.0",
			ReadTimeout:  30,
			WriteTimeout: 30,
			IdleTimeout:  120,
			BodyLimit:    "20M",
		},
		Storage: StorageConfig{
			StaticRoot:  "static",
			MaxMemoryMB: 32,
			Categories:  "image,file",
		},
		Token: TokenConfig{
			ExpirySeconds: 24 * 60 * 60,
		},
		WeChat: WeChatConfig{
			BaseURL:        "https://api.weixin.qq.com",
			TimeoutSeconds: 10,
			WebRedirectURL: "https://www.cingta.com/",
		},
		Logging: LoggingConfig{
			Level:                "info",
			Format:               "text",
			EnableRequestLogging: true,
		},
	}
}

// LoadConfig loads configuration from XML file
func LoadConfig(configPath string) (*AppConfig, error) {
	// If file doesn't exist, create default
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		config := DefaultConfig()
		if err := config.Save(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		config.applyEnvironmentOverrides()
		config.resolvePaths(filepath.Dir(configPath))
		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := xml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.applyEnvironmentOverrides()
	config.resolvePaths(filepath.Dir(configPath))

	return config, nil
}

// Save saves the configuration to XML file
func (c *AppConfig) Save(configPath string) error {
	output, err := xml.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(xml.Header + "\n<!-- CTUtil backend configuration -->\n<!-- This file is auto-generated on first run -->\n\n")
	content := append(header, output...)

	if err := os.WriteFile(configPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// applyEnvironmentOverrides allows environment variables to override config values
func (c *AppConfig) applyEnvironmentOverrides() {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}

	overrides := map[string]*string{
		"STATIC_ROOT":        &c.Storage.StaticRoot,
		"TOKEN_SALT":         &c.Token.Salt,
		"WECHAT_BASE_URL":    &c.WeChat.BaseURL,
		"WECHAT_WEB_APPID":   &c.WeChat.WebAppID,
		"WECHAT_WEB_SECRET":  &c.WeChat.WebAppSecret,
		"WECHAT_MINI_APPID":  &c.WeChat.MiniAppID,
		"WECHAT_MINI_SECRET": &c.WeChat.MiniAppSecret,
		"LOG_LEVEL":          &c.Logging.Level,
	}
	for env, field := range overrides {
		if v := os.Getenv(env); v != "" {
			*field = v
		}
	}
}

// resolvePaths converts relative paths to absolute based on config file location
func (c *AppConfig) resolvePaths(configDir string) {
	if !filepath.IsAbs(c.Storage.StaticRoot) {
		c.Storage.StaticRoot = filepath.ToSlash(filepath.Join(configDir, c.Storage.StaticRoot))
	}
	if c.Logging.File != "" && !filepath.IsAbs(c.Logging.File) {
		c.Logging.File = filepath.Join(configDir, c.Logging.File)
	}
	if c.Logging.ConfigFile != "" && !filepath.IsAbs(c.Logging.ConfigFile) {
		c.Logging.ConfigFile = filepath.Join(configDir, c.Logging.ConfigFile)
	}
}

// Validate reports settings the server cannot start without
func (c *AppConfig) Validate() error {
	if c.Token.Salt == "" {
		return fmt.Errorf("token salt is required (Token/Salt or TOKEN_SALT)")
	}
	if c.Token.ExpirySeconds <= 0 {
		return fmt.Errorf("token expiry must be positive")
	}
	return nil
}

// GetServerAddr returns the server bind address
func (c *AppConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.BindAddress, c.Server.Port)
}

// TokenExpiry returns the token lifetime
func (c *AppConfig) TokenExpiry() time.Duration {
	return time.Duration(c.Token.ExpirySeconds) * time.Second
}

// WeChatTimeout returns the outbound HTTP timeout
func (c *AppConfig) WeChatTimeout() time.Duration {
	return time.Duration(c.WeChat.TimeoutSeconds) * time.Second
}

// MultipartMaxMemory returns the multipart in-memory limit in bytes
func (c *AppConfig) MultipartMaxMemory() int64 {
	return int64(c.Storage.MaxMemoryMB) << 20
}

// UploadCategories returns the upload category allow-list
func (c *AppConfig) UploadCategories() []string {
	var out []string
	for _, v := range strings.Split(c.Storage.Categories, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
