package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_CreatesDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ctutil.config")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	_, err = os.Stat(path)
	assert.NoError(t, err, "default config should be written")
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, filepath.ToSlash(filepath.Join(dir, "static")), cfg.Storage.StaticRoot)
	assert.Equal(t, 24*time.Hour, cfg.TokenExpiry())
	assert.Equal(t, 10*time.Second, cfg.WeChatTimeout())
}

func TestLoadConfig_ReadsFileAndKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ctutil.config")
	xmlData := `<?xml version="1.0" encoding="UTF-8"?>
<CTUtil>
  <Server><Port>9100</Port></Server>
  <Token><Salt>pepper</Salt><ExpirySeconds>60</ExpirySeconds></Token>
  <WeChat><MiniAppID>wx-mini</MiniAppID></WeChat>
  <Logging><ConfigFile>logging.yaml</ConfigFile></Logging>
</CTUtil>`
	require.NoError(t, os.WriteFile(path, []byte(xmlData), 0600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.BindAddress)
	assert.Equal(t, "pepper", cfg.Token.Salt)
	assert.Equal(t, time.Minute, cfg.TokenExpiry())
	assert.Equal(t, "wx-mini", cfg.WeChat.MiniAppID)
	assert.Equal(t, "https://api.weixin.qq.com", cfg.WeChat.BaseURL)
	assert.Equal(t, filepath.Join(dir, "logging.yaml"), cfg.Logging.ConfigFile)
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, "0.0.0.0:9100", cfg.GetServerAddr())
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	t.Setenv("PORT", "7000")
	t.Setenv("TOKEN_SALT", "from-env")
	t.Setenv("WECHAT_WEB_SECRET", "web-secret")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "ctutil.config"))
	require.NoError(t, err)

	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, "from-env", cfg.Token.Salt)
	assert.Equal(t, "web-secret", cfg.WeChat.WebAppSecret)
}

func TestLoadConfig_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.config")
	require.NoError(t, os.WriteFile(path, []byte("<CTUtil><Server>"), 0600))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	assert.Error(t, cfg.Validate(), "salt is required")

	cfg.Token.Salt = "s"
	assert.NoError(t, cfg.Validate())

	cfg.Token.ExpirySeconds = 0
	assert.Error(t, cfg.Validate())
}

func TestUploadCategories(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, []string{"image", "file"}, cfg.UploadCategories())

	cfg.Storage.Categories = " avatar , ,image "
	assert.Equal(t, []string{"avatar", "image"}, cfg.UploadCategories())

	cfg.Storage.Categories = ""
	assert.Empty(t, cfg.UploadCategories())
}
