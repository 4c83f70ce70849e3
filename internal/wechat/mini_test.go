package wechat

import (
	"context"
	"crypto/aes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/ctutil/backend/internal/common"
	"github.com/ctutil/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMini(t *testing.T, secret string) (*MiniProgram, *testutil.WeChatServer) {
	t.Helper()
	srv := testutil.NewWeChatServer(t)
	return NewMiniProgram(Credentials{AppID: testutil.AppID, AppSecret: secret}, WithBaseURL(srv.URL)), srv
}

func TestMiniProgram_Session(t *testing.T) {
	m, srv := newMini(t, testutil.AppSecret)

	s, err := m.Session(context.Background(), "js-code")
	require.NoError(t, err)
	assert.Equal(t, testutil.SessionKey, s.SessionKey)
	assert.Equal(t, testutil.OpenID, s.OpenID)
	assert.Equal(t, "js-code", srv.LastQuery("/sns/jscode2session")["js_code"])
}

func TestMiniProgram_UserInfo(t *testing.T) {
	m, _ := newMini(t, testutil.AppSecret)
	enc, iv := testutil.EncryptUserInfo(t, testutil.SessionKey, map[string]any{
		"nickName":  "tester",
		"watermark": map[string]any{"appid": testutil.AppID, "timestamp": 1700000000},
	})

	info, err := m.UserInfo(testutil.SessionKey, enc, iv)
	require.NoError(t, err)
	assert.Equal(t, "tester", info["nickName"])
}

func TestMiniProgram_UserInfo_WatermarkMismatch(t *testing.T) {
	m, _ := newMini(t, testutil.AppSecret)
	enc, iv := testutil.EncryptUserInfo(t, testutil.SessionKey, map[string]any{
		"watermark": map[string]any{"appid": "someone-else"},
	})

	_, err := m.UserInfo(testutil.SessionKey, enc, iv)
	assert.ErrorIs(t, err, common.ErrIntegrity)
	assert.ErrorIs(t, err, ErrInvalidWatermark)
}

func TestDecryptData_Padding(t *testing.T) {
	plain, err := json.Marshal(map[string]any{"watermark": map[string]any{"appid": testutil.AppID}})
	require.NoError(t, err)

	t.Run("full block of padding", func(t *testing.T) {
		block := []byte(`{"watermark":{"appid":"` + testutil.AppID + `"},"x":"`)
		for len(block)%aes.BlockSize != aes.BlockSize-2 {
			block = append(block, 'a')
		}
		block = append(block, '"', '}')
		enc, iv := testutil.EncryptRaw(t, testutil.SessionKey, testutil.Pad(block, aes.BlockSize))

		_, err := DecryptData(testutil.AppID, testutil.SessionKey, enc, iv)
		assert.NoError(t, err)
	})

	t.Run("pad value larger than block", func(t *testing.T) {
		padded := testutil.Pad(append([]byte{}, plain...), aes.BlockSize)
		padded[len(padded)-1] = 17
		enc, iv := testutil.EncryptRaw(t, testutil.SessionKey, padded)

		_, err := DecryptData(testutil.AppID, testutil.SessionKey, enc, iv)
		assert.ErrorIs(t, err, ErrInvalidPadding)
	})

	t.Run("inconsistent pad bytes", func(t *testing.T) {
		padded := append(append([]byte{}, plain...), 'x')
		for len(padded)%aes.BlockSize != aes.BlockSize-3 {
			padded = append(padded, ' ')
		}
		padded = append(padded, 1, 2, 3)
		enc, iv := testutil.EncryptRaw(t, testutil.SessionKey, padded)

		_, err := DecryptData(testutil.AppID, testutil.SessionKey, enc, iv)
		assert.ErrorIs(t, err, ErrInvalidPadding)
	})
}

func TestDecryptData_BadInput(t *testing.T) {
	_, err := DecryptData(testutil.AppID, "!!", "AAAA", "AAAA")
	assert.Error(t, err)

	_, err = DecryptData(testutil.AppID, testutil.SessionKey, "AAAA", "AAAAAAAAAAAAAAAAAAAAAA==")
	assert.Error(t, err)

	enc, _ := testutil.EncryptUserInfo(t, testutil.SessionKey, map[string]any{})
	_, err = DecryptData(testutil.AppID, testutil.SessionKey, enc, "AAAA")
	assert.Error(t, err)
}

func TestMiniProgram_AccessToken_AuthError(t *testing.T) {
	m, _ := newMini(t, "wrong")

	_, err := m.AccessToken(context.Background())
	assert.True(t, errors.Is(err, common.ErrAuthentication), "got %v", err)
}
