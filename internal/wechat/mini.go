package wechat

import (
	"context"
	"fmt"
	"net/url"

	"github.com/ctutil/backend/internal/common"
)

// Session is the result of exchanging a mini-program login code.
type Session struct {
	Status
	OpenID     string `json:"openid"`
	SessionKey string `json:"session_key"`
	UnionID    string `json:"unionid,omitempty"`
}

// AccessToken is an application access token from the client credential grant.
type AccessToken struct {
	Status
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// MiniProgram groups the mini-program endpoints of one application.
type MiniProgram struct {
	creds Credentials
	client
}

func NewMiniProgram(creds Credentials, opts ...Option) *MiniProgram {
	return &MiniProgram{creds: creds, client: newClient(opts)}
}

// Session exchanges a login code for the user's session key.
func (m *MiniProgram) Session(ctx context.Context, code string) (*Session, error) {
	var s Session
	err := m.getJSON(ctx, "/sns/jscode2session", url.Values{
		"appid":      {m.creds.AppID},
		"secret":     {m.creds.AppSecret},
		"js_code":    {code},
		"grant_type": {"authorization_code"},
	}, &s)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// UserInfo decrypts the encrypted user info blob handed to the mini-program.
func (m *MiniProgram) UserInfo(sessionKey, encryptedData, iv string) (map[string]any, error) {
	return DecryptData(m.creds.AppID, sessionKey, encryptedData, iv)
}

// AccessToken fetches an application access token. A vendor error code is
// reported as common.ErrAuthentication.
func (m *MiniProgram) AccessToken(ctx context.Context) (*AccessToken, error) {
	var tok AccessToken
	err := m.getJSON(ctx, "/cgi-bin/token", url.Values{
		"grant_type": {"client_credential"},
		"appid":      {m.creds.AppID},
		"secret":     {m.creds.AppSecret},
	}, &tok)
	if err != nil {
		return nil, err
	}
	if tok.ErrCode != 0 {
		return nil, fmt.Errorf("error APPID or error APPSECRET: %w: %v", common.ErrAuthentication, tok.Err())
	}
	return &tok, nil
}
