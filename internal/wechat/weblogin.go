package wechat

import (
	"context"
	"net/url"
)

const qrConnectURL = "https://open.weixin.qq.com/connect/qrconnect"

// OAuthToken is the result of exchanging a web login code.
type OAuthToken struct {
	Status
	AccessToken  string `json:"access_token"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	OpenID       string `json:"openid"`
	Scope        string `json:"scope"`
	UnionID      string `json:"unionid,omitempty"`
}

// WebLogin is the third-party web login flow.
type WebLogin struct {
	creds       Credentials
	redirectURL string
	client
}

func NewWebLogin(creds Credentials, redirectURL string, opts ...Option) *WebLogin {
	return &WebLogin{creds: creds, redirectURL: redirectURL, client: newClient(opts)}
}

// AuthorizeURL is where the browser is sent to scan the login QR code.
func (w *WebLogin) AuthorizeURL(state string) string {
	q := url.Values{
		"appid":         {w.creds.AppID},
		"redirect_uri":  {w.redirectURL},
		"response_type": {"code"},
		"scope":         {"snsapi_login"},
		"state":         {state},
	}
	return qrConnectURL + "?" + q.Encode() + "#wechat_redirect"
}

// AccessToken exchanges an authorization code for an access token and open id.
// Vendor errors are reported in the embedded Status, not as an error.
func (w *WebLogin) AccessToken(ctx context.Context, code string) (*OAuthToken, error) {
	var tok OAuthToken
	err := w.getJSON(ctx, "/sns/oauth2/access_token", url.Values{
		"appid":      {w.creds.AppID},
		"secret":     {w.creds.AppSecret},
		"code":       {code},
		"grant_type": {"authorization_code"},
	}, &tok)
	if err != nil {
		return nil, err
	}
	return &tok, nil
}

// UnionID fetches the union id of the user behind accessToken and openID.
// It is empty when the vendor omits it.
func (w *WebLogin) UnionID(ctx context.Context, accessToken, openID string) (string, error) {
	var info struct {
		UnionID string `json:"unionid"`
	}
	err := w.getJSON(ctx, "/sns/userinfo", url.Values{
		"access_token": {accessToken},
		"openid":       {openID},
	}, &info)
	if err != nil {
		return "", err
	}
	return info.UnionID, nil
}
