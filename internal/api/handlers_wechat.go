// handlers_wechat.go - WeChat login and messaging handlers
package api

import (
	"errors"

	"github.com/ctutil/backend/internal/common"
	"github.com/ctutil/backend/internal/logging"
	"github.com/ctutil/backend/internal/response"
	"github.com/ctutil/backend/internal/token"
	"github.com/ctutil/backend/internal/wechat"
	"github.com/labstack/echo/v4"
)

// WeChatHandlerImpl implements the WeChatHandler interface
type WeChatHandlerImpl struct {
	web   *wechat.WebLogin
	mini  *wechat.MiniProgram
	codec *token.Codec
	log   logging.Logger
}

// NewWeChatHandler creates a new WeChat handler
func NewWeChatHandler(web *wechat.WebLogin, mini *wechat.MiniProgram, codec *token.Codec, log logging.Logger) WeChatHandler {
	return &WeChatHandlerImpl{web: web, mini: mini, codec: codec, log: log}
}

type codeRequest struct {
	Code string `json:"code" form:"code"`
}

func (r *codeRequest) validate() error {
	if r.Code == "" {
		return NewValidationError("code")
	}
	return nil
}

// HandleWebLogin exchanges a web login code for the user's ids and returns a
// session token carrying them
func (h *WeChatHandlerImpl) HandleWebLogin(c echo.Context) error {
	var req codeRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	if err := req.validate(); err != nil {
		return err
	}

	ctx := c.Request().Context()
	tok, err := h.web.AccessToken(ctx, req.Code)
	if err != nil {
		return NewInternalError("wechat access token request failed", err)
	}
	if err := tok.Err(); err != nil {
		h.log.Warn(ctx, "wechat web login rejected", "error", err)
		return response.Fail(c, err.Error(), response.StateVendorError)
	}

	unionID := tok.UnionID
	if unionID == "" {
		unionID, err = h.web.UnionID(ctx, tok.AccessToken, tok.OpenID)
		if err != nil {
			return NewInternalError("wechat user info request failed", err)
		}
	}

	identity := map[string]any{"openid": tok.OpenID, "unionid": unionID}
	session, err := h.codec.Encode(identity)
	if err != nil {
		return NewInternalError("failed to sign token", err)
	}

	return response.JSON(c, map[string]any{"data": identity, "state": response.StateSuccess}, session)
}

// HandleMiniSession exchanges a mini-program login code for a session
func (h *WeChatHandlerImpl) HandleMiniSession(c echo.Context) error {
	var req codeRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	if err := req.validate(); err != nil {
		return err
	}

	s, err := h.mini.Session(c.Request().Context(), req.Code)
	if err != nil {
		return NewInternalError("wechat session request failed", err)
	}
	if err := s.Err(); err != nil {
		return response.Fail(c, err.Error(), response.StateVendorError)
	}

	return response.Success(c, s)
}

type userInfoRequest struct {
	SessionKey    string `json:"session_key"`
	EncryptedData string `json:"encrypted_data"`
	IV            string `json:"iv"`
}

// HandleMiniUserInfo decrypts the encrypted user info of a mini-program user
func (h *WeChatHandlerImpl) HandleMiniUserInfo(c echo.Context) error {
	var req userInfoRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	switch {
	case req.SessionKey == "":
		return NewValidationError("session_key")
	case req.EncryptedData == "":
		return NewValidationError("encrypted_data")
	case req.IV == "":
		return NewValidationError("iv")
	}

	info, err := h.mini.UserInfo(req.SessionKey, req.EncryptedData, req.IV)
	if err != nil {
		if errors.Is(err, common.ErrIntegrity) {
			return err
		}
		return NewBadRequestError("invalid encrypted data", err)
	}

	return response.Success(c, info)
}

// HandleMiniTemplate pushes a template message
func (h *WeChatHandlerImpl) HandleMiniTemplate(c echo.Context) error {
	var msg wechat.TemplateMessage
	if err := c.Bind(&msg); err != nil {
		return NewBadRequestError("invalid request body", err)
	}

	resp, err := h.mini.SendTemplate(c.Request().Context(), msg)
	if err != nil {
		return err
	}

	return response.Success(c, resp)
}
