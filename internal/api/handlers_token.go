// handlers_token.go - Token issue/verify handlers and middleware
package api

import (
	"github.com/ctutil/backend/internal/common"
	"github.com/ctutil/backend/internal/response"
	"github.com/ctutil/backend/internal/token"
	"github.com/labstack/echo/v4"
)

// TokenPayloadKey is the echo context key RequireToken stores the payload under
const TokenPayloadKey = "token_payload"

// TokenHandlerImpl implements the TokenHandler interface
type TokenHandlerImpl struct {
	codec *token.Codec
}

// NewTokenHandler creates a new token handler
func NewTokenHandler(codec *token.Codec) TokenHandler {
	return &TokenHandlerImpl{codec: codec}
}

// HandleIssueToken signs the JSON object in the body and returns it in the
// token header
func (h *TokenHandlerImpl) HandleIssueToken(c echo.Context) error {
	var payload map[string]any
	if err := c.Bind(&payload); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	if len(payload) == 0 {
		return NewValidationError("payload")
	}

	tok, err := h.codec.Encode(payload)
	if err != nil {
		return NewInternalError("failed to sign token", err)
	}

	return response.JSON(c, map[string]any{
		"data":  payload,
		"state": response.StateSuccess,
	}, tok)
}

// HandleVerifyToken decodes the token header and echoes its payload
func (h *TokenHandlerImpl) HandleVerifyToken(c echo.Context) error {
	payload, err := h.decode(c)
	if err != nil {
		return err
	}
	return response.Success(c, payload)
}

// RequireToken rejects requests without a valid token header
func (h *TokenHandlerImpl) RequireToken(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		payload, err := h.decode(c)
		if err != nil {
			return err
		}
		c.Set(TokenPayloadKey, payload)
		return next(c)
	}
}

func (h *TokenHandlerImpl) decode(c echo.Context) (map[string]any, error) {
	raw := c.Request().Header.Get(response.TokenHeader)
	if raw == "" {
		return nil, common.ErrInvalidToken
	}

	var payload map[string]any
	if err := h.codec.Decode(raw, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}
