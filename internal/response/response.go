// Package response builds the {data, state} envelope returned by every
// handler, together with the permissive CORS headers the frontend expects.
package response

import (
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/ctutil/backend/internal/common"
	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"
)

// TokenHeader carries an opaque session token back to the client.
const TokenHeader = "token"

const (
	MIMEMsgpack  = "application/msgpack"
	MIMEXMsgpack = "application/x-msgpack"
)

// Response is a fully built envelope response ready to be sent.
type Response struct {
	Header http.Header
	status int
	data   any
	body   []byte
}

// New validates data, encodes it as JSON and attaches the CORS headers. data
// must be a map keyed by strings. A non-empty token is exposed to the browser
// through the token header.
func New(data any, token string) (*Response, error) {
	if !isMapping(data) {
		return nil, fmt.Errorf("response data must be a map, got %T: %w", data, common.ErrInvalidArgument)
	}

	body, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encoding response: %w", err)
	}

	h := http.Header{}
	h.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	h.Set(echo.HeaderAccessControlAllowHeaders, "*")
	h.Set(echo.HeaderAccessControlAllowOrigin, "*")
	h.Set(echo.HeaderAccessControlAllowCredentials, "true")
	h.Set(echo.HeaderAccessControlAllowMethods, "POST, GET, OPTIONS")
	if token != "" {
		h.Set(TokenHeader, token)
		h.Set(echo.HeaderAccessControlExposeHeaders, TokenHeader)
	}

	return &Response{Header: h, status: http.StatusOK, data: data, body: body}, nil
}

// Error builds the {data: message, state: state} envelope.
func Error(message string, state State) *Response {
	// a map[string]any always passes New's validation
	resp, _ := New(map[string]any{
		"data":  message,
		"state": state,
	}, "")
	return resp
}

// ErrorDefault is Error with StateNormalError.
func ErrorDefault(message string) *Response {
	return Error(message, StateNormalError)
}

// Body returns the JSON encoded envelope.
func (r *Response) Body() []byte {
	return r.body
}

// WithStatus overrides the HTTP status, 200 by default.
func (r *Response) WithStatus(code int) *Response {
	r.status = code
	return r
}

// Status returns the HTTP status Send will use.
func (r *Response) Status() int {
	return r.status
}

// Send writes the response. Clients asking for msgpack get
// the same envelope msgpack-encoded.
func (r *Response) Send(c echo.Context) error {
	out := c.Response().Header()
	for k, vs := range r.Header {
		out[k] = vs
	}

	if wantsMsgpack(c.Request()) {
		body, err := msgpack.Marshal(r.data)
		if err != nil {
			return fmt.Errorf("encoding response: %w", err)
		}
		out.Set(echo.HeaderContentType, MIMEMsgpack)
		return c.Blob(r.status, MIMEMsgpack, body)
	}
	return c.Blob(r.status, echo.MIMEApplicationJSON, r.body)
}

// JSON builds and sends an envelope in one step.
func JSON(c echo.Context, data any, token string) error {
	resp, err := New(data, token)
	if err != nil {
		return err
	}
	return resp.Send(c)
}

// Success sends {data: data, state: StateSuccess}.
func Success(c echo.Context, data any) error {
	return JSON(c, map[string]any{"data": data, "state": StateSuccess}, "")
}

// Fail sends an error envelope.
func Fail(c echo.Context, message string, state State) error {
	return Error(message, state).Send(c)
}

func isMapping(data any) bool {
	if data == nil {
		return false
	}
	t := reflect.TypeOf(data)
	return t.Kind() == reflect.Map && t.Key().Kind() == reflect.String
}

func wantsMsgpack(r *http.Request) bool {
	accept := r.Header.Get(echo.HeaderAccept)
	return strings.Contains(accept, MIMEMsgpack) || strings.Contains(accept, MIMEXMsgpack)
}
