package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ctutil/backend/internal/common"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func TestNew_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		data map[string]any
		want map[string]any
	}{
		{
			name: "empty",
			data: map[string]any{},
			want: map[string]any{},
		},
		{
			name: "nested values",
			data: map[string]any{"data": []any{"a", 1.5}, "meta": map[string]any{"n": 2}},
			want: map[string]any{"data": []any{"a", 1.5}, "meta": map[string]any{"n": float64(2)}},
		},
		{
			name: "enum reduced to scalar",
			data: map[string]any{"data": "ok", "state": StateSuccess},
			want: map[string]any{"data": "ok", "state": float64(1)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := New(tt.data, "")
			require.NoError(t, err)

			var got map[string]any
			require.NoError(t, json.Unmarshal(resp.Body(), &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNew_RejectsNonMapping(t *testing.T) {
	for _, data := range []any{nil, "text", 42, []string{"a"}, map[int]string{1: "a"}, struct{ A int }{1}} {
		_, err := New(data, "")
		assert.Truef(t, errors.Is(err, common.ErrInvalidArgument), "data %#v: got %v", data, err)
	}
}

func TestNew_Headers(t *testing.T) {
	resp, err := New(map[string]string{"a": "b"}, "")
	require.NoError(t, err)

	assert.Equal(t, "*", resp.Header.Get(echo.HeaderAccessControlAllowHeaders))
	assert.Equal(t, "*", resp.Header.Get(echo.HeaderAccessControlAllowOrigin))
	assert.Equal(t, "true", resp.Header.Get(echo.HeaderAccessControlAllowCredentials))
	assert.Equal(t, "POST, GET, OPTIONS", resp.Header.Get(echo.HeaderAccessControlAllowMethods))
	assert.Empty(t, resp.Header.Get(TokenHeader))
	assert.Empty(t, resp.Header.Get(echo.HeaderAccessControlExposeHeaders))

	resp, err = New(map[string]string{"a": "b"}, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", resp.Header.Get(TokenHeader))
	assert.Equal(t, TokenHeader, resp.Header.Get(echo.HeaderAccessControlExposeHeaders))
}

func TestError_Envelope(t *testing.T) {
	var got struct {
		Data  string `json:"data"`
		State int    `json:"state"`
	}

	require.NoError(t, json.Unmarshal(ErrorDefault("boom").Body(), &got))
	assert.Equal(t, "boom", got.Data)
	assert.Equal(t, 0, got.State)

	require.NoError(t, json.Unmarshal(Error("bad", StateInvalidArgument).Body(), &got))
	assert.Equal(t, 3, got.State)
}

func TestSend(t *testing.T) {
	e := echo.New()

	t.Run("json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		require.NoError(t, JSON(c, map[string]any{"data": 1, "state": StateSuccess}, "abc"))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "abc", rec.Header().Get(TokenHeader))
		assert.JSONEq(t, `{"data":1,"state":1}`, rec.Body.String())
	})

	t.Run("msgpack", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(echo.HeaderAccept, MIMEMsgpack)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		require.NoError(t, Fail(c, "nope", StateLoginRequired))

		assert.Equal(t, MIMEMsgpack, rec.Header().Get(echo.HeaderContentType))
		var got map[string]any
		require.NoError(t, msgpack.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, "nope", got["data"])
		assert.EqualValues(t, StateLoginRequired, got["state"])
	})

	t.Run("invalid data", func(t *testing.T) {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
		assert.ErrorIs(t, JSON(c, []int{1}, ""), common.ErrInvalidArgument)
	})
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "success", StateSuccess.String())
	assert.Equal(t, "unknown", State(99).String())
}

func TestWithStatus(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	resp := Error("gone", StateNormalError).WithStatus(http.StatusNotFound)
	assert.Equal(t, http.StatusNotFound, resp.Status())
	require.NoError(t, resp.Send(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "*", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}
