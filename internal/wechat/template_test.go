package wechat

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/ctutil/backend/internal/common"
	"github.com/ctutil/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const templateSendPath = "/cgi-bin/message/wxopen/template/send"

func validMessage() TemplateMessage {
	return TemplateMessage{
		ToUser:     testutil.OpenID,
		TemplateID: "tpl-1",
		Page:       "pages/index",
		FormID:     "form-1",
		Data:       map[string]any{"keyword1": map[string]string{"value": "hi"}},
	}
}

func TestSendTemplate(t *testing.T) {
	m, srv := newMini(t, testutil.AppSecret)

	resp, err := m.SendTemplate(context.Background(), validMessage())
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"errcode": float64(0), "errmsg": "ok"}, resp)

	assert.Equal(t, 1, srv.Hits("/cgi-bin/token"))
	assert.Equal(t, testutil.AccessToken, srv.LastQuery(templateSendPath)["access_token"])

	var sent map[string]any
	require.NoError(t, json.Unmarshal(srv.LastBody(templateSendPath), &sent))
	assert.Equal(t, "tpl-1", sent["template_id"])
	assert.Equal(t, "form-1", sent["form_id"])
	assert.NotContains(t, sent, "emphasis_keyword")
}

func TestSendTemplate_MissingFields(t *testing.T) {
	m, srv := newMini(t, testutil.AppSecret)

	_, err := m.SendTemplate(context.Background(), TemplateMessage{
		ToUser:     "u",
		TemplateID: "t",
		Page:       "p",
	})
	assert.ErrorIs(t, err, common.ErrInvalidArgument)
	assert.Contains(t, err.Error(), "form_id, data")
	assert.Equal(t, 0, srv.TotalHits())
}

func TestSendTemplate_BadCredentials(t *testing.T) {
	m, srv := newMini(t, "wrong")

	_, err := m.SendTemplate(context.Background(), validMessage())
	assert.ErrorIs(t, err, common.ErrAuthentication)
	assert.Equal(t, 0, srv.Hits(templateSendPath))
}

func TestTemplateMessage_Validate(t *testing.T) {
	assert.NoError(t, validMessage().Validate())

	msg := validMessage()
	msg.Data = nil
	assert.ErrorIs(t, msg.Validate(), common.ErrInvalidArgument)
}

func TestSendTemplate_ForwardsExtraKeys(t *testing.T) {
	m, srv := newMini(t, testutil.AppSecret)

	var msg TemplateMessage
	require.NoError(t, json.Unmarshal([]byte(`{
		"touser": "u", "template_id": "t", "page": "p", "form_id": "f",
		"data": {"k": {"value": "v"}},
		"color": "#173177", "touser_extra": {"x": 1}
	}`), &msg))
	assert.Equal(t, map[string]any{"color": "#173177", "touser_extra": map[string]any{"x": float64(1)}}, msg.Extra)
	require.NoError(t, msg.Validate())

	_, err := m.SendTemplate(context.Background(), msg)
	require.NoError(t, err)

	var sent map[string]any
	require.NoError(t, json.Unmarshal(srv.LastBody(templateSendPath), &sent))
	assert.Equal(t, "#173177", sent["color"])
	assert.Equal(t, map[string]any{"x": float64(1)}, sent["touser_extra"])
	assert.Equal(t, "u", sent["touser"])
	assert.Equal(t, "f", sent["form_id"])
}

func TestTemplateMessage_KnownFieldsWinOverExtra(t *testing.T) {
	msg := validMessage()
	msg.Extra = map[string]any{"touser": "spoofed", "lang": "zh_CN"}

	b, err := json.Marshal(msg)
	require.NoError(t, err)

	var sent map[string]any
	require.NoError(t, json.Unmarshal(b, &sent))
	assert.Equal(t, testutil.OpenID, sent["touser"])
	assert.Equal(t, "zh_CN", sent["lang"])
}
