package wechat

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/ctutil/backend/internal/common"
)

// TemplateMessage is the body of a template message push. Keys without a
// field of their own travel in Extra and are sent along unchanged.
type TemplateMessage struct {
	ToUser          string         `json:"touser"`
	TemplateID      string         `json:"template_id"`
	Page            string         `json:"page"`
	FormID          string         `json:"form_id"`
	Data            map[string]any `json:"data"`
	EmphasisKeyword string         `json:"emphasis_keyword,omitempty"`
	Extra           map[string]any `json:"-"`
}

type templateFields TemplateMessage

var templateKeys = []string{"touser", "template_id", "page", "form_id", "data", "emphasis_keyword"}

func (t TemplateMessage) MarshalJSON() ([]byte, error) {
	known, err := json.Marshal(templateFields(t))
	if err != nil || len(t.Extra) == 0 {
		return known, err
	}

	out := make(map[string]any, len(t.Extra)+len(templateKeys))
	for k, v := range t.Extra {
		out[k] = v
	}
	if err := json.Unmarshal(known, &out); err != nil {
		return nil, err
	}
	return json.Marshal(out)
}

func (t *TemplateMessage) UnmarshalJSON(b []byte) error {
	var f templateFields
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	var all map[string]any
	if err := json.Unmarshal(b, &all); err != nil {
		return err
	}
	for _, k := range templateKeys {
		delete(all, k)
	}
	if len(all) > 0 {
		f.Extra = all
	}
	*t = TemplateMessage(f)
	return nil
}

// Validate reports the missing required fields. Empty strings count as
// missing.
func (t TemplateMessage) Validate() error {
	var missing []string
	if t.ToUser == "" {
		missing = append(missing, "touser")
	}
	if t.TemplateID == "" {
		missing = append(missing, "template_id")
	}
	if t.Page == "" {
		missing = append(missing, "page")
	}
	if t.FormID == "" {
		missing = append(missing, "form_id")
	}
	if t.Data == nil {
		missing = append(missing, "data")
	}
	if len(missing) > 0 {
		return fmt.Errorf("template message missing required fields %s: %w",
			strings.Join(missing, ", "), common.ErrInvalidArgument)
	}
	return nil
}

// SendTemplate pushes a template message and returns the vendor response as is.
func (m *MiniProgram) SendTemplate(ctx context.Context, msg TemplateMessage) (map[string]any, error) {
	if err := msg.Validate(); err != nil {
		return nil, err
	}

	tok, err := m.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	var resp map[string]any
	err = m.postJSON(ctx, "/cgi-bin/message/wxopen/template/send",
		url.Values{"access_token": {tok.AccessToken}}, msg, &resp)
	if err != nil {
		return nil, err
	}
	return resp, nil
}
