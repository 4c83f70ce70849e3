package upload

import (
	"context"
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"

	"github.com/ctutil/backend/internal/common"
)

// ContentField is the form field scanned for inline images.
const ContentField = "content"

var inlineImagePattern = regexp.MustCompile(`"data:image/(.*?);base64,(.*?)"`)

// ExtractInlineImage finds the first quoted data URI image in
// fields["content"], stores the decoded image and replaces the quoted URI with
// the quoted stored path. Only the first match is processed; a different data
// URI later in the text is left as is. Other fields pass through untouched.
func (m *Manager) ExtractInlineImage(ctx context.Context, fields map[string]any) error {
	raw, ok := fields[ContentField]
	if !ok || raw == nil {
		fields[ContentField] = ""
		return nil
	}
	content, ok := raw.(string)
	if !ok {
		return fmt.Errorf("%s must be a string, got %T: %w", ContentField, raw, common.ErrInvalidArgument)
	}
	if content == "" {
		return nil
	}

	match := inlineImagePattern.FindStringSubmatch(content)
	if match == nil {
		return nil
	}
	imageType, encoded := match[1], match[2]

	decoded, err := decodeLenient(encoded)
	if err != nil {
		return fmt.Errorf("decoding inline image: %w", err)
	}

	info, err := m.store.SaveBytes(DefaultCategory, imageType, decoded)
	if err != nil {
		return err
	}
	m.log.Debug(ctx, "inline image stored", "type", imageType, "path", info.Path, "size", info.Size)

	fields[ContentField] = strings.ReplaceAll(content, match[0], `"`+info.Path+`"`)
	return nil
}

// decodeLenient drops characters outside the standard base64 alphabet before
// decoding, so escaped or wrapped payloads still decode.
func decodeLenient(s string) ([]byte, error) {
	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '+', r == '/', r == '=':
			return r
		}
		return -1
	}, s)
	return base64.StdEncoding.DecodeString(clean)
}
