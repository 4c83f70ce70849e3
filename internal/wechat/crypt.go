package wechat

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ctutil/backend/internal/common"
)

var (
	ErrInvalidPadding   = errors.New("wechat: invalid padding")
	ErrInvalidWatermark = fmt.Errorf("invalid buffer: %w", common.ErrIntegrity)
)

// DecryptData decrypts a mini-program encrypted payload with the user's
// session key and checks that the watermark belongs to appID.
func DecryptData(appID, sessionKey, encryptedData, iv string) (map[string]any, error) {
	key, err := base64.StdEncoding.DecodeString(sessionKey)
	if err != nil {
		return nil, fmt.Errorf("decoding session key: %w", err)
	}
	ciphertext, err := base64.StdEncoding.DecodeString(encryptedData)
	if err != nil {
		return nil, fmt.Errorf("decoding encrypted data: %w", err)
	}
	ivBytes, err := base64.StdEncoding.DecodeString(iv)
	if err != nil {
		return nil, fmt.Errorf("decoding iv: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	if len(ivBytes) != block.BlockSize() {
		return nil, fmt.Errorf("iv must be %d bytes, got %d", block.BlockSize(), len(ivBytes))
	}
	if len(ciphertext) == 0 || len(ciphertext)%block.BlockSize() != 0 {
		return nil, fmt.Errorf("ciphertext is not a multiple of the block size")
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, ivBytes).CryptBlocks(plaintext, ciphertext)

	plaintext, err = unpad(plaintext, block.BlockSize())
	if err != nil {
		return nil, err
	}

	var decrypted map[string]any
	if err := json.Unmarshal(plaintext, &decrypted); err != nil {
		return nil, fmt.Errorf("decoding decrypted payload: %w", err)
	}

	watermark, _ := decrypted["watermark"].(map[string]any)
	if got, _ := watermark["appid"].(string); got != appID {
		return nil, ErrInvalidWatermark
	}
	return decrypted, nil
}

// unpad strips PKCS#7 padding. The pad length must be 1..blockSize and every
// pad byte must carry it.
func unpad(b []byte, blockSize int) ([]byte, error) {
	if len(b) == 0 {
		return nil, ErrInvalidPadding
	}
	n := int(b[len(b)-1])
	if n == 0 || n > blockSize || n > len(b) {
		return nil, ErrInvalidPadding
	}
	for _, p := range b[len(b)-n:] {
		if int(p) != n {
			return nil, ErrInvalidPadding
		}
	}
	return b[:len(b)-n], nil
}
