// wechat_server.go - Fake WeChat API for testing
package testutil

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// Fixed values the fake server hands out.
const (
	AppID       = "wx-test-app"
	AppSecret   = "wx-test-secret"
	OpenID      = "openid-123"
	UnionID     = "unionid-456"
	AccessToken = "access-token-789"
	SessionKey  = "c2Vzc2lvbi1rZXktMTIzNA==" // "session-key-1234"
)

// WeChatServer records the calls made against the fake endpoints.
type WeChatServer struct {
	*httptest.Server

	mu        sync.Mutex
	hits      map[string]int
	lastQuery map[string]map[string]string
	lastBody  map[string][]byte
}

// NewWeChatServer starts a fake API. Requests with a secret other than
// AppSecret get a vendor error, like the real thing.
func NewWeChatServer(t *testing.T) *WeChatServer {
	t.Helper()
	s := &WeChatServer{
		hits:      make(map[string]int),
		lastQuery: make(map[string]map[string]string),
		lastBody:  make(map[string][]byte),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/sns/oauth2/access_token", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("secret") != AppSecret {
			writeJSON(w, map[string]any{"errcode": 40125, "errmsg": "invalid appsecret"})
			return
		}
		writeJSON(w, map[string]any{
			"access_token":  AccessToken,
			"expires_in":    7200,
			"refresh_token": "refresh",
			"openid":        OpenID,
			"scope":         "snsapi_login",
		})
	})
	mux.HandleFunc("/sns/userinfo", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"openid": r.URL.Query().Get("openid"), "nickname": "tester", "unionid": UnionID})
	})
	mux.HandleFunc("/sns/jscode2session", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"openid": OpenID, "session_key": SessionKey, "unionid": UnionID})
	})
	mux.HandleFunc("/cgi-bin/token", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("secret") != AppSecret {
			writeJSON(w, map[string]any{"errcode": 40001, "errmsg": "invalid credential"})
			return
		}
		writeJSON(w, map[string]any{"access_token": AccessToken, "expires_in": 7200})
	})
	mux.HandleFunc("/cgi-bin/message/wxopen/template/send", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"errcode": 0, "errmsg": "ok"})
	})

	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		query := make(map[string]string)
		for k := range r.URL.Query() {
			query[k] = r.URL.Query().Get(k)
		}

		s.mu.Lock()
		s.hits[r.URL.Path]++
		s.lastQuery[r.URL.Path] = query
		s.lastBody[r.URL.Path] = body
		s.mu.Unlock()

		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(s.Close)
	return s
}

// Hits returns how often path was called.
func (s *WeChatServer) Hits(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

// TotalHits returns the number of calls over all paths.
func (s *WeChatServer) TotalHits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, h := range s.hits {
		n += h
	}
	return n
}

// LastQuery returns the query parameters of the last call to path.
func (s *WeChatServer) LastQuery(path string) map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastQuery[path]
}

// LastBody returns the request body of the last call to path.
func (s *WeChatServer) LastBody(path string) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastBody[path]
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// EncryptUserInfo produces the base64 ciphertext and IV WeChat would send for
// payload, encrypted with the base64 sessionKey.
func EncryptUserInfo(t *testing.T, sessionKey string, payload any) (encrypted, iv string) {
	t.Helper()
	plain, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return EncryptRaw(t, sessionKey, Pad(plain, aes.BlockSize))
}

// EncryptRaw encrypts already padded plaintext.
func EncryptRaw(t *testing.T, sessionKey string, padded []byte) (encrypted, iv string) {
	t.Helper()
	key, err := base64.StdEncoding.DecodeString(sessionKey)
	if err != nil {
		t.Fatalf("decode key: %v", err)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		t.Fatalf("new cipher: %v", err)
	}
	ivBytes := bytes.Repeat([]byte{7}, aes.BlockSize)
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, ivBytes).CryptBlocks(out, padded)
	return base64.StdEncoding.EncodeToString(out), base64.StdEncoding.EncodeToString(ivBytes)
}

// Pad applies PKCS#7 padding.
func Pad(b []byte, blockSize int) []byte {
	n := blockSize - len(b)%blockSize
	return append(b, bytes.Repeat([]byte{byte(n)}, n)...)
}
