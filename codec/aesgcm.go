package codec

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"io"
	"strings"

	"github.com/spf13/cast"

	gonest "github.com/reoring/gonest"
)

const gcmPrefix = "gcm:"

// AESGCM returns a Transform encrypting string values with AES-GCM. The
// stored form is "gcm:" + base64(nonce || ciphertext), which keeps the
// document valid JSON and lets Decode recognize its own output: values
// without the prefix (fresh plaintext assignments) pass through unchanged.
// key must be 16, 24, or 32 bytes.
func AESGCM(key []byte) (gonest.Transform, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, gonest.Issues{{Path: "/", Code: gonest.CodeParseError, Message: "aes-gcm transform: bad key", Cause: err}}
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, gonest.Issues{{Path: "/", Code: gonest.CodeParseError, Message: "aes-gcm transform: init failed", Cause: err}}
	}
	return aesgcmTransform{aead: aead}, nil
}

type aesgcmTransform struct {
	aead cipher.AEAD
}

func (t aesgcmTransform) Encode(ctx context.Context, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return nil, gonest.Issues{{Path: "/", Code: gonest.CodeInvalidType, Message: "aes-gcm transform expects a string value", Cause: err}}
	}
	nonce := make([]byte, t.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, gonest.Issues{{Path: "/", Code: gonest.CodeParseError, Message: "aes-gcm transform: nonce generation failed", Cause: err}}
	}
	sealed := t.aead.Seal(nonce, nonce, []byte(s), nil)
	return gcmPrefix + base64.StdEncoding.EncodeToString(sealed), nil
}

func (t aesgcmTransform) Decode(ctx context.Context, v any) (any, error) {
	s, ok := v.(string)
	if !ok || !strings.HasPrefix(s, gcmPrefix) {
		return v, nil
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(s, gcmPrefix))
	if err != nil {
		return nil, gonest.Issues{{Path: "/", Code: gonest.CodeParseError, Message: "malformed aes-gcm payload", Cause: err}}
	}
	ns := t.aead.NonceSize()
	if len(raw) < ns {
		return nil, gonest.Issues{{Path: "/", Code: gonest.CodeParseError, Message: "truncated aes-gcm payload"}}
	}
	plain, err := t.aead.Open(nil, raw[:ns], raw[ns:], nil)
	if err != nil {
		return nil, gonest.Issues{{Path: "/", Code: gonest.CodeParseError, Message: "aes-gcm authentication failed", Cause: err}}
	}
	return string(plain), nil
}
