package codec

import (
	"context"
	"encoding/base64"
	"strings"

	"github.com/spf13/cast"

	gonest "github.com/reoring/gonest"
)

const b64Prefix = "b64:"

// Base64 returns a Transform that stores string values base64-encoded with a
// recognizable prefix. Decode passes unprefixed values through unchanged.
func Base64() gonest.Transform { return base64Transform{} }

type base64Transform struct{}

func (base64Transform) Encode(ctx context.Context, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return nil, gonest.Issues{{Path: "/", Code: gonest.CodeInvalidType, Message: "base64 transform expects a string value", Cause: err}}
	}
	return b64Prefix + base64.StdEncoding.EncodeToString([]byte(s)), nil
}

func (base64Transform) Decode(ctx context.Context, v any) (any, error) {
	s, ok := v.(string)
	if !ok || !strings.HasPrefix(s, b64Prefix) {
		return v, nil
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(s, b64Prefix))
	if err != nil {
		return nil, gonest.Issues{{Path: "/", Code: gonest.CodeParseError, Message: "malformed base64 payload", Cause: err}}
	}
	return string(raw), nil
}
