// Package codec provides value Transform implementations applied at an
// attribute's leaf during cast (decode) and dump (encode).
package codec

import (
	"context"

	gonest "github.com/reoring/gonest"
)

// Identity returns a Transform that performs identity transformations both
// ways. Useful as a placeholder and in tests.
func Identity() gonest.Transform { return identityTransform{} }

type identityTransform struct{}

func (identityTransform) Encode(ctx context.Context, v any) (any, error) { return v, nil }
func (identityTransform) Decode(ctx context.Context, v any) (any, error) { return v, nil }
