package contextual

import (
	"context"

	"github.com/archstrap/archstrap/internal/system"
)

// platformKey is used to set and retrieve context held values for Platform.
var platformKey = struct{}{}

// WithPlatform extends the context to provide a Platform.
func WithPlatform(ctx context.Context, platform *system.Platform) context.Context {
	return context.WithValue(ctx, platformKey, platform)
}

// Platform fetches the system's Platform provided in ctx.
func Platform(ctx context.Context) *system.Platform {
	if val := ctx.Value(platformKey); val != nil {
		if v, ok := val.(*system.Platform); ok {
			return v
		}
		panic("incoherent context")
	}

	return nil
}
