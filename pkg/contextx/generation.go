package contextx

import (
	"context"
	"fmt"
)

// Generation tags work started on behalf of one user intent.
type Generation uint64

type contextKeyGeneration struct{}

func WithGeneration(ctx context.Context, g Generation) context.Context {
	return context.WithValue(ctx, contextKeyGeneration{}, g)
}

func GenerationFromContext(ctx context.Context) (Generation, error) {
	g, ok := ctx.Value(contextKeyGeneration{}).(Generation)
	if !ok {
		return 0, fmt.Errorf("generation: %w", ErrNoValue)
	}

	return g, nil
}
