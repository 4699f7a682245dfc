package gemini

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
)

func TestProviderFallbackAndCache(t *testing.T) {
	t.Parallel()

	fallback := &fakeGenerator{}
	created := 0
	factory := func(_ context.Context, apiKey, _ string) (Generator, error) {
		created++
		if apiKey == "bad" {
			return nil, errors.New("invalid key")
		}
		return &fakeGenerator{response: apiKey}, nil
	}

	p := NewStaticProvider(fallback, factory, zap.NewNop())
	ctx := context.Background()

	gen, err := p.For(ctx, "")
	if err != nil || gen != fallback {
		t.Fatalf("empty key should use fallback, got %v, %v", gen, err)
	}

	first, err := p.For(ctx, "user-key")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, _ := p.For(ctx, " user-key ")
	if first != second || created != 1 {
		t.Fatalf("expected cached generator, created=%d", created)
	}

	if _, err := p.For(ctx, "bad"); err == nil {
		t.Fatalf("expected factory error")
	}

	if err := p.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	if !fallback.closed || !first.(*fakeGenerator).closed {
		t.Fatalf("expected all generators closed")
	}
}

func TestProviderWithoutFallback(t *testing.T) {
	t.Parallel()

	p := NewStaticProvider(nil, nil, zap.NewNop())
	if _, err := p.For(context.Background(), ""); !errors.Is(err, ErrNoGenerator) {
		t.Fatalf("expected ErrNoGenerator, got %v", err)
	}
}
