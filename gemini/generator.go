package gemini

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/hiremind/backend/config"
)

// ErrNoGenerator is returned when neither a user key nor a server default is available
var ErrNoGenerator = errors.New("no gemini generator configured")

// Attachment is binary input sent alongside a prompt (e.g. a PDF resume)
type Attachment struct {
	MIMEType string
	Data     []byte
}

// Generator produces a text completion for a prompt
type Generator interface {
	Generate(ctx context.Context, prompt string, attachments ...Attachment) (string, error)
	Close() error
}

// KeyedFactory builds a Generator bound to a Gemini API key
type KeyedFactory func(ctx context.Context, apiKey, model string) (Generator, error)

// Provider hands out Generators: one per distinct user API key, plus a server
// default (Vertex AI when a project is configured, else the server API key).
type Provider struct {
	model    string
	fallback Generator
	factory  KeyedFactory
	logger   *zap.Logger

	mu    sync.Mutex
	keyed map[string]Generator
}

// NewProvider creates the provider from configuration
func NewProvider(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Provider, error) {
	p := &Provider{
		model:   cfg.GeminiModel,
		factory: newAPIKeyGenerator,
		logger:  logger.Named("gemini"),
		keyed:   make(map[string]Generator),
	}

	switch {
	case cfg.ProjectID != "":
		gen, err := NewVertexGenerator(ctx, cfg.ProjectID, cfg.Location, cfg.GeminiModel)
		if err != nil {
			return nil, err
		}
		p.fallback = gen
		p.logger.Info("default generator uses Vertex AI",
			zap.String("project", cfg.ProjectID), zap.String("model", cfg.GeminiModel))
	case cfg.GeminiAPIKey != "":
		gen, err := NewAPIKeyGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, err
		}
		p.fallback = gen
		p.logger.Info("default generator uses the Gemini API", zap.String("model", cfg.GeminiModel))
	default:
		p.logger.Warn("no default generator configured, user API keys are required")
	}

	return p, nil
}

// NewStaticProvider wraps fixed generators; factory may be nil when per-user keys are not needed
func NewStaticProvider(fallback Generator, factory KeyedFactory, logger *zap.Logger) *Provider {
	return &Provider{
		fallback: fallback,
		factory:  factory,
		logger:   logger,
		keyed:    make(map[string]Generator),
	}
}

// For returns the generator for apiKey, falling back to the server default when apiKey is empty
func (p *Provider) For(ctx context.Context, apiKey string) (Generator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" || p.factory == nil {
		if p.fallback == nil {
			return nil, ErrNoGenerator
		}
		return p.fallback, nil
	}

	sum := sha256.Sum256([]byte(apiKey))
	cacheKey := hex.EncodeToString(sum[:])

	p.mu.Lock()
	defer p.mu.Unlock()

	if gen, ok := p.keyed[cacheKey]; ok {
		return gen, nil
	}

	gen, err := p.factory(ctx, apiKey, p.model)
	if err != nil {
		return nil, fmt.Errorf("create keyed generator: %w", err)
	}
	p.keyed[cacheKey] = gen
	return gen, nil
}

// Close releases every generator the provider created
func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs []error
	for key, gen := range p.keyed {
		errs = append(errs, gen.Close())
		delete(p.keyed, key)
	}
	if p.fallback != nil {
		errs = append(errs, p.fallback.Close())
	}
	return errors.Join(errs...)
}
