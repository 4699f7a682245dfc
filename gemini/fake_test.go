package gemini

import (
	"context"
	"sync"
)

// fakeGenerator returns canned responses and records prompts.
type fakeGenerator struct {
	mu          sync.Mutex
	response    string
	err         error
	prompts     []string
	attachments []Attachment
	closed      bool
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string, attachments ...Attachment) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	f.attachments = append(f.attachments, attachments...)
	return f.response, f.err
}

func (f *fakeGenerator) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeGenerator) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}
