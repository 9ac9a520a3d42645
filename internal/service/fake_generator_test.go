package service

import (
	"context"
	"sync"
)

// fakeGenerator answers prompts through respond and records every call.
type fakeGenerator struct {
	mu      sync.Mutex
	respond func(prompt string, params GenerationParams) (string, error)
	prompts []string
	params  []GenerationParams
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string, params GenerationParams) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.params = append(f.params, params)
	f.mu.Unlock()
	return f.respond(prompt, params)
}

func (f *fakeGenerator) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

func fixedGenerator(text string, err error) *fakeGenerator {
	return &fakeGenerator{respond: func(string, GenerationParams) (string, error) { return text, err }}
}
