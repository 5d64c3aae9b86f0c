package aisvc

import (
	"context"

	"github.com/madrasahub/madrasa/core/ai"
)

// DummyGenerator echoes canned content; it keeps AI screens working in tests
// and local development without an API key.
type DummyGenerator struct {
	Text     string
	Hotspots []ai.Hotspot
	Err      error

	// Prompts records every text prompt received, in order.
	Prompts []string
}

var _ ai.Generator = (*DummyGenerator)(nil)

func (gen *DummyGenerator) GenerateText(_ context.Context, prompt string) (string, error) {
	gen.Prompts = append(gen.Prompts, prompt)
	if gen.Err != nil {
		return "", gen.Err
	}
	if gen.Text == "" {
		return "A diligent student who keeps improving.", nil
	}
	return gen.Text, nil
}

func (gen *DummyGenerator) DetectHotspots(_ context.Context, _, _ string) ([]ai.Hotspot, error) {
	if gen.Err != nil {
		return nil, gen.Err
	}
	return gen.Hotspots, nil
}
