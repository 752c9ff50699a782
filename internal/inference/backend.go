// Package inference dispatches embedding/generation/vision/transcription
// calls to a small set of pluggable backends, each specified purely by the
// capability methods it implements rather than by a type hierarchy: a
// backend is its capability bundle.
package inference

import (
	"context"
	"fmt"

	"matric-memory/internal/apierr"
	"matric-memory/internal/types"
)

// Backend is the minimum every provider implements: a name for logging and
// registry lookup, and a liveness probe.
type Backend interface {
	Name() string
	HealthCheck(ctx context.Context) error
}

// Embedder produces dense vectors for a batch of texts under the given
// configuration (model, dimension, optional MRL truncation).
type Embedder interface {
	Backend
	Embed(ctx context.Context, texts []string, cfg types.EmbeddingConfig) ([][]float32, error)
}

// Generator produces freeform text completions, backing AiRevision and
// TitleGeneration job handlers.
type Generator interface {
	Backend
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
}

// ImageDescriber produces a text description of an image, backing a future
// vision-enrichment handler; no concrete implementation ships here beyond
// the registry contract itself.
type ImageDescriber interface {
	Backend
	DescribeImage(ctx context.Context, image []byte, contentType string) (string, error)
}

// Transcriber produces a text transcript of audio, backing a future
// transcription handler; no concrete implementation ships here beyond the
// registry contract itself.
type Transcriber interface {
	Backend
	Transcribe(ctx context.Context, audio []byte, contentType string) (string, error)
}

// GenerateOptions tunes a single Generate call.
type GenerateOptions struct {
	MaxTokens   int
	Temperature float64
}

// Registry resolves a provider tag to its Embedder/Generator. Lookup is by
// string tag rather than by concrete type, matching the capability-bundle
// dispatch style: a provider is registered once per capability it offers.
type Registry struct {
	embedders  map[string]Embedder
	generators map[string]Generator
}

func NewRegistry() *Registry {
	return &Registry{
		embedders:  make(map[string]Embedder),
		generators: make(map[string]Generator),
	}
}

func (r *Registry) RegisterEmbedder(tag string, e Embedder) {
	r.embedders[tag] = e
}

func (r *Registry) RegisterGenerator(tag string, g Generator) {
	r.generators[tag] = g
}

// Embedder looks up a registered embedding backend by provider tag. A
// caller with no configured backend for the tag gets a ServiceUnavailable-
// shaped error, matching the degrade-rather-than-panic contract inference
// callers rely on (search falls back to FTS-only; job handlers fail the
// job rather than the worker).
func (r *Registry) Embedder(tag string) (Embedder, error) {
	e, ok := r.embedders[tag]
	if !ok {
		return nil, fmt.Errorf("%w: no embedding backend registered for provider %q", apierr.ErrServiceUnavailable, tag)
	}
	return e, nil
}

func (r *Registry) Generator(tag string) (Generator, error) {
	g, ok := r.generators[tag]
	if !ok {
		return nil, fmt.Errorf("no generation backend registered for provider %q", tag)
	}
	return g, nil
}
