package provider

import (
	"context"
	"fmt"
	"strings"
)

// Vendor identifiers accepted in provider specs.
const (
	VendorArk    = "ark"
	VendorOpenAI = "openai"
)

// Credentials aggregates per-vendor credentials shared by every chain.
type Credentials struct {
	Ark    ArkConfig
	OpenAI OpenAIConfig
}

// Factory creates providers from "vendor:model" specs with consistent logic.
type Factory struct {
	creds Credentials
}

// NewFactory returns a Factory over the given credentials.
func NewFactory(creds Credentials) *Factory {
	return &Factory{creds: creds}
}

// Create builds a single provider from a "vendor:model" spec.
func (f *Factory) Create(ctx context.Context, spec string) (Provider, error) {
	vendor, modelName, ok := strings.Cut(strings.TrimSpace(spec), ":")
	if !ok || modelName == "" {
		return nil, fmt.Errorf("invalid provider spec %q, want vendor:model", spec)
	}

	switch strings.ToLower(vendor) {
	case VendorArk:
		if !f.creds.Ark.Enabled() {
			return nil, fmt.Errorf("provider spec %q requires Ark credentials", spec)
		}
		return NewArk(ctx, f.creds.Ark, modelName)
	case VendorOpenAI:
		if !f.creds.OpenAI.Enabled() {
			return nil, fmt.Errorf("provider spec %q requires an OpenAI API key", spec)
		}
		return NewOpenAI(f.creds.OpenAI, modelName), nil
	default:
		return nil, fmt.Errorf("unknown provider vendor: %s", vendor)
	}
}

// BuildChain builds an ordered chain from a list of "vendor:model" specs. The
// list order is the fallback order.
func (f *Factory) BuildChain(ctx context.Context, name string, specs []string) (*Chain, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("%s: no provider specs configured", name)
	}

	providers := make([]Provider, 0, len(specs))
	for _, spec := range specs {
		p, err := f.Create(ctx, spec)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		providers = append(providers, p)
	}
	return NewChain(name, providers), nil
}
