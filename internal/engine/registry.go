package engine

import (
	"fmt"
	"strings"
	"sync"

	"github.com/phishnix/phishnix/internal/engine/driver"
	"github.com/phishnix/phishnix/internal/engine/driver/gemini"
	"github.com/phishnix/phishnix/internal/engine/driver/openai"
)

// Registry resolves configured providers to drivers. Driver instances are
// cached per provider id.
type Registry struct {
	cfg Config

	mu      sync.Mutex
	drivers map[string]driver.Driver
}

// ResolvedProvider is a provider selected for one completion.
type ResolvedProvider struct {
	ProviderID string
	Provider   ProviderConfig
	Driver     driver.Driver
	Model      string
}

// NewRegistry builds a registry from configuration.
func NewRegistry(cfg Config) *Registry {
	return &Registry{cfg: cfg}
}

// Resolve selects the provider routed for the prompt slug, falling back to
// the default provider, then to the only enabled provider.
func (r *Registry) Resolve(slug string, modelOverride string) (*ResolvedProvider, error) {
	providerID, providerCfg, err := r.resolveProvider(slug)
	if err != nil {
		return nil, err
	}

	drv, err := r.driverFor(providerID, providerCfg)
	if err != nil {
		return nil, err
	}

	model := strings.TrimSpace(modelOverride)
	if model == "" {
		model = strings.TrimSpace(providerCfg.Model)
	}
	if model == "" {
		return nil, fmt.Errorf("provider %q has no model configured", providerID)
	}

	return &ResolvedProvider{
		ProviderID: providerID,
		Provider:   providerCfg,
		Driver:     drv,
		Model:      model,
	}, nil
}

func (r *Registry) resolveProvider(slug string) (string, ProviderConfig, error) {
	if r == nil {
		return "", ProviderConfig{}, fmt.Errorf("engine registry not configured")
	}

	slug = strings.TrimSpace(slug)
	if slug != "" {
		if providerID, ok := r.cfg.Routing[slug]; ok {
			providerID = strings.TrimSpace(providerID)
			if providerID != "" {
				providerCfg, ok := r.cfg.Providers[providerID]
				if !ok {
					return "", ProviderConfig{}, fmt.Errorf("unknown provider %q routed for %q", providerID, slug)
				}
				if !providerCfg.Enabled {
					return "", ProviderConfig{}, fmt.Errorf("provider %q is disabled", providerID)
				}
				return providerID, providerCfg, nil
			}
		}
	}

	if id := strings.TrimSpace(r.cfg.DefaultProvider); id != "" {
		providerCfg, ok := r.cfg.Providers[id]
		if !ok {
			return "", ProviderConfig{}, fmt.Errorf("default provider %q not configured", id)
		}
		if !providerCfg.Enabled {
			return "", ProviderConfig{}, fmt.Errorf("default provider %q is disabled", id)
		}
		return id, providerCfg, nil
	}

	var onlyID string
	var onlyCfg ProviderConfig
	for providerID, providerCfg := range r.cfg.Providers {
		if !providerCfg.Enabled {
			continue
		}
		if onlyID != "" {
			return "", ProviderConfig{}, fmt.Errorf("multiple providers enabled; set engine.default_provider")
		}
		onlyID = providerID
		onlyCfg = providerCfg
	}
	if onlyID == "" {
		return "", ProviderConfig{}, fmt.Errorf("no enabled engine provider configured")
	}
	return onlyID, onlyCfg, nil
}

func (r *Registry) driverFor(providerID string, cfg ProviderConfig) (driver.Driver, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.drivers == nil {
		r.drivers = make(map[string]driver.Driver)
	}
	if drv, ok := r.drivers[providerID]; ok {
		return drv, nil
	}

	var drv driver.Driver
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "openai", "":
		drv = openai.NewClient(cfg.BaseURL, cfg.APIKey)
	case "gemini":
		drv = gemini.NewClient(cfg.BaseURL, cfg.APIKey)
	default:
		return nil, fmt.Errorf("unsupported engine driver %q for provider %q", cfg.Driver, providerID)
	}

	r.drivers[providerID] = drv
	return drv, nil
}
