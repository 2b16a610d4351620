package ai

import "forensics/core"

// NoProviderMessage is returned when no LLM provider has an API key
const NoProviderMessage = "No AI provider configured. Please add GOOGLE_AI_API_KEY, OPENAI_API_KEY, or ANTHROPIC_API_KEY to .env"

// Dispatcher picks the provider that serves a request. Providers are kept in
// priority order and only the first is ever called; a failing call is not
// retried on the next one.
type Dispatcher struct {
	providers []Provider
}

// NewDispatcher keeps providers in the given order
func NewDispatcher(providers ...Provider) *Dispatcher {
	return &Dispatcher{providers: providers}
}

// Primary returns the highest priority provider
func (d *Dispatcher) Primary() (Provider, error) {
	if len(d.providers) == 0 {
		return nil, core.NewNoProviderError(NoProviderMessage)
	}
	return d.providers[0], nil
}

// Names lists the configured providers in priority order
func (d *Dispatcher) Names() []string {
	names := make([]string, 0, len(d.providers))
	for _, p := range d.providers {
		names = append(names, p.Name())
	}
	return names
}
