// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package engine defines the selectable AI backends and their capabilities.
package engine

import "sync"

// =============================================================================
// ENGINE TYPE
// =============================================================================

// Engine identifies a backend AI model.
type Engine string

const (
	OpenAI    Engine = "openai"
	Gemini    Engine = "gemini"
	Anthropic Engine = "anthropic"
	DeepSeek  Engine = "deepseek"
	QwenAI    Engine = "qwenai"
	Mistral   Engine = "mistral"
)

// Default returns the engine used for newly created chats.
func Default() Engine {
	return DeepSeek
}

// String returns the wire identifier of the engine.
func (e Engine) String() string {
	return string(e)
}

// Parse converts a string into a known Engine.
// Returns false for identifiers that are not in the registry.
func Parse(s string) (Engine, bool) {
	e := Engine(s)
	if _, ok := registry[e]; !ok {
		return "", false
	}
	return e, true
}

// All returns every known engine in a stable order.
func All() []Engine {
	return []Engine{OpenAI, Gemini, Anthropic, DeepSeek, QwenAI, Mistral}
}

// =============================================================================
// ENGINE REGISTRY
// =============================================================================

// Info contains display metadata for an engine.
type Info struct {
	// ID is the identifier transmitted to the backend
	ID Engine

	// Name is the human-readable display name
	Name string

	// Provider identifies who operates the model
	Provider string

	// SupportsImages reports whether the engine accepts image parts
	SupportsImages bool
}

// registry holds the known engines with their default capabilities.
// Image capability can be overridden at runtime through a Catalog.
var registry = map[Engine]Info{
	OpenAI: {
		ID:             OpenAI,
		Name:           "OpenAI",
		Provider:       "OpenAI",
		SupportsImages: true,
	},
	Gemini: {
		ID:             Gemini,
		Name:           "Gemini",
		Provider:       "Google",
		SupportsImages: true,
	},
	Anthropic: {
		ID:             Anthropic,
		Name:           "Claude",
		Provider:       "Anthropic",
		SupportsImages: true,
	},
	DeepSeek: {
		ID:             DeepSeek,
		Name:           "DeepSeek",
		Provider:       "DeepSeek",
		SupportsImages: false,
	},
	QwenAI: {
		ID:             QwenAI,
		Name:           "Qwen",
		Provider:       "Alibaba",
		SupportsImages: false,
	},
	Mistral: {
		ID:             Mistral,
		Name:           "Mistral",
		Provider:       "Mistral AI",
		SupportsImages: false,
	},
}

// GetInfo returns the registry entry for an engine.
func GetInfo(e Engine) (Info, bool) {
	info, ok := registry[e]
	return info, ok
}

// =============================================================================
// CAPABILITY CATALOG
// =============================================================================

// Catalog answers capability questions about engines. Image capability is a
// deployment feature flag, so the set of image-capable engines can be replaced
// at runtime (config reload) without touching the static registry.
type Catalog struct {
	mu           sync.RWMutex
	imageCapable map[Engine]bool
}

// NewCatalog creates a catalog seeded from the registry defaults.
func NewCatalog() *Catalog {
	caps := make(map[Engine]bool, len(registry))
	for id, info := range registry {
		caps[id] = info.SupportsImages
	}
	return &Catalog{imageCapable: caps}
}

// SupportsImages reports whether the engine accepts image parts.
// Unknown engines never do.
func (c *Catalog) SupportsImages(e Engine) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.imageCapable[e]
}

// SetImageCapable replaces the set of image-capable engines.
// Unknown identifiers in the list are ignored.
func (c *Catalog) SetImageCapable(engines []Engine) {
	caps := make(map[Engine]bool, len(registry))
	for _, e := range engines {
		if _, ok := registry[e]; ok {
			caps[e] = true
		}
	}

	c.mu.Lock()
	c.imageCapable = caps
	c.mu.Unlock()
}
