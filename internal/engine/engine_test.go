// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package engine defines the selectable AI backends and their capabilities.
package engine

import "testing"

// =============================================================================
// PARSE TESTS
// =============================================================================

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Engine
		ok   bool
	}{
		{name: "openai", in: "openai", want: OpenAI, ok: true},
		{name: "deepseek", in: "deepseek", want: DeepSeek, ok: true},
		{name: "mistral", in: "mistral", want: Mistral, ok: true},
		{name: "unknown", in: "gpt-5000", ok: false},
		{name: "empty", in: "", ok: false},
		{name: "case sensitive", in: "OpenAI", ok: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Parse(tc.in)
			if ok != tc.ok {
				t.Fatalf("Parse(%q) ok = %v, want %v", tc.in, ok, tc.ok)
			}
			if ok && got != tc.want {
				t.Errorf("Parse(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestDefault(t *testing.T) {
	if Default() != DeepSeek {
		t.Errorf("Default() = %q, want %q", Default(), DeepSeek)
	}
	if _, ok := Parse(Default().String()); !ok {
		t.Error("Default engine should be in the registry")
	}
}

// =============================================================================
// REGISTRY TESTS
// =============================================================================

func TestAll_CoversRegistry(t *testing.T) {
	for _, e := range All() {
		if _, ok := GetInfo(e); !ok {
			t.Errorf("All() includes %q which is missing from the registry", e)
		}
	}
	if len(All()) != len(registry) {
		t.Errorf("All() returned %d engines, registry has %d", len(All()), len(registry))
	}
}

func TestRegistry_HaveRequiredFields(t *testing.T) {
	for _, e := range All() {
		info, _ := GetInfo(e)
		if info.ID != e {
			t.Errorf("Info.ID for %q = %q", e, info.ID)
		}
		if info.Name == "" {
			t.Errorf("Info.Name for %q should not be empty", e)
		}
		if info.Provider == "" {
			t.Errorf("Info.Provider for %q should not be empty", e)
		}
	}
}

// =============================================================================
// CATALOG TESTS
// =============================================================================

func TestCatalog_Defaults(t *testing.T) {
	c := NewCatalog()

	for _, e := range []Engine{OpenAI, Gemini, Anthropic} {
		if !c.SupportsImages(e) {
			t.Errorf("%q should support images by default", e)
		}
	}
	for _, e := range []Engine{DeepSeek, QwenAI, Mistral} {
		if c.SupportsImages(e) {
			t.Errorf("%q should not support images by default", e)
		}
	}
}

func TestCatalog_SetImageCapable(t *testing.T) {
	c := NewCatalog()
	c.SetImageCapable([]Engine{DeepSeek, "not-an-engine"})

	if !c.SupportsImages(DeepSeek) {
		t.Error("DeepSeek should support images after override")
	}
	if c.SupportsImages(OpenAI) {
		t.Error("OpenAI should lose image support when absent from the override")
	}
	if c.SupportsImages("not-an-engine") {
		t.Error("unknown engines must never be image capable")
	}
}
