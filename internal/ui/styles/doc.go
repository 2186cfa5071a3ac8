// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the chat TUI.

This package defines the color palette and the Theme used throughout the
application. All colors use Lip Gloss AdaptiveColor for automatic light/dark
terminal detection.

# Color System (colors.go)

## Primary Accent Colors

  - Purple - Primary accent for model responses and selections
  - Cyan - Brand color for info, commands, and user highlights
  - Emerald - Success states and the connected indicator
  - Amber - Warnings and engine-locked hints
  - Rose - Errors and the disconnected indicator

## Semantic Colors

Message bubbles and UI elements use semantic color tokens:

	UserBubbleBg  - Background for user messages
	UserBubbleFg  - Text color for user messages
	ModelBubbleBg - Background for model responses
	ModelBubbleFg - Text color for model responses

## Text Colors

Hierarchical text color system:

	TextPrimary   - Main content text
	TextSecondary - Supporting text
	TextMuted     - De-emphasized text

# Theme System (theme.go)

The Theme struct provides runtime color adaptation:

	theme := styles.NewTheme()
	if theme.IsDark {
		// Dark terminal detected
	}

# Status Indicators

ASCII indicators accompany colors so states stay readable for colorblind
users:

	StatusIndicators.Success - [OK]
	StatusIndicators.Error   - [X]
	StatusIndicators.Warning - [!]
	StatusIndicators.Info    - [i]

# Usage Example

	import "github.com/dclavijo45/chat-ai/internal/ui/styles"

	headerStyle := lipgloss.NewStyle().
		Background(styles.SurfaceDim).
		Foreground(styles.TextPrimary)
*/
package styles
