// Package provider defines the AI provider interface and implementations.
package provider

import "github.com/ZaguanLabs/gotdoc"

// AIProvider is the interface for AI translation backends.
// This is an alias to the main package interface for convenience.
type AIProvider = gotdoc.AIProvider

// TranslateRequest is an alias to the main package type.
type TranslateRequest = gotdoc.TranslateRequest
