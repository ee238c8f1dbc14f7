package domain

import (
	"fmt"
	"strings"
)

// Assessment is one catalog item. Records are immutable after load; the id is
// stable for the lifetime of a loaded index.
type Assessment struct {
	ID              int      `json:"id"`
	Name            string   `json:"name"`
	URL             string   `json:"url"`
	Description     string   `json:"description"`
	AdaptiveSupport string   `json:"adaptive_support"` // "Yes" or "No"
	RemoteSupport   string   `json:"remote_support"`   // "Yes" or "No"
	Duration        int      `json:"duration"`         // minutes
	TestType        []string `json:"test_type"`
	Skills          []string `json:"skills,omitempty"`
	Deviation       int      `json:"deviation"`
}

// Test-type category vocabulary used for balance decisions.
var (
	TechnicalTypes  = []string{"Knowledge & Skills", "Ability & Aptitude", "Simulations"}
	BehavioralTypes = []string{"Personality & Behavior", "Competencies", "Biodata & Situational Judgement"}
)

// HasAnyType reports whether the assessment carries at least one of the given
// category labels. Comparison is case-insensitive.
func (a Assessment) HasAnyType(types []string) bool {
	for _, t := range a.TestType {
		for _, want := range types {
			if strings.EqualFold(t, want) {
				return true
			}
		}
	}
	return false
}

// EmbeddingText is the canonical text representation used both for embedding
// generation and for the lexical corpus. Keep the field order stable: the
// vector index is built from exactly this string.
func (a Assessment) EmbeddingText() string {
	parts := []string{
		a.Name,
		a.Description,
		"Test types: " + strings.Join(a.TestType, ", "),
		fmt.Sprintf("Duration: %d minutes", a.Duration),
		"Adaptive: " + a.AdaptiveSupport,
		"Remote: " + a.RemoteSupport,
	}
	return strings.Join(parts, ". ")
}
