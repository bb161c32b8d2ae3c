// Package gemini provides an implementation of the generation.Generator interface
// that uses Google's Gemini API for generating flashcards from source text.
//
// This package is an infrastructure adapter, connecting the generation loop
// to Google's external Gemini service. API failures are translated into
// generation.ProviderError values so that callers never see genai types.
package gemini
