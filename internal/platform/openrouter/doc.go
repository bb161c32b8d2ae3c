// Package openrouter implements generation.Generator on top of the
// OpenRouter chat completions API, using the OpenAI-compatible go-openai
// client with a custom base URL.
package openrouter
