// Package generation defines the Generator boundary to LLM providers and the
// Accumulator that drives it: one card per call, exact-match deduplication,
// progress reporting and a bounded number of attempts. Provider failures are
// reported as *ProviderError values tagged with a domain provider kind.
package generation
