// Package api handles incoming HTTP requests: request decoding and
// validation, calls into the flashcard, generation and auth services, and
// response formatting. Errors are mapped to status codes by their domain
// kind in errors.go; generation results are streamed as NDJSON.
package api
