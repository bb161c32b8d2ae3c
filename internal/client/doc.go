// Package client holds the view state of the set creation flow. Reduce is a
// pure state transition function; Controller runs the network effects
// against an API, normally HTTPClient, and feeds the outcomes back to Reduce.
package client
