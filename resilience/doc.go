// Package resilience provides retry with exponential backoff for calls to
// remote services.
package resilience
