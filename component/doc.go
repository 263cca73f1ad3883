// Package component defines the lifecycle contract shared by tabkit's
// infrastructure pieces and a Registry that starts them in registration order
// and stops them in reverse.
package component
