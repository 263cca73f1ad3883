// Package version reports build information for the tabkit binary.
//
// Version, commit and build time are set at compile time via -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/tabkit/version.Version=1.0.0" ./cmd/tabkit
//
// Unset values fall back to the VCS stamps in the embedded build info.
package version
