// Package util holds small generic helpers shared across tabkit packages.
package util
