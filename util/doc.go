// Package util provides small generic helpers shared by the config,
// bootstrap and diagnostics packages.
package util
