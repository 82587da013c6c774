// Package version reports build information for appkit services.
//
//	go build -ldflags "-X github.com/kbukum/appkit/version.Version=1.0.0"
//
// Bootstrap summaries, diagnostics and telemetry resources fall back to
// this version when SERVICE_VERSION is not set.
package version
