// Package component defines the interfaces for lifecycle-managed services.
//
// Components represent services that require startup, shutdown and,
// optionally, health reporting. bootstrap.ComponentHooks turns one into an
// init/dispose hook pair; the diagnostics package reports the health of
// every cached instance implementing HealthChecker.
//
// # Interfaces
//
//   - Component: Core lifecycle interface (Start/Stop)
//   - HealthChecker: Health status reporting
//   - Describable: Bootstrap summary descriptions
package component
