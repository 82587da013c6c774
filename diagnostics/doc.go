// Package diagnostics exposes a container over HTTP for debugging.
//
// Routes, under /debug by default:
//
//	GET /debug/container    registrations with lifecycle and resolution counts
//	GET /debug/environment  the held environment, sensitive values masked
//	GET /debug/health       health of held instances, 503 when any is unhealthy
//	GET /debug/version      build information
//
// The routes only inspect instances the container already holds; they
// never trigger a factory.
package diagnostics
