// Package errors provides the unified application error type.
//
// An AppError is a tagged union over a small set of kinds (unknown, network,
// validation, storage) sharing a message, machine-readable code, optional
// cause and an optional originating trace. Values are copied with With
// rather than mutated, and IsKind / AsAppError answer questions about any
// error chain.
package errors
