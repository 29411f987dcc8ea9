// Package httputil provides HTTP helpers for the pedigree API.
//
// # Overview
//
//   - [WriteJSON] and [WriteError] encode responses; errors use the
//     {"code", "message"} body and a status derived from the error code.
//   - [DecodeJSON] reads a request body with a size limit and rejects
//     unknown fields.
//   - [StatusRecorder] captures the status code for logging and metrics
//     middleware.
//
// # Error mapping
//
// [StatusFor] maps pkg/errors codes to HTTP statuses:
//
//	INVALID_*          → 400
//	NOT_FOUND, ROOT_NOT_FOUND, SESSION_NOT_FOUND → 404
//	UNSUPPORTED        → 501
//	STORE_UNAVAILABLE  → 503
//	anything else      → 500
package httputil
