// Package client contains the transport side of the ulak client.
//
// # Overview
//
// The package provides:
//  1. The backend contract as interfaces (AuthAPI, TransferAPI and the
//     combined Client): login/register/password flows, transfer-session
//     listing, creation, upload, accept/reject/cancel and download.
//  2. HTTPClient, a REST implementation. A bearerTransport attaches the
//     stored credential to every request, so call sites never handle the
//     Authorization header themselves.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) wiring an
//     SQLite database and applying embedded goose migrations.
//
// # Error Handling
//
// Failures map onto the shared taxonomy in package common and can be matched
// with errors.Is: ErrUnavailable when the call did not complete,
// ErrUnauthorized for 401, ErrValidation for 400/422, ErrForbidden,
// ErrNotFound and ErrServer for the rest. Non-2xx responses are *APIError
// values carrying the backend's detail message.
//
// No call is retried; a timeout, if configured, is enforced by the
// underlying http.Client.
package client
