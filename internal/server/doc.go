// Package server exposes the talentd HTTP API.
//
// The server is a thin layer: handlers decode the request, resolve the
// caller's identity from a bearer token, call into the hiring service or the
// store, and map the hiring error taxonomy onto HTTP status codes. No
// workflow policy lives here.
package server
