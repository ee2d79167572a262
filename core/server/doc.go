// Package server holds the HTTP server configuration.
//
// The start command builds the Fiber app; this package only defines the listen
// address, the API key and the request body limit.
package server
