// Package middleware contains HTTP middleware for the Fiber application.
//
// # Components
//
//   - auth: API key validation protecting every endpoint.
//   - rayid: a unique request ID (RayID) per request, stored in the context and
//     echoed in the response headers for tracing.
package middleware
