// Package middleware groups the HTTP middleware of the Fiber application.
//
// # Components
//
//   - auth: API key validation protecting the API routes.
//   - rayid: a unique Request ID (RayID) for every incoming request, stored
//     in the context and echoed in the response headers for tracing.
//
// rayid is registered first so every later log line can carry the id.
package middleware
