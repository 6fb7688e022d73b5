// Package server holds the HTTP server configuration.
//
// The serve command builds the Fiber application itself; this package only
// defines the listen port, the API key and the public base URL that
// published artifact URIs are rooted at.
package server
