// Package bundles exposes the bundle pipeline over HTTP.
//
// A rebuild discovers every owner in the plugins directory, runs the
// pipeline over them and withdraws the descriptors of owners that
// disappeared. Owners whose build failed are reported and answer
// "not available" until a later rebuild succeeds.
//
// # HTTP Endpoints
//
//   - GET /bundles : Lists the published bundle descriptors.
//   - GET /bundles/:owner : Returns one descriptor (404 when not available).
//   - POST /bundles/rebuild : Rebuilds every owner and returns the run report.
package bundles
