// Package integrity provides system health checks.
//
// It validates what the pipeline relies on but does not own: the object
// storage layout, the generated bundles on disk and the build cache table.
//
// # Checks Provided
//
//   - Structure: Checks if the required folders exist in the storage bucket (e.g., /bundles, /structures).
//   - Artifacts: Re-hashes every generated bundle and compares it with its build record.
//   - Database: Validates that the build cache table carries every expected column.
//
// # HTTP Endpoints
//
//   - GET /integrity : Runs all checks.
//   - GET /integrity/structure : Runs structure check (supports ?fix=true).
//   - GET /integrity/artifacts : Runs artifact check.
//   - GET /integrity/database : Runs database schema check.
package integrity
