// Package integrity checks that the report sinks are ready.
//
// # Checks Provided
//
//   - Storage: the bucket exists and the report prefix has been created. Also counts stored reports.
//   - Database: the record and run tables exist and match the GORM models the database sink writes.
//
// Both checks can repair what they find: storage creates the bucket and a prefix marker,
// database runs the sink migration.
//
// # HTTP Endpoints
//
//   - GET /integrity : Runs all checks.
//   - GET /integrity/storage : Runs the storage check (supports ?fix=true).
//   - GET /integrity/database : Runs the database check (supports ?fix=true).
package integrity
