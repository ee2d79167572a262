// Package compare exposes the comparison engine through sources, sinks and an
// HTTP API.
//
// # Sources
//
// A source descriptor is "<scheme>:<location>":
//
//   - file:orders.csv, file:orders.parquet : local CSV or Parquet file
//   - s3:exports/orders.csv : CSV or Parquet object in the configured bucket
//   - db:orders : table in the configured MySQL or SQLite database
//   - pg:public.orders : table in the configured Postgres database
//
// Loaded datasets are cached by descriptor when a cache TTL is configured.
// file: sources and the file sink need Options.AllowLocalFiles, which only the
// CLI sets; the HTTP API rejects them with 400.
//
// # Sinks
//
//   - storage: "<prefix>/<id>.json" and "<prefix>/<id>.csv" in the bucket
//   - database: rows in diff_records plus a summary row in diff_runs
//   - file: local JSON, CSV or Parquet file chosen by extension
//
// # HTTP Endpoints
//
//   - POST /compare : run a comparison, optionally writing sinks.
//   - POST /compare/schema : column and row-count drift only.
//   - GET /compare/tables?a=&b= : compare two database table schemas.
//   - GET /compare/reports : list stored report IDs.
//   - GET /compare/reports/:id : fetch a stored report.
//
// Invalid requests return 400, schema and key errors 422, anything else 500.
package compare
