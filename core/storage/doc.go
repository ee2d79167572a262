// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client so that dataset objects can be read from, and
// comparison reports written to, either AWS S3 or a self-hosted MinIO instance.
//
// # Client Interface
//
// The Client interface abstracts the underlying storage provider, making it easier
// to mock storage interactions for unit testing (see core/storage/mocks).
//
// # Helpers
//
//   - EnsureBucket: creates the report bucket on first use.
//   - ReadObject: downloads a whole object, e.g. a CSV dataset.
//   - ListKeys: lists stored reports under a prefix.
//
// # Usage
//
//	client, err := storage.NewClient(config)
//	data, err := storage.ReadObject(ctx, client, "datadiff", "exports/orders.csv")
package storage
