// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client in the narrow interface the application
// needs: reading objects, publishing objects, and ensuring the target bucket
// exists. This abstraction supports both AWS S3 and self-hosted MinIO
// instances.
//
// In this application the storage backend serves two purposes: the source
// extractor reads datasets referenced as s3://bucket/key, and with snapshots
// enabled it publishes a copy of every fetched dataset back into the bucket
// so a reconciliation run can be audited or replayed.
//
// # Client Interface
//
// The Client interface abstracts the underlying storage provider, making it
// easier to mock storage interactions for unit testing (see
// core/storage/mocks).
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	reader, err := client.GetObject(ctx, bucket, "datasets/states.json", minio.GetObjectOptions{})
package storage
