// Package objectstore holds what the object store adapters share: the
// catalog filter and transparent decompression of resource streams.
//
// The adapters themselves live in subpackages:
//
//   - s3: Amazon S3 and S3-compatible stores such as Cloudflare R2
//   - minio: MinIO through minio-go
//   - local: a directory on disk
package objectstore
