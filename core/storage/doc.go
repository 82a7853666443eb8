// Package storage provides the S3/MinIO object-storage client.
//
// It is used in two places: fetching the game server's ban list when it is
// published to a bucket rather than a plain URL, and uploading database
// backup archives for off-site retention.
//
// The Client interface wraps the minio SDK so callers can be tested with
// the mock in storage/mocks.
package storage
