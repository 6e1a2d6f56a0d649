// Package minio serves resources from a MinIO deployment through minio-go.
//
// Example:
//
//	store, err := minio.New(domain.StoreSettings{
//	    Endpoint:        "localhost:9000",
//	    Bucket:          "leaks",
//	    AccessKeyID:     "minioadmin",
//	    SecretAccessKey: "minioadmin",
//	    Prefix:          "data-files/",
//	}, domain.DefaultExtensions())
package minio
