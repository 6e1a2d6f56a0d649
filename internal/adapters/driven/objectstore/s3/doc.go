// Package s3 serves resources from Amazon S3 or any S3-compatible store
// (Cloudflare R2, Wasabi, Ceph) using aws-sdk-go-v2.
//
// Store implements driven.ObjectStore. Syncer implements driven.IndexSyncer,
// downloading index databases with the s3 transfer manager.
//
// A custom endpoint switches the client to path-style addressing:
//
//	store, err := s3.New(ctx, domain.StoreSettings{
//	    Endpoint:        "https://<account>.r2.cloudflarestorage.com",
//	    Region:          "auto",
//	    Bucket:          "leaks",
//	    AccessKeyID:     key,
//	    SecretAccessKey: secret,
//	    Prefix:          "data-files/",
//	}, domain.DefaultExtensions())
package s3
