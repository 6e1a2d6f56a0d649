package objectstore

import (
	"strings"

	"github.com/custodia-labs/sercha-scan/internal/core/domain"
)

// Searchable builds the resource of an object and reports whether the
// catalog should list it: not a directory marker, non-empty, and with a
// supported data extension.
func Searchable(key string, size int64, exts []string) (domain.Resource, bool) {
	res := domain.Resource{Key: key, Size: size}
	if strings.HasSuffix(key, "/") || size <= 0 {
		return res, false
	}
	return res, res.Supported(exts)
}

// Location formats a store location for logs, e.g. "s3://bucket/prefix".
func Location(scheme, bucket, prefix string) string {
	return scheme + "://" + strings.TrimSuffix(bucket+"/"+strings.TrimPrefix(prefix, "/"), "/")
}
