package lister

import (
	"context"
	"fmt"
	"strings"
)

// Router dispatches object listing to a backend by location scheme:
// s3:// locations go to S3, everything else to the local filesystem.
type Router struct {
	Local ObjectLister
	S3    ObjectLister
}

// ListDir implements ObjectLister.
func (r *Router) ListDir(ctx context.Context, location string) ([]Entry, error) {
	if strings.HasPrefix(location, "s3://") {
		if r.S3 == nil {
			return nil, fmt.Errorf("no s3 lister configured for %s", location)
		}
		return r.S3.ListDir(ctx, location)
	}
	if r.Local == nil {
		return nil, fmt.Errorf("no local lister configured for %s", location)
	}
	return r.Local.ListDir(ctx, location)
}
