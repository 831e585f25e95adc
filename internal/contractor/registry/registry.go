// Package registry fetches raw rows from the two government data sources:
// the companies registry and the contractors/licensing registry, both
// served by the CKAN datastore_search API.
//
// Rows are returned as opaque RawRecord maps; field-name knowledge lives
// in the normalize package only.
package registry

import "context"

// RawRecord is one row as returned by a registry query. Values are
// whatever the datastore returned (strings, numbers, nulls). Never
// persisted as-is.
type RawRecord map[string]any

// Source abstracts the two registry lookups so the reconciliation service
// can be tested against stubs. Each call is independent: a failure of one
// must not prevent the other.
type Source interface {
	// Companies queries the companies registry. Zero rows is a legitimate
	// success: newly formed entities often do not appear yet.
	Companies(ctx context.Context, companyID string) ([]RawRecord, error)
	// Licenses queries the contractors/licensing registry, returning one
	// row per licensed activity.
	Licenses(ctx context.Context, companyID string) ([]RawRecord, error)
}

type bypassKey struct{}

// BypassCache derives a context that makes the client skip its raw-row
// cache for both reads and leaves fresh rows behind for later callers.
// Used on explicit force-refresh requests.
func BypassCache(ctx context.Context) context.Context {
	return context.WithValue(ctx, bypassKey{}, true)
}

func bypassRequested(ctx context.Context) bool {
	v, _ := ctx.Value(bypassKey{}).(bool)
	return v
}
