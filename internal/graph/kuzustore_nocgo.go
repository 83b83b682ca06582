//go:build !cgo

package graph

import "errors"

// ErrKuzuUnavailable is returned by OpenKuzuStore in builds without cgo.
var ErrKuzuUnavailable = errors.New("kuzu: store requires a cgo build")

// OpenKuzuStore always fails without cgo. The result type matches the cgo
// build so callers compile either way.
func OpenKuzuStore(string) (Store, error) {
	return nil, ErrKuzuUnavailable
}
