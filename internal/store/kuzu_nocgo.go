//go:build !cgo

package store

import "errors"

func openKuzu() (Store, error) {
	return nil, errors.New("store: kuzu backend requires a cgo build")
}
