package catalog

import "errors"

var (
	// ErrPackageNotFound indicates no package is registered under the name.
	ErrPackageNotFound = errors.New("catalog: package not found")

	// ErrVersionExists indicates the version is already recorded for the package.
	ErrVersionExists = errors.New("catalog: version already exists")
)
