package catalog

import (
	"context"

	"github.com/google/uuid"
)

// Store is the catalog persistence contract the publish pipeline consumes.
type Store interface {
	// GetPackage returns the package record by name, or ErrPackageNotFound.
	GetPackage(ctx context.Context, name string) (*Package, error)

	// ListPackages returns summaries of all registered packages.
	ListPackages(ctx context.Context) ([]Summary, error)

	// CreateUpload records a new version. A brand-new package is created
	// owned by owner; for an existing package the upload is appended.
	// Recording a version that already exists fails with ErrVersionExists.
	CreateUpload(ctx context.Context, name string, isUpdate bool, owner uuid.UUID, upload Upload) error
}
