package ports

import "context"

// CatalogClient retrieves documents from the remote device catalog.
type CatalogClient interface {
	// FetchDeviceTypeForm returns the markup of the "new device type" form,
	// to be displayed verbatim inside a modal.
	FetchDeviceTypeForm(ctx context.Context) (string, error)
}
