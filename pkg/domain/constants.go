package domain

// Defaults applied to device records that omit a field.
const (
	// DefaultNodeLabel is used when a record carries no label, model or device type.
	DefaultNodeLabel = "Unnamed Node"
	// DefaultNodeColor is the accent colour of a device without an explicit colour.
	DefaultNodeColor = "#3366FF"
)

// Bounds of the region where nodes without a position are scattered.
const (
	PlacementMinX = 100
	PlacementMaxX = 700
	PlacementMinY = 100
	PlacementMaxY = 500
)
