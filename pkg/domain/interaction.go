package domain

// InteractionKind tags the variant held by an Interaction.
type InteractionKind string

const (
	InteractionIdle            InteractionKind = "idle"
	InteractionNodeMenu        InteractionKind = "node_menu"
	InteractionCanvasMenu      InteractionKind = "canvas_menu"
	InteractionDeviceTypeModal InteractionKind = "device_type_modal"
)

// Interaction is the transient UI state of an editor.
// Exactly one menu or modal can be open at a time; the zero value is Idle.
type Interaction struct {
	Kind InteractionKind `json:"kind"`

	// NodeID is set only when Kind is InteractionNodeMenu.
	NodeID string `json:"node_id,omitempty"`

	// Document is set only when Kind is InteractionDeviceTypeModal.
	// It holds the device-catalog form markup, displayed verbatim.
	Document string `json:"document,omitempty"`
}

// Idle returns the state with nothing open.
func Idle() Interaction {
	return Interaction{Kind: InteractionIdle}
}

// NodeMenuOpen returns the state with the context menu of a node open.
func NodeMenuOpen(nodeID string) Interaction {
	return Interaction{Kind: InteractionNodeMenu, NodeID: nodeID}
}

// CanvasMenuOpen returns the state with the canvas context menu open.
func CanvasMenuOpen() Interaction {
	return Interaction{Kind: InteractionCanvasMenu}
}

// DeviceTypeModalOpen returns the state with the device-type form modal open.
func DeviceTypeModalOpen(document string) Interaction {
	return Interaction{Kind: InteractionDeviceTypeModal, Document: document}
}

// IsIdle reports whether nothing is open.
func (i Interaction) IsIdle() bool {
	return i.Kind == "" || i.Kind == InteractionIdle
}

func (i Interaction) String() string {
	switch i.Kind {
	case InteractionNodeMenu:
		return "NodeMenuOpen(" + i.NodeID + ")"
	case InteractionCanvasMenu:
		return "CanvasMenuOpen"
	case InteractionDeviceTypeModal:
		return "DeviceTypeModalOpen"
	default:
		return "Idle"
	}
}

// NodeMenuItem is an entry of the node context menu.
type NodeMenuItem string

const (
	NodeItemEditLabel NodeMenuItem = "edit_label"
	NodeItemDelete    NodeMenuItem = "delete"
	NodeItemInfo      NodeMenuItem = "info"
)

// CanvasMenuItem is an entry of the canvas context menu.
type CanvasMenuItem string

const (
	CanvasItemAddDeviceType CanvasMenuItem = "add_device_type"
	CanvasItemClear         CanvasMenuItem = "clear_canvas"
)

// NodeMenuItems lists the node context menu in display order.
var NodeMenuItems = []NodeMenuItem{NodeItemEditLabel, NodeItemDelete, NodeItemInfo}

// CanvasMenuItems lists the canvas context menu in display order.
var CanvasMenuItems = []CanvasMenuItem{CanvasItemAddDeviceType, CanvasItemClear}

// Title is the caption shown in the menu.
func (i NodeMenuItem) Title() string {
	switch i {
	case NodeItemEditLabel:
		return "Edit label"
	case NodeItemDelete:
		return "Delete"
	case NodeItemInfo:
		return "Info"
	}
	return string(i)
}

// Title is the caption shown in the menu.
func (i CanvasMenuItem) Title() string {
	switch i {
	case CanvasItemAddDeviceType:
		return "Add new device type"
	case CanvasItemClear:
		return "Clear canvas"
	}
	return string(i)
}
