package domain

// PinType constants define the direction of a pin.
const (
	// PinInput marks a pin that can only terminate a wire (target side).
	PinInput = "input"
	// PinOutput marks a pin that can only originate a wire (source side).
	PinOutput = "output"
)

// Position is a point on the canvas.
type Position struct {
	X float64 `json:"x" yaml:"x" mapstructure:"x"`
	Y float64 `json:"y" yaml:"y" mapstructure:"y"`
}

// Pin is a typed connection point on a node.
// Pins are immutable once their node exists.
type Pin struct {
	ID    string `json:"id" yaml:"id" mapstructure:"id"` // Unique within its node
	Label string `json:"label,omitempty" yaml:"label,omitempty" mapstructure:"label"`
	Type  string `json:"type" yaml:"type" mapstructure:"type"` // "input" or "output"

	// Spec is the opaque compatibility tag. Two pins connect only if their specs are equal.
	Spec string `json:"spec" yaml:"spec" mapstructure:"spec"`
}

// DisplayLabel returns the label a front-end should print next to the pin.
func (p Pin) DisplayLabel() string {
	if p.Label != "" {
		return p.Label
	}
	return p.ID
}

// Node represents a device placed on the canvas.
type Node struct {
	ID       string   `json:"id" yaml:"id"`
	Position Position `json:"position" yaml:"position"`

	Label        string `json:"label" yaml:"label"`
	Color        string `json:"color" yaml:"color"`
	Manufacturer string `json:"manufacturer,omitempty" yaml:"manufacturer,omitempty"`
	Model        string `json:"model,omitempty" yaml:"model,omitempty"`
	DeviceType   string `json:"device_type,omitempty" yaml:"device_type,omitempty"`
	Notes        string `json:"notes,omitempty" yaml:"notes,omitempty"`

	// Pins is fixed after creation.
	Pins []Pin `json:"pins" yaml:"pins"`
}

// Pin looks up a pin by id.
func (n Node) Pin(id string) (Pin, bool) {
	for _, p := range n.Pins {
		if p.ID == id {
			return p, true
		}
	}
	return Pin{}, false
}

// Inputs returns the node's input pins in declaration order.
func (n Node) Inputs() []Pin {
	return n.pinsOfType(PinInput)
}

// Outputs returns the node's output pins in declaration order.
func (n Node) Outputs() []Pin {
	return n.pinsOfType(PinOutput)
}

func (n Node) pinsOfType(t string) []Pin {
	var out []Pin
	for _, p := range n.Pins {
		if p.Type == t {
			out = append(out, p)
		}
	}
	return out
}

// Clone returns a copy that shares nothing mutable with n.
func (n Node) Clone() Node {
	c := n
	if n.Pins != nil {
		c.Pins = make([]Pin, len(n.Pins))
		copy(c.Pins, n.Pins)
	}
	return c
}
