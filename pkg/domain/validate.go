package domain

import (
	"errors"
	"fmt"
)

// Rule identifies which connection check refused a candidate.
type Rule string

const (
	RuleSelfLoop       Rule = "self_loop"
	RuleNodeMissing    Rule = "node_missing"
	RulePinMissing     Rule = "pin_missing"
	RuleDirection      Rule = "direction"
	RuleSpecMismatch   Rule = "spec_mismatch"
	RuleSourceOccupied Rule = "source_occupied"
	RuleTargetOccupied Rule = "target_occupied"
)

// RejectionError describes a refused candidate connection.
// A rejection is an expected outcome, not a failure of the engine.
type RejectionError struct {
	Rule       Rule
	Connection Connection
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("connection %s.%s -> %s.%s rejected: %s",
		e.Connection.Source, e.Connection.SourceHandle,
		e.Connection.Target, e.Connection.TargetHandle, e.Rule)
}

// RejectionRule returns the rule carried by err, or "" if err is not a *RejectionError.
func RejectionRule(err error) Rule {
	var rej *RejectionError
	if errors.As(err, &rej) {
		return rej.Rule
	}
	return ""
}

// ValidateConnection checks a candidate against the current diagram.
// It returns nil when the wire may be committed, or a *RejectionError naming
// the first rule that failed. The checks run in a fixed order and short-circuit.
func ValidateConnection(c Connection, nodes []Node, edges []Edge) error {
	reject := func(r Rule) error {
		return &RejectionError{Rule: r, Connection: c}
	}

	if c.Source == c.Target {
		return reject(RuleSelfLoop)
	}

	source, okSource := findNode(nodes, c.Source)
	target, okTarget := findNode(nodes, c.Target)
	if !okSource || !okTarget {
		return reject(RuleNodeMissing)
	}

	sourcePin, okSource := source.Pin(c.SourceHandle)
	targetPin, okTarget := target.Pin(c.TargetHandle)
	if !okSource || !okTarget {
		return reject(RulePinMissing)
	}

	if sourcePin.Type != PinOutput || targetPin.Type != PinInput {
		return reject(RuleDirection)
	}

	if sourcePin.Spec != targetPin.Spec {
		return reject(RuleSpecMismatch)
	}

	for _, e := range edges {
		if e.Source == c.Source && e.SourceHandle == c.SourceHandle {
			return reject(RuleSourceOccupied)
		}
	}
	for _, e := range edges {
		if e.Target == c.Target && e.TargetHandle == c.TargetHandle {
			return reject(RuleTargetOccupied)
		}
	}

	return nil
}

// IsValidConnection reports whether the candidate passes every connection rule.
func IsValidConnection(c Connection, nodes []Node, edges []Edge) bool {
	return ValidateConnection(c, nodes, edges) == nil
}

func findNode(nodes []Node, id string) (Node, bool) {
	for _, n := range nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}
