package graph

import (
	"fmt"

	"github.com/aretw0/patchbay/pkg/domain"
)

// CheckInvariants reports every wiring invariant broken by snap.
// Each edge is replayed through the connection validator against the edges
// listed before it, so a valid snapshot is exactly one the Store could have built.
func CheckInvariants(snap *domain.Snapshot) []error {
	if snap == nil {
		return nil
	}
	var errs []error

	seen := make(map[string]struct{}, len(snap.Nodes))
	for _, n := range snap.Nodes {
		if n.ID == "" {
			errs = append(errs, fmt.Errorf("node with empty id (label %q)", n.Label))
			continue
		}
		if _, dup := seen[n.ID]; dup {
			errs = append(errs, fmt.Errorf("duplicate node id %q", n.ID))
		}
		seen[n.ID] = struct{}{}
	}

	edgeIDs := make(map[string]struct{}, len(snap.Edges))
	for i, e := range snap.Edges {
		if _, dup := edgeIDs[e.ID]; dup {
			errs = append(errs, fmt.Errorf("duplicate edge id %q", e.ID))
		}
		edgeIDs[e.ID] = struct{}{}

		c := domain.Connection{
			ID:           e.ID,
			Source:       e.Source,
			SourceHandle: e.SourceHandle,
			Target:       e.Target,
			TargetHandle: e.TargetHandle,
		}
		if err := domain.ValidateConnection(c, snap.Nodes, snap.Edges[:i]); err != nil {
			errs = append(errs, fmt.Errorf("edge %q: %w", e.ID, err))
		}
	}
	return errs
}
