/*
Package graph owns the authoritative set of nodes and edges of a diagram.

The Store is the only place where the diagram changes. Every mutation keeps the
wiring invariants:

  - every edge references existing nodes and existing pins on them;
  - every pin carries at most one edge;
  - no edge connects a node to itself;
  - edges run from an output pin to an input pin with equal spec tags;
  - deleting a node deletes the edges touching it in the same step.

Edges only enter through AddEdge, which consults domain.ValidateConnection
against the current state before committing. Operations referencing unknown ids
are no-ops and report false instead of failing.
*/
package graph
