/*
Package domain contains the core domain models and the connection rules of the patchbay engine.

It defines the entities of a wiring diagram (devices, their pins and the wires between
them) together with the pure predicate deciding whether a proposed wire is legal.
This package is kept pure and free of external dependencies like I/O or persistence,
following Hexagonal Architecture principles.

# Key Entities

  - Node: A device placed on the canvas, exposing a fixed, ordered set of Pins.
  - Pin: A typed connection point (input or output) tagged with a compatibility spec.
  - Edge: A committed wire from one output pin to one input pin.
  - Connection: A candidate wire that has not been validated or committed yet.
  - Snapshot: The serialisable form of a whole diagram.
  - Interaction: The single tagged value describing which menu or modal is open.

# Connection Rules

ValidateConnection checks a candidate in a fixed order and reports the first rule
that refused it:

	self_loop -> node_missing -> pin_missing -> direction -> spec_mismatch ->
	source_occupied -> target_occupied

IsValidConnection is the boolean form used by the graph store before committing.
*/
package domain
