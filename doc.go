/*
Package patchbay is the engine behind an interactive editor for typed device-wiring diagrams.

Devices are nodes exposing a fixed set of typed input and output pins. Wires join
an output pin to an input pin of another device when both pins carry the same
spec tag, and every pin holds at most one wire. The engine enforces those rules
on every mutation, so the diagram is always a valid wiring plan.

# Architecture

The core lives in pkg/domain (model and connection validator) and pkg/graph
(the authoritative store). Two writers mutate the store: the ingestion channel
(pkg/ingest), which turns externally supplied device records into nodes, and the
interaction controller (pkg/interaction), which translates context-menu choices
into mutations. Persistence, transport and presentation are adapters around
that core.

# Usage

	package main

	import (
		"log"

		"github.com/aretw0/patchbay"
		"github.com/aretw0/patchbay/pkg/domain"
	)

	func main() {
		ed, err := patchbay.New()
		if err != nil {
			log.Fatal(err)
		}

		// Devices arrive as loosely typed records
		ed.Ingestion().Ingest([]any{
			map[string]any{"id": "sw", "model": "Switch-24", "pins": []any{
				map[string]any{"id": "p1", "type": "output", "spec": "eth"},
			}},
			map[string]any{"id": "rt", "model": "Router-X", "pins": []any{
				map[string]any{"id": "wan", "type": "input", "spec": "eth"},
			}},
		})

		// Wires are committed only if every rule passes
		_, err = ed.Store().AddEdge(domain.Connection{
			Source: "sw", SourceHandle: "p1", Target: "rt", TargetHandle: "wan",
		})
		if err != nil {
			log.Printf("refused: %s", domain.RejectionRule(err))
		}
	}
*/
package patchbay
