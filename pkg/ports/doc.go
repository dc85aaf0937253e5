/*
Package ports defines the driven ports (interfaces) for the patchbay engine.

These interfaces decouple the core logic from external implementations, allowing
the editor to work with various storage backends, message sources and front-ends.

# Key Interfaces

  - SnapshotStore: Responsible for persisting and loading whole diagrams.
  - DistributedLocker: Provides distributed locking for concurrent diagram access.
  - CatalogClient: Fetches the device-type form document from the device catalog.
  - Prompter / Presenter: Synchronous user confirmation and read-only display.
  - MessageSource: Delivers raw node-creation messages from a host.
*/
package ports
