// Package interaction implements the editor's context-menu state machine.
//
// The Controller holds a single domain.Interaction value, so at most one menu or
// modal is ever open. User events move it between states; menu selections
// commit graph mutations synchronously, except the device-type form which is
// fetched from the catalog in the background.
package interaction
