package interaction

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/aretw0/patchbay/internal/logging"
	"github.com/aretw0/patchbay/pkg/domain"
	"github.com/aretw0/patchbay/pkg/ports"
)

// Graph is the subset of the graph store the controller mutates.
type Graph interface {
	Node(id string) (domain.Node, bool)
	RelabelNode(id, label string) bool
	RemoveNode(id string) bool
	Clear()
}

// ChangeFunc observes a state transition.
type ChangeFunc func(from, to domain.Interaction)

// Controller drives the interaction state machine.
// Safe for concurrent use; user events are handled one at a time.
type Controller struct {
	graph     Graph
	catalog   ports.CatalogClient
	prompter  ports.Prompter
	presenter ports.Presenter

	events sync.Mutex // serialises user events, held across prompts
	mu     sync.Mutex // guards state and fetchSeq
	state  domain.Interaction

	fetchSeq uint64
	inflight sync.WaitGroup

	onChange ChangeFunc
	logger   *slog.Logger
}

// Option configures the Controller.
type Option func(*Controller)

// WithLogger configures a logger for the Controller.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithOnChange registers a callback invoked after every state change.
// It runs outside the controller's locks.
func WithOnChange(fn ChangeFunc) Option {
	return func(c *Controller) {
		c.onChange = fn
	}
}

// New creates a Controller in the Idle state.
// A nil prompter declines every prompt and a nil presenter discards output.
func New(graph Graph, catalog ports.CatalogClient, prompter ports.Prompter, presenter ports.Presenter, opts ...Option) *Controller {
	c := &Controller{
		graph:     graph,
		catalog:   catalog,
		prompter:  prompter,
		presenter: presenter,
		state:     domain.Idle(),
		logger:    logging.NewNop(),
	}
	if c.prompter == nil {
		c.prompter = declineAll{}
	}
	if c.presenter == nil {
		c.presenter = discard{}
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current interaction state.
func (c *Controller) State() domain.Interaction {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// RightClickNode opens the context menu of a node, closing anything open.
// An id the graph does not know leaves the controller Idle.
func (c *Controller) RightClickNode(nodeID string) domain.Interaction {
	c.events.Lock()
	defer c.events.Unlock()

	if _, ok := c.graph.Node(nodeID); !ok {
		c.logger.Debug("Right click on unknown node", "node_id", nodeID)
		return c.transition(domain.Idle())
	}
	return c.transition(domain.NodeMenuOpen(nodeID))
}

// RightClickCanvas opens the canvas context menu, closing anything open.
func (c *Controller) RightClickCanvas() domain.Interaction {
	c.events.Lock()
	defer c.events.Unlock()
	return c.transition(domain.CanvasMenuOpen())
}

// ClickOutside dismisses whatever menu or modal is open. It never mutates the graph.
func (c *Controller) ClickOutside() domain.Interaction {
	c.events.Lock()
	defer c.events.Unlock()
	return c.transition(domain.Idle())
}

// SelectNodeItem applies an entry of the open node menu and returns to Idle.
// It fails with domain.ErrInvalidTransition when no node menu is open.
func (c *Controller) SelectNodeItem(ctx context.Context, item domain.NodeMenuItem) error {
	c.events.Lock()
	defer c.events.Unlock()

	from := c.State()
	if from.Kind != domain.InteractionNodeMenu {
		return fmt.Errorf("%w: %s from %s", domain.ErrInvalidTransition, item, from)
	}
	if !slices.Contains(domain.NodeMenuItems, item) {
		return fmt.Errorf("%w: unknown node menu item %q", domain.ErrInvalidTransition, item)
	}
	defer c.finish(from)

	node, ok := c.graph.Node(from.NodeID)
	if !ok {
		// removed by another writer while the menu was open
		c.logger.Debug("Node menu target vanished", "node_id", from.NodeID)
		return nil
	}

	switch item {
	case domain.NodeItemEditLabel:
		label, ok := c.prompter.PromptText(ctx, "New label", node.Label)
		if !ok || label == "" {
			return nil
		}
		c.graph.RelabelNode(node.ID, label)
		c.logger.Info("Node relabelled", "node_id", node.ID, "label", label)
	case domain.NodeItemDelete:
		c.graph.RemoveNode(node.ID)
		c.logger.Info("Node deleted", "node_id", node.ID)
	case domain.NodeItemInfo:
		c.presenter.ShowNodeInfo(ctx, node)
	}
	return nil
}

// SelectCanvasItem applies an entry of the open canvas menu.
// It fails with domain.ErrInvalidTransition when the canvas menu is not open.
//
// Adding a device type closes the menu and fetches the form in the background;
// call Wait to block until the result has been applied.
func (c *Controller) SelectCanvasItem(ctx context.Context, item domain.CanvasMenuItem) error {
	c.events.Lock()
	defer c.events.Unlock()

	from := c.State()
	if from.Kind != domain.InteractionCanvasMenu {
		return fmt.Errorf("%w: %s from %s", domain.ErrInvalidTransition, item, from)
	}

	switch item {
	case domain.CanvasItemAddDeviceType:
		c.transition(domain.Idle())
		c.startFetch(ctx)
	case domain.CanvasItemClear:
		defer c.finish(from)
		if !c.prompter.Confirm(ctx, "Clear the canvas? All devices and connections will be removed.") {
			return nil
		}
		c.graph.Clear()
		c.logger.Info("Canvas cleared")
	default:
		return fmt.Errorf("%w: unknown canvas menu item %q", domain.ErrInvalidTransition, item)
	}
	return nil
}

// Wait blocks until every outstanding catalog fetch has been handled.
func (c *Controller) Wait() {
	c.inflight.Wait()
}

func (c *Controller) startFetch(ctx context.Context) {
	c.mu.Lock()
	c.fetchSeq++
	seq := c.fetchSeq
	c.mu.Unlock()

	if c.catalog == nil {
		c.presenter.Notify(ctx, "No device catalog configured")
		return
	}

	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()
		doc, err := c.catalog.FetchDeviceTypeForm(ctx)
		c.applyFetch(ctx, seq, doc, err)
	}()
}

// applyFetch lands a catalog response. A response is applied even if the user
// has moved on since, unless a newer fetch was started after it.
func (c *Controller) applyFetch(ctx context.Context, seq uint64, doc string, err error) {
	c.mu.Lock()
	if seq != c.fetchSeq {
		c.mu.Unlock()
		c.logger.Debug("Discarding superseded catalog response", "seq", seq)
		return
	}
	if err != nil {
		c.mu.Unlock()
		c.logger.Warn("Device type form fetch failed", "err", err)
		c.presenter.Notify(ctx, fmt.Sprintf("Could not load the device type form: %v", err))
		return
	}
	from := c.state
	c.state = domain.DeviceTypeModalOpen(doc)
	c.mu.Unlock()

	c.notify(from, domain.DeviceTypeModalOpen(doc))
	c.presenter.ShowDocument(ctx, doc)
}

// finish returns to Idle if nothing else opened while the item was handled.
func (c *Controller) finish(from domain.Interaction) {
	c.mu.Lock()
	if c.state != from {
		c.mu.Unlock()
		return
	}
	c.state = domain.Idle()
	c.mu.Unlock()
	c.notify(from, domain.Idle())
}

func (c *Controller) transition(to domain.Interaction) domain.Interaction {
	c.mu.Lock()
	from := c.state
	c.state = to
	c.mu.Unlock()

	if from != to {
		c.notify(from, to)
	}
	return to
}

func (c *Controller) notify(from, to domain.Interaction) {
	c.logger.Debug("Interaction changed", "from", from.String(), "to", to.String())
	if c.onChange != nil {
		c.onChange(from, to)
	}
}

type declineAll struct{}

func (declineAll) PromptText(context.Context, string, string) (string, bool) { return "", false }
func (declineAll) Confirm(context.Context, string) bool                       { return false }

type discard struct{}

func (discard) ShowNodeInfo(context.Context, domain.Node) {}
func (discard) ShowDocument(context.Context, string)      {}
func (discard) Notify(context.Context, string)            {}
