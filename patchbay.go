package patchbay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/patchbay/internal/logging"
	"github.com/aretw0/patchbay/pkg/domain"
	"github.com/aretw0/patchbay/pkg/graph"
	"github.com/aretw0/patchbay/pkg/ingest"
	"github.com/aretw0/patchbay/pkg/interaction"
	"github.com/aretw0/patchbay/pkg/ports"
	"github.com/aretw0/patchbay/pkg/session"
)

// Editor is the high-level entry point for the patchbay library.
// It owns one live diagram and wires the store, ingestion channel, interaction
// controller and optional persistence around it.
type Editor struct {
	store      *graph.Store
	channel    *ingest.Channel
	controller *interaction.Controller
	sessions   *session.Manager

	snapshots  ports.SnapshotStore
	locker     ports.DistributedLocker
	catalog    ports.CatalogClient
	prompter   ports.Prompter
	presenter  ports.Presenter
	normalizer *ingest.Normalizer
	onChange   interaction.ChangeFunc
	initial    *domain.Snapshot
	hooks      domain.GraphHooks
	logger     *slog.Logger

	diffMu   sync.Mutex
	last     *domain.Snapshot
	watchers map[chan *domain.GraphDiff]struct{}
}

// Option defines a functional option for configuring the Editor.
type Option func(*Editor)

// WithHooks registers observability hooks on the graph store.
func WithHooks(hooks domain.GraphHooks) Option {
	return func(e *Editor) {
		e.hooks = e.hooks.Merge(hooks)
	}
}

// WithLogger sets a custom structured logger for the editor and its components.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Editor) {
		e.logger = logger
	}
}

// WithSnapshotStore enables saving and loading named diagrams.
func WithSnapshotStore(store ports.SnapshotStore) Option {
	return func(e *Editor) {
		e.snapshots = store
	}
}

// WithLocker coordinates diagram persistence across replicas.
// It only has an effect together with WithSnapshotStore.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(e *Editor) {
		e.locker = locker
	}
}

// WithCatalog sets the device catalog used by the "add new device type" menu entry.
func WithCatalog(catalog ports.CatalogClient) Option {
	return func(e *Editor) {
		e.catalog = catalog
	}
}

// WithPrompter sets how the interaction controller asks for confirmation.
func WithPrompter(p ports.Prompter) Option {
	return func(e *Editor) {
		e.prompter = p
	}
}

// WithPresenter sets where the interaction controller shows information.
func WithPresenter(p ports.Presenter) Option {
	return func(e *Editor) {
		e.presenter = p
	}
}

// WithNormalizer replaces the default record normalizer of the ingestion channel.
func WithNormalizer(n *ingest.Normalizer) Option {
	return func(e *Editor) {
		e.normalizer = n
	}
}

// WithInteractionObserver is called on every interaction state change.
func WithInteractionObserver(fn interaction.ChangeFunc) Option {
	return func(e *Editor) {
		e.onChange = fn
	}
}

// WithInitialDiagram seeds the live diagram.
func WithInitialDiagram(snap *domain.Snapshot) Option {
	return func(e *Editor) {
		e.initial = snap
	}
}

// New initializes an Editor with an empty diagram unless WithInitialDiagram is given.
func New(opts ...Option) (*Editor, error) {
	e := &Editor{
		logger:   logging.NewNop(),
		watchers: make(map[chan *domain.GraphDiff]struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.store = graph.NewStore(
		graph.WithLogger(e.logger),
		graph.WithHooks(e.hooks),
		graph.WithHooks(e.diffHooks()),
	)

	if e.initial != nil {
		if err := e.store.Restore(e.initial); err != nil {
			return nil, fmt.Errorf("invalid initial diagram: %w", err)
		}
	}
	e.last = e.store.Snapshot()

	channelOpts := []ingest.Option{ingest.WithLogger(e.logger)}
	if e.normalizer != nil {
		channelOpts = append(channelOpts, ingest.WithNormalizer(e.normalizer))
	}
	e.channel = ingest.NewChannel(e.store, channelOpts...)

	ctrlOpts := []interaction.Option{interaction.WithLogger(e.logger)}
	if e.onChange != nil {
		ctrlOpts = append(ctrlOpts, interaction.WithOnChange(e.onChange))
	}
	e.controller = interaction.New(e.store, e.catalog, e.prompter, e.presenter, ctrlOpts...)

	if e.snapshots != nil {
		sessOpts := []session.Option{session.WithLogger(e.logger)}
		if e.locker != nil {
			sessOpts = append(sessOpts, session.WithLocker(e.locker))
		}
		e.sessions = session.NewManager(e.snapshots, sessOpts...)
	}

	return e, nil
}

// Store returns the live diagram.
func (e *Editor) Store() *graph.Store {
	return e.store
}

// Controller returns the interaction state machine bound to the live diagram.
func (e *Editor) Controller() *interaction.Controller {
	return e.controller
}

// Ingestion returns the channel appending external device records.
func (e *Editor) Ingestion() *ingest.Channel {
	return e.channel
}

// Sessions returns the diagram manager, or nil without a snapshot store.
func (e *Editor) Sessions() *session.Manager {
	return e.sessions
}

// ErrNoPersistence is returned by diagram operations when no snapshot store is configured.
var ErrNoPersistence = errors.New("no snapshot store configured")

// SaveDiagram stores the live diagram under id.
func (e *Editor) SaveDiagram(ctx context.Context, id string) error {
	if e.sessions == nil {
		return ErrNoPersistence
	}
	if err := e.sessions.Save(ctx, id, e.store.Snapshot()); err != nil {
		return fmt.Errorf("failed to save diagram %s: %w", id, err)
	}
	e.logger.Info("Diagram saved", "diagram_id", id)
	return nil
}

// LoadDiagram replaces the live diagram with the one stored under id.
// A stored diagram that breaks an invariant is refused and the live one is kept.
func (e *Editor) LoadDiagram(ctx context.Context, id string) error {
	if e.sessions == nil {
		return ErrNoPersistence
	}
	snap, err := e.sessions.Load(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load diagram %s: %w", id, err)
	}
	if err := e.store.Restore(snap); err != nil {
		return fmt.Errorf("failed to load diagram %s: %w", id, err)
	}
	e.logger.Info("Diagram loaded", "diagram_id", id, "nodes", len(snap.Nodes), "edges", len(snap.Edges))
	return nil
}

// OpenDiagram loads the diagram stored under id into the live diagram,
// first storing an empty one if id does not exist yet.
func (e *Editor) OpenDiagram(ctx context.Context, id string) error {
	if e.sessions == nil {
		return ErrNoPersistence
	}
	snap, err := e.sessions.LoadOrCreate(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to open diagram %s: %w", id, err)
	}
	if err := e.store.Restore(snap); err != nil {
		return fmt.Errorf("failed to open diagram %s: %w", id, err)
	}
	e.logger.Info("Diagram opened", "diagram_id", id, "nodes", len(snap.Nodes), "edges", len(snap.Edges))
	return nil
}

// DeleteDiagram removes a stored diagram. The live diagram is untouched.
func (e *Editor) DeleteDiagram(ctx context.Context, id string) error {
	if e.sessions == nil {
		return ErrNoPersistence
	}
	return e.sessions.Delete(ctx, id)
}

// ListDiagrams returns the IDs of stored diagrams.
func (e *Editor) ListDiagrams(ctx context.Context) ([]string, error) {
	if e.sessions == nil {
		return nil, ErrNoPersistence
	}
	return e.sessions.List(ctx)
}

// Watch streams the changes of the live diagram, one diff per mutation.
// Slow readers miss diffs rather than block writers. Call cancel to release the stream.
func (e *Editor) Watch() (<-chan *domain.GraphDiff, func()) {
	ch := make(chan *domain.GraphDiff, 16)

	e.diffMu.Lock()
	e.watchers[ch] = struct{}{}
	e.diffMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			e.diffMu.Lock()
			delete(e.watchers, ch)
			e.diffMu.Unlock()
			close(ch)
		})
	}
}

func (e *Editor) diffHooks() domain.GraphHooks {
	nodes := func(context.Context, *domain.NodeEvent) { e.publishDiff() }
	edges := func(context.Context, *domain.EdgeEvent) { e.publishDiff() }
	whole := func(context.Context, *domain.EventBase) { e.publishDiff() }
	return domain.GraphHooks{
		OnNodesAdded:  nodes,
		OnNodeRemoved: nodes,
		OnNodeUpdated: nodes,
		OnEdgeAdded:   edges,
		OnEdgeRemoved: edges,
		OnCleared:     whole,
		OnRestored:    whole,
	}
}

func (e *Editor) publishDiff() {
	e.diffMu.Lock()
	defer e.diffMu.Unlock()

	// last is unset while New restores the initial diagram
	if e.last == nil {
		return
	}
	current := e.store.Snapshot()
	diff := domain.Diff(e.last, current)
	e.last = current
	if diff == nil {
		return
	}
	for ch := range e.watchers {
		select {
		case ch <- diff:
		default:
			e.logger.Warn("Diff watcher buffer full, dropping update")
		}
	}
}
