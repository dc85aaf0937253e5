package patchbay

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/aretw0/patchbay/internal/presentation/tui"
	"github.com/aretw0/patchbay/pkg/domain"
)

// Runner drives an Editor from a line-oriented terminal.
// It also implements ports.Prompter and ports.Presenter, so the same terminal
// answers the confirmations raised by the interaction controller:
//
//	r := patchbay.NewRunner(os.Stdin, os.Stdout)
//	editor, _ := patchbay.New(patchbay.WithPrompter(r), patchbay.WithPresenter(r))
//	err := r.Run(ctx, editor)
type Runner struct {
	Input    io.Reader
	Output   io.Writer
	Headless bool
	Renderer ContentRenderer

	once   sync.Once
	reader *bufio.Reader
	mu     sync.Mutex
}

// ContentRenderer is a function that transforms markdown before outputting it.
// This allows for TUI rendering (markdown to ANSI) without coupling the core package.
type ContentRenderer func(string) (string, error)

// NewRunner creates a Runner reading commands from in and writing to out.
func NewRunner(in io.Reader, out io.Writer) *Runner {
	return &Runner{Input: in, Output: out}
}

// errQuit ends the loop without error.
var errQuit = errors.New("quit")

// Run reads commands until EOF, "exit" or ctx cancellation.
func (r *Runner) Run(ctx context.Context, editor *Editor) error {
	if r.Input == nil {
		return fmt.Errorf("input reader must be set (use os.Stdin)")
	}
	if r.Output == nil {
		return fmt.Errorf("output writer must be set (use os.Stdout)")
	}
	if !r.Headless {
		r.printf("--- patchbay editor (type 'help') ---\n")
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !r.Headless {
			r.printf("%s> ", promptLabel(editor.Controller().State()))
		}
		line, err := r.readLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("input error: %w", err)
		}
		if line == "" {
			continue
		}

		if err := r.execute(ctx, editor, line); err != nil {
			if errors.Is(err, errQuit) {
				if !r.Headless {
					r.printf("Bye!\n")
				}
				return nil
			}
			r.printf("error: %v\n", err)
		}
	}
}

func (r *Runner) execute(ctx context.Context, editor *Editor, line string) error {
	cmd, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)
	args := strings.Fields(rest)
	store := editor.Store()
	ctrl := editor.Controller()

	switch strings.ToLower(cmd) {
	case "help", "?":
		r.printf("%s", helpText)

	case "exit", "quit", "q":
		return errQuit

	case "nodes":
		for _, n := range store.Nodes() {
			r.printf("%s\t%s\t%s\n", n.ID, n.Label, pinSummary(n))
		}

	case "edges":
		for _, e := range store.Edges() {
			r.printf("%s\t%s.%s -> %s.%s\n", e.ID, e.Source, e.SourceHandle, e.Target, e.TargetHandle)
		}

	case "state":
		r.printf("%s\n", ctrl.State())

	case "menu":
		if len(args) != 1 {
			return errors.New("usage: menu <node-id>")
		}
		state := ctrl.RightClickNode(args[0])
		if state.Kind != domain.InteractionNodeMenu {
			return fmt.Errorf("no device %q", args[0])
		}
		r.printMenu(nodeMenuTitles())

	case "canvas":
		ctrl.RightClickCanvas()
		r.printMenu(canvasMenuTitles())

	case "close":
		ctrl.ClickOutside()

	case "select":
		if len(args) != 1 {
			return errors.New("usage: select <number|item>")
		}
		return r.selectItem(ctx, editor, args[0])

	case "connect", "check":
		if len(args) != 2 {
			return fmt.Errorf("usage: %s <node.pin> <node.pin>", cmd)
		}
		c, err := parseConnection(args[0], args[1])
		if err != nil {
			return err
		}
		if cmd == "check" {
			if err := store.Validate(c); err != nil {
				r.printf("rejected (%s): %v\n", domain.RejectionRule(err), err)
				return nil
			}
			r.printf("ok\n")
			return nil
		}
		edge, err := store.AddEdge(c)
		if err != nil {
			r.printf("rejected (%s): %v\n", domain.RejectionRule(err), err)
			return nil
		}
		r.printf("connected %s\n", edge.ID)

	case "disconnect":
		if len(args) != 1 {
			return errors.New("usage: disconnect <edge-id>")
		}
		if !store.RemoveEdge(args[0]) {
			return fmt.Errorf("no wire %q", args[0])
		}

	case "move":
		if len(args) != 3 {
			return errors.New("usage: move <node-id> <x> <y>")
		}
		x, errX := strconv.ParseFloat(args[1], 64)
		y, errY := strconv.ParseFloat(args[2], 64)
		if err := errors.Join(errX, errY); err != nil {
			return fmt.Errorf("invalid position: %w", err)
		}
		if !store.MoveNode(args[0], domain.Position{X: x, Y: y}) {
			return fmt.Errorf("no device %q", args[0])
		}

	case "ingest":
		if rest == "" {
			return errors.New("usage: ingest <json>")
		}
		ids, err := ingestJSON(editor, rest)
		if err != nil {
			return err
		}
		r.printf("added %d device(s): %s\n", len(ids), strings.Join(ids, ", "))

	case "save", "load", "delete":
		if len(args) != 1 {
			return fmt.Errorf("usage: %s <diagram-id>", cmd)
		}
		var err error
		switch cmd {
		case "save":
			err = editor.SaveDiagram(ctx, args[0])
		case "load":
			err = editor.LoadDiagram(ctx, args[0])
		default:
			err = editor.DeleteDiagram(ctx, args[0])
		}
		if err != nil {
			return err
		}
		r.printf("%s %s: ok\n", cmd, args[0])

	case "diagrams":
		ids, err := editor.ListDiagrams(ctx)
		if err != nil {
			return err
		}
		for _, id := range ids {
			r.printf("%s\n", id)
		}

	default:
		return fmt.Errorf("unknown command %q (type 'help')", cmd)
	}
	return nil
}

func (r *Runner) selectItem(ctx context.Context, editor *Editor, choice string) error {
	ctrl := editor.Controller()
	switch state := ctrl.State(); state.Kind {
	case domain.InteractionNodeMenu:
		item, ok := pick(domain.NodeMenuItems, choice)
		if !ok {
			return fmt.Errorf("no menu entry %q", choice)
		}
		return ctrl.SelectNodeItem(ctx, item)

	case domain.InteractionCanvasMenu:
		item, ok := pick(domain.CanvasMenuItems, choice)
		if !ok {
			return fmt.Errorf("no menu entry %q", choice)
		}
		if err := ctrl.SelectCanvasItem(ctx, item); err != nil {
			return err
		}
		// The device-type form opens before the next prompt.
		ctrl.Wait()
		return nil

	default:
		return fmt.Errorf("no menu open (state %s)", state)
	}
}

// PromptText implements ports.Prompter. An empty answer keeps the default; EOF cancels.
func (r *Runner) PromptText(_ context.Context, message, defaultValue string) (string, bool) {
	if defaultValue != "" {
		r.printf("%s [%s]: ", message, defaultValue)
	} else {
		r.printf("%s: ", message)
	}
	line, err := r.readLine()
	if err != nil {
		return "", false
	}
	if line == "" {
		return defaultValue, true
	}
	return line, true
}

// Confirm implements ports.Prompter.
func (r *Runner) Confirm(_ context.Context, message string) bool {
	r.printf("%s [y/N]: ", message)
	line, err := r.readLine()
	if err != nil {
		return false
	}
	switch strings.ToLower(line) {
	case "y", "yes":
		return true
	}
	return false
}

// ShowNodeInfo implements ports.Presenter.
func (r *Runner) ShowNodeInfo(_ context.Context, node domain.Node) {
	r.printf("%s\n", strings.TrimSpace(r.render(tui.NodeInfoMarkdown(node))))
}

// ShowDocument implements ports.Presenter. The document is printed verbatim.
func (r *Runner) ShowDocument(_ context.Context, document string) {
	r.printf("--- Add new device type ---\n%s\n--- ('close' to dismiss) ---\n", strings.TrimSpace(document))
}

// Notify implements ports.Presenter.
func (r *Runner) Notify(_ context.Context, message string) {
	r.printf("!! %s\n", message)
}

func (r *Runner) render(markdown string) string {
	if r.Renderer == nil {
		return markdown
	}
	out, err := r.Renderer(markdown)
	if err != nil {
		return markdown
	}
	return out
}

func (r *Runner) readLine() (string, error) {
	r.once.Do(func() {
		r.reader = bufio.NewReader(r.Input)
	})
	text, err := r.reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && text != "") {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func (r *Runner) printf(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.Output, format, args...)
}

func (r *Runner) printMenu(titles []string) {
	for i, t := range titles {
		r.printf("  %d) %s\n", i+1, t)
	}
}

// pick resolves a menu choice given as a 1-based number or an item name.
func pick[T ~string](items []T, choice string) (T, bool) {
	if n, err := strconv.Atoi(choice); err == nil {
		if n >= 1 && n <= len(items) {
			return items[n-1], true
		}
		return "", false
	}
	for _, it := range items {
		if strings.EqualFold(string(it), choice) {
			return it, true
		}
	}
	return "", false
}

func nodeMenuTitles() []string {
	titles := make([]string, len(domain.NodeMenuItems))
	for i, it := range domain.NodeMenuItems {
		titles[i] = it.Title()
	}
	return titles
}

func canvasMenuTitles() []string {
	titles := make([]string, len(domain.CanvasMenuItems))
	for i, it := range domain.CanvasMenuItems {
		titles[i] = it.Title()
	}
	return titles
}

func promptLabel(state domain.Interaction) string {
	switch state.Kind {
	case domain.InteractionNodeMenu:
		return "menu:" + state.NodeID + " "
	case domain.InteractionCanvasMenu:
		return "canvas "
	case domain.InteractionDeviceTypeModal:
		return "form "
	}
	return ""
}

func pinSummary(n domain.Node) string {
	parts := make([]string, 0, len(n.Pins))
	for _, p := range n.Pins {
		dir := "<"
		if p.Type == domain.PinOutput {
			dir = ">"
		}
		parts = append(parts, fmt.Sprintf("%s%s[%s]", dir, p.ID, p.Spec))
	}
	return strings.Join(parts, " ")
}

// parseConnection reads two "node.pin" endpoints. The pin is the text after the last dot.
func parseConnection(source, target string) (domain.Connection, error) {
	split := func(s string) (string, string, error) {
		i := strings.LastIndex(s, ".")
		if i <= 0 || i == len(s)-1 {
			return "", "", fmt.Errorf("invalid endpoint %q (want node.pin)", s)
		}
		return s[:i], s[i+1:], nil
	}
	src, srcPin, err := split(source)
	if err != nil {
		return domain.Connection{}, err
	}
	dst, dstPin, err := split(target)
	if err != nil {
		return domain.Connection{}, err
	}
	return domain.Connection{Source: src, SourceHandle: srcPin, Target: dst, TargetHandle: dstPin}, nil
}

// ingestJSON accepts either a full message object or a bare device list.
func ingestJSON(editor *Editor, raw string) ([]string, error) {
	var payload any
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if msg, ok := payload.(map[string]any); ok {
		if _, isMessage := msg["type"]; isMessage {
			return editor.Ingestion().Handle([]byte(raw))
		}
	}
	return editor.Ingestion().Ingest(payload), nil
}

const helpText = `Commands:
  nodes | edges | state          list devices, wires, interaction state
  menu <id> | canvas | close     open a context menu / dismiss it
  select <n|item>                choose a menu entry
  connect <a.pin> <b.pin>        wire an output pin to an input pin
  check <a.pin> <b.pin>          validate a wire without adding it
  disconnect <edge-id>           remove a wire
  move <id> <x> <y>              reposition a device
  ingest <json>                  add devices from a record, list or message
  save | load | delete <id>      manage stored diagrams
  diagrams                       list stored diagrams
  exit
`
