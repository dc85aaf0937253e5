package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aretw0/patchbay/pkg/domain"
)

// Answer carries the reply to a prompt raised while handling a request.
type Answer struct {
	Text    *string
	Confirm bool
}

type answerKey struct{}

// WithAnswer attaches the reply a Prompter returns for prompts raised under ctx.
func WithAnswer(ctx context.Context, a Answer) context.Context {
	return context.WithValue(ctx, answerKey{}, a)
}

// Prompter answers interaction prompts from the request that triggered them.
// Without an attached answer every prompt is declined.
type Prompter struct{}

// PromptText implements ports.Prompter.
func (Prompter) PromptText(ctx context.Context, _, _ string) (string, bool) {
	a, ok := ctx.Value(answerKey{}).(Answer)
	if !ok || a.Text == nil {
		return "", false
	}
	return *a.Text, true
}

// Confirm implements ports.Prompter.
func (Prompter) Confirm(ctx context.Context, _ string) bool {
	a, ok := ctx.Value(answerKey{}).(Answer)
	return ok && a.Confirm
}

// InteractionEvent is pushed on the "interaction" topic.
type InteractionEvent struct {
	Type     string              `json:"type"` // "state", "node_info", "document" or "notice"
	From     *domain.Interaction `json:"from,omitempty"`
	To       *domain.Interaction `json:"to,omitempty"`
	Node     *domain.Node        `json:"node,omitempty"`
	Document string              `json:"document,omitempty"`
	Message  string              `json:"message,omitempty"`
}

// Presenter broadcasts presentation requests to SSE clients.
type Presenter struct {
	Streams *StreamManager
}

// ShowNodeInfo implements ports.Presenter.
func (p Presenter) ShowNodeInfo(_ context.Context, node domain.Node) {
	p.Streams.Publish(TopicInteraction, InteractionEvent{Type: "node_info", Node: &node})
}

// ShowDocument implements ports.Presenter.
func (p Presenter) ShowDocument(_ context.Context, document string) {
	p.Streams.Publish(TopicInteraction, InteractionEvent{Type: "document", Document: document})
}

// Notify implements ports.Presenter.
func (p Presenter) Notify(_ context.Context, message string) {
	p.Streams.Publish(TopicInteraction, InteractionEvent{Type: "notice", Message: message})
}

// ObserveInteraction is an interaction.ChangeFunc publishing every state change.
func (sm *StreamManager) ObserveInteraction(from, to domain.Interaction) {
	sm.Publish(TopicInteraction, InteractionEvent{Type: "state", From: &from, To: &to})
}

type interactionRequest struct {
	Event   string  `json:"event"`
	NodeID  string  `json:"node_id,omitempty"`
	Item    string  `json:"item,omitempty"`
	Text    *string `json:"text,omitempty"`
	Confirm bool    `json:"confirm,omitempty"`
}

// GetInteraction handles the GET /interaction request.
func (s *Server) GetInteraction(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Editor.Controller().State())
}

// PostInteraction handles the POST /interaction request.
// The body names a user event; prompts it raises are answered by text and confirm.
func (s *Server) PostInteraction(w http.ResponseWriter, r *http.Request) {
	var req interactionRequest
	if !s.decode(w, r, &req) {
		return
	}
	ctrl := s.Editor.Controller()
	ctx := WithAnswer(r.Context(), Answer{Text: req.Text, Confirm: req.Confirm})

	var err error
	switch req.Event {
	case "right_click_node":
		ctrl.RightClickNode(req.NodeID)
	case "right_click_canvas":
		ctrl.RightClickCanvas()
	case "click_outside":
		ctrl.ClickOutside()
	case "select_node_item":
		err = ctrl.SelectNodeItem(ctx, domain.NodeMenuItem(req.Item))
	case "select_canvas_item":
		// the catalog fetch outlives the request
		err = ctrl.SelectCanvasItem(context.WithoutCancel(ctx), domain.CanvasMenuItem(req.Item))
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown event %q", req.Event))
		return
	}
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ctrl.State())
}

// SubscribeEvents handles the GET /events request (SSE).
//
// topic=graph (default) streams one GraphDiff per mutation of the live diagram;
// watch=nodes,edges restricts it to diffs touching those collections.
// topic=interaction streams InteractionEvents.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	topic := r.URL.Query().Get("topic")
	if topic == "" {
		topic = TopicGraph
	}
	var msgs <-chan string
	switch topic {
	case TopicGraph:
		diffs, cancel := s.Editor.Watch()
		defer cancel()
		msgs = diffMessages(r.Context(), diffs, parseWatch(r.URL.Query().Get("watch")))
	case TopicInteraction:
		ch, cancel := s.Streams.Subscribe(topic)
		defer cancel()
		msgs = ch
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown topic %q", topic))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	s.logger.Info("SSE: Client subscribed", "topic", topic)
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE Client Disconnected", "topic", topic)
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

type watchFilter struct {
	nodes, edges bool
}

func parseWatch(raw string) *watchFilter {
	if raw == "" {
		return nil
	}
	f := &watchFilter{}
	for _, field := range splitTrim(raw) {
		switch field {
		case "nodes":
			f.nodes = true
		case "edges":
			f.edges = true
		}
	}
	return f
}

func (f *watchFilter) keep(d *domain.GraphDiff) bool {
	if f == nil {
		return true
	}
	touchesNodes := len(d.AddedNodes)+len(d.UpdatedNodes)+len(d.RemovedNodes) > 0
	touchesEdges := len(d.AddedEdges)+len(d.RemovedEdges) > 0
	return (f.nodes && touchesNodes) || (f.edges && touchesEdges)
}

// diffMessages encodes the diffs passing the filter until ctx ends or diffs closes.
func diffMessages(ctx context.Context, diffs <-chan *domain.GraphDiff, filter *watchFilter) <-chan string {
	out := make(chan string)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-diffs:
				if !ok {
					return
				}
				if !filter.keep(d) {
					continue
				}
				b, err := json.Marshal(d)
				if err != nil {
					continue
				}
				select {
				case out <- string(b):
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}
