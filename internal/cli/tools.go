package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/patchbay/internal/presentation/graph"
	"github.com/aretw0/patchbay/pkg/adapters/file"
	"github.com/aretw0/patchbay/pkg/adapters/redis"
	"github.com/aretw0/patchbay/pkg/domain"
	patchgraph "github.com/aretw0/patchbay/pkg/graph"
	"github.com/aretw0/patchbay/pkg/ingest"
	"gopkg.in/yaml.v3"
)

// ValidateDiagram reads a diagram document and reports every broken wiring invariant.
func ValidateDiagram(path string) ([]error, error) {
	snap, err := file.ReadDiagram(path)
	if err != nil {
		return nil, err
	}
	return patchgraph.CheckInvariants(snap), nil
}

// RenderDiagram writes a diagram document as a Mermaid flowchart.
func RenderDiagram(w io.Writer, path string) error {
	snap, err := file.ReadDiagram(path)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, graph.GenerateMermaid(snap, graph.OverlayFor(snap, domain.Idle())))
	return err
}

// IngestOptions configures the ingest command.
type IngestOptions struct {
	Path      string // "-" or empty reads Stdin
	RedisAddr string
	Channel   string
	Input     io.Reader
	Output    io.Writer
}

// RunIngest sends device records to a running editor over Redis pub/sub.
// Without Redis it previews, as YAML, the devices the records would become.
//
// Input is either a full message ({"type":"ADD_NODES","payload":...}) or bare records,
// which are wrapped in an ADD_NODES message before publishing.
func RunIngest(ctx context.Context, opts IngestOptions) error {
	raw, err := readInput(opts.Path, opts.Input)
	if err != nil {
		return err
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	msg, err := asMessage(raw)
	if err != nil {
		return err
	}

	if opts.RedisAddr == "" {
		opts.RedisAddr = os.Getenv(EnvRedisAddr)
	}
	if opts.RedisAddr == "" {
		return previewIngest(opts.Output, msg)
	}

	channel := opts.Channel
	if channel == "" {
		channel = redis.DefaultChannel
	}
	store := redis.New(opts.RedisAddr, "", 0)
	defer store.Close()

	if err := redis.NewSource(store.Client(), channel).Publish(ctx, msg); err != nil {
		return err
	}
	printSystemMessage(opts.Output, "Published %d bytes to %s.", len(msg), channel)
	return nil
}

func readInput(path string, in io.Reader) ([]byte, error) {
	if path == "" || path == "-" {
		if in == nil {
			in = os.Stdin
		}
		return io.ReadAll(in)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// asMessage wraps bare records into an ADD_NODES message.
func asMessage(raw []byte) ([]byte, error) {
	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("input is not JSON: %w", err)
	}
	if m, ok := payload.(map[string]any); ok {
		if _, isMessage := m["type"]; isMessage {
			return raw, nil
		}
	}
	return json.Marshal(map[string]any{"type": string(ingest.KindAddNodes), "payload": payload})
}

func previewIngest(w io.Writer, raw []byte) error {
	msg, err := ingest.DecodeMessage(raw)
	if err != nil {
		return err
	}
	if msg.Kind != ingest.KindAddNodes {
		printSystemMessage(w, "Message type %q would be ignored.", msg.Type)
		return nil
	}

	ch := ingest.NewChannel(patchgraph.NewStore())
	nodes := ch.Normalize(msg.Entries)
	out, err := yaml.Marshal(nodes)
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}
