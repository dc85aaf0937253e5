package domain_test

import (
	"context"
	"testing"

	"github.com/aretw0/patchbay/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestGraphHooks_Merge(t *testing.T) {
	var calls []string
	first := domain.GraphHooks{
		OnNodesAdded: func(context.Context, *domain.NodeEvent) { calls = append(calls, "first") },
	}
	second := domain.GraphHooks{
		OnNodesAdded: func(context.Context, *domain.NodeEvent) { calls = append(calls, "second") },
		OnCleared:    func(context.Context, *domain.EventBase) { calls = append(calls, "cleared") },
	}

	merged := first.Merge(second)
	merged.OnNodesAdded(context.Background(), &domain.NodeEvent{})
	merged.OnCleared(context.Background(), &domain.EventBase{})

	assert.Equal(t, []string{"first", "second", "cleared"}, calls)
	assert.Nil(t, merged.OnEdgeAdded)
}

func TestInteraction_String(t *testing.T) {
	assert.Equal(t, "Idle", domain.Interaction{}.String())
	assert.True(t, domain.Interaction{}.IsIdle())
	assert.Equal(t, "NodeMenuOpen(A)", domain.NodeMenuOpen("A").String())
	assert.Equal(t, "CanvasMenuOpen", domain.CanvasMenuOpen().String())
	assert.Equal(t, "DeviceTypeModalOpen", domain.DeviceTypeModalOpen("<form/>").String())
	assert.False(t, domain.CanvasMenuOpen().IsIdle())
}
