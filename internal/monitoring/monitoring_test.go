package monitoring

import (
	"testing"
)

func TestNewMetrics(t *testing.T) {
	metrics := NewMetrics()
	if metrics == nil {
		t.Fatal("Expected Metrics, got nil")
	}

	if metrics.MergesPerformed == nil {
		t.Error("Expected MergesPerformed to be initialized")
	}
	if metrics.MergeDuration == nil {
		t.Error("Expected MergeDuration to be initialized")
	}
	if metrics.ConflictsResolved == nil {
		t.Error("Expected ConflictsResolved to be initialized")
	}
	if metrics.DeltasComputed == nil {
		t.Error("Expected DeltasComputed to be initialized")
	}
	if metrics.DeltasApplied == nil {
		t.Error("Expected DeltasApplied to be initialized")
	}
	if metrics.ORSetOps == nil {
		t.Error("Expected ORSetOps to be initialized")
	}
	if metrics.TextItemsIntegrated == nil {
		t.Error("Expected TextItemsIntegrated to be initialized")
	}
	if metrics.BlockCoalesceEvents == nil {
		t.Error("Expected BlockCoalesceEvents to be initialized")
	}
	if metrics.FractionalIndexDepth == nil {
		t.Error("Expected FractionalIndexDepth to be initialized")
	}
	if metrics.ErrorCount == nil {
		t.Error("Expected ErrorCount to be initialized")
	}
	if metrics.ActiveReplicas == nil {
		t.Error("Expected ActiveReplicas to be initialized")
	}
}
