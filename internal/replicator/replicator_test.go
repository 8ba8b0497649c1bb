package replicator

import (
	"context"
	"testing"

	"github.com/synckit-dev/synckit/internal/delta"
)

type mockTransport struct {
	broadcasts []*delta.Delta
	failNext   bool
}

func (m *mockTransport) Broadcast(ctx context.Context, documentID string, d *delta.Delta) error {
	if m.failNext {
		m.failNext = false
		return context.DeadlineExceeded
	}
	m.broadcasts = append(m.broadcasts, d)
	return nil
}

func TestSetFieldBroadcasts(t *testing.T) {
	transport := &mockTransport{}
	r := New("replica-1", transport, nil, nil)

	if err := r.SetField(context.Background(), "doc-1", "title", "hello"); err != nil {
		t.Fatalf("SetField failed: %v", err)
	}

	if len(transport.broadcasts) != 1 {
		t.Fatalf("expected 1 broadcast, got %d", len(transport.broadcasts))
	}
	d := transport.broadcasts[0]
	if d.DocumentID != "doc-1" {
		t.Errorf("expected document id doc-1, got %s", d.DocumentID)
	}
	if d.Len() != 1 {
		t.Errorf("expected 1 change, got %d", d.Len())
	}

	val, ok := r.Document("doc-1").GetField("title")
	if !ok || val != "hello" {
		t.Errorf("expected title=hello, got %v ok=%v", val, ok)
	}
}

func TestSetFieldWithoutTransportStillApplies(t *testing.T) {
	r := New("replica-1", nil, nil, nil)

	if err := r.SetField(context.Background(), "doc-1", "title", "hello"); err != nil {
		t.Fatalf("SetField failed: %v", err)
	}

	val, ok := r.Document("doc-1").GetField("title")
	if !ok || val != "hello" {
		t.Errorf("expected title=hello, got %v ok=%v", val, ok)
	}
}

func TestDeleteFieldBroadcastsTombstone(t *testing.T) {
	transport := &mockTransport{}
	r := New("replica-1", transport, nil, nil)

	_ = r.SetField(context.Background(), "doc-1", "title", "hello")
	if err := r.DeleteField(context.Background(), "doc-1", "title"); err != nil {
		t.Fatalf("DeleteField failed: %v", err)
	}

	_, ok := r.Document("doc-1").GetField("title")
	if ok {
		t.Error("expected title to be deleted")
	}

	if len(transport.broadcasts) != 2 {
		t.Fatalf("expected 2 broadcasts, got %d", len(transport.broadcasts))
	}
	if !transport.broadcasts[1].Changes[0].IsDelete {
		t.Error("expected second broadcast's change to be a delete")
	}
}

func TestBroadcastFailureReturnsError(t *testing.T) {
	transport := &mockTransport{failNext: true}
	r := New("replica-1", transport, nil, nil)

	err := r.SetField(context.Background(), "doc-1", "title", "hello")
	if err == nil {
		t.Fatal("expected broadcast failure to surface as an error")
	}
}

func TestApplyDeltaFromRemote(t *testing.T) {
	alice := New("alice", nil, nil, nil)
	bob := New("bob", nil, nil, nil)

	before := bob.Document("doc-1")
	_ = alice.SetField(context.Background(), "doc-1", "title", "hello")
	after := alice.Document("doc-1")

	d, err := delta.Compute(before, after)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	if err := bob.ApplyDelta(context.Background(), d); err != nil {
		t.Fatalf("ApplyDelta failed: %v", err)
	}

	val, ok := bob.Document("doc-1").GetField("title")
	if !ok || val != "hello" {
		t.Errorf("expected bob to observe title=hello, got %v ok=%v", val, ok)
	}
}

func TestMergeFullSnapshotConverges(t *testing.T) {
	alice := New("alice", nil, nil, nil)
	bob := New("bob", nil, nil, nil)

	_ = alice.SetField(context.Background(), "doc-1", "title", "alice-wins")
	_ = bob.SetField(context.Background(), "doc-1", "body", "bob-only")

	updated := bob.Merge(context.Background(), alice.Document("doc-1"))
	if updated != 1 {
		t.Errorf("expected 1 field updated by merge, got %d", updated)
	}

	doc := bob.Document("doc-1")
	title, _ := doc.GetField("title")
	body, _ := doc.GetField("body")
	if title != "alice-wins" || body != "bob-only" {
		t.Errorf("expected merged document to carry both fields, got title=%v body=%v", title, body)
	}
}

func TestDocumentCreatesEmptyWhenUnseen(t *testing.T) {
	r := New("replica-1", nil, nil, nil)
	doc := r.Document("never-touched")
	if !doc.IsEmpty() {
		t.Error("expected a freshly-created document to be empty")
	}
}
