package synckit

import (
	"context"
	"testing"

	"github.com/synckit-dev/synckit/internal/delta"
	"github.com/synckit-dev/synckit/internal/document"
	"github.com/synckit-dev/synckit/internal/fractional"
	"github.com/synckit-dev/synckit/internal/orset"
)

type recordingTransport struct {
	deltas []*delta.Delta
}

func (r *recordingTransport) Broadcast(ctx context.Context, documentID string, d *delta.Delta) error {
	r.deltas = append(r.deltas, d)
	return nil
}

func TestNewReplicaIDIsUniqueAndNonEmpty(t *testing.T) {
	a := NewReplicaID()
	b := NewReplicaID()
	if a == "" || b == "" {
		t.Fatal("expected non-empty replica ids")
	}
	if a == b {
		t.Error("expected two generated replica ids to differ")
	}
}

func TestNewRequiresReplicaID(t *testing.T) {
	if _, err := New(Options{}, nil); err == nil {
		t.Error("expected error for empty ReplicaID")
	}
}

func TestNewDefaultsLogging(t *testing.T) {
	r, err := New(Options{ReplicaID: "alice"}, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if r.ID() != "alice" {
		t.Errorf("expected ID alice, got %s", r.ID())
	}
}

func TestSetFieldAndReadJSON(t *testing.T) {
	r, _ := New(Options{ReplicaID: "alice"}, nil)
	if err := r.SetField(context.Background(), "doc-1", "title", "hello"); err != nil {
		t.Fatalf("SetField failed: %v", err)
	}
	doc := r.DocumentJSON("doc-1")
	if doc["title"] != "hello" {
		t.Errorf("expected title=hello, got %v", doc["title"])
	}
}

func TestSetFieldBroadcastsThroughTransport(t *testing.T) {
	transport := &recordingTransport{}
	r, _ := New(Options{ReplicaID: "alice"}, transport)
	_ = r.SetField(context.Background(), "doc-1", "title", "hello")
	if len(transport.deltas) != 1 {
		t.Fatalf("expected 1 delta broadcast, got %d", len(transport.deltas))
	}
}

func TestTwoReplicasConvergeOnField(t *testing.T) {
	alice, _ := New(Options{ReplicaID: "alice"}, nil)
	bob, _ := New(Options{ReplicaID: "bob"}, nil)

	_ = alice.SetField(context.Background(), "doc-1", "title", "from-alice")
	_ = bob.SetField(context.Background(), "doc-1", "body", "from-bob")

	bob.MergeDocument(context.Background(), docFromJSON(alice, "doc-1"))
	alice.MergeDocument(context.Background(), docFromJSON(bob, "doc-1"))

	aliceDoc := alice.DocumentJSON("doc-1")
	bobDoc := bob.DocumentJSON("doc-1")
	if aliceDoc["title"] != bobDoc["title"] || aliceDoc["body"] != bobDoc["body"] {
		t.Errorf("expected replicas to converge, alice=%v bob=%v", aliceDoc, bobDoc)
	}
}

func docFromJSON(r *Replica, documentID string) *document.Document {
	return r.documents.Document(documentID)
}

func TestSetOperations(t *testing.T) {
	r, _ := New(Options{ReplicaID: "alice"}, nil)
	r.AddToSet("tags", "urgent")
	r.AddToSet("tags", "review")
	r.RemoveFromSet("tags", "review")

	elements := r.SetElements("tags")
	if len(elements) != 1 || elements[0] != "urgent" {
		t.Errorf("expected [urgent], got %v", elements)
	}
}

func TestSetMergeIsAddWins(t *testing.T) {
	alice, _ := New(Options{ReplicaID: "alice"}, nil)
	bob, _ := New(Options{ReplicaID: "bob"}, nil)

	alice.AddToSet("tags", "urgent")
	bob.AddToSet("tags", "urgent")
	bob.RemoveFromSet("tags", "urgent")

	bob.MergeSet("tags", aliceSet(alice, "tags"))

	if !bob.setLocked("tags").Contains("urgent") {
		t.Error("expected concurrent add to survive remove under add-wins merge")
	}
}

func aliceSet(r *Replica, setID string) *orset.ORSet[string] {
	return r.setLocked(setID)
}

func TestTextInsertAndRender(t *testing.T) {
	r, _ := New(Options{ReplicaID: "alice"}, nil)
	r.InsertText("doc-1", 0, "Hello")
	if got := r.TextString("doc-1"); got != "Hello" {
		t.Errorf("expected Hello, got %q", got)
	}
}

func TestTextMergeConverges(t *testing.T) {
	alice, _ := New(Options{ReplicaID: "alice"}, nil)
	bob, _ := New(Options{ReplicaID: "bob"}, nil)

	alice.InsertText("doc-1", 0, "Hello")
	bob.MergeText("doc-1", alice.textLocked("doc-1"))
	bob.InsertText("doc-1", 5, "!")
	alice.MergeText("doc-1", bob.textLocked("doc-1"))

	if alice.TextString("doc-1") != bob.TextString("doc-1") {
		t.Errorf("expected convergence, alice=%q bob=%q", alice.TextString("doc-1"), bob.TextString("doc-1"))
	}
}

func TestPositionBetween(t *testing.T) {
	mid, err := PositionBetween(fractional.First(), fractional.Last())
	if err != nil {
		t.Fatalf("PositionBetween failed: %v", err)
	}
	if mid <= fractional.First() || mid >= fractional.Last() {
		t.Errorf("expected mid strictly between bounds, got %s", mid)
	}
}
