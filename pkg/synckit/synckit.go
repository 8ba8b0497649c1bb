// Package synckit is the public facade over the sync core: a host
// process constructs a Replica, drives it with field writes, set
// operations, and text edits, and supplies a Transport to carry the
// deltas this package computes to other replicas. synckit owns no
// network or storage of its own; both are external collaborators.
package synckit

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"

	"github.com/google/uuid"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/synckit-dev/synckit/internal/delta"
	"github.com/synckit-dev/synckit/internal/document"
	"github.com/synckit-dev/synckit/internal/fractional"
	"github.com/synckit-dev/synckit/internal/logging"
	"github.com/synckit-dev/synckit/internal/monitoring"
	"github.com/synckit-dev/synckit/internal/orset"
	"github.com/synckit-dev/synckit/internal/replicator"
	"github.com/synckit-dev/synckit/internal/text"
	"github.com/synckit-dev/synckit/internal/tracing"
)

// Options configures a Replica.
type Options struct {
	// ReplicaID identifies this replica in every vector clock and
	// hybrid timestamp it produces. Required.
	ReplicaID string

	// LogLevel and LogFormat configure the structured logger. Default
	// to "info" and "json" when empty.
	LogLevel  string
	LogFormat string

	// TracingEndpoint, if set, is the Jaeger collector endpoint spans
	// are exported to. Tracing is disabled when empty.
	TracingEndpoint string
}

// sharedMetrics is created once per process and shared by every
// Replica: promauto registers each collector with the default
// registry, which rejects a second registration of the same name.
var (
	metricsOnce   sync.Once
	sharedMetrics *monitoring.Metrics
)

// Transport is re-exported so callers implement it without importing
// an internal package.
type Transport = replicator.Transport

// Replica is one participant's handle onto the documents, sets, and
// text sequences it holds. All methods are safe for concurrent use.
type Replica struct {
	id             string
	logger         *logging.Logger
	metrics        *monitoring.Metrics
	tracerProvider *sdktrace.TracerProvider
	documents      *replicator.Replicator

	mu    sync.Mutex
	sets  map[string]*orset.ORSet[string]
	texts map[string]*text.Text
}

// New constructs a Replica. transport may be nil, in which case
// computed deltas are never sent anywhere and sync happens only
// through explicit Merge calls.
func New(opts Options, transport Transport) (*Replica, error) {
	if opts.ReplicaID == "" {
		return nil, fmt.Errorf("synckit: ReplicaID cannot be empty")
	}

	logLevel := opts.LogLevel
	if logLevel == "" {
		logLevel = "info"
	}
	logFormat := opts.LogFormat
	if logFormat == "" {
		logFormat = "json"
	}
	logger, err := logging.NewLogger(logLevel, logFormat)
	if err != nil {
		return nil, fmt.Errorf("synckit: constructing logger: %w", err)
	}

	metricsOnce.Do(func() { sharedMetrics = monitoring.NewMetrics() })
	metrics := sharedMetrics
	metrics.ActiveReplicas.Inc()

	var tp *sdktrace.TracerProvider
	if opts.TracingEndpoint != "" {
		tp, err = tracing.InitTracer("synckit-"+opts.ReplicaID, opts.TracingEndpoint)
		if err != nil {
			return nil, fmt.Errorf("synckit: initializing tracer: %w", err)
		}
	}

	return &Replica{
		id:             opts.ReplicaID,
		logger:         logger,
		metrics:        metrics,
		tracerProvider: tp,
		documents:      replicator.New(opts.ReplicaID, transport, logger, metrics),
		sets:           make(map[string]*orset.ORSet[string]),
		texts:          make(map[string]*text.Text),
	}, nil
}

// ID returns this replica's identifier.
func (r *Replica) ID() string { return r.id }

// NewReplicaID generates a fresh, globally unique replica identifier
// for hosts that don't already have a natural one (a device id, a
// session token) to hand to Options.ReplicaID.
func NewReplicaID() string {
	return uuid.NewString()
}

// Shutdown flushes the tracer provider, if one was configured.
func (r *Replica) Shutdown(ctx context.Context) error {
	if r.tracerProvider == nil {
		return nil
	}
	return r.tracerProvider.Shutdown(ctx)
}

// --- Documents ---

// SetField writes value at path on documentID and, if a transport was
// configured, broadcasts the resulting delta.
func (r *Replica) SetField(ctx context.Context, documentID, path string, value any) error {
	return r.documents.SetField(ctx, documentID, path, value)
}

// DeleteField tombstones path on documentID.
func (r *Replica) DeleteField(ctx context.Context, documentID, path string) error {
	return r.documents.DeleteField(ctx, documentID, path)
}

// DocumentJSON returns a flattened value-only view of documentID,
// suitable for returning across a language boundary.
func (r *Replica) DocumentJSON(documentID string) map[string]any {
	return r.documents.Document(documentID).ToJSON()
}

// Document returns the full internal state of documentID, including
// per-field timestamps and tombstones, for callers that merge or
// transmit full snapshots rather than deltas.
func (r *Replica) Document(documentID string) *document.Document {
	return r.documents.Document(documentID)
}

// ApplyDelta applies a delta received from another replica.
func (r *Replica) ApplyDelta(ctx context.Context, d *delta.Delta) error {
	return r.documents.ApplyDelta(ctx, d)
}

// MergeDocument merges a full remote document snapshot, useful for a
// newly joined replica's initial sync.
func (r *Replica) MergeDocument(ctx context.Context, remote *document.Document) int {
	return r.documents.Merge(ctx, remote)
}

// --- OR-Sets ---

func (r *Replica) setLocked(setID string) *orset.ORSet[string] {
	s, ok := r.sets[setID]
	if !ok {
		s = orset.New[string](r.id)
		r.sets[setID] = s
	}
	return s
}

// AddToSet adds value to the named set.
func (r *Replica) AddToSet(setID, value string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.setLocked(setID).Add(value)
	if r.metrics != nil {
		r.metrics.ORSetOps.Inc()
	}
}

// RemoveFromSet removes value from the named set.
func (r *Replica) RemoveFromSet(setID, value string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.setLocked(setID).Remove(value)
	if r.metrics != nil {
		r.metrics.ORSetOps.Inc()
	}
}

// SetElements returns the named set's current elements.
func (r *Replica) SetElements(setID string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.setLocked(setID).Elements()
}

// Set returns the named OR-Set for merging or transmission.
func (r *Replica) Set(setID string) *orset.ORSet[string] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.setLocked(setID)
}

// MergeSet merges another replica's view of the named set into this
// one.
func (r *Replica) MergeSet(setID string, other *orset.ORSet[string]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.setLocked(setID).Merge(other)
	if r.metrics != nil {
		r.metrics.MergesPerformed.Inc()
	}
}

// --- Text ---

func replicaClientID(replicaID string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(replicaID))
	return h.Sum64()
}

func (r *Replica) textLocked(textID string) *text.Text {
	t, ok := r.texts[textID]
	if !ok {
		t = text.New(replicaClientID(r.id))
		r.texts[textID] = t
	}
	return t
}

// InsertText inserts content at the given rune position in the named
// text sequence.
func (r *Replica) InsertText(textID string, position int, content string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.textLocked(textID).Insert(position, content)
	if r.metrics != nil {
		r.metrics.TextItemsIntegrated.Inc()
	}
}

// DeleteText tombstones length runes starting at position in the
// named text sequence.
func (r *Replica) DeleteText(textID string, position, length int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.textLocked(textID).Delete(position, length)
}

// TextString renders the named text sequence's current visible
// content.
func (r *Replica) TextString(textID string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.textLocked(textID).String()
}

// TextSnapshot returns the named text sequence for merging or
// transmission.
func (r *Replica) TextSnapshot(textID string) *text.Text {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.textLocked(textID)
}

// MergeText merges another replica's view of the named text sequence
// into this one.
func (r *Replica) MergeText(textID string, other *text.Text) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.textLocked(textID).Merge(other)
	if r.metrics != nil {
		r.metrics.MergesPerformed.Inc()
	}
}

// --- Fractional positions ---

// PositionBetween returns a fresh position key strictly between left
// and right, for ordering a new item in a list without renumbering
// existing entries.
func PositionBetween(left, right fractional.FractionalIndex) (fractional.FractionalIndex, error) {
	return fractional.Between(left, right)
}
