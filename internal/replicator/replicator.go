// Package replicator is the ambient orchestration layer: it owns a
// replica's set of documents, wraps every mutation with metrics and
// tracing, logs broadcast failures, and hands computed deltas to a
// caller-supplied transport. It is not part of the pure CRDT core — it is the thing a
// host process builds on top of that core.
package replicator

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/synckit-dev/synckit/internal/delta"
	"github.com/synckit-dev/synckit/internal/document"
	"github.com/synckit-dev/synckit/internal/logging"
	"github.com/synckit-dev/synckit/internal/monitoring"
	"github.com/synckit-dev/synckit/internal/syncerr"
	"github.com/synckit-dev/synckit/internal/tracing"
)

// Transport is the external collaborator responsible for moving
// deltas between replicas. synckit never implements one itself; a
// host process supplies it.
type Transport interface {
	Broadcast(ctx context.Context, documentID string, d *delta.Delta) error
}

// Replicator manages the documents owned by one replica.
type Replicator struct {
	replicaID string
	transport Transport
	logger    *logging.Logger
	metrics   *monitoring.Metrics

	mu        sync.Mutex
	documents map[string]*document.Document
}

// New constructs a Replicator. transport, logger, and metrics may all
// be nil: a nil transport means deltas are computed but never
// broadcast, a nil logger/metrics silently skips those calls.
func New(replicaID string, transport Transport, logger *logging.Logger, metrics *monitoring.Metrics) *Replicator {
	return &Replicator{
		replicaID: replicaID,
		transport: transport,
		logger:    logger,
		metrics:   metrics,
		documents: make(map[string]*document.Document),
	}
}

func (r *Replicator) documentLocked(id string) *document.Document {
	doc, ok := r.documents[id]
	if !ok {
		doc = document.New(id)
		r.documents[id] = doc
	}
	return doc
}

// SetField writes value at path on the named document, ticking this
// replica's vector clock for that document, then computes and
// broadcasts the resulting delta if a transport is configured.
func (r *Replicator) SetField(ctx context.Context, documentID, path string, value any) error {
	ctx, span := tracing.StartSpan(ctx, "replicator.SetField")
	defer span.End()

	r.mu.Lock()
	doc := r.documentLocked(documentID)
	before := doc.Clone()
	nextClock := doc.Version.Get(r.replicaID) + 1
	doc.SetField(path, value, nextClock, r.replicaID)
	r.mu.Unlock()

	return r.broadcastChange(ctx, documentID, before, doc)
}

// DeleteField tombstones path on the named document and broadcasts the
// resulting delta.
func (r *Replicator) DeleteField(ctx context.Context, documentID, path string) error {
	ctx, span := tracing.StartSpan(ctx, "replicator.DeleteField")
	defer span.End()

	r.mu.Lock()
	doc := r.documentLocked(documentID)
	before := doc.Clone()
	nextClock := doc.Version.Get(r.replicaID) + 1
	doc.DeleteField(path, nextClock, r.replicaID)
	r.mu.Unlock()

	return r.broadcastChange(ctx, documentID, before, doc)
}

func (r *Replicator) broadcastChange(ctx context.Context, documentID string, before, after *document.Document) error {
	d, err := delta.Compute(before, after)
	if err != nil {
		r.countError()
		return err
	}
	if r.metrics != nil {
		r.metrics.DeltasComputed.Inc()
	}
	if d.IsEmpty() || r.transport == nil {
		return nil
	}
	if err := r.transport.Broadcast(ctx, documentID, d); err != nil {
		r.countError()
		if r.logger != nil {
			r.logger.WithDocument(documentID).Error("broadcast failed", zap.Error(err))
		}
		return syncerr.Wrap(syncerr.Network, "broadcasting delta", err)
	}
	return nil
}

// ApplyDelta applies a remote delta to the named document, creating
// the document locally if this replica has not seen it before.
func (r *Replicator) ApplyDelta(ctx context.Context, d *delta.Delta) error {
	_, span := tracing.StartSpan(ctx, "replicator.ApplyDelta")
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	doc := r.documentLocked(d.DocumentID)
	if err := delta.Apply(doc, d); err != nil {
		r.countError()
		return err
	}
	if r.metrics != nil {
		r.metrics.DeltasApplied.Inc()
	}
	return nil
}

// Merge merges a full remote document snapshot into the local copy,
// as a shortcut around sending a delta (useful for a fresh replica's
// initial sync).
func (r *Replicator) Merge(ctx context.Context, remote *document.Document) int {
	_, span := tracing.StartSpan(ctx, "replicator.Merge")
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	doc := r.documentLocked(remote.ID)
	updated := doc.Merge(remote)
	if r.metrics != nil {
		r.metrics.MergesPerformed.Inc()
		if updated > 0 {
			r.metrics.ConflictsResolved.Add(float64(updated))
		}
	}
	return updated
}

// Document returns the current state of the named document, creating
// it empty if this replica has not written or merged anything into it
// yet.
func (r *Replicator) Document(documentID string) *document.Document {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.documentLocked(documentID).Clone()
}

func (r *Replicator) countError() {
	if r.metrics != nil {
		r.metrics.ErrorCount.Inc()
	}
}
