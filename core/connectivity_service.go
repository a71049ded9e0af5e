// core/connectivity_service.go
package core

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/signalsfoundry/orbit-kinematics/internal/logging"
	"github.com/signalsfoundry/orbit-kinematics/kb"
)

const tracerName = "github.com/signalsfoundry/orbit-kinematics/core"

// Delta lists the links that changed during one connectivity update.
type Delta struct {
	Added   []kb.LinkKey
	Removed []kb.LinkKey
}

// ConnectivityService evaluates a ConnectionStrategy against the model and
// keeps every satellite's connection set (and the optional knowledge base)
// in step with the resulting topology.
type ConnectivityService struct {
	model    *Model
	strategy ConnectionStrategy
	kb       *kb.KnowledgeBase
	log      logging.Logger
	tracer   trace.Tracer
}

// ConnectivityOption customises a ConnectivityService.
type ConnectivityOption func(*ConnectivityService)

// WithKnowledgeBase mirrors link changes into store.
func WithKnowledgeBase(store *kb.KnowledgeBase) ConnectivityOption {
	return func(cs *ConnectivityService) { cs.kb = store }
}

// WithLogger sets the service logger.
func WithLogger(l logging.Logger) ConnectivityOption {
	return func(cs *ConnectivityService) {
		if l != nil {
			cs.log = l
		}
	}
}

// NewConnectivityService returns a service for m using strategy.
func NewConnectivityService(m *Model, strategy ConnectionStrategy, opts ...ConnectivityOption) *ConnectivityService {
	cs := &ConnectivityService{
		model:    m,
		strategy: strategy,
		log:      logging.Noop(),
		tracer:   otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(cs)
	}
	return cs
}

// UpdateConnectivity moves the model to time t, runs the strategy, and
// reconciles connection sets: links missing from the new topology are
// disconnected, new ones connected. Both endpoints of a link hold each
// other's ID.
func (cs *ConnectivityService) UpdateConnectivity(ctx context.Context, t float64) (*ConnectionGraph, Delta, error) {
	ctx, span := cs.tracer.Start(ctx, "ConnectivityService.UpdateConnectivity",
		trace.WithAttributes(attribute.Float64("sim.t", t)))
	defer span.End()

	cs.model.SetT(t)
	topology, err := cs.strategy.Run(cs.model)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, Delta{}, fmt.Errorf("UpdateConnectivity: strategy: %w", err)
	}

	var delta Delta
	removed := make(map[kb.LinkKey]bool)
	added := make(map[kb.LinkKey]bool)

	for _, sat := range cs.model.Satellites() {
		want := make(map[int]bool)
		for _, id := range topology.Neighbors(sat.ID()) {
			want[id] = true
		}

		for _, id := range sat.Connections() {
			if want[id] {
				continue
			}
			if err := sat.Disconnect(id); err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				return nil, Delta{}, fmt.Errorf("UpdateConnectivity: %w", err)
			}
			if key := kb.NewLinkKey(sat.ID(), id); !removed[key] {
				removed[key] = true
				delta.Removed = append(delta.Removed, key)
			}
		}
		for id := range want {
			if sat.IsConnected(id) {
				continue
			}
			sat.Connect(id)
			if key := kb.NewLinkKey(sat.ID(), id); !added[key] {
				added[key] = true
				delta.Added = append(delta.Added, key)
			}
		}
	}
	sortKeys(delta.Added)
	sortKeys(delta.Removed)

	if cs.kb != nil {
		if err := cs.syncKnowledgeBase(topology, delta, t); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, Delta{}, err
		}
	}

	span.SetAttributes(
		attribute.Int("links.total", topology.LinkCount()),
		attribute.Int("links.added", len(delta.Added)),
		attribute.Int("links.removed", len(delta.Removed)),
	)
	if len(delta.Added) > 0 || len(delta.Removed) > 0 {
		cs.log.Debug(ctx, "connectivity changed",
			logging.Float64("t", t),
			logging.Int("links", topology.LinkCount()),
			logging.Int("added", len(delta.Added)),
			logging.Int("removed", len(delta.Removed)),
		)
	}
	return topology, delta, nil
}

func (cs *ConnectivityService) syncKnowledgeBase(topology *ConnectionGraph, delta Delta, t float64) error {
	for _, key := range delta.Removed {
		if err := cs.kb.SetLinkDown(key.A, key.B, t); err != nil {
			return fmt.Errorf("UpdateConnectivity: knowledge base: %w", err)
		}
	}
	// Refresh lengths for every live link, bringing new ones up.
	for _, l := range topology.Links() {
		cs.kb.SetLinkUp(l.A, l.B, l.LengthM, t)
	}
	return nil
}
