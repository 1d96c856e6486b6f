package service

import (
	"context"
	"fmt"
	"time"

	"github.com/cwrk-planet/meeting-service/internal/domain"
	"github.com/cwrk-planet/meeting-service/internal/repository"
	"github.com/cwrk-planet/meeting-service/pkg/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/cwrk-planet/meeting-service/internal/service"

// Publisher receives every committed snapshot, in commit order per meeting.
// Publish is called with the meeting held and must not block.
type Publisher interface {
	Publish(m *domain.Meeting)
}

type CoordinatorOption func(*Coordinator)

func WithPublisher(p Publisher) CoordinatorOption {
	return func(c *Coordinator) { c.pub = p }
}

func WithClock(now func() time.Time) CoordinatorOption {
	return func(c *Coordinator) { c.now = now }
}

func WithPersistTimeout(d time.Duration) CoordinatorOption {
	return func(c *Coordinator) {
		if d > 0 {
			c.persistTimeout = d
		}
	}
}

// Coordinator serializes commands per meeting. Commands on different meetings run in parallel.
type Coordinator struct {
	store  repository.MeetingStore
	policy domain.Policy
	pub    Publisher
	locks  *keyedLocker
	tracer trace.Tracer

	now            func() time.Time
	persistTimeout time.Duration
}

func NewCoordinator(store repository.MeetingStore, policy domain.Policy, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		store:          store,
		policy:         policy,
		locks:          newKeyedLocker(),
		tracer:         otel.Tracer(tracerName),
		now:            time.Now,
		persistTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Coordinator) Policy() domain.Policy { return c.policy }

// Execute authorizes and applies cmd to the latest committed state of the meeting
// and persists the result. On any error the committed state is unchanged.
func (c *Coordinator) Execute(ctx context.Context, meetingID string, cmd domain.Command, actor domain.Participant) (*domain.Meeting, error) {
	ctx, span := c.tracer.Start(ctx, "meeting."+cmd.Name(), trace.WithAttributes(
		attribute.String("meeting.id", meetingID),
		attribute.Int64("actor.ghid", actor.GHID),
	))
	defer span.End()

	log := logger.FromContext(ctx).With("meeting_id", meetingID, "command", cmd.Name(), "actor", actor.GHID)

	next, err := c.execute(ctx, meetingID, cmd, actor)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.DebugContext(ctx, "command rejected", "err", err)
		return nil, err
	}

	span.SetAttributes(attribute.Int64("meeting.version", next.Version))
	log.InfoContext(ctx, "command committed", "version", next.Version, "state", next.State().String())
	return next, nil
}

func (c *Coordinator) execute(ctx context.Context, meetingID string, cmd domain.Command, actor domain.Participant) (*domain.Meeting, error) {
	unlock, err := c.locks.Lock(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	current, err := c.store.Get(ctx, meetingID)
	if err != nil {
		return nil, err
	}

	if err := cmd.Authorize(current, actor, c.policy); err != nil {
		return nil, err
	}

	next := current.Clone()
	if err := cmd.Apply(next, c.now()); err != nil {
		return nil, err
	}
	if err := next.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", cmd.Name(), err)
	}
	next.Version = current.Version + 1

	// the command is decided; a disconnecting client must not abort the write
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.persistTimeout)
	defer cancel()
	if err := c.store.Update(pctx, next); err != nil {
		return nil, fmt.Errorf("persist meeting %s: %w", meetingID, err)
	}

	if c.pub != nil {
		c.pub.Publish(next.Clone())
	}
	return next, nil
}
