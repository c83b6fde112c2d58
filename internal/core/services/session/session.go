// Package session drives one capture run: it pulls frames from a source,
// decodes them and folds them into a mapper until the run ends.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/lcalzada-xor/nearby/internal/adapters/sniffer/capture"
	"github.com/lcalzada-xor/nearby/internal/adapters/sniffer/dot11"
	"github.com/lcalzada-xor/nearby/internal/core/domain"
	"github.com/lcalzada-xor/nearby/internal/core/ports"
	"github.com/lcalzada-xor/nearby/internal/core/services/mapper"
	"github.com/lcalzada-xor/nearby/internal/telemetry"
)

// DecodeFunc turns a raw frame into a header.
type DecodeFunc func(frame []byte, channel uint8) (domain.MacHeader, error)

// Options configures a Session.
type Options struct {
	// Duration bounds the run. Zero means until the context is cancelled or
	// the source is exhausted.
	Duration time.Duration
	// SourceName labels the frames_captured metric (interface or file name).
	SourceName string
	// Publisher receives a snapshot whenever an access point or person is
	// added, and once when the run ends. Optional.
	Publisher ports.SnapshotPublisher
	// Decode defaults to dot11.Decode.
	Decode DecodeFunc
	Logger *slog.Logger
}

// Session is a single capture run. Run may only be called once.
type Session struct {
	id      string
	source  ports.FrameSource
	mapper  *mapper.Mapper
	opts    Options
	logger  *slog.Logger
	started time.Time

	frames  uint64
	dropped uint64

	mu     sync.Mutex
	result domain.Snapshot
	done   bool
}

// New creates a session reading from source into m.
func New(source ports.FrameSource, m *mapper.Mapper, opts Options) *Session {
	if opts.Decode == nil {
		opts.Decode = dot11.Decode
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	id := uuid.NewString()
	return &Session{
		id:     id,
		source: source,
		mapper: m,
		opts:   opts,
		logger: opts.Logger.With("session", id),
	}
}

// ID is the session's unique identifier.
func (s *Session) ID() string { return s.id }

// Run reads and maps frames until the duration elapses, ctx is cancelled or
// the source reports io.EOF. Frames that fail to decode are dropped. Any
// capture error other than a read timeout or a malformed radiotap header
// ends the run and is returned.
func (s *Session) Run(ctx context.Context) error {
	ctx, span := otel.Tracer("nearby/session").Start(ctx, "Session.Run")
	defer span.End()
	span.SetAttributes(
		attribute.String("session.id", s.id),
		attribute.String("session.mode", s.mapper.Mode().String()),
		attribute.String("capture.source", s.opts.SourceName),
	)

	if s.opts.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Duration)
		defer cancel()
	}

	s.started = time.Now()
	s.logger.Info("capture started", "mode", s.mapper.Mode().String(), "source", s.opts.SourceName, "duration", s.opts.Duration)

	err := s.loop(ctx)

	snap := s.finish()
	span.SetAttributes(
		attribute.Int64("frames", int64(snap.Frames)),
		attribute.Int64("frames.dropped", int64(snap.Dropped)),
		attribute.Int("access_points", len(snap.Collections)),
		attribute.Int("people", len(snap.People)),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.Error("capture failed", "error", err)
		return err
	}
	s.logger.Info("capture finished",
		"elapsed", time.Since(s.started).Round(time.Millisecond),
		"frames", snap.Frames,
		"dropped", snap.Dropped,
		"access_points", len(snap.Collections),
		"people", len(snap.People),
	)
	return nil
}

func (s *Session) loop(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}

		data, radio, err := s.source.ReadFrame()
		switch {
		case err == nil:
		case errors.Is(err, capture.ErrTimeout):
			continue
		case errors.Is(err, io.EOF):
			s.logger.Debug("capture source exhausted")
			return nil
		case errors.Is(err, capture.ErrMalformedRadiotap):
			s.frames++
			s.drop(telemetry.DropRadiotap, err)
			continue
		default:
			return fmt.Errorf("capture: %w", err)
		}

		s.frames++
		telemetry.FramesCaptured.WithLabelValues(s.opts.SourceName).Inc()
		s.handle(radio, data)
	}
}

func (s *Session) handle(radio domain.RadioMetadata, data []byte) {
	h, err := s.opts.Decode(data, radio.Channel)
	if err != nil {
		s.drop(dropReason(err), err)
		return
	}
	telemetry.FramesDecoded.WithLabelValues(h.FrameControl.Type.String()).Inc()

	change := s.mapper.Map(radio, h)
	if change.Has(mapper.ChangeAccessPoint) || change.Has(mapper.ChangePersonAdded) {
		snap := s.snapshot()
		telemetry.AccessPoints.Set(float64(len(snap.Collections)))
		telemetry.People.Set(float64(len(snap.People)))
		s.publish(snap)
	}
}

func (s *Session) drop(reason string, err error) {
	s.dropped++
	telemetry.FramesDropped.WithLabelValues(reason).Inc()
	s.logger.Debug("frame dropped", "reason", reason, "error", err)
}

func dropReason(err error) string {
	switch {
	case errors.Is(err, dot11.ErrTruncatedInput):
		return telemetry.DropTruncated
	case errors.Is(err, dot11.ErrUnsupportedProtocolVersion):
		return telemetry.DropVersion
	}
	return telemetry.DropDecode
}

func (s *Session) snapshot() domain.Snapshot {
	return domain.Snapshot{
		SessionID:   s.id,
		TakenAt:     time.Now(),
		PeopleMode:  s.mapper.Mode() == mapper.ModePeople,
		Collections: s.mapper.Collections(),
		People:      s.mapper.People(),
		Frames:      s.frames,
		Dropped:     s.dropped,
	}
}

func (s *Session) publish(snap domain.Snapshot) {
	if s.opts.Publisher != nil {
		s.opts.Publisher.Publish(snap)
	}
}

func (s *Session) finish() domain.Snapshot {
	snap := s.snapshot()
	s.publish(snap)

	s.mu.Lock()
	s.result = snap
	s.done = true
	s.mu.Unlock()
	return snap
}

// Result returns the final snapshot. ok is false until Run has returned.
func (s *Session) Result() (snap domain.Snapshot, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result, s.done
}
