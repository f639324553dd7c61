package service

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/stafull/auth-portal/internal/api/metrics"
	"github.com/stafull/auth-portal/internal/core/domain"
	"github.com/stafull/auth-portal/internal/core/ports"
)

const driverLockStripes = 64

// Demo telemetry applied by Simulate for each target mode.
var simulatedInputs = map[domain.DriverMode]struct {
	speed    float64
	distance *float64
}{
	domain.ModeDashboard: {speed: 0},
	domain.ModeDriving:   {speed: 25, distance: floatPtr(500)},
	domain.ModeDelivery:  {speed: 0, distance: floatPtr(50)},
}

// DefaultStop is the customer stop shown to a driver with no route assigned.
var DefaultStop = domain.Stop{
	Name:    "Johnson Residence",
	Address: "1234 Oak Grove Rd, Portland OR",
	Fuel:    "15 gal Regular",
}

type driverService struct {
	states     ports.DriverStateStore
	events     ports.DriverEventRepository
	thresholds domain.ModeThresholds
	stop       domain.Stop
	locks      [driverLockStripes]sync.Mutex
	log        zerolog.Logger
	now        func() time.Time
}

// NewDriverService returns a DriverService implementation.
func NewDriverService(
	states ports.DriverStateStore,
	events ports.DriverEventRepository,
	thresholds domain.ModeThresholds,
	log zerolog.Logger,
) ports.DriverService {
	return &driverService{
		states:     states,
		events:     events,
		thresholds: thresholds,
		stop:       DefaultStop,
		log:        log,
		now:        time.Now,
	}
}

// State returns the driver's current state, creating a fresh one on first use.
func (s *driverService) State(ctx context.Context, driverID string) (*domain.DriverState, error) {
	state, err := s.states.Get(ctx, driverID)
	if err != nil {
		return nil, fmt.Errorf("driver state: %w", err)
	}
	if state == nil {
		state = domain.NewDriverState(driverID, s.stop, s.now().UTC())
	}
	return state, nil
}

// ToggleClock clocks the driver in or out.
func (s *driverService) ToggleClock(ctx context.Context, driverID string) (*domain.DriverState, error) {
	return s.mutate(ctx, driverID, func(st *domain.DriverState) error {
		st.Inputs.IsClockedIn = !st.Inputs.IsClockedIn
		if st.Inputs.IsClockedIn {
			at := s.now().UTC()
			st.ClockedInAt = &at
		} else {
			st.ClockedInAt = nil
		}
		return nil
	})
}

// ApplyTelemetry feeds one speed/distance sample into the mode machine.
func (s *driverService) ApplyTelemetry(ctx context.Context, in ports.TelemetryInput) (*domain.DriverState, error) {
	if in.Speed < 0 || math.IsNaN(in.Speed) || math.IsInf(in.Speed, 0) {
		return nil, fmt.Errorf("%w: speed must be a non-negative number", domain.ErrInvalidTelemetry)
	}
	if d := in.DistanceToCustomer; d != nil && (*d < 0 || math.IsNaN(*d) || math.IsInf(*d, 0)) {
		return nil, fmt.Errorf("%w: distance must be a non-negative number", domain.ErrInvalidTelemetry)
	}
	return s.mutate(ctx, in.DriverID, func(st *domain.DriverState) error {
		st.Inputs.Speed = in.Speed
		st.Inputs.DistanceToCustomer = copyFloat(in.DistanceToCustomer)
		return nil
	})
}

// Simulate overrides the telemetry with demo values that land in mode.
// Clock state is left alone, so a clocked-out driver stays on the dashboard.
func (s *driverService) Simulate(ctx context.Context, driverID string, mode domain.DriverMode) (*domain.DriverState, error) {
	in, ok := simulatedInputs[mode]
	if !ok {
		return nil, domain.ErrInvalidMode
	}
	return s.mutate(ctx, driverID, func(st *domain.DriverState) error {
		st.Inputs.Speed = in.speed
		st.Inputs.DistanceToCustomer = copyFloat(in.distance)
		return nil
	})
}

// ToggleChecklistItem flips one SOP step. Only allowed in delivery mode.
func (s *driverService) ToggleChecklistItem(ctx context.Context, driverID string, itemID int) (*domain.DriverState, error) {
	return s.mutate(ctx, driverID, func(st *domain.DriverState) error {
		if st.Mode != domain.ModeDelivery {
			return domain.ErrNotInDelivery
		}
		return st.Checklist.Toggle(itemID)
	})
}

// CompleteDelivery records the delivery and releases the driver from the
// stop. Every checklist item must be checked. The record is keyed by the
// delivery start, so a retry after a failed state save does not log the
// delivery twice.
func (s *driverService) CompleteDelivery(ctx context.Context, driverID string) (*domain.DriverState, error) {
	return s.mutate(ctx, driverID, func(st *domain.DriverState) error {
		if st.Mode != domain.ModeDelivery {
			return domain.ErrNotInDelivery
		}
		if !st.Checklist.Complete() {
			return domain.ErrChecklistIncomplete
		}
		record := domain.DeliveryRecord{
			DriverID:    driverID,
			Stop:        st.CurrentStop,
			Checklist:   append(domain.Checklist(nil), st.Checklist...),
			CompletedAt: s.now().UTC(),
		}
		if st.DeliveryStartedAt != nil {
			record.StartedAt = st.DeliveryStartedAt.UTC()
		}
		if err := s.events.InsertDelivery(ctx, record); err != nil {
			return fmt.Errorf("complete delivery: %w", err)
		}
		metrics.DeliveriesCompletedTotal.Inc()
		s.log.Info().Str("driver", driverID).Str("stop", st.CurrentStop.Name).Msg("delivery completed")

		st.Inputs.DistanceToCustomer = nil
		return nil
	})
}

// Deliveries lists the driver's most recent completed deliveries.
func (s *driverService) Deliveries(ctx context.Context, driverID string, limit int) ([]domain.DeliveryRecord, error) {
	records, err := s.events.RecentDeliveries(ctx, driverID, limit)
	if err != nil {
		return nil, fmt.Errorf("list deliveries: %w", err)
	}
	return records, nil
}

// mutate loads the driver's state under its lock, applies fn, re-runs the mode
// machine and saves. Nothing is saved when fn fails.
func (s *driverService) mutate(ctx context.Context, driverID string, fn func(*domain.DriverState) error) (*domain.DriverState, error) {
	if driverID == "" {
		return nil, domain.NewValidationError("driverId", "driver id is required")
	}

	mu := &s.locks[stripe(driverID)]
	mu.Lock()
	defer mu.Unlock()

	state, err := s.State(ctx, driverID)
	if err != nil {
		return nil, err
	}
	if err := fn(state); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	from, changed := state.Recompute(s.thresholds, now)

	if err := s.states.Save(ctx, state); err != nil {
		return nil, fmt.Errorf("save driver state: %w", err)
	}

	if changed {
		s.recordTransition(ctx, domain.ModeTransition{
			DriverID: driverID,
			From:     from,
			To:       state.Mode,
			Inputs:   state.Inputs,
			At:       now,
		})
	}
	return state, nil
}

// recordTransition logs, counts and audits a mode change. Audit failures are
// non-fatal.
func (s *driverService) recordTransition(ctx context.Context, t domain.ModeTransition) {
	metrics.ModeTransitionsTotal.WithLabelValues(string(t.From), string(t.To)).Inc()
	s.log.Info().
		Str("driver", t.DriverID).
		Str("from", string(t.From)).
		Str("to", string(t.To)).
		Float64("speed", t.Inputs.Speed).
		Bool("clocked_in", t.Inputs.IsClockedIn).
		Msg("driver mode changed")

	if err := s.events.InsertTransition(ctx, t); err != nil {
		s.log.Warn().Err(err).Str("driver", t.DriverID).Msg("failed to insert mode transition")
	}
}

func stripe(driverID string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(driverID))
	return h.Sum32() % driverLockStripes
}

func floatPtr(v float64) *float64 {
	return &v
}

func copyFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
