package domain

import "time"

// DriverMode is the screen the driver tablet shows.
type DriverMode string

const (
	ModeDashboard DriverMode = "dashboard"
	ModeDriving   DriverMode = "driving"
	ModeDelivery  DriverMode = "delivery"
)

// ParseDriverMode accepts the mode names, including the legacy "driver"
// alias for driving.
func ParseDriverMode(s string) (DriverMode, error) {
	switch s {
	case string(ModeDashboard):
		return ModeDashboard, nil
	case string(ModeDriving), "driver":
		return ModeDriving, nil
	case string(ModeDelivery):
		return ModeDelivery, nil
	default:
		return "", ErrInvalidMode
	}
}

// ModeThresholds are the presentation constants of the mode machine. No unit
// system is implied; they must match whatever the telemetry producer sends.
type ModeThresholds struct {
	Speed     float64
	Proximity float64
}

// DefaultModeThresholds: moving above 5, arrived within 150.
func DefaultModeThresholds() ModeThresholds {
	return ModeThresholds{Speed: 5, Proximity: 150}
}

// ModeContext is the input of the mode machine. A nil DistanceToCustomer
// means unknown or far.
type ModeContext struct {
	Speed              float64  `json:"speed"`
	DistanceToCustomer *float64 `json:"distanceToCustomer"`
	IsClockedIn        bool     `json:"isClockedIn"`
}

// DecideMode derives the driver mode. Rules apply in order, so speed wins
// over proximity when both hold.
func DecideMode(in ModeContext, t ModeThresholds) DriverMode {
	switch {
	case !in.IsClockedIn:
		return ModeDashboard
	case in.Speed > t.Speed:
		return ModeDriving
	case in.DistanceToCustomer != nil && *in.DistanceToCustomer <= t.Proximity:
		return ModeDelivery
	default:
		return ModeDashboard
	}
}

// Stop is the customer the driver is currently routed to.
type Stop struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Fuel    string `json:"fuel"`
}

// DriverState is everything the tablet needs to render.
type DriverState struct {
	DriverID    string      `json:"driverId"`
	Inputs      ModeContext `json:"inputs"`
	Mode        DriverMode  `json:"mode"`
	Checklist   Checklist   `json:"checklist"`
	CurrentStop Stop        `json:"currentStop"`
	ClockedInAt *time.Time  `json:"clockedInAt,omitempty"`
	// DeliveryStartedAt is set while in delivery mode and identifies the
	// delivery in progress.
	DeliveryStartedAt *time.Time `json:"deliveryStartedAt,omitempty"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// NewDriverState is the state of a driver the service has never seen.
func NewDriverState(driverID string, stop Stop, now time.Time) *DriverState {
	return &DriverState{
		DriverID:    driverID,
		Mode:        ModeDashboard,
		Checklist:   NewDeliveryChecklist(),
		CurrentStop: stop,
		UpdatedAt:   now,
	}
}

// Recompute re-runs the mode machine and reports the previous mode. Entering
// delivery starts a fresh checklist and stamps DeliveryStartedAt; leaving it
// clears the stamp.
func (s *DriverState) Recompute(t ModeThresholds, now time.Time) (previous DriverMode, changed bool) {
	previous = s.Mode
	s.Mode = DecideMode(s.Inputs, t)
	s.UpdatedAt = now
	if s.Mode == previous {
		return previous, false
	}
	switch {
	case s.Mode == ModeDelivery:
		s.Checklist = NewDeliveryChecklist()
		started := now
		s.DeliveryStartedAt = &started
	case previous == ModeDelivery:
		s.DeliveryStartedAt = nil
	}
	return previous, true
}

// ModeTransition is the audit entry written when a driver's mode changes.
type ModeTransition struct {
	DriverID string
	From     DriverMode
	To       DriverMode
	Inputs   ModeContext
	At       time.Time
}

// DeliveryRecord is written when a delivery is completed. DriverID and
// StartedAt identify the delivery; StartedAt is zero for deliveries begun
// before it was tracked.
type DeliveryRecord struct {
	DriverID    string
	Stop        Stop
	Checklist   Checklist
	StartedAt   time.Time
	CompletedAt time.Time
}
