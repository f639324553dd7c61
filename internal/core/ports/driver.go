package ports

import (
	"context"
	"time"

	"github.com/stafull/auth-portal/internal/core/domain"
)

// DriverStateStore persists the tablet state per driver. Get returns
// (nil, nil) for a driver with no saved state.
type DriverStateStore interface {
	Get(ctx context.Context, driverID string) (*domain.DriverState, error)
	Save(ctx context.Context, state *domain.DriverState) error
}

// DriverEventRepository keeps the delivery log and the mode audit trail.
type DriverEventRepository interface {
	InsertDelivery(ctx context.Context, record domain.DeliveryRecord) error
	InsertTransition(ctx context.Context, transition domain.ModeTransition) error
	RecentDeliveries(ctx context.Context, driverID string, limit int) ([]domain.DeliveryRecord, error)
}

// TelemetryInput is one GPS/speed sample from a driver tablet.
type TelemetryInput struct {
	DriverID           string
	Speed              float64
	DistanceToCustomer *float64
	Timestamp          time.Time
}

// TelemetryProcessor applies telemetry samples. The dispatcher depends only
// on this.
type TelemetryProcessor interface {
	ApplyTelemetry(ctx context.Context, in TelemetryInput) (*domain.DriverState, error)
}

// DriverService defines the driver portal use cases.
type DriverService interface {
	TelemetryProcessor
	State(ctx context.Context, driverID string) (*domain.DriverState, error)
	ToggleClock(ctx context.Context, driverID string) (*domain.DriverState, error)
	Simulate(ctx context.Context, driverID string, mode domain.DriverMode) (*domain.DriverState, error)
	ToggleChecklistItem(ctx context.Context, driverID string, itemID int) (*domain.DriverState, error)
	CompleteDelivery(ctx context.Context, driverID string) (*domain.DriverState, error)
	Deliveries(ctx context.Context, driverID string, limit int) ([]domain.DeliveryRecord, error)
}
