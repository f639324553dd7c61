package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/stafull/auth-portal/internal/core/domain"
	"github.com/stafull/auth-portal/internal/core/ports"
)

// DriverStateStore keeps each driver's tablet state as a JSON string.
// Key format: driver:<driver_id>
type DriverStateStore struct {
	client *redis.Client
}

var _ ports.DriverStateStore = (*DriverStateStore)(nil)

func NewDriverStateStore(client *redis.Client) *DriverStateStore {
	return &DriverStateStore{client: client}
}

// Get returns (nil, nil) for a driver with no saved state.
func (s *DriverStateStore) Get(ctx context.Context, driverID string) (*domain.DriverState, error) {
	raw, err := s.client.Get(ctx, driverKey(driverID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("driver state get: %w", err)
	}
	var state domain.DriverState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("driver state decode: %w", err)
	}
	return &state, nil
}

func (s *DriverStateStore) Save(ctx context.Context, state *domain.DriverState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("driver state encode: %w", err)
	}
	if err := s.client.Set(ctx, driverKey(state.DriverID), raw, 0).Err(); err != nil {
		return fmt.Errorf("driver state save: %w", err)
	}
	return nil
}

func driverKey(driverID string) string {
	return "driver:" + driverID
}
