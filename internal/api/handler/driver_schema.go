package handler

import (
	"time"

	"github.com/stafull/auth-portal/internal/core/domain"
)

type telemetryRequest struct {
	Speed              *float64  `json:"speed"              validate:"required,gte=0"`
	DistanceToCustomer *float64  `json:"distanceToCustomer" validate:"omitempty,gte=0"`
	Timestamp          time.Time `json:"timestamp"`
}

type simulateRequest struct {
	Mode string `json:"mode" validate:"required,oneof=dashboard driving driver delivery"`
}

type acceptedResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type deliveryResponse struct {
	Stop        domain.Stop      `json:"stop"`
	Checklist   domain.Checklist `json:"checklist"`
	CompletedAt time.Time        `json:"completedAt"`
}

type deliveriesResponse struct {
	Data  []deliveryResponse `json:"data"`
	Count int                `json:"count"`
}

func toDeliveriesResponse(records []domain.DeliveryRecord) deliveriesResponse {
	data := make([]deliveryResponse, 0, len(records))
	for _, r := range records {
		data = append(data, deliveryResponse{
			Stop:        r.Stop,
			Checklist:   r.Checklist,
			CompletedAt: r.CompletedAt,
		})
	}
	return deliveriesResponse{Data: data, Count: len(data)}
}
