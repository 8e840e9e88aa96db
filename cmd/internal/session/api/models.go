package sessionapi

import (
	"time"

	"warden/cmd/internal/session"
)

type sessionRequest struct {
	UserID   string `json:"user_id"`
	DeviceID string `json:"device_id"`
}

type deviceResponse struct {
	DeviceID   string    `json:"device_id"`
	CreatedAt  time.Time `json:"created_at"`
	LastSeenAt time.Time `json:"last_seen_at"`
}

type loginResponse struct {
	Status  string           `json:"status"`
	Devices []deviceResponse `json:"devices,omitempty"`
}

type statusResponse struct {
	Status string `json:"status"`
}

type devicesResponse struct {
	Devices []deviceResponse `json:"devices"`
}

func toDeviceResponses(recs []session.Record) []deviceResponse {
	out := make([]deviceResponse, 0, len(recs))
	for _, rec := range recs {
		out = append(out, deviceResponse{
			DeviceID:   rec.DeviceID,
			CreatedAt:  rec.CreatedAt,
			LastSeenAt: rec.LastSeenAt,
		})
	}
	return out
}
