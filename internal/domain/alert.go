package domain

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// AlertType names what triggered an emergency broadcast.
type AlertType string

const (
	AlertPanicButton     AlertType = "PANIC_BUTTON"
	AlertBatteryCritical AlertType = "BATTERY_CRITICAL"
	AlertSentinelTrigger AlertType = "SENTINEL_AI_TRIGGER"
	AlertFakeCall        AlertType = "FAKE_CALL"
)

// AlertStatus is the lifecycle state of an alert.
type AlertStatus string

const (
	StatusActive   AlertStatus = "ACTIVE"
	StatusResolved AlertStatus = "RESOLVED"
)

// ErrInvalidAlert wraps every alert validation failure.
var ErrInvalidAlert = errors.New("invalid alert")

// Location is where the alert was raised.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address,omitempty"`
}

// Alert is one emergency broadcast raised by a user.
type Alert struct {
	ID        int64       `json:"id"`
	UserID    string      `json:"userId"`
	Type      AlertType   `json:"type"`
	Location  Location    `json:"location"`
	AudioURL  string      `json:"audioUrl,omitempty"`
	VideoLink string      `json:"videoLink"`
	Status    AlertStatus `json:"status"`
	CreatedAt time.Time   `json:"createdAt"`
}

// LocationRequest is a client-supplied location. Coordinates are pointers so
// a missing value is not mistaken for 0,0.
type LocationRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Address   string   `json:"address"`
}

// AlertRequest is the body a client posts to raise an alert.
type AlertRequest struct {
	UserID   string           `json:"userId"`
	Type     AlertType        `json:"type"`
	Location *LocationRequest `json:"location"`
	AudioURL string           `json:"audioUrl"`
}

// Alert converts the request into a normalized, validated Alert.
func (r AlertRequest) Alert() (Alert, error) {
	if r.Location == nil || r.Location.Latitude == nil || r.Location.Longitude == nil {
		return Alert{}, fmt.Errorf("%w: location.latitude and location.longitude required", ErrInvalidAlert)
	}
	a := Alert{
		UserID: r.UserID,
		Type:   r.Type,
		Location: Location{
			Latitude:  *r.Location.Latitude,
			Longitude: *r.Location.Longitude,
			Address:   r.Location.Address,
		},
		AudioURL: r.AudioURL,
	}
	a.Normalize()
	if err := a.Validate(); err != nil {
		return Alert{}, err
	}
	return a, nil
}

// Normalize fills defaults the way alerts are accepted from clients.
func (a *Alert) Normalize() {
	if a.Type == "" {
		a.Type = AlertPanicButton
	}
	if a.Status == "" {
		a.Status = StatusActive
	}
	if a.Location.Address == "" {
		a.Location.Address = "Unknown Location"
	}
}

// Validate checks an alert after Normalize.
func (a Alert) Validate() error {
	if strings.TrimSpace(a.UserID) == "" {
		return fmt.Errorf("%w: userId required", ErrInvalidAlert)
	}
	if len(a.UserID) > MaxRoomIDLength {
		return fmt.Errorf("%w: userId too long", ErrInvalidAlert)
	}
	if isDotSegment(a.UserID) {
		return fmt.Errorf("%w: userId %q is not a usable room id", ErrInvalidAlert, a.UserID)
	}
	switch a.Type {
	case AlertPanicButton, AlertBatteryCritical, AlertSentinelTrigger, AlertFakeCall:
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidAlert, a.Type)
	}
	if a.Location.Latitude < -90 || a.Location.Latitude > 90 {
		return fmt.Errorf("%w: latitude out of range", ErrInvalidAlert)
	}
	if a.Location.Longitude < -180 || a.Location.Longitude > 180 {
		return fmt.Errorf("%w: longitude out of range", ErrInvalidAlert)
	}
	return nil
}

// VideoLink returns the viewer URL for a user's live room. The room id is the
// user id, which is the only coupling between alerts and the relay.
func VideoLink(baseURL, userID string) (string, error) {
	if userID == "" || isDotSegment(userID) {
		return "", fmt.Errorf("%w: userId %q is not a usable room id", ErrInvalidAlert, userID)
	}
	return url.JoinPath(baseURL, "watch", url.PathEscape(userID))
}

func isDotSegment(s string) bool {
	return s == "." || s == ".."
}
