package domain

import (
	"errors"
	"testing"
)

func TestAlertNormalizeDefaults(t *testing.T) {
	t.Parallel()
	a := Alert{UserID: "user42"}
	a.Normalize()
	if a.Type != AlertPanicButton {
		t.Errorf("expected PANIC_BUTTON, got %s", a.Type)
	}
	if a.Status != StatusActive {
		t.Errorf("expected ACTIVE, got %s", a.Status)
	}
	if a.Location.Address != "Unknown Location" {
		t.Errorf("unexpected address %q", a.Location.Address)
	}
	if err := a.Validate(); err != nil {
		t.Errorf("validate: %v", err)
	}
}

func TestAlertValidate(t *testing.T) {
	t.Parallel()
	cases := []Alert{
		{Type: AlertPanicButton},
		{UserID: "u", Type: "EARTHQUAKE"},
		{UserID: "u", Type: AlertFakeCall, Location: Location{Latitude: 91}},
		{UserID: "u", Type: AlertFakeCall, Location: Location{Longitude: -181}},
	}
	for i, a := range cases {
		if err := a.Validate(); !errors.Is(err, ErrInvalidAlert) {
			t.Errorf("case %d: expected ErrInvalidAlert, got %v", i, err)
		}
	}
}

func coord(v float64) *float64 { return &v }

func TestAlertRequestRequiresCoordinates(t *testing.T) {
	t.Parallel()
	cases := map[string]AlertRequest{
		"no location":  {UserID: "u"},
		"no latitude":  {UserID: "u", Location: &LocationRequest{Longitude: coord(77.6)}},
		"no longitude": {UserID: "u", Location: &LocationRequest{Latitude: coord(12.9)}},
		"dot user id":  {UserID: "..", Location: &LocationRequest{Latitude: coord(0), Longitude: coord(0)}},
		"out of range": {UserID: "u", Location: &LocationRequest{Latitude: coord(-95), Longitude: coord(0)}},
		"unknown type": {UserID: "u", Type: "NOPE", Location: &LocationRequest{Latitude: coord(1), Longitude: coord(1)}},
		"missing user": {Location: &LocationRequest{Latitude: coord(1), Longitude: coord(1)}},
	}
	for name, req := range cases {
		if _, err := req.Alert(); !errors.Is(err, ErrInvalidAlert) {
			t.Errorf("%s: expected ErrInvalidAlert, got %v", name, err)
		}
	}
}

func TestAlertRequestAcceptsEquatorOrigin(t *testing.T) {
	t.Parallel()
	req := AlertRequest{UserID: "user42", Location: &LocationRequest{Latitude: coord(0), Longitude: coord(0)}}
	a, err := req.Alert()
	if err != nil {
		t.Fatalf("alert: %v", err)
	}
	if a.Type != AlertPanicButton || a.Status != StatusActive || a.Location.Address != "Unknown Location" {
		t.Errorf("defaults not applied: %+v", a)
	}
}

func TestVideoLink(t *testing.T) {
	t.Parallel()
	link, err := VideoLink("https://safecast.example/", "user42")
	if err != nil {
		t.Fatalf("video link: %v", err)
	}
	if link != "https://safecast.example/watch/user42" {
		t.Errorf("unexpected link %s", link)
	}
}

func TestVideoLinkKeepsUserID(t *testing.T) {
	t.Parallel()
	link, err := VideoLink("https://safecast.example", "a/b")
	if err != nil {
		t.Fatalf("video link: %v", err)
	}
	if link != "https://safecast.example/watch/a%2Fb" {
		t.Errorf("unexpected link %s", link)
	}

	for _, id := range []string{"", ".", ".."} {
		if _, err := VideoLink("https://safecast.example", id); !errors.Is(err, ErrInvalidAlert) {
			t.Errorf("%q: expected ErrInvalidAlert, got %v", id, err)
		}
	}
}
