package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pion/webrtc/v4"
	log "github.com/sirupsen/logrus"

	"github.com/devaloi/safecast/internal/domain"
	"github.com/devaloi/safecast/internal/hub"
	"github.com/devaloi/safecast/internal/metrics"
	"github.com/devaloi/safecast/internal/store"
)

const (
	maxAlertBodyBytes = 1 << 20
	alertHistoryLimit = 50
)

// Health returns a simple health check handler.
func Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// ListRooms returns all live rooms with member counts.
func ListRooms(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, h.ListRooms())
	}
}

// RoomInfo returns details about a specific room.
func RoomInfo(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		info := h.RoomInfo(mux.Vars(r)["roomId"])
		if info == nil {
			writeError(w, http.StatusNotFound, "room not found")
			return
		}
		writeJSON(w, http.StatusOK, info)
	}
}

// ICEConfig returns the ICE servers clients should use for their peer connections.
func ICEConfig(servers []webrtc.ICEServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"iceServers": servers})
	}
}

// CreateAlert accepts an emergency alert and answers with the live video link
// viewers use to join the user's room.
func CreateAlert(s store.Store, baseURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxAlertBodyBytes)

		var req domain.AlertRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
		a, err := req.Alert()
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		link, err := domain.VideoLink(baseURL, a.UserID)
		if err != nil {
			log.WithError(err).Error("build video link")
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		a.VideoLink = link

		saved, err := s.Save(a)
		if err != nil {
			log.WithField("user", a.UserID).WithError(err).Error("store alert")
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		metrics.AlertsCounter.WithLabelValues(string(saved.Type)).Inc()
		log.WithFields(log.Fields{"user": saved.UserID, "alert": saved.ID, "type": saved.Type}).Warn("SOS alert received")

		writeJSON(w, http.StatusCreated, map[string]any{
			"success":   true,
			"message":   "SOS SIGNAL RECEIVED",
			"alertId":   saved.ID,
			"videoLink": saved.VideoLink,
		})
	}
}

// ListAlerts returns a user's recent alerts, newest first.
func ListAlerts(s store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		alerts, err := s.History(mux.Vars(r)["userId"], alertHistoryLimit)
		if err != nil {
			log.WithError(err).Error("load alerts")
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, alerts)
	}
}

// ResolveAlert marks an alert resolved.
func ResolveAlert(s store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid alert id")
			return
		}
		if err := s.Resolve(id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeError(w, http.StatusNotFound, "alert not found")
				return
			}
			log.WithField("alert", id).WithError(err).Error("resolve alert")
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"id": id, "status": domain.StatusResolved})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
