package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pion/webrtc/v4"

	"github.com/devaloi/safecast/internal/client"
	"github.com/devaloi/safecast/internal/hub"
	"github.com/devaloi/safecast/internal/middleware"
	"github.com/devaloi/safecast/internal/store"
)

// Deps are the collaborators the API routes need.
type Deps struct {
	Hub           *hub.Hub
	Store         store.Store
	ClientOptions client.Options
	ICEServers    []webrtc.ICEServer
	PublicBaseURL string
}

// NewRouter wires every route of the API server.
func NewRouter(d Deps) http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/health", Health()).Methods(http.MethodGet)
	r.HandleFunc("/ws", ServeWS(d.Hub, d.ClientOptions))

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/rooms", ListRooms(d.Hub)).Methods(http.MethodGet)
	api.HandleFunc("/rooms/{roomId}", RoomInfo(d.Hub)).Methods(http.MethodGet)
	api.HandleFunc("/ice", ICEConfig(d.ICEServers)).Methods(http.MethodGet)
	api.HandleFunc("/alerts", CreateAlert(d.Store, d.PublicBaseURL)).Methods(http.MethodPost)
	api.HandleFunc("/alerts/{userId}", ListAlerts(d.Store)).Methods(http.MethodGet)
	api.HandleFunc("/alerts/{id:[0-9]+}/resolve", ResolveAlert(d.Store)).Methods(http.MethodPost)

	return middleware.Recover(middleware.Logging(middleware.CORS(r)))
}
