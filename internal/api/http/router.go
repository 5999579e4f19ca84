package http

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"fieldmatch-backend/internal/config"
	"fieldmatch-backend/internal/security"
	"fieldmatch-backend/internal/service"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewRouter registers every route under its security-config name. health may
// be nil when the store has nothing to ping.
func NewRouter(matchSvc service.MatchService, tokenManager security.TokenManager, health Pinger) *mux.Router {
	h := NewMatchHandler(matchSvc)
	auth := NewAuthMiddleware(tokenManager)

	r := mux.NewRouter()
	r.Use(RequestIDMiddleware, AccessLogMiddleware, auth.Handler)

	r.HandleFunc("/health", healthHandler(health)).Methods(http.MethodGet).Name(config.RouteHealth)

	api := r.PathPrefix("/api/v1/match-requests").Subrouter()
	// Literal paths first so they are never parsed as an id.
	api.HandleFunc("/my-history", h.MyHistory).Methods(http.MethodGet).Name(config.RouteMyHistory)
	api.HandleFunc("/expire-old", h.ExpireOldRequests).Methods(http.MethodPost).Name(config.RouteExpireOldRequests)
	api.HandleFunc("/booking/{bookingId:[0-9]+}/has-request", h.BookingHasRequest).Methods(http.MethodGet).Name(config.RouteBookingHasRequest)

	api.HandleFunc("", h.ListActive).Methods(http.MethodGet).Name(config.RouteListActive)
	api.HandleFunc("", h.CreateRequest).Methods(http.MethodPost).Name(config.RouteCreateRequest)
	api.HandleFunc("/{id:[0-9]+}", h.GetDetail).Methods(http.MethodGet).Name(config.RouteGetDetail)
	api.HandleFunc("/{id:[0-9]+}", h.CancelRequest).Methods(http.MethodDelete).Name(config.RouteCancelRequest)
	api.HandleFunc("/{id:[0-9]+}/join", h.JoinRequest).Methods(http.MethodPost).Name(config.RouteJoinRequest)
	api.HandleFunc("/{id:[0-9]+}/accept/{participantId:[0-9]+}", h.AcceptParticipant).Methods(http.MethodPost).Name(config.RouteAcceptParticipant)
	api.HandleFunc("/{id:[0-9]+}/reject-or-withdraw/{participantId:[0-9]+}", h.RejectOrWithdraw).Methods(http.MethodPost).Name(config.RouteRejectOrWithdraw)

	return r
}

// WithCORS wraps the router for browser clients.
func WithCORS(h http.Handler, allowedOrigins []string) http.Handler {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization", requestIDHeader},
		ExposedHeaders:   []string{requestIDHeader},
		AllowCredentials: true,
	}).Handler(h)
}

func healthHandler(health Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if health != nil {
			if err := health.Ping(r.Context()); err != nil {
				writeMessage(w, http.StatusServiceUnavailable, "unhealthy: "+err.Error())
				return
			}
		}
		writeData(w, http.StatusOK, "healthy", map[string]string{"status": "healthy"})
	}
}
