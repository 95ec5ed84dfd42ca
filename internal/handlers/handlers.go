package handlers

import (
	"campus-gigs/internal/database"
	"campus-gigs/internal/engine"
	"campus-gigs/internal/middleware"
	"campus-gigs/internal/utils"
	"campus-gigs/internal/websocket"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
)

// Server holds all server dependencies, including the actor system and engine
type Server struct {
	System         *actor.ActorSystem
	Context        *actor.RootContext
	Engine         *engine.Engine
	Metrics        *utils.MetricsCollector
	Hub            *websocket.Hub
	DB             database.Adapter
	RequestTimeout time.Duration

	// AllowedOrigins gates websocket upgrades; "*" allows any origin.
	AllowedOrigins []string
}

// NewServer creates a new Server instance with the given components
func NewServer(
	system *actor.ActorSystem,
	context *actor.RootContext,
	eng *engine.Engine,
	metrics *utils.MetricsCollector,
	hub *websocket.Hub,
	db database.Adapter,
) *Server {
	return &Server{
		System:         system,
		Context:        context,
		Engine:         eng,
		Metrics:        metrics,
		Hub:            hub,
		DB:             db,
		RequestTimeout: 5 * time.Second, // Default timeout for actor requests
	}
}

// request sends a message to an actor and waits for its reply.
func (s *Server) request(pid *actor.PID, msg interface{}) (interface{}, error) {
	future := s.Context.RequestFuture(pid, msg, s.RequestTimeout)
	return future.Result()
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

// respondAppError writes the shared error envelope. Internal failures get a
// generic body so origins never leak to clients.
func respondAppError(w http.ResponseWriter, appErr *utils.AppError) {
	status := utils.AppErrorToHTTPStatus(appErr.Code)
	if status >= http.StatusInternalServerError {
		log.Printf("Internal error (%s): %v", appErr.Code, appErr)
		respondJSON(w, status, errorBody{Error: errorDetail{
			Code:    appErr.Code,
			Message: "Internal server error",
		}})
		return
	}
	respondJSON(w, status, errorBody{Error: errorDetail{
		Code:    appErr.Code,
		Message: appErr.Message,
	}})
}

// respondActorResult handles the common tail of every actor-backed handler:
// transport failure, application error, or success payload.
func (s *Server) respondActorResult(w http.ResponseWriter, result interface{}, err error, actorName string, successStatus int) {
	if err != nil {
		s.Metrics.IncrementErrors()
		respondAppError(w, utils.NewActorTimeoutError(actorName))
		return
	}
	if appErr, ok := result.(*utils.AppError); ok {
		s.Metrics.IncrementErrors()
		respondAppError(w, appErr)
		return
	}
	respondJSON(w, successStatus, result)
}

// currentUser pulls the authenticated user from the JWT middleware context.
func currentUser(r *http.Request) (uuid.UUID, bool) {
	return middleware.GetUserIDFromContext(r.Context())
}

// pathUUID parses a route wildcard as a UUID.
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	return uuid.Parse(r.PathValue(name))
}
