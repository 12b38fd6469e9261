package rest

import (
	"log/slog"
	"net/http"
	"quizlive/internal/service"
	"quizlive/internal/transport/rest/handler"
	"quizlive/internal/transport/rest/middleware"
	"quizlive/internal/transport/ws"

	_ "quizlive/docs"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/swaggo/swag"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService *service.AuthService
	QuizService *service.QuizService
	LiveService *service.LiveService
	WSHub       *ws.Hub
	// AllowedOrigins for CORS; empty allows any origin
	AllowedOrigins []string
	Logger         *slog.Logger
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService)
	quizHandler := handler.NewQuizHandler(c.QuizService)
	liveHandler := handler.NewLiveHandler(c.LiveService)
	wsHandler := ws.NewHandler(c.WSHub, c.LiveService, c.Logger)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	// WebSocket routes (public with token in query param)
	v1.HandleFunc("/ws/lives/{liveKey}", wsHandler.LiveStream).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	r.HandleFunc("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		doc, err := swag.ReadDoc()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(doc))
	}).Methods("GET")

	// Authenticated routes
	authed := v1.NewRoute().Subrouter()
	authed.Use(authMW.RequireAuth)

	authed.HandleFunc("/quizzes", quizHandler.Create).Methods("POST")
	authed.HandleFunc("/quizzes", quizHandler.List).Methods("GET")
	authed.HandleFunc("/quizzes/{quizKey}", quizHandler.Get).Methods("GET")
	authed.HandleFunc("/quizzes/{quizKey}/items", quizHandler.PutItem).Methods("PUT")
	authed.HandleFunc("/quizzes/{quizKey}/items/{position}", quizHandler.RemoveItem).Methods("DELETE")

	authed.HandleFunc("/lives", liveHandler.Create).Methods("POST")
	authed.HandleFunc("/lives", liveHandler.List).Methods("GET")
	authed.HandleFunc("/lives/{liveKey}", liveHandler.Get).Methods("GET")
	authed.HandleFunc("/lives/{liveKey}/next", liveHandler.Next).Methods("POST")
	authed.HandleFunc("/lives/{liveKey}/previous", liveHandler.Previous).Methods("POST")
	authed.HandleFunc("/lives/{liveKey}/end", liveHandler.End).Methods("POST")
	authed.HandleFunc("/lives/{liveKey}/lobby", liveHandler.Join).Methods("POST")
	authed.HandleFunc("/lives/{liveKey}/lobby", liveHandler.Leave).Methods("DELETE")
	authed.HandleFunc("/lives/{liveKey}/answers", liveHandler.Answer).Methods("POST")

	origins := c.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	cors := handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)
	recovery := handlers.RecoveryHandler(
		handlers.RecoveryLogger(slog.NewLogLogger(c.Logger.Handler(), slog.LevelError)),
		handlers.PrintRecoveryStack(true),
	)
	return recovery(cors(r))
}
