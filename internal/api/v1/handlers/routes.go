package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	v1chat "github.com/nurtura/leadline/internal/api/v1/handlers/chat"
	v1ws "github.com/nurtura/leadline/internal/api/v1/handlers/websocket"
	v1mware "github.com/nurtura/leadline/internal/api/v1/middleware"
	"github.com/nurtura/leadline/internal/services"
)

func RegisterV1Routes(router *mux.Router, services *services.Services) {
	// v1 routes
	v1 := router.PathPrefix("/v1").Subrouter()

	// All chat routes require the widget key.
	v1chatRouter := v1.PathPrefix("/chat").Subrouter()
	v1chatRouter.Use(v1mware.RequireWidgetKey())

	v1chatRouter.Handle("/session", v1mware.RateLimit("chat_session")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		v1chat.HandleCreateSession(services.GetSessionService(), w, r)
	}))).Methods("POST")
	v1chatRouter.HandleFunc("/session", func(w http.ResponseWriter, r *http.Request) {
		v1chat.HandleGetSession(services.GetSessionService(), w, r)
	}).Methods("GET")
	v1chatRouter.HandleFunc("/session", func(w http.ResponseWriter, r *http.Request) {
		v1chat.HandleResetSession(services.GetSessionService(), w, r)
	}).Methods("DELETE")

	v1chatRouter.Handle("/turn", v1mware.RateLimit("chat_turn")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		v1chat.HandleTurn(services.GetSessionService(), services.GetCompletions(), w, r)
	}))).Methods("POST")

	v1chatRouter.Handle("/stream", v1mware.RateLimit("chat_stream")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		v1ws.HandleChatStream(services.GetSessionService(), services.GetCompletions(), w, r)
	}))).Methods("GET")
}
