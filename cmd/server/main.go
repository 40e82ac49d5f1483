package main

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/ahsanfayaz52/memoservice/internal/config"
	"github.com/ahsanfayaz52/memoservice/internal/db"
	"github.com/ahsanfayaz52/memoservice/internal/handlers"
	"github.com/ahsanfayaz52/memoservice/internal/session"
)

func main() {
	cfg := config.LoadConfig()

	conn, err := db.Open(context.Background(), cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBName)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize database")
	}
	defer conn.Close()

	sessions := session.NewManager(cfg.SessionSecret)

	r := mux.NewRouter()

	r.HandleFunc("/", handlers.HomeHandler()).Methods("GET")
	r.HandleFunc("/about", handlers.AboutHandler()).Methods("GET")

	r.HandleFunc("/signup", handlers.SignupHandler(conn, cfg.BcryptCost)).Methods("POST")
	r.HandleFunc("/login", handlers.LoginHandler(conn, sessions)).Methods("POST")
	r.HandleFunc("/logout", handlers.LogoutHandler(sessions)).Methods("POST")

	// Authenticated routes
	m := r.PathPrefix("/memos").Subrouter()
	m.Use(handlers.RequireUser(conn, sessions))
	m.HandleFunc("/", handlers.CreateMemoHandler(conn)).Methods("POST")
	m.HandleFunc("/", handlers.ListMemosHandler(conn)).Methods("GET")
	m.HandleFunc("/{id:[0-9]+}", handlers.UpdateMemoHandler(conn)).Methods("PUT")
	m.HandleFunc("/{id:[0-9]+}", handlers.DeleteMemoHandler(conn)).Methods("DELETE")

	// Serve static files
	r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.Dir("./static"))))

	logrus.Infof("Starting server on port %s...", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		logrus.Fatal(err)
	}
}
