package handlers

import (
	"html/template"
	"net/http"

	"github.com/sirupsen/logrus"
)

// HomeHandler renders the landing page.
func HomeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tmpl := template.Must(template.ParseFiles("templates/home.html", "templates/base.html"))
		if err := tmpl.ExecuteTemplate(w, "base.html", nil); err != nil {
			logrus.WithError(err).Error("render home")
			http.Error(w, "Error rendering template", http.StatusInternalServerError)
		}
	}
}

// AboutHandler answers a short description of the app.
func AboutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, "This is the about page of My Memo App.")
	}
}
