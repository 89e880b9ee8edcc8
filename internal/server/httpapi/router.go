package httpapi

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
)

// Router wires the REST endpoints. Auth endpoints are public except signout,
// which reads the bearer token itself so an invalid token can still be
// acknowledged; task endpoints sit behind the auth middleware.
func (s *HTTPServer) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "OK")
	}).Methods("GET")

	r.HandleFunc("/api/auth/signup", s.SignupHandler).Methods("POST")
	r.HandleFunc("/api/auth/signin", s.SigninHandler).Methods("POST")
	r.HandleFunc("/api/auth/signout", s.SignoutHandler).Methods("POST")

	r.HandleFunc("/api/tasks", s.withAuth(s.CreateTaskHandler)).Methods("POST")
	r.HandleFunc("/api/tasks", s.withAuth(s.ListTasksHandler)).Methods("GET")
	r.HandleFunc("/api/tasks/{id}", s.withAuth(s.GetTaskHandler)).Methods("GET")
	r.HandleFunc("/api/tasks/{id}", s.withAuth(s.UpdateTaskHandler)).Methods("PUT")
	r.HandleFunc("/api/tasks/{id}", s.withAuth(s.DeleteTaskHandler)).Methods("DELETE")
	r.HandleFunc("/api/tasks/{id}/toggle", s.withAuth(s.ToggleTaskHandler)).Methods("PATCH")

	return r
}
