package server

import (
	"net/http"

	"github.com/terraconstructs/taskapi/internal/auth"
)

// HandleLogin confirms the credentials by returning the current user. The
// authentication middleware has already done the work.
func HandleLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := auth.CurrentUser(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		writeJSON(w, http.StatusOK, toUserResponse(u))
	}
}

// HandleLogout is a no-op: there is no server-side session to end.
func HandleLogout() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}
}
