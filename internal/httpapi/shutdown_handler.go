package httpapi

import (
	"crypto/subtle"
	"net/http"
)

// ShutdownHandler lets a local supervisor stop the engine. It requires a
// loopback caller and the X-Shutdown-Token header.
func ShutdownHandler(token string, shutdown func()) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			WriteError(w, r, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		if !isLoopback(r) {
			WriteError(w, r, http.StatusForbidden, "forbidden")
			return
		}

		got := r.Header.Get("X-Shutdown-Token")
		if got == "" || token == "" || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			WriteError(w, r, http.StatusUnauthorized, "unauthorized")
			return
		}

		// Respond immediately, then shutdown asynchronously
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("shutting down\n"))

		go shutdown()
	}
}
