package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	qrcode "github.com/skip2/go-qrcode"
)

// GET /qr/{number}.png encodes the candidate number of an existing ticket.
func (e *Env) QR(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")
	if number == "" {
		http.NotFound(w, r)
		return
	}
	if _, err := e.Svc.GetTicket(r.Context(), number); err != nil {
		e.fail(w, r, "qr", err)
		return
	}

	png, err := qrcode.Encode(number, qrcode.Medium, 256)
	if err != nil {
		http.Error(w, "failed to generate qr", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

// GET /healthz
func (e *Env) Health(w http.ResponseWriter, r *http.Request) {
	sqlDB, err := e.Svc.DB().DB()
	if err == nil {
		err = sqlDB.PingContext(r.Context())
	}
	if err != nil {
		e.Log.ErrorContext(r.Context(), "health check failed", "err", err)
		http.Error(w, "db unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}
