package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/certhub/examdesk/internal/handlers"
)

func Router(h *handlers.Env) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Public
	r.Get("/healthz", h.Health)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/qr/{number}.png", h.QR)

	r.Route("/admin", func(ar chi.Router) {
		ar.Post("/login", h.Login)
		ar.Post("/logout", h.Logout)

		ar.Group(func(ag chi.Router) {
			ag.Use(h.Auth.RequireAdmin)

			// Rooms
			ag.Get("/rooms", h.ListRooms)
			ag.Post("/rooms", h.CreateRoom)
			ag.Get("/rooms/occupancy", h.RoomOccupancy)
			ag.Get("/rooms/{id}", h.ShowRoom)
			ag.Post("/rooms/{id}", h.UpdateRoom)
			ag.Post("/rooms/{id}/delete", h.DeleteRoom)
			ag.Post("/rooms/{id}/status", h.SetRoomStatus)

			// Tickets & roster
			ag.Get("/tickets", h.ListTickets)
			ag.Get("/tickets.csv", h.TicketsCSV)
			ag.Get("/tickets/{number}", h.ShowTicket)
			ag.Post("/tickets/{number}/assign", h.AssignTicket)
			ag.Post("/tickets/{number}/unassign", h.UnassignTicket)

			// Registrations
			ag.Get("/registrations", h.ListRegistrations)
			ag.Post("/registrations", h.CreateRegistration)
			ag.Post("/registrations/{id}/approve", h.ApproveRegistration)
			ag.Post("/registrations/{id}/reject", h.RejectRegistration)
			ag.Post("/registrations/{id}/tickets", h.IssueTickets)
			ag.Get("/registrations/{id}/invoice", h.RegistrationInvoice)

			// Extensions
			ag.Get("/extensions", h.ListExtensions)
			ag.Post("/extensions", h.CreateExtension)
			ag.Post("/extensions/{id}/approve", h.ApproveExtension)
			ag.Post("/extensions/{id}/reject", h.RejectExtension)

			// Results & ledger
			ag.Post("/results", h.SaveResult)
			ag.Get("/results/{number}", h.ShowResult)
			ag.Post("/results/{number}/certificate", h.SetCertificateStatus)
			ag.Get("/ledger", h.Ledger)

			// Customers
			ag.Get("/customers", h.ListCustomers)
			ag.Post("/customers", h.CreateCustomer)
			ag.Get("/customers/{id}", h.ShowCustomer)
			ag.Post("/customers/{id}", h.UpdateCustomer)
			ag.Post("/customers/{id}/delete", h.DeleteCustomer)
			ag.Get("/customers/{id}/candidates", h.ListCandidates)
			ag.Post("/customers/{id}/candidates", h.AddCandidate)

			// Catalog & billing
			ag.Get("/certificates", h.ListCertificates)
			ag.Post("/certificates", h.CreateCertificate)
			ag.Get("/sessions", h.ListSessions)
			ag.Post("/sessions", h.CreateSession)
			ag.Post("/sessions/{id}/held", h.MarkSessionHeld)
			ag.Get("/invoices", h.ListInvoices)
			ag.Post("/invoices/{id}/paid", h.MarkInvoicePaid)
		})
	})

	return r
}
