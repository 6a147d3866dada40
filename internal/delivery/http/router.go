package http

import (
	"net/http"

	"healthbridge/internal/delivery/http/handler"
	"healthbridge/internal/delivery/http/middleware"

	"github.com/gorilla/mux"
)

type Router struct {
	router             *mux.Router
	authHandler        *handler.AuthHandler
	doctorHandler      *handler.DoctorHandler
	bookingHandler     *handler.BookingHandler
	appointmentHandler *handler.AppointmentHandler
	chatHandler        *handler.ChatHandler
	authMiddleware     *middleware.AuthMiddleware
	corsMiddleware     *middleware.CORSMiddleware
}

func NewRouter(
	authHandler *handler.AuthHandler,
	doctorHandler *handler.DoctorHandler,
	bookingHandler *handler.BookingHandler,
	appointmentHandler *handler.AppointmentHandler,
	chatHandler *handler.ChatHandler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
) *Router {
	return &Router{
		router:             mux.NewRouter(),
		authHandler:        authHandler,
		doctorHandler:      doctorHandler,
		bookingHandler:     bookingHandler,
		appointmentHandler: appointmentHandler,
		chatHandler:        chatHandler,
		authMiddleware:     authMiddleware,
		corsMiddleware:     corsMiddleware,
	}
}

func (r *Router) Setup() *mux.Router {
	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Auth routes (public)
	auth := api.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/register", r.authHandler.Register).Methods(http.MethodPost)
	auth.HandleFunc("/login", r.authHandler.Login).Methods(http.MethodPost)
	auth.HandleFunc("/refresh-token", r.authHandler.RefreshToken).Methods(http.MethodPost)

	// Auth routes (protected)
	authProtected := api.PathPrefix("/auth").Subrouter()
	authProtected.Use(r.authMiddleware.Authenticate)
	authProtected.HandleFunc("/logout", r.authHandler.Logout).Methods(http.MethodPost)
	authProtected.HandleFunc("/me", r.authHandler.GetCurrentUser).Methods(http.MethodGet)

	// Doctor directory and onboarding
	doctors := api.PathPrefix("/doctors").Subrouter()
	doctors.Use(r.authMiddleware.Authenticate)
	doctors.HandleFunc("", r.doctorHandler.GetApprovedDoctors).Methods(http.MethodGet)
	doctors.Handle("/profile", middleware.RequireDoctor(http.HandlerFunc(r.doctorHandler.CreateProfile))).Methods(http.MethodPost)
	doctors.Handle("/me", middleware.RequireDoctor(http.HandlerFunc(r.doctorHandler.GetMyProfile))).Methods(http.MethodGet)

	// Admin routes
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(r.authMiddleware.Authenticate)
	admin.Use(middleware.RequireAdmin)
	admin.HandleFunc("/doctors/{id}/status", r.doctorHandler.UpdateStatus).Methods(http.MethodPatch)

	// Booking flow
	booking := api.PathPrefix("").Subrouter()
	booking.Use(r.authMiddleware.Authenticate)
	booking.HandleFunc("/appointments/check-availability", r.bookingHandler.CheckSlot).Methods(http.MethodPost)
	booking.Handle("/payments/order", middleware.RequirePatient(http.HandlerFunc(r.bookingHandler.CreateOrder))).Methods(http.MethodPost)
	booking.Handle("/appointments", middleware.RequirePatient(http.HandlerFunc(r.bookingHandler.ConfirmBooking))).Methods(http.MethodPost)

	// Appointment listings and lifecycle
	booking.Handle("/appointments/patient", middleware.RequirePatient(http.HandlerFunc(r.appointmentHandler.GetPatientAppointments))).Methods(http.MethodGet)
	booking.Handle("/appointments/doctor", middleware.RequireDoctor(http.HandlerFunc(r.appointmentHandler.GetDoctorAppointments))).Methods(http.MethodGet)
	booking.Handle("/appointments/{id}/status", middleware.RequireDoctor(http.HandlerFunc(r.appointmentHandler.UpdateStatus))).Methods(http.MethodPatch)

	// Chat
	booking.HandleFunc("/appointments/{id}/chat", r.chatHandler.GetOrCreateChat).Methods(http.MethodPost)
	booking.HandleFunc("/chats/{id}/messages", r.chatHandler.SendMessage).Methods(http.MethodPost)
	booking.HandleFunc("/chats/{id}/messages", r.chatHandler.GetChatMessages).Methods(http.MethodGet)

	// Add CORS middleware
	r.router.Use(r.corsMiddleware.Handle)

	return r.router
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
