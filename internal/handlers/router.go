package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rbyte/rbyte-api/internal/metrics"
	"github.com/rbyte/rbyte-api/internal/middleware"
	"github.com/sirupsen/logrus"
)

// RouterDeps groups everything the HTTP surface is built from. Debug and
// Verification are optional; nil disables them.
type RouterDeps struct {
	OTP          *OTPHandlers
	Leads        *LeadHandlers
	Admin        *AdminHandlers
	Assets       *AssetHandlers
	Debug        *DebugHandlers
	Verification *middleware.VerificationMiddleware
	Metrics      *metrics.Metrics
	Logger       *logrus.Logger
}

func NewRouter(deps RouterDeps) *mux.Router {
	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondWithError(w, http.StatusNotFound, "Not Found")
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondWithError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	router.Use(middleware.CORSMiddleware)
	router.Use(middleware.LoggingMiddleware(deps.Logger, deps.Metrics))

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET", "OPTIONS")

	router.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		respondWithJSON(w, http.StatusOK, map[string]string{"message": "Welcome to RByte.ai API"})
	}).Methods("GET", "OPTIONS")

	if deps.Metrics != nil {
		router.Handle("/metrics", deps.Metrics.Handler()).Methods("GET")
	}

	api := router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/send-otp", deps.OTP.SendOTP).Methods("POST", "OPTIONS")
	api.HandleFunc("/verify-otp", deps.OTP.VerifyOTP).Methods("POST", "OPTIONS")

	form := func(h http.HandlerFunc) http.Handler {
		if deps.Verification == nil {
			return h
		}
		return deps.Verification.RequireVerification(h)
	}
	api.Handle("/register", form(deps.Leads.Register)).Methods("POST", "OPTIONS")
	api.Handle("/enroll", form(deps.Leads.Enroll)).Methods("POST", "OPTIONS")
	api.Handle("/masterclass-register", form(deps.Leads.RegisterMasterclass)).Methods("POST", "OPTIONS")

	api.HandleFunc("/registrations", deps.Admin.ListRegistrations).Methods("GET", "OPTIONS")
	api.HandleFunc("/enrollments", deps.Admin.ListEnrollments).Methods("GET", "OPTIONS")
	api.HandleFunc("/masterclass-registrations", deps.Admin.ListMasterclassRegistrations).Methods("GET", "OPTIONS")
	api.HandleFunc("/all-leads", deps.Admin.AllLeads).Methods("GET", "OPTIONS")

	api.HandleFunc("/curriculum", deps.Assets.Curriculum).Methods("GET", "OPTIONS")

	if deps.Debug != nil {
		api.HandleFunc("/debug/status", deps.Debug.Status).Methods("GET", "OPTIONS")
		api.HandleFunc("/debug/tables", deps.Debug.Tables).Methods("GET", "OPTIONS")
		api.HandleFunc("/test-otp/{phone}", deps.Debug.TestOTP).Methods("GET", "OPTIONS")
	}

	return router
}
