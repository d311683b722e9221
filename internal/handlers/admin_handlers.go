package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/rbyte/rbyte-api/internal/models"
	"github.com/rbyte/rbyte-api/internal/service"
	"github.com/sirupsen/logrus"
)

const (
	defaultPage     = 1
	defaultPageSize = 10
)

type AdminHandlers struct {
	listing *service.ListingService
	logger  *logrus.Logger
}

func NewAdminHandlers(listing *service.ListingService, logger *logrus.Logger) *AdminHandlers {
	return &AdminHandlers{
		listing: listing,
		logger:  logger,
	}
}

type RecentLeads struct {
	Registrations            []RegistrationItem            `json:"registrations"`
	Enrollments              []EnrollmentItem              `json:"enrollments"`
	MasterclassRegistrations []MasterclassRegistrationItem `json:"masterclass_registrations"`
}

type AllLeadsResponse struct {
	Counts      models.LeadCounts `json:"counts"`
	RecentLeads RecentLeads       `json:"recent_leads"`
	Timestamp   time.Time         `json:"timestamp"`
}

func (h *AdminHandlers) ListRegistrations(w http.ResponseWriter, r *http.Request) {
	page, pageSize, ok := parsePaging(w, r)
	if !ok {
		return
	}

	result, err := h.listing.ListRegistrations(r.Context(), page, pageSize)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "Failed to fetch registrations")
		return
	}
	respondWithJSON(w, http.StatusOK, models.MapPage(result, toRegistrationItem))
}

func (h *AdminHandlers) ListEnrollments(w http.ResponseWriter, r *http.Request) {
	page, pageSize, ok := parsePaging(w, r)
	if !ok {
		return
	}

	result, err := h.listing.ListEnrollments(r.Context(), page, pageSize)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "Failed to fetch enrollments")
		return
	}
	respondWithJSON(w, http.StatusOK, models.MapPage(result, toEnrollmentItem))
}

func (h *AdminHandlers) ListMasterclassRegistrations(w http.ResponseWriter, r *http.Request) {
	page, pageSize, ok := parsePaging(w, r)
	if !ok {
		return
	}

	result, err := h.listing.ListMasterclassRegistrations(r.Context(), page, pageSize)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "Failed to fetch masterclass registrations")
		return
	}
	respondWithJSON(w, http.StatusOK, models.MapPage(result, toMasterclassRegistrationItem))
}

func (h *AdminHandlers) AllLeads(w http.ResponseWriter, r *http.Request) {
	summary, err := h.listing.Summary(r.Context())
	if err != nil {
		respondWithServiceError(w, h.logger, err, "Failed to fetch all leads")
		return
	}

	respondWithJSON(w, http.StatusOK, AllLeadsResponse{
		Counts: summary.Counts,
		RecentLeads: RecentLeads{
			Registrations:            mapItems(summary.Registrations, toRegistrationItem),
			Enrollments:              mapItems(summary.Enrollments, toEnrollmentItem),
			MasterclassRegistrations: mapItems(summary.MasterclassRegistrations, toMasterclassRegistrationItem),
		},
		Timestamp: summary.Timestamp,
	})
}

// parsePaging reads page and page_size. Range checks belong to the listing
// service; only non-numeric values are rejected here.
func parsePaging(w http.ResponseWriter, r *http.Request) (page, pageSize int, ok bool) {
	query := r.URL.Query()

	page, ok = intParam(w, query.Get("page"), "page", defaultPage)
	if !ok {
		return 0, 0, false
	}
	pageSize, ok = intParam(w, query.Get("page_size"), "page_size", defaultPageSize)
	if !ok {
		return 0, 0, false
	}
	return page, pageSize, true
}

func intParam(w http.ResponseWriter, raw, name string, def int) (int, bool) {
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, name+" must be an integer")
		return 0, false
	}
	return v, true
}
