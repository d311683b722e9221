package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rbyte/rbyte-api/internal/config"
	"github.com/rbyte/rbyte-api/internal/models"
	"github.com/rbyte/rbyte-api/internal/repository"
	"github.com/rbyte/rbyte-api/internal/service"
	"github.com/sirupsen/logrus"
)

// DebugHandlers expose configuration and a code-returning OTP endpoint.
// They are only routed when debug endpoints are enabled.
type DebugHandlers struct {
	cfg        *config.Config
	leads      repository.LeadRepository
	otpService *service.OTPService
	logger     *logrus.Logger
	now        func() time.Time
}

func NewDebugHandlers(cfg *config.Config, leads repository.LeadRepository, otpService *service.OTPService, logger *logrus.Logger) *DebugHandlers {
	return &DebugHandlers{
		cfg:        cfg,
		leads:      leads,
		otpService: otpService,
		logger:     logger,
		now:        time.Now,
	}
}

type SMSStatus struct {
	Provider       string `json:"provider"`
	AccountSIDSet  bool   `json:"account_sid_set"`
	AuthTokenSet   bool   `json:"auth_token_set"`
	PhoneNumberSet bool   `json:"phone_number_set"`
	PhoneNumber    string `json:"phone_number"`
}

type StoreStatus struct {
	Driver    string  `json:"driver"`
	Connected bool    `json:"connected"`
	Error     *string `json:"error"`
}

type DebugStatusResponse struct {
	Status       string      `json:"status"`
	Timestamp    time.Time   `json:"timestamp"`
	Environment  string      `json:"environment"`
	SMS          SMSStatus   `json:"sms_config"`
	Database     StoreStatus `json:"database"`
	OTPStore     string      `json:"otp_store"`
	OTPStoreSize int         `json:"otp_store_size"`
}

func (h *DebugHandlers) Status(w http.ResponseWriter, r *http.Request) {
	resp := DebugStatusResponse{
		Status:      "ok",
		Timestamp:   h.now(),
		Environment: h.cfg.Environment,
		SMS: SMSStatus{
			Provider:       h.cfg.SMS.Provider,
			AccountSIDSet:  h.cfg.SMS.AccountSID != "",
			AuthTokenSet:   h.cfg.SMS.AuthToken != "",
			PhoneNumberSet: h.cfg.SMS.FromNumber != "",
			PhoneNumber:    h.cfg.SMS.FromNumber,
		},
		Database: StoreStatus{
			Driver:    h.cfg.Store.Driver,
			Connected: true,
		},
		OTPStore: h.cfg.OTP.Store,
	}

	if err := h.leads.Ping(r.Context()); err != nil {
		msg := err.Error()
		resp.Database.Connected = false
		resp.Database.Error = &msg
	}

	size, err := h.otpService.PendingCount(r.Context())
	if err != nil {
		h.logger.WithError(err).Warn("Failed to read OTP store size")
		resp.Status = "degraded"
	}
	resp.OTPStoreSize = size

	respondWithJSON(w, http.StatusOK, resp)
}

type DebugTablesResponse struct {
	Tables    map[models.LeadKind]int `json:"tables"`
	Timestamp time.Time               `json:"timestamp"`
}

// Tables reports the record count of every lead kind.
func (h *DebugHandlers) Tables(w http.ResponseWriter, r *http.Request) {
	resp := DebugTablesResponse{
		Tables:    make(map[models.LeadKind]int, len(models.LeadKinds)),
		Timestamp: h.now(),
	}
	for _, kind := range models.LeadKinds {
		n, err := h.leads.Count(r.Context(), kind)
		if err != nil {
			h.logger.WithError(err).WithField("kind", kind).Error("Failed to count records")
			respondWithError(w, http.StatusInternalServerError, "Failed to count "+string(kind))
			return
		}
		resp.Tables[kind] = n
	}

	respondWithJSON(w, http.StatusOK, resp)
}

type TestOTPResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	MessageSID string `json:"message_sid"`
	OTP        string `json:"otp"`
}

// TestOTP issues a code like SendOTP but returns it in the response.
func (h *DebugHandlers) TestOTP(w http.ResponseWriter, r *http.Request) {
	phone := strings.TrimSpace(mux.Vars(r)["phone"])
	if phone == "" {
		respondWithError(w, http.StatusBadRequest, "phone is required")
		return
	}

	// An unescaped "+" in the query string decodes to a space.
	countryCode := strings.TrimSpace(r.URL.Query().Get("country_code"))
	if countryCode == "" {
		countryCode = defaultCountryCode
	} else if !strings.HasPrefix(countryCode, "+") {
		countryCode = "+" + countryCode
	}

	phoneKey := service.PhoneKey(countryCode, phone)
	h.logger.WithField("phone", phoneKey).Info("Test sending OTP")

	issued, err := h.otpService.Issue(r.Context(), phoneKey)
	if err != nil {
		respondWithIssueError(w, h.logger, err, "Failed to send test OTP")
		return
	}

	respondWithJSON(w, http.StatusOK, TestOTPResponse{
		Success:    true,
		Message:    "Test OTP sent successfully to " + phoneKey,
		MessageSID: issued.DeliveryID,
		OTP:        issued.Code,
	})
}
