// Package httpapi mounts the inquiry, donation, root and health routes on a
// goa muxer and wraps them in the shared middleware chain.
package httpapi

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	goahttp "goa.design/goa/v3/http"

	"educhain/internal/logging"
	"educhain/internal/services"
	apperrors "educhain/pkg/errors"
)

// RootMessage is served on GET /.
const RootMessage = "EDUCHAIN Backend is running. Open index.html in your browser to use the site."

const maxBodyBytes = 1 << 20

// Route paths.
const (
	pathRoot     = "/"
	pathSubmit   = "/submit_inquiry"
	pathDonation = "/initiate_donation"
	pathHealth   = "/health"
	pathMetrics  = "/metrics"
)

// Routes lists every mounted path; metrics use it as the endpoint label set.
var Routes = []string{pathRoot, pathSubmit, pathDonation, pathHealth, pathMetrics}

// Verbs routed to POST-only endpoints so the wrong ones get a JSON 405.
var routedMethods = []string{
	http.MethodGet,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
}

// MessageBody is the JSON body of every non-health response.
type MessageBody struct {
	Message string `json:"message"`
}

// Server holds the services behind the HTTP routes.
type Server struct {
	inquiries *services.InquiryService
	donations *services.DonationService
	health    *services.HealthService
}

// NewServer creates a new HTTP server
func NewServer(inquiries *services.InquiryService, donations *services.DonationService, health *services.HealthService) *Server {
	return &Server{
		inquiries: inquiries,
		donations: donations,
		health:    health,
	}
}

// Mount registers every route on mux.
func (s *Server) Mount(mux goahttp.Muxer) {
	mux.Handle(http.MethodGet, pathRoot, s.root)
	for _, m := range routedMethods {
		mux.Handle(m, pathSubmit, s.submitInquiry)
		mux.Handle(m, pathDonation, s.initiateDonation)
	}
	mux.Handle(http.MethodGet, pathHealth, s.checkHealth)
	mux.Handle(http.MethodGet, pathMetrics, promhttp.Handler().ServeHTTP)
}

func (s *Server) root(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, RootMessage)
}

func (s *Server) submitInquiry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if r.Method != http.MethodPost {
		s.encodeError(ctx, w, services.ErrMethodNotAllowed, "")
		return
	}

	var payload services.SubmitInquiryPayload
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := goahttp.RequestDecoder(r).Decode(&payload); err != nil {
		s.encodeError(ctx, w, apperrors.Wrap(apperrors.ErrCodeValidation, "Invalid JSON payload", err), "Invalid JSON payload")
		return
	}

	res, err := s.inquiries.Submit(ctx, &payload)
	if err != nil {
		msg := ""
		if services.StatusCode(err) == http.StatusInternalServerError {
			msg = "Server error during submission: " + err.Error()
		}
		s.encodeError(ctx, w, err, msg)
		return
	}

	s.encode(ctx, w, http.StatusOK, MessageBody{Message: res.Message})
}

func (s *Server) initiateDonation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if r.Method != http.MethodPost {
		s.encodeError(ctx, w, services.ErrMethodNotAllowed, "")
		return
	}

	res, err := s.donations.Initiate(ctx)
	if err != nil {
		s.encodeError(ctx, w, err, "")
		return
	}
	s.encode(ctx, w, http.StatusOK, MessageBody{Message: "Donation initiated: " + res.Reference})
}

func (s *Server) checkHealth(w http.ResponseWriter, r *http.Request) {
	res := s.health.Check(r.Context())
	status := http.StatusOK
	if !res.Healthy() {
		status = http.StatusServiceUnavailable
	}
	s.encode(r.Context(), w, status, res)
}

func (s *Server) encode(ctx context.Context, w http.ResponseWriter, status int, body any) {
	enc := goahttp.ResponseEncoder(ctx, w)
	w.WriteHeader(status)
	if err := enc.Encode(body); err != nil {
		logging.For("http").Errorf("failed to encode response: %v", err)
	}
}

// encodeError writes err as a MessageBody. An empty msg falls back to the
// AppError message, or the error text for anything else.
func (s *Server) encodeError(ctx context.Context, w http.ResponseWriter, err error, msg string) {
	svcErr := services.ToServiceError(err)
	status := services.StatusCode(err)

	if msg == "" {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			msg = appErr.Message
		} else {
			msg = err.Error()
		}
	}

	entry := logging.For("http").WithField("error_name", svcErr.Name).WithField("error_id", svcErr.ID)
	if status >= http.StatusInternalServerError {
		entry.Errorf("[ERROR] %v", err)
	} else {
		entry.Debugf("request rejected: %v", err)
	}

	w.Header().Set("goa-error", svcErr.Name)
	s.encode(ctx, w, status, MessageBody{Message: msg})
}
