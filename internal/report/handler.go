package report

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/fitassist/internal/apperr"
	"github.com/2beens/fitassist/internal/auth"
	"github.com/2beens/fitassist/internal/telemetry/tracing"
	"github.com/2beens/fitassist/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=report_test

type reportService interface {
	Model(ctx context.Context, userID int) (*Model, error)
	Generate(ctx context.Context, userID int) (*Generated, error)
}

type Handler struct {
	service reportService
}

func NewHandler(service reportService) *Handler {
	return &Handler{
		service: service,
	}
}

func (handler *Handler) SetupRoutes(r *mux.Router) {
	r.HandleFunc("/report", handler.HandleGenerate).Methods("POST", "OPTIONS").Name("generate-report")
	r.HandleFunc("/report/model", handler.HandleModel).Methods("GET", "OPTIONS").Name("report-model")
}

// HandleGenerate responds with the stored report info, or with the PDF itself
// when the client accepts application/pdf.
func (handler *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.report.generate")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	generated, err := handler.service.Generate(ctx, userID)
	if err != nil {
		writeError(w, userID, err)
		return
	}

	if strings.Contains(r.Header.Get("Accept"), "application/pdf") {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", generated.Name))
		pkg.WriteResponseBytesOK(w, pkg.ContentType.PDF, generated.Data)
		return
	}

	pkg.WriteJSON(w, generated, http.StatusCreated)
}

func (handler *Handler) HandleModel(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.report.model")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	model, err := handler.service.Model(ctx, userID)
	if err != nil {
		writeError(w, userID, err)
		return
	}

	pkg.WriteJSON(w, model, http.StatusOK)
}

func writeError(w http.ResponseWriter, userID int, err error) {
	status := apperr.HTTPStatus(err)
	switch {
	case status == http.StatusBadGateway:
		log.Errorf("report for user %d: %s", userID, err)
		http.Error(w, "error, could not create the report at the moment, please try again later", status)
	case status >= http.StatusInternalServerError:
		log.Errorf("report for user %d: %s", userID, err)
		http.Error(w, "error, report failed", status)
	default:
		http.Error(w, err.Error(), status)
	}
}
