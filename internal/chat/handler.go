package chat

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/fitassist/internal/apperr"
	"github.com/2beens/fitassist/internal/auth"
	"github.com/2beens/fitassist/internal/middleware"
	"github.com/2beens/fitassist/internal/telemetry/metrics"
	"github.com/2beens/fitassist/internal/telemetry/tracing"
	"github.com/2beens/fitassist/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=chat_test

const MaxAttachmentBytes = 10 << 20

type chatService interface {
	Ask(ctx context.Context, userID int, topic Topic, message string, attachment *Attachment) (*Reply, error)
	Analytics(ctx context.Context, userID int) (*Analytics, error)
}

type AskRequest struct {
	Message string `json:"message"`
}

type Handler struct {
	service chatService
}

func NewHandler(service chatService) *Handler {
	return &Handler{
		service: service,
	}
}

func (handler *Handler) SetupRoutes(
	mainRouter *mux.Router,
	rateLimiter middleware.RequestRateLimiter,
	metricsManager *metrics.Manager,
	allowedPerMin int,
) {
	chatRouter := mainRouter.PathPrefix("/chat").Subrouter()
	chatRouter.HandleFunc("/analytics", handler.HandleAnalytics).Methods("GET", "OPTIONS").Name("chat-analytics")
	chatRouter.HandleFunc("/{topic}", handler.HandleAsk).Methods("POST", "OPTIONS").Name("chat-ask")

	// every question costs an assistant call
	chatRouter.Use(middleware.RateLimit(rateLimiter, "chat", allowedPerMin, metricsManager))
}

// HandleAsk accepts either a JSON body {"message": "..."} or a multipart form with
// a "message" field and an optional "attachment" file (PDF or plain text).
func (handler *Handler) HandleAsk(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.chat.ask")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	topic, err := ParseTopic(mux.Vars(r)["topic"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var (
		message    string
		attachment *Attachment
	)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		message, attachment, err = readMultipart(w, r)
		if err != nil {
			log.Tracef("chat ask, read multipart form: %s", err)
			http.Error(w, "error, bad multipart form", http.StatusBadRequest)
			return
		}
	} else {
		var req AskRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "error, bad request body", http.StatusBadRequest)
			return
		}
		message = req.Message
	}

	reply, err := handler.service.Ask(ctx, userID, topic, message, attachment)
	if err != nil {
		status := apperr.HTTPStatus(err)
		if status >= http.StatusInternalServerError {
			log.Errorf("chat ask for user %d: %s", userID, err)
			http.Error(w, "error, chat failed", status)
			return
		}
		http.Error(w, err.Error(), status)
		return
	}

	pkg.WriteJSON(w, reply, http.StatusOK)
}

func (handler *Handler) HandleAnalytics(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.chat.analytics")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	analytics, err := handler.service.Analytics(ctx, userID)
	if err != nil {
		log.Errorf("chat analytics for user %d: %s", userID, err)
		http.Error(w, "error, get chat analytics failed", apperr.HTTPStatus(err))
		return
	}

	pkg.WriteJSON(w, analytics, http.StatusOK)
}

func readMultipart(w http.ResponseWriter, r *http.Request) (string, *Attachment, error) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxAttachmentBytes+1<<20)
	if err := r.ParseMultipartForm(MaxAttachmentBytes); err != nil {
		return "", nil, err
	}

	message := r.FormValue("message")
	file, header, err := r.FormFile("attachment")
	if err == http.ErrMissingFile {
		return message, nil, nil
	}
	if err != nil {
		return "", nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, MaxAttachmentBytes))
	if err != nil {
		return "", nil, err
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(data)
	}

	return message, &Attachment{
		Name:     header.Filename,
		MimeType: mimeType,
		Data:     data,
	}, nil
}
