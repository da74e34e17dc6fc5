package report

import (
	"bytes"
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/fitassist/internal/apperr"
	"github.com/2beens/fitassist/internal/telemetry/metrics"
	"github.com/2beens/fitassist/internal/telemetry/tracing"
)

//go:generate mockgen -source=$GOFILE -destination=service_mocks_test.go -package=report_test

type modelBuilder interface {
	Build(ctx context.Context, userID int) (*Model, error)
}

type Generated struct {
	Name     string `json:"name"`
	Location string `json:"location"`
	Size     int    `json:"size"`
	Data     []byte `json:"-"`
}

type Service struct {
	builder        modelBuilder
	renderer       Renderer
	store          Store
	metricsManager *metrics.Manager
}

func NewService(builder modelBuilder, renderer Renderer, store Store, metricsManager *metrics.Manager) *Service {
	return &Service{
		builder:        builder,
		renderer:       renderer,
		store:          store,
		metricsManager: metricsManager,
	}
}

func (s *Service) Model(ctx context.Context, userID int) (*Model, error) {
	return s.builder.Build(ctx, userID)
}

// Generate assembles, renders and stores the report of a user.
// Rendering and storage failures are collaborator errors.
func (s *Service) Generate(ctx context.Context, userID int) (_ *Generated, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.report.generate")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))

	start := time.Now()
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = "failed"
		}
		s.metricsManager.CounterReportsGenerated.WithLabelValues(outcome).Inc()
		s.metricsManager.HistReportDuration.Observe(time.Since(start).Seconds())
	}()

	model, err := s.builder.Build(ctx, userID)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := s.renderer.Render(model, &buf); err != nil {
		return nil, apperr.Collaborator("render report", err)
	}

	name := FileName(model.UserName, model.GeneratedAt)
	location, err := s.store.Save(ctx, name, buf.Bytes())
	if err != nil {
		return nil, apperr.Collaborator("store report", err)
	}

	log.Debugf("report for user %d stored: %s", userID, location)
	return &Generated{
		Name:     name,
		Location: location,
		Size:     buf.Len(),
		Data:     buf.Bytes(),
	}, nil
}
