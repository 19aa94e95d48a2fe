package fuel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// PanelStatus tells the render layer how to present a panel.
type PanelStatus string

const (
	PanelOK    PanelStatus = "ok"
	PanelInfo  PanelStatus = "info"
	PanelError PanelStatus = "error"
)

// Panel is one independently rendered area of the dashboard.
type Panel struct {
	Status  PanelStatus `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    any         `json:"data,omitempty"`
}

// Dashboard bundles the three panels for one fuel kind.
type Dashboard struct {
	SessionID      string    `json:"sessionId"`
	Kind           Kind      `json:"fuel"`
	GeneratedAt    time.Time `json:"generatedAt"`
	Prices         Panel     `json:"prices"`
	Chart          Panel     `json:"chart"`
	Recommendation Panel     `json:"recommendation"`
}

// Service owns the loaded session and derives the dashboard views from it.
type Service struct {
	store  Store
	source Source
	format PriceFormat
	logger *slog.Logger
}

// NewService creates a new Service.
func NewService(store Store, source Source, format PriceFormat, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:  store,
		source: source,
		format: format,
		logger: logger,
	}
}

// Load fetches the history from the source and publishes it as a new session.
// A failed load is recorded and leaves the previous session, if any, in place.
func (s *Service) Load(ctx context.Context) error {
	if s.source == nil {
		return fmt.Errorf("%w: no source configured", ErrUnreachable)
	}

	start := time.Now()
	history, err := s.source.Load(ctx)
	if err != nil {
		s.store.RecordFailure(err)
		s.logger.Error("loading price history failed",
			"source", s.source.Name(), "error", err)
		return err
	}

	session := s.store.SaveSession(Session{
		ID:       uuid.NewString(),
		LoadedAt: time.Now().UTC(),
		History:  history,
	})
	s.logger.Info("price history loaded",
		"source", s.source.Name(),
		"session", session.ID,
		"snapshots", len(session.History.Snapshots),
		"registry", len(session.History.Registry),
		"took", time.Since(start))
	return nil
}

// Session returns the current session.
func (s *Service) Session() (Session, error) {
	return s.store.Current()
}

// LastLoadError returns the error of the most recent load, or nil if it
// succeeded.
func (s *Service) LastLoadError() error {
	return s.store.LastError()
}

// Prices returns the price board of the current session.
func (s *Service) Prices(kind Kind) (PriceBoard, error) {
	session, err := s.store.Current()
	if err != nil {
		return PriceBoard{}, err
	}
	return CurrentPrices(session.History, kind, s.format)
}

// Series returns the chart series of the current session.
func (s *Service) Series(kind Kind) ([]Series, error) {
	session, err := s.store.Current()
	if err != nil {
		return nil, err
	}
	return TimeSeries(session.History, kind), nil
}

// Recommendation returns the buy/wait advice of the current session.
func (s *Service) Recommendation(kind Kind, now time.Time) (Recommendation, error) {
	session, err := s.store.Current()
	if err != nil {
		return Recommendation{}, err
	}
	return Recommend(session.History, kind, now, s.format), nil
}

// Dashboard renders all panels for kind. A panel without data degrades to an
// informational message without affecting the others.
func (s *Service) Dashboard(kind Kind, now time.Time) (Dashboard, error) {
	session, err := s.store.Current()
	if err != nil {
		return Dashboard{}, err
	}

	d := Dashboard{
		SessionID:   session.ID,
		Kind:        kind,
		GeneratedAt: now,
	}

	board, err := CurrentPrices(session.History, kind, s.format)
	switch {
	case err == nil:
		d.Prices = Panel{Status: PanelOK, Data: board}
	case errors.Is(err, ErrNoData):
		d.Prices = Panel{Status: PanelInfo, Message: "No current price data available."}
	case errors.Is(err, ErrNoDataForSelection):
		d.Prices = Panel{Status: PanelInfo,
			Message: fmt.Sprintf("No open stations with %s prices found.", kind.Label())}
	default:
		s.logger.Warn("building price board failed", "fuel", kind, "error", err)
		d.Prices = Panel{Status: PanelError, Message: "Price data could not be displayed."}
	}

	series := TimeSeries(session.History, kind)
	d.Chart = Panel{Status: PanelOK, Data: series}
	if len(series) == 0 {
		d.Chart.Status = PanelInfo
		d.Chart.Message = "Not enough readings to draw a price trend."
	}

	rec := Recommend(session.History, kind, now, s.format)
	d.Recommendation = Panel{Status: PanelOK, Message: rec.Message, Data: rec}
	if rec.Err() != nil {
		d.Recommendation.Status = PanelInfo
	}

	return d, nil
}
