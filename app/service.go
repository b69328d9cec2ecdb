// Package app wires configuration, data loading, forecasting and outputs
// into the operations exposed by the CLI.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kilianp07/popcast/config"
	"github.com/kilianp07/popcast/core/capability"
	"github.com/kilianp07/popcast/core/density"
	"github.com/kilianp07/popcast/core/forecast"
	coremetrics "github.com/kilianp07/popcast/core/metrics"
	"github.com/kilianp07/popcast/core/model"
	coremon "github.com/kilianp07/popcast/core/monitoring"
	"github.com/kilianp07/popcast/core/region"
	"github.com/kilianp07/popcast/core/scenario"
	"github.com/kilianp07/popcast/infra/ingest"
	"github.com/kilianp07/popcast/infra/logger"
	_ "github.com/kilianp07/popcast/infra/metrics"
	"github.com/kilianp07/popcast/infra/monitoring"
	"github.com/kilianp07/popcast/infra/store"
)

// ErrNoData is returned when a command needs data.path and none is set.
var ErrNoData = errors.New("no input data: set data.path or pass --data")

// ErrUnknownCountry is returned for a country absent from the dataset.
var ErrUnknownCountry = errors.New("unknown country")

// Service holds everything shared by one CLI invocation.
type Service struct {
	cfg        *config.Config
	log        logger.Logger
	sink       coremetrics.MetricsSink
	caps       capability.Set
	reasons    map[capability.Name]string
	regions    *region.Lookup
	dispatcher *forecast.Dispatcher
	trainer    *density.Trainer
	store      *store.SQLiteStore
	run        store.Run
}

// New detects capabilities once and builds the metrics sink, the monitor
// and the optional run store from cfg.
func New(cfg *config.Config) (*Service, error) {
	logger.SetLevel(cfg.Logging.Level)
	logg := logger.New("service")

	mon, err := monitoring.NewSentryMonitor(cfg.Monitoring)
	if err != nil {
		return nil, fmt.Errorf("monitoring: %w", err)
	}
	coremon.Init(mon)

	caps, reasons, err := DetectCapabilities(cfg)
	if err != nil {
		return nil, fmt.Errorf("capabilities: %w", err)
	}
	logg.Infof("capabilities: %s", caps)

	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}

	svc := &Service{
		cfg:        cfg,
		log:        logg,
		sink:       sink,
		caps:       caps,
		reasons:    reasons,
		regions:    region.New(cfg.Regions),
		dispatcher: forecast.NewDispatcher(cfg.Forecast.Options(), logger.New("forecast"), sink),
		trainer:    density.NewTrainer(logger.New("density"), sink),
	}
	if cfg.Output.Store != "" {
		st, err := store.NewSQLiteStore(cfg.Output.Store)
		if err != nil {
			return nil, fmt.Errorf("run store: %w", err)
		}
		svc.store = st
	}
	return svc, nil
}

// Config returns the effective configuration.
func (s *Service) Config() *config.Config { return s.cfg }

// Capabilities returns the flags detected at startup and their explanations.
func (s *Service) Capabilities() (capability.Set, map[capability.Name]string) {
	return s.caps, s.reasons
}

// Begin records a run in the store, when one is configured.
func (s *Service) Begin(ctx context.Context, command string) error {
	if s.store == nil {
		return nil
	}
	run, err := s.store.BeginRun(ctx, command, s.cfg.Data.Path)
	if err != nil {
		return err
	}
	s.run = run
	s.log.Infof("run %s started", run.ID)
	return nil
}

// RunID is the ID of the stored run, empty without a store.
func (s *Service) RunID() string { return s.run.ID }

// Load reads and cleans the configured input table.
func (s *Service) Load() (*model.Dataset, error) {
	if s.cfg.Data.Path == "" {
		return nil, ErrNoData
	}
	opts := ingest.Options{
		MinYear:        s.cfg.Data.MinYear,
		MaxSkipRatio:   s.cfg.Data.MaxSkipRatio,
		KeepAggregates: s.cfg.Data.KeepAggregates,
		Regions:        s.regions,
		Logger:         logger.New("ingest"),
	}
	ds, err := ingest.Load(s.cfg.Data.Path, opts)
	if err != nil {
		return nil, fmt.Errorf("load data: %w", err)
	}
	if rec, ok := s.sink.(coremetrics.IngestRecorder); ok {
		ev := coremetrics.IngestEvent{
			Source:    s.cfg.Data.Path,
			Rows:      ds.Report.Rows,
			Skipped:   ds.Report.Skipped,
			Countries: len(ds.Countries),
			Time:      time.Now(),
		}
		if err := rec.RecordIngest(ev); err != nil {
			s.log.Errorf("record ingest: %v", err)
		}
	}
	return ds, nil
}

// Series returns one indicator series of a country.
func (s *Service) Series(ds *model.Dataset, country string, ind model.Indicator) (model.TimeSeries, error) {
	rec, ok := ds.Country(country)
	if !ok {
		return model.TimeSeries{}, fmt.Errorf("%w: %s", ErrUnknownCountry, country)
	}
	return rec.Series(ind), nil
}

// Forecast runs one request against the dataset and stores the result.
func (s *Service) Forecast(ctx context.Context, ds *model.Dataset, req forecast.Request) (forecast.Result, error) {
	res, err := s.forecast(ds, req)
	if err != nil {
		return res, err
	}
	s.saveForecast(ctx, res)
	return res, nil
}

func (s *Service) forecast(ds *model.Dataset, req forecast.Request) (forecast.Result, error) {
	series, err := s.Series(ds, req.Country, req.Indicator)
	if err != nil {
		return forecast.Result{Country: req.Country, Requested: req.Method}, err
	}
	return s.dispatcher.Forecast(req, series, s.caps)
}

func (s *Service) saveForecast(ctx context.Context, res forecast.Result) {
	if s.store == nil || s.run.ID == "" {
		return
	}
	if err := s.store.SaveForecast(ctx, s.run.ID, res); err != nil {
		s.log.Errorf("store forecast %s: %v", res.Country, err)
	}
}

// ScenarioResult holds the projections of one country.
type ScenarioResult struct {
	Country     string               `json:"country"`
	StartYear   int                  `json:"start_year"`
	Start       float64              `json:"start"`
	BaseGrowth  float64              `json:"base_growth"`
	Projections scenario.Projections `json:"projections"`
}

// Scenario projects the configured scenarios from the last population value
// of country. A nil base uses the trailing compound growth of the series.
func (s *Service) Scenario(ds *model.Dataset, country string, base *float64) (*ScenarioResult, error) {
	series, err := s.Series(ds, country, model.IndicatorPopulation)
	if err != nil {
		return nil, err
	}
	last, ok := series.Valid().Last()
	if !ok {
		return nil, fmt.Errorf("%s: %w", country, forecast.ErrInsufficientData)
	}
	scs, err := s.cfg.Scenarios.Resolve()
	if err != nil {
		return nil, fmt.Errorf("scenarios: %w", err)
	}
	g := 0.0
	if base != nil {
		g = *base
	} else if g, err = scenario.BaseGrowth(series, s.cfg.Scenarios.Window); err != nil {
		return nil, fmt.Errorf("%s: %w", country, err)
	}
	return &ScenarioResult{
		Country:     country,
		StartYear:   last.Year,
		Start:       last.Value,
		BaseGrowth:  g,
		Projections: scenario.Project(last.Value, g, scs, s.cfg.Scenarios.Years),
	}, nil
}

// Train fits the configured density model across countries.
func (s *Service) Train(ctx context.Context, ds *model.Dataset) (*density.ModelResult, error) {
	m, err := forecast.ParseMethod(s.cfg.Model.Method)
	if err != nil {
		return nil, err
	}
	data := density.BuildDataset(ds, s.cfg.Model.Years)
	res, err := s.trainer.Train(data, m, s.cfg.Model.Params, s.caps)
	if err != nil {
		return nil, fmt.Errorf("train %s: %w", m, err)
	}
	if s.store != nil && s.run.ID != "" {
		if err := s.store.SaveModel(ctx, s.run.ID, res); err != nil {
			s.log.Errorf("store model: %v", err)
		}
	}
	return res, nil
}

// Close flushes metrics and monitoring and closes the store.
func (s *Service) Close() error {
	var errs []error
	if c, ok := s.sink.(coremetrics.Closer); ok {
		errs = append(errs, c.Close())
	}
	if s.store != nil {
		errs = append(errs, s.store.Close())
	}
	coremon.Flush(2 * time.Second)
	return errors.Join(errs...)
}
