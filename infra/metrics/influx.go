package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/popcast/core/metrics"
	"github.com/kilianp07/popcast/infra/logger"
)

// InfluxSink writes forecasts and model results to InfluxDB. Each forecast
// point is stored at January 1st of its year.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a sink for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback pings the instance and returns a NopSink when the
// health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

func yearTime(y int) time.Time { return time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC) }

// RecordForecast writes one population_forecast point per predicted year.
func (s *InfluxSink) RecordForecast(ev coremetrics.ForecastEvent) error {
	if len(ev.Points) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	pts := make([]*write.Point, 0, len(ev.Points))
	for _, p := range ev.Points {
		pts = append(pts, write.NewPointWithMeasurement("population_forecast").
			AddTag("country", ev.Country).
			AddTag("indicator", ev.Indicator).
			AddTag("method", ev.Used).
			AddTag("requested", ev.Requested).
			AddTag("fallback", strconv.FormatBool(ev.Fallback)).
			AddField("value", round3(p.Value)).
			SetTime(yearTime(p.Year)))
	}
	return s.writeAPI.WritePoint(ctx, pts...)
}

// RecordFallback writes a forecast_fallback event.
func (s *InfluxSink) RecordFallback(ev coremetrics.FallbackEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("forecast_fallback").
		AddTag("from", ev.From).
		AddTag("to", ev.To)
	if ev.Country != "" {
		p = p.AddTag("country", ev.Country)
	}
	p = p.AddField("reason", ev.Reason).SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordModel writes the test scores of a density model.
func (s *InfluxSink) RecordModel(ev coremetrics.ModelEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("density_model").
		AddTag("requested", ev.Requested).
		AddTag("method", ev.Used).
		AddField("rows", ev.Rows).
		AddField("mae", round3(ev.MAE)).
		AddField("rmse", round3(ev.RMSE)).
		AddField("r2", round3(ev.R2)).
		AddField("duration_ms", round3(ev.Duration.Seconds()*1000)).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the client.
func (s *InfluxSink) Close() error {
	s.client.Close()
	return nil
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
