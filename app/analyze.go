package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/kilianp07/popcast/core/forecast"
	"github.com/kilianp07/popcast/core/model"
	coremon "github.com/kilianp07/popcast/core/monitoring"
	"github.com/kilianp07/popcast/infra/report"
)

// Analysis is the outcome of forecasting every selected country with every
// compared method.
type Analysis struct {
	Indicator model.Indicator
	Results   []forecast.Result
	Failures  []report.Failure
}

type job struct {
	idx int
	req forecast.Request
}

type outcome struct {
	res forecast.Result
	err error
}

// Analyze forecasts the selected countries in a bounded worker pool. Results
// keep the order of countries, then of the compared methods.
func (s *Service) Analyze(ctx context.Context, ds *model.Dataset) (*Analysis, error) {
	fc := s.cfg.Forecast
	ind, err := model.ParseIndicator(fc.Indicator)
	if err != nil {
		return nil, err
	}
	methods := make([]forecast.Method, 0, len(fc.Compare))
	for _, m := range fc.Compare {
		pm, err := forecast.ParseMethod(m)
		if err != nil {
			return nil, err
		}
		methods = append(methods, pm)
	}
	countries := fc.Countries
	if len(countries) == 0 {
		countries = ds.Names()
	}

	var jobs []job
	for _, c := range countries {
		for _, m := range methods {
			jobs = append(jobs, job{idx: len(jobs), req: forecast.Request{
				Country:    c,
				Indicator:  ind,
				Method:     m,
				YearsAhead: fc.YearsAhead,
				Degree:     fc.Degree,
			}})
		}
	}

	out := make([]outcome, len(jobs))
	jobCh := make(chan job, len(jobs))
	var wg sync.WaitGroup
	for range min(fc.Workers, max(len(jobs), 1)) {
		wg.Go(func() {
			for j := range jobCh {
				if err := ctx.Err(); err != nil {
					out[j.idx] = outcome{err: err}
					continue
				}
				out[j.idx] = s.runJob(ds, j)
			}
		})
	}
	for _, j := range jobs {
		jobCh <- j
	}
	close(jobCh)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a := &Analysis{Indicator: ind}
	for i, o := range out {
		if o.err != nil {
			req := jobs[i].req
			a.Failures = append(a.Failures, report.Failure{Country: req.Country, Err: o.err})
			s.log.Warnf("analyze %s %s: %v", req.Country, req.Method, o.err)
			var ff *forecast.ForecastFailure
			if !errors.As(o.err, &ff) && !errors.Is(o.err, ErrUnknownCountry) {
				coremon.CaptureException(o.err, map[string]string{"country": req.Country, "method": string(req.Method)})
			}
			continue
		}
		a.Results = append(a.Results, o.res)
		s.saveForecast(ctx, o.res)
	}
	return a, nil
}

// runJob turns a panic inside one fit into a failure of that job.
func (s *Service) runJob(ds *model.Dataset, j job) (o outcome) {
	defer func() {
		if r := recover(); r != nil {
			coremon.CapturePanic(r)
			o = outcome{err: fmt.Errorf("%s %s: panic: %v", j.req.Country, j.req.Method, r)}
		}
	}()
	res, err := s.forecast(ds, j.req)
	return outcome{res: res, err: err}
}

// ByCountry groups results by country, preserving order.
func (a *Analysis) ByCountry() ([]string, map[string][]forecast.Result) {
	var order []string
	groups := map[string][]forecast.Result{}
	for _, r := range a.Results {
		if _, ok := groups[r.Country]; !ok {
			order = append(order, r.Country)
		}
		groups[r.Country] = append(groups[r.Country], r)
	}
	return order, groups
}
