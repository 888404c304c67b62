package session

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/cwbudde/algo-relax/relax/arrhenius"
	"github.com/cwbudde/algo-relax/relax/decay"
)

const meterName = "github.com/cwbudde/algo-relax/relax/session"

type instruments struct {
	decayFits     metric.Int64Counter
	decayFailures metric.Int64Counter
	iterations    metric.Int64Histogram
	arrheniusFits metric.Int64Counter
	session       attribute.KeyValue
	attrs         metric.MeasurementOption
}

func newInstruments(mp metric.MeterProvider, sessionID string) (*instruments, error) {
	if mp == nil {
		mp = noop.NewMeterProvider()
	}

	meter := mp.Meter(meterName)
	session := attribute.String("session.id", sessionID)
	ins := &instruments{
		session: session,
		attrs:   metric.WithAttributes(session),
	}

	var err error

	ins.decayFits, err = meter.Int64Counter(
		"relax.decay.fits",
		metric.WithDescription("Decay curves fitted"),
		metric.WithUnit("{fit}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating decay fit counter: %w", err)
	}

	ins.decayFailures, err = meter.Int64Counter(
		"relax.decay.failures",
		metric.WithDescription("Decay curves that produced no valid estimate"),
		metric.WithUnit("{fit}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating decay failure counter: %w", err)
	}

	ins.iterations, err = meter.Int64Histogram(
		"relax.decay.iterations",
		metric.WithDescription("Solver iterations per decay fit"),
		metric.WithUnit("{iteration}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating iteration histogram: %w", err)
	}

	ins.arrheniusFits, err = meter.Int64Counter(
		"relax.arrhenius.fits",
		metric.WithDescription("Arrhenius fits performed"),
		metric.WithUnit("{fit}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating arrhenius fit counter: %w", err)
	}

	return ins, nil
}

func (ins *instruments) recordDecay(ctx context.Context, results []decay.Result) {
	for _, r := range results {
		ins.decayFits.Add(ctx, 1, ins.attrs)
		if !r.Valid() {
			ins.decayFailures.Add(ctx, 1, ins.attrs)
		}
		ins.iterations.Record(ctx, int64(r.Iterations), ins.attrs)
	}
}

func (ins *instruments) recordArrhenius(ctx context.Context, res arrhenius.Result) {
	ins.arrheniusFits.Add(ctx, 1,
		metric.WithAttributes(ins.session, attribute.Bool("converged", res.Converged)))
}
