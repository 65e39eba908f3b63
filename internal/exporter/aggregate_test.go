package exporter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ogdrb/ogdrb/internal/codeplug"
	"github.com/ogdrb/ogdrb/internal/errors"
	"github.com/ogdrb/ogdrb/internal/geo"
	"github.com/ogdrb/ogdrb/internal/repeaterbook"
)

// verifyNoLeaks fails the test if goroutines leak past the known background
// writers (the rotating log writer).
func verifyNoLeaks(t *testing.T) {
	t.Helper()
	goleak.VerifyNone(t,
		goleak.IgnoreTopFunction("gopkg.in/natefinch/lumberjack%2ev2.(*Logger).millRun"),
	)
}

// sourceFunc adapts a function to RepeaterSource.
type sourceFunc func(ctx context.Context, area geo.SearchArea, filter repeaterbook.ExportFilter) ([]repeaterbook.Repeater, error)

func (f sourceFunc) QueryArea(ctx context.Context, area geo.SearchArea, filter repeaterbook.ExportFilter) ([]repeaterbook.Repeater, error) {
	return f(ctx, area, filter)
}

func TestAggregatePreservesZoneOrder(t *testing.T) {
	defer verifyNoLeaks(t)

	areaA, areaB := area(-23.2236, -45.9195), area(-23.3, -45.0)
	src := &fakeSource{records: map[geo.Coordinate][]repeaterbook.Repeater{
		areaA.Center: {analogRepeater(1, "PY2AAA", "Sao Jose")},
		areaB.Center: {analogRepeater(2, "PY2BBB", "Taubate")},
	}}

	p := New(src, codeplug.DefaultLimits())
	got, err := p.Aggregate(context.Background(), []ZoneRequest{
		{Name: "second-alphabetically", Area: areaB},
		{Name: "first-alphabetically", Area: areaA},
	}, testFilter(t))
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, "second-alphabetically", got[0].Name)
	assert.Equal(t, 2, got[0].Repeaters[0].RepeaterID)
	assert.Equal(t, "first-alphabetically", got[1].Name)
	assert.Equal(t, 1, got[1].Repeaters[0].RepeaterID)
}

func TestAggregateFailureFailsWholeRequest(t *testing.T) {
	defer verifyNoLeaks(t)

	areaA, areaB := area(-23.2236, -45.9195), area(-23.3, -45.0)
	src := &fakeSource{
		records: map[geo.Coordinate][]repeaterbook.Repeater{
			areaA.Center: {analogRepeater(1, "PY2AAA", "Sao Jose")},
		},
		errors: map[geo.Coordinate]error{
			areaB.Center: errors.NewStd("connection refused"),
		},
	}

	p := New(src, codeplug.DefaultLimits())
	got, err := p.Aggregate(context.Background(), []ZoneRequest{
		{Name: "good", Area: areaA},
		{Name: "bad", Area: areaB},
	}, testFilter(t))

	// No silent partials: the healthy zone's result is discarded too.
	require.Error(t, err)
	assert.Nil(t, got)
	assert.True(t, errors.IsCategory(err, errors.CategoryDirectory))
	assert.Contains(t, err.Error(), `zone "bad"`)
}

func TestAggregateFailureCancelsInFlightQueries(t *testing.T) {
	defer verifyNoLeaks(t)

	areaA, areaB := area(-23.2236, -45.9195), area(-23.3, -45.0)
	failing := errors.NewStd("boom")

	src := sourceFunc(func(ctx context.Context, a geo.SearchArea, _ repeaterbook.ExportFilter) ([]repeaterbook.Repeater, error) {
		if a.Center == areaB.Center {
			return nil, failing
		}
		// Block until the group cancels us.
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(10 * time.Second):
			t.Error("query was not cancelled after sibling failure")
			return nil, nil
		}
	})

	p := New(src, codeplug.DefaultLimits())
	_, err := p.Aggregate(context.Background(), []ZoneRequest{
		{Name: "slow", Area: areaA},
		{Name: "failing", Area: areaB},
	}, testFilter(t))
	require.Error(t, err)
}

func TestQueryZoneInvalidArea(t *testing.T) {
	p := New(&fakeSource{}, codeplug.DefaultLimits())

	bad := area(-23.2236, -45.9195)
	bad.Radius = 0
	_, err := p.queryZone(context.Background(), bad, testFilter(t))
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryValidation))
}

func TestQueryZoneWrapsSourceFailureAsDirectory(t *testing.T) {
	src := sourceFunc(func(context.Context, geo.SearchArea, repeaterbook.ExportFilter) ([]repeaterbook.Repeater, error) {
		return nil, errors.NewStd("disk i/o error")
	})
	p := New(src, codeplug.DefaultLimits())

	_, err := p.queryZone(context.Background(), area(-23.2236, -45.9195), testFilter(t))
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryDirectory))
}
