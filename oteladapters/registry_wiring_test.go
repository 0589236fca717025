package oteladapters_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/mock/gomock"

	"github.com/AntonStoeckl/timed-access-loans/loanregistry"
	"github.com/AntonStoeckl/timed-access-loans/loanregistry/mocks"
)

func Test_Registry_ReportsThroughOpenTelemetry(t *testing.T) {
	// arrange
	metrics, reader := newMeterFixture()
	tracing, exporter := newTracingFixture()

	ctrl := gomock.NewController(t)
	payments := mocks.NewMockPaymentAuthority(ctrl)
	payments.EXPECT().ProcessPayment(gomock.Any(), loanregistry.Amount(500), loanregistry.Identity("ST1LIBRARY")).Return(true)
	resources := mocks.NewMockResourceOwnership(ctrl)
	resources.EXPECT().GetOwner(gomock.Any(), loanregistry.ResourceID(1)).Return(loanregistry.Identity("ST1LIBRARY"), true)

	registry, err := loanregistry.NewRegistry(
		"ST1LIBRARY",
		payments,
		resources,
		loanregistry.NewManualClock(0),
		loanregistry.WithMetrics(metrics),
		loanregistry.WithTracing(tracing),
	)
	require.NoError(t, err)
	ctx := context.Background()

	// act
	_, err = registry.StartLoan(ctx, loanregistry.BuildStartLoan("ST1LIBRARY", 1, "ST2BORROWER", 100, bytes.Repeat([]byte("k"), 32), 500))
	require.NoError(t, err)
	_, err = registry.CheckAccess(ctx, loanregistry.BuildCheckAccess("ST2BORROWER", 2, "ST2BORROWER"))
	require.ErrorIs(t, err, loanregistry.ErrLoanNotFound)

	// assert
	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, "loanregistry.StartLoan", spans[0].Name)
	assert.Equal(t, codes.Ok, spans[0].Status.Code)
	assert.Equal(t, "loanregistry.CheckAccess", spans[1].Name)
	assert.Equal(t, codes.Unset, spans[1].Status.Code)

	resourceMetrics := collect(t, reader)
	calls, ok := findMetric(t, resourceMetrics, loanregistry.MetricOperationCalls).Data.(metricdata.Sum[int64])
	require.True(t, ok)
	assert.Len(t, calls.DataPoints, 2, "one data point per command type and status")

	rejections, ok := findMetric(t, resourceMetrics, loanregistry.MetricOperationRejections).Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, rejections.DataPoints, 1)
	code, _ := rejections.DataPoints[0].Attributes.Value(loanregistry.LabelErrorCode)
	assert.Equal(t, "106", code.AsString())

	_, ok = findMetric(t, resourceMetrics, loanregistry.MetricOperationDuration).Data.(metricdata.Histogram[float64])
	assert.True(t, ok)
}
