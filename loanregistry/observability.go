package loanregistry

import (
	"context"
	"math"
	"strconv"
	"time"

	"github.com/AntonStoeckl/timed-access-loans/observability"
)

// The registry reports through the shared observability contracts.
type (
	Logger                     = observability.Logger
	ContextualLogger           = observability.ContextualLogger
	MetricsCollector           = observability.MetricsCollector
	ContextualMetricsCollector = observability.ContextualMetricsCollector
	TracingCollector           = observability.TracingCollector
	SpanContext                = observability.SpanContext
)

const (
	MetricOperationDuration   = "loanregistry_operation_duration_seconds"
	MetricOperationCalls      = "loanregistry_operation_calls_total"
	MetricOperationRejections = "loanregistry_operation_rejections_total"
	MetricActiveLoans         = "loanregistry_active_loans"
)

const (
	StatusSuccess  = "success"
	StatusRejected = "rejected"
	StatusError    = "error"
)

const (
	LabelCommandType = "command_type"
	LabelStatus      = "status"
	LabelErrorCode   = "error_code"
)

const (
	spanNamePrefix = "loanregistry."

	spanAttrCommandType = "command.type"
	spanAttrCaller      = "command.caller"
	spanAttrLoanKey     = "loan.key"
	spanAttrHeight      = "registry.height"
	spanAttrEventType   = "event.type"
	spanAttrErrorCode   = "error.code"
	spanAttrDurationMS  = "duration_ms"
)

const (
	logMsgCommandStarted   = "loanregistry: command started"
	logMsgCommandSucceeded = "loanregistry: command succeeded"
	logMsgCommandRejected  = "loanregistry: command rejected"
	logMsgRecordingFailed  = "loanregistry: recording event failed"

	logAttrCommandType = "command_type"
	logAttrCaller      = "caller"
	logAttrLoanKey     = "loan_key"
	logAttrHeight      = "height"
	logAttrEventType   = "event_type"
	logAttrErrorCode   = "error_code"
	logAttrError       = "error"
	logAttrDurationMS  = "duration_ms"
)

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}

// commandObserver bundles logging, metrics and tracing for one command execution.
type commandObserver struct {
	r       *Registry
	ctx     context.Context
	span    SpanContext
	command Command
	attrs   []any
	started time.Time
}

func (r *Registry) startObserving(ctx context.Context, command Command) (*commandObserver, context.Context) {
	o := &commandObserver{
		r:       r,
		command: command,
		started: time.Now(),
		attrs:   []any{logAttrCommandType, command.CommandType(), logAttrCaller, string(command.CallerIdentity())},
	}

	spanAttrs := map[string]string{
		spanAttrCommandType: command.CommandType(),
		spanAttrCaller:      string(command.CallerIdentity()),
	}

	if keyed, ok := command.(keyedCommand); ok {
		o.attrs = append(o.attrs, logAttrLoanKey, keyed.LoanKey().String())
		spanAttrs[spanAttrLoanKey] = keyed.LoanKey().String()
	}

	if r.tracingCollector != nil {
		ctx, o.span = r.tracingCollector.StartSpan(ctx, spanNamePrefix+command.CommandType(), spanAttrs)
	}

	o.ctx = ctx
	o.debug(logMsgCommandStarted)

	return o, ctx
}

func (o *commandObserver) atHeight(height Height) {
	o.attrs = append(o.attrs, logAttrHeight, height)
	if o.span != nil {
		o.span.AddAttribute(spanAttrHeight, strconv.FormatInt(height, 10))
	}
}

func (o *commandObserver) succeeded(event DomainEvent) {
	duration := time.Since(o.started)
	args := append(o.withDuration(duration), logAttrEventType, eventTypeOf(event))
	o.info(logMsgCommandSucceeded, args...)

	o.recordCall(StatusSuccess, duration)
	o.finishSpan(StatusSuccess, duration, map[string]string{spanAttrEventType: eventTypeOf(event)})
}

func (o *commandObserver) rejected(err error) {
	duration := time.Since(o.started)
	code := errorCodeLabel(err)
	args := append(o.withDuration(duration), logAttrErrorCode, code, logAttrError, err.Error())
	o.info(logMsgCommandRejected, args...)

	o.recordCall(StatusRejected, duration)
	o.incrementCounter(MetricOperationRejections, map[string]string{
		LabelCommandType: o.command.CommandType(),
		LabelErrorCode:   code,
	})
	o.finishSpan(StatusRejected, duration, map[string]string{spanAttrErrorCode: code})
}

func (o *commandObserver) failed(err error) {
	duration := time.Since(o.started)
	args := append(o.withDuration(duration), logAttrError, err.Error())
	o.error(logMsgRecordingFailed, args...)

	o.recordCall(StatusError, duration)
	o.finishSpan(StatusError, duration, nil)
}

func (o *commandObserver) withDuration(duration time.Duration) []any {
	args := make([]any, 0, len(o.attrs)+2)
	args = append(args, o.attrs...)

	return append(args, logAttrDurationMS, toMilliseconds(duration))
}

func (o *commandObserver) recordCall(status string, duration time.Duration) {
	if o.r.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		LabelCommandType: o.command.CommandType(),
		LabelStatus:      status,
	}

	if contextual, ok := o.r.metricsCollector.(ContextualMetricsCollector); ok {
		contextual.RecordDurationContext(o.ctx, MetricOperationDuration, duration, labels)
		contextual.IncrementCounterContext(o.ctx, MetricOperationCalls, labels)
		contextual.RecordValueContext(o.ctx, MetricActiveLoans, float64(o.r.state.ActiveLoanCount()), nil)

		return
	}

	o.r.metricsCollector.RecordDuration(MetricOperationDuration, duration, labels)
	o.r.metricsCollector.IncrementCounter(MetricOperationCalls, labels)
	o.r.metricsCollector.RecordValue(MetricActiveLoans, float64(o.r.state.ActiveLoanCount()), nil)
}

func (o *commandObserver) incrementCounter(metric string, labels map[string]string) {
	if o.r.metricsCollector == nil {
		return
	}

	if contextual, ok := o.r.metricsCollector.(ContextualMetricsCollector); ok {
		contextual.IncrementCounterContext(o.ctx, metric, labels)
		return
	}

	o.r.metricsCollector.IncrementCounter(metric, labels)
}

func (o *commandObserver) finishSpan(status string, duration time.Duration, attrs map[string]string) {
	if o.r.tracingCollector == nil || o.span == nil {
		return
	}

	o.span.AddAttribute(spanAttrDurationMS, strconv.FormatFloat(toMilliseconds(duration), 'f', 2, 64))
	o.r.tracingCollector.FinishSpan(o.span, status, attrs)
}

func (o *commandObserver) debug(msg string, args ...any) {
	args = append(append([]any{}, o.attrs...), args...)

	switch {
	case o.r.contextualLogger != nil:
		o.r.contextualLogger.DebugContext(o.ctx, msg, args...)
	case o.r.logger != nil:
		o.r.logger.Debug(msg, args...)
	}
}

func (o *commandObserver) info(msg string, args ...any) {
	switch {
	case o.r.contextualLogger != nil:
		o.r.contextualLogger.InfoContext(o.ctx, msg, args...)
	case o.r.logger != nil:
		o.r.logger.Info(msg, args...)
	}
}

func (o *commandObserver) error(msg string, args ...any) {
	switch {
	case o.r.contextualLogger != nil:
		o.r.contextualLogger.ErrorContext(o.ctx, msg, args...)
	case o.r.logger != nil:
		o.r.logger.Error(msg, args...)
	}
}

func errorCodeLabel(err error) string {
	code, ok := CodeOf(err)
	if !ok {
		return "none"
	}

	return strconv.FormatUint(uint64(code), 10)
}

func eventTypeOf(event DomainEvent) string {
	if event == nil {
		return "none"
	}

	return event.IsEventType()
}
