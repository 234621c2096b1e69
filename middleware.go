package mediator

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"log/slog"

	"github.com/goccy/go-reflect"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const (
	instrumentationName    = "github.com/x-research-team/mediator"
	instrumentationVersion = "0.1.0"
	metricKeyPrefix        = "messaging."
)

// Invoker определяет стертую по типу сигнатуру вызова обработчика.
// Именно через эту сигнатуру реестр медиатора хранит и вызывает обработчики
// гетерогенных конкретных типов.
type Invoker func(ctx context.Context, req any) (any, error)

// Middleware определяет тип функции-декоратора для Invoker.
// Он позволяет добавлять сквозную функциональность (логирование, метрики,
// трассировка) вокруг основной логики обработчика.
type Middleware func(next Invoker) Invoker

// applyMiddlewares применяет цепочку middleware к базовому вызову.
// Middleware применяются в обратном порядке, чтобы обеспечить выполнение FIFO.
func applyMiddlewares(invoke Invoker, middlewares ...Middleware) Invoker {
	h := invoke
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// noopMiddleware возвращает следующий вызов без изменений.
func noopMiddleware(next Invoker) Invoker {
	return next
}

// NewLoggingMiddleware создает новое middleware для логирования отправки запросов.
func NewLoggingMiddleware(logger *slog.Logger) Middleware {
	if logger == nil {
		return noopMiddleware
	}

	return func(next Invoker) Invoker {
		return func(ctx context.Context, req any) (result any, err error) {
			reqType, reqID := requestTypeAndID(req)
			logger.Info("отправка запроса", slog.String("request_type", reqType), slog.String("request_id", reqID))

			startTime := time.Now()
			defer func() {
				duration := time.Since(startTime)
				if err != nil {
					logger.Error("ошибка обработки запроса",
						slog.String("request_type", reqType),
						slog.String("request_id", reqID),
						slog.Any("error", err),
						slog.Duration("duration", duration),
					)
				}
			}()

			return next(ctx, req)
		}
	}
}

// NewMetricsMiddleware создает новое middleware для сбора метрик OpenTelemetry.
func NewMetricsMiddleware(provider metric.MeterProvider) Middleware {
	if provider == nil {
		return noopMiddleware
	}

	meter := provider.Meter(instrumentationName)

	dispatchCounter, err := meter.Int64Counter(
		metricKeyPrefix+"dispatch.count",
		metric.WithDescription("Количество отправленных запросов"),
		metric.WithUnit("{requests}"),
	)
	if err != nil {
		panic(fmt.Sprintf("не удалось создать счетчик dispatch.count: %v", err))
	}

	processDurationHist, err := meter.Float64Histogram(
		metricKeyPrefix+"process.duration",
		metric.WithDescription("Длительность обработки запроса"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		panic(fmt.Sprintf("не удалось создать гистограмму process.duration: %v", err))
	}

	return func(next Invoker) Invoker {
		return func(ctx context.Context, req any) (any, error) {
			startTime := time.Now()
			result, err := next(ctx, req)
			duration := float64(time.Since(startTime).Milliseconds())

			status := "success"
			if err != nil {
				status = "error"
			}
			reqType, _ := requestTypeAndID(req)

			dispatchCounter.Add(ctx, 1, metric.WithAttributes(
				attribute.String("request.type", reqType),
				attribute.String("status", status),
			))

			processDurationHist.Record(ctx, duration, metric.WithAttributes(
				attribute.String("request.type", reqType),
				attribute.String("status", status),
			))

			return result, err
		}
	}
}

// NewTracingMiddleware создает новое middleware для распределенной трассировки OpenTelemetry.
func NewTracingMiddleware(tp trace.TracerProvider, p propagation.TextMapPropagator) Middleware {
	if tp == nil {
		return noopMiddleware
	}

	if p == nil {
		p = propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{})
	}

	tracer := tp.Tracer(
		instrumentationName,
		trace.WithInstrumentationVersion(instrumentationVersion),
	)

	return func(next Invoker) Invoker {
		return func(ctx context.Context, req any) (result any, err error) {
			if md, ok := req.(Metadatable); ok {
				ctx = p.Extract(ctx, propagation.MapCarrier(md.Metadata()))
			}

			reqType, _ := requestTypeAndID(req)
			spanName := fmt.Sprintf("%s process", reqType)

			ctx, span := tracer.Start(ctx, spanName, trace.WithSpanKind(trace.SpanKindInternal))
			defer func() {
				if err != nil {
					span.RecordError(err)
				}
				span.End()
			}()

			return next(ctx, req)
		}
	}
}

// requestTypeAndID извлекает тип и ID запроса с помощью рефлексии.
func requestTypeAndID(req any) (string, string) {
	val := reflect.ValueOf(req)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	reqType := val.Type().Name()
	reqID := "unknown"

	if val.Kind() == reflect.Struct {
		if idField := val.FieldByName("ID"); idField.IsValid() {
			reqID = fmt.Sprintf("%v", idField.Interface())
		}
	}

	return reqType, reqID
}

// handlerName извлекает имя обработчика.
func handlerName(handler any) string {
	v := reflect.ValueOf(handler)
	if v.Kind() == reflect.Func {
		if pc := v.Pointer(); pc != 0 {
			if f := runtime.FuncForPC(pc); f != nil {
				return f.Name()
			}
		}
	}
	return reflect.TypeOf(handler).String()
}
