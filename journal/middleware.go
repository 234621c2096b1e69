package journal

import (
	"context"
	"encoding/json"
	"time"

	"log/slog"

	"github.com/goccy/go-reflect"
	"github.com/google/uuid"

	"github.com/x-research-team/mediator"
)

// NewMiddleware создает middleware медиатора, которое фиксирует каждую
// отправку запроса в журнале через указанный Recorder.
//
// Middleware не изменяет результат отправки: ошибка сериализации запроса
// логируется, запись сохраняется без тела, а результат обработчика
// возвращается вызывающей стороне как есть.
func NewMiddleware(rec *Recorder) mediator.Middleware {
	return func(next mediator.Invoker) mediator.Invoker {
		return func(ctx context.Context, req any) (any, error) {
			entry := &Entry{
				ID:          uuid.New(),
				RequestType: requestTypeName(req),
				CreatedAt:   time.Now().UTC(),
			}

			if md, ok := req.(mediator.Metadatable); ok {
				entry.Metadata = md.Metadata()
			}

			payload, err := json.Marshal(req)
			if err != nil {
				rec.logger.Warn("не удалось сериализовать запрос для журнала",
					slog.String("request_type", entry.RequestType),
					slog.Any("error", err),
				)
			} else {
				entry.Payload = payload
			}

			startTime := time.Now()
			result, err := next(ctx, req)

			entry.Duration = time.Since(startTime)
			entry.CompletedAt = time.Now().UTC()

			if err != nil {
				entry.Status = StatusFailed
				entry.Error = err.Error()
			} else {
				entry.Status = StatusSucceeded
			}

			rec.Record(entry)

			return result, err
		}
	}
}

// requestTypeName возвращает имя типа запроса с помощью рефлексии.
func requestTypeName(req any) string {
	t := reflect.TypeOf(req)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}
