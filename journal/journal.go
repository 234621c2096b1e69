// Package journal реализует журнал отправок медиатора: каждая отправка
// запроса фиксируется в персистентном хранилище для последующего аудита.
// Запись выполняется в фоне и не влияет на семантику отправки: ни повторов,
// ни очередей живых запросов журнал не вводит.
package journal

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	// StatusSucceeded означает, что запрос был успешно обработан.
	StatusSucceeded = "SUCCEEDED"
	// StatusFailed означает, что обработчик запроса вернул ошибку.
	StatusFailed = "FAILED"
)

// Entry представляет одну отправку запроса, зафиксированную в журнале.
type Entry struct {
	ID          uuid.UUID         // Уникальный идентификатор записи
	RequestType string            // Имя типа запроса
	Payload     []byte            // Сериализованное тело запроса
	Metadata    map[string]string // Метаданные запроса (для трассировки и т.д.)
	Status      string            // Статус (SUCCEEDED или FAILED)
	Error       string            // Текст ошибки обработчика, если она была
	CreatedAt   time.Time         // Время начала обработки
	CompletedAt time.Time         // Время завершения обработки
	Duration    time.Duration     // Длительность обработки
}

// Storage определяет контракт для персистентного хранения записей журнала.
// Все операции должны быть потокобезопасными.
type Storage interface {
	// Save сохраняет запись в хранилище.
	Save(ctx context.Context, entry *Entry) error

	// Fetch извлекает записи с указанным статусом, от новых к старым.
	Fetch(ctx context.Context, status string, limit int) ([]*Entry, error)
}
