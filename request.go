// Package mediator реализует паттерн "Медиатор" для внутрипроцессной
// маршрутизации запросов. Пакет позволяет разделить код, отправляющий
// типизированный запрос, и код, который его обрабатывает: отправитель
// передает значение запроса медиатору, а медиатор находит единственный
// зарегистрированный обработчик по типу запроса и возвращает его результат.
package mediator

import "context"

// Request представляет собой интерфейс-маркер для запроса, параметризованный
// типом возвращаемого значения R.
// Каждый тип запроса на уровне типов связан ровно с одним типом ответа.
type Request[R any] interface{}

// RequestHandler определяет строго типизированную функцию-обработчик для
// запроса Q, которая возвращает результат типа R.
// Ошибка обработчика возвращается вызывающей стороне без изменений.
type RequestHandler[Q Request[R], R any] func(ctx context.Context, q Q) (R, error)

// Unit представляет собой пустой тип ответа для запросов, которые не
// возвращают осмысленного результата.
type Unit struct{}

// Metadatable определяет интерфейс для запросов, которые могут нести метаданные.
type Metadatable interface {
	Metadata() map[string]string
}
