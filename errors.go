package mediator

import "fmt"

// HandlerNotFoundError возвращается функцией Send, когда в реестре медиатора
// нет обработчика для типа отправленного запроса. Ошибка восстановима для
// вызывающей стороны и несет имя типа запроса для диагностики.
type HandlerNotFoundError struct {
	// RequestType содержит имя типа запроса, для которого не нашлось обработчика.
	RequestType string
}

// Error реализует интерфейс error.
func (e *HandlerNotFoundError) Error() string {
	return fmt.Sprintf("обработчик для запроса '%s' не зарегистрирован", e.RequestType)
}
