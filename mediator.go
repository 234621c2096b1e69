package mediator

import (
	"context"
	"fmt"
	"sync"

	"log/slog"

	"github.com/goccy/go-reflect"
)

// handlerEntry хранит стертый по типу адаптер обработчика вместе с именем
// обработчика для диагностики.
type handlerEntry struct {
	invoke      Invoker
	handlerName string
}

// Mediator представляет собой реестр обработчиков, гетерогенных по своим
// конкретным типам, с ключом по типу запроса. Ровно один обработчик может
// быть зарегистрирован для каждого типа запроса.
//
// Доступ к реестру потокобезопасен: чтение при отправке выполняется под
// разделяемой блокировкой, изменение при регистрации — под эксклюзивной.
// Предполагается, что регистрация выполняется на этапе настройки приложения,
// до начала конкурентных отправок, но пересечение этих фаз также безопасно.
type Mediator struct {
	handlers    map[reflect.Type]*handlerEntry
	middlewares []Middleware
	logger      *slog.Logger
	mu          sync.RWMutex
}

// New создает новый, готовый к использованию экземпляр медиатора.
// Он принимает функциональные опции для конфигурации, например, для
// добавления middleware или установки логгера.
func New(opts ...Option) *Mediator {
	cfg := &config{
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(cfg)
	}

	allMiddlewares := []Middleware{
		NewLoggingMiddleware(cfg.logger),
		NewMetricsMiddleware(cfg.meterProvider),
		NewTracingMiddleware(cfg.tracerProvider, cfg.propagator),
	}
	allMiddlewares = append(allMiddlewares, cfg.middlewares...)

	return &Mediator{
		handlers:    make(map[reflect.Type]*handlerEntry),
		middlewares: allMiddlewares,
		logger:      cfg.logger,
	}
}

// RegisterHandler регистрирует обработчик для конкретного типа запроса Q.
// Функция является потокобезопасной.
//
// Повторная регистрация обработчика для того же типа запроса заменяет
// предыдущий: действует политика "последняя регистрация выигрывает".
// Это осознанное решение, а не ошибка; замена фиксируется в логе.
func RegisterHandler[Q Request[R], R any](m *Mediator, handler RequestHandler[Q, R]) {
	var q Q
	reqType := reflect.TypeOf(q)
	name := handlerName(handler)

	// Адаптер скрывает конкретные типы Q и R за единой сигнатурой вызова.
	// Приведение запроса обязано быть безошибочным: ключ реестра выводится
	// из того же типа, что и утверждение ниже.
	invoke := func(ctx context.Context, req any) (any, error) {
		typed, ok := req.(Q)
		if !ok {
			panic(fmt.Sprintf("несогласованность реестра медиатора: под ключом '%s' получен запрос типа '%T'", reqType, req))
		}
		return handler(ctx, typed)
	}

	wrapped := applyMiddlewares(invoke, m.middlewares...)

	m.mu.Lock()
	defer m.mu.Unlock()

	if prev, exists := m.handlers[reqType]; exists {
		m.logger.Warn("обработчик запроса заменен",
			slog.String("request_type", reqType.String()),
			slog.String("previous_handler", prev.handlerName),
			slog.String("handler_name", name),
		)
	}

	m.handlers[reqType] = &handlerEntry{
		invoke:      wrapped,
		handlerName: name,
	}
}

// Send находит и выполняет обработчик для указанного запроса.
// Функция является потокобезопасной; конкурентные отправки выполняются
// независимо друг от друга.
//
// Если обработчик для типа запроса не зарегистрирован, возвращается
// *HandlerNotFoundError. Ошибка самого обработчика возвращается без
// изменений: медиатор не оборачивает и не подавляет ее.
func Send[Q Request[R], R any](ctx context.Context, m *Mediator, q Q) (R, error) {
	reqType := reflect.TypeOf(q)

	// Поиск в реестре завершается до вызова обработчика: блокировка не
	// удерживается, пока обработчик может быть приостановлен.
	m.mu.RLock()
	entry, exists := m.handlers[reqType]
	m.mu.RUnlock()

	if !exists {
		var zero R
		return zero, &HandlerNotFoundError{RequestType: reqType.String()}
	}

	result, err := entry.invoke(ctx, q)
	if err != nil {
		var zero R
		return zero, err
	}

	if result == nil {
		var zero R
		return zero, nil
	}

	typed, ok := result.(R)
	if !ok {
		panic(fmt.Sprintf("несогласованность реестра медиатора: обработчик '%s' вернул результат типа '%T' вместо ожидаемого для запроса '%s'", entry.handlerName, result, reqType))
	}

	return typed, nil
}

// SendAsync отправляет запрос на выполнение в отдельной горутине и немедленно
// возвращает Future, который будет завершен результатом обработчика.
// Каждый вызов порождает независимое выполнение; очередей и повторов нет.
func SendAsync[Q Request[R], R any](ctx context.Context, m *Mediator, q Q) *Future[R] {
	f := newFuture[R]()
	go func() {
		result, err := Send[Q, R](ctx, m, q)
		f.complete(result, err)
	}()
	return f
}

// Sender — строго типизированное представление медиатора для одной пары
// (запрос, ответ). Оно позволяет отправлять запросы без указания типовых
// аргументов на месте вызова: Go не выводит тип ответа из интерфейса-маркера,
// поэтому пара фиксируется один раз при создании Sender.
type Sender[Q Request[R], R any] struct {
	m *Mediator
}

// SenderFor возвращает типизированное представление указанного медиатора.
func SenderFor[Q Request[R], R any](m *Mediator) Sender[Q, R] {
	return Sender[Q, R]{m: m}
}

// Send отправляет запрос через связанный медиатор.
func (s Sender[Q, R]) Send(ctx context.Context, q Q) (R, error) {
	return Send[Q, R](ctx, s.m, q)
}

// SendAsync отправляет запрос через связанный медиатор, не дожидаясь результата.
func (s Sender[Q, R]) SendAsync(ctx context.Context, q Q) *Future[R] {
	return SendAsync[Q, R](ctx, s.m, q)
}
