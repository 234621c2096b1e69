package mediator

import (
	"context"
	"sync"
)

// Future представляет собой результат асинхронной отправки запроса.
// Он завершается ровно один раз; ожидать завершения можно синхронно через
// Wait, через канал Done или через колбэк OnDone.
type Future[R any] struct {
	// ch закрывается после записи результата: закрытие канала упорядочивает
	// запись результата относительно всех последующих чтений.
	ch     chan struct{}
	result R
	err    error
	once   sync.Once
}

// newFuture создает новый незавершенный Future.
func newFuture[R any]() *Future[R] {
	return &Future[R]{
		ch: make(chan struct{}),
	}
}

// complete завершает Future ровно один раз; повторные вызовы игнорируются.
func (f *Future[R]) complete(result R, err error) {
	f.once.Do(func() {
		f.result = result
		f.err = err
		close(f.ch)
	})
}

// Done возвращает канал, который закрывается, когда результат готов.
// Это позволяет встраивать ожидание в select.
func (f *Future[R]) Done() <-chan struct{} {
	return f.ch
}

// Wait блокируется до завершения Future или отмены контекста.
// Если контекст отменен раньше, возвращается ctx.Err(); выполнение самого
// обработчика при этом не прерывается.
func (f *Future[R]) Wait(ctx context.Context) (R, error) {
	select {
	case <-f.ch:
		return f.result, f.err
	case <-ctx.Done():
		var zero R
		return zero, ctx.Err()
	}
}

// OnDone регистрирует колбэк, который будет асинхронно вызван после
// завершения Future. Если Future уже завершен, колбэк выполняется немедленно
// в отдельной горутине.
func (f *Future[R]) OnDone(cb func(result R, err error)) {
	go func() {
		<-f.ch
		cb(f.result, f.err)
	}()
}
