package mediator_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/x-research-team/mediator"
)

// Тест успешной асинхронной отправки запроса.
func TestSendAsync_Success(t *testing.T) {
	t.Parallel()

	m := mediator.New()
	mediator.RegisterHandler(m, func(ctx context.Context, _ Ping) (string, error) {
		return "pong!", nil
	})

	future := mediator.SendAsync[Ping, string](context.Background(), m, Ping{})

	result, err := future.Wait(context.Background())
	require.NoError(t, err, "Асинхронное выполнение запроса не должно вызывать ошибку")
	assert.Equal(t, "pong!", result)
}

// Тест того, что Future передает ошибку обработчика без изменений.
func TestSendAsync_HandlerError(t *testing.T) {
	t.Parallel()

	m := mediator.New()

	handlerErr := errors.New("внутренняя ошибка")
	mediator.RegisterHandler(m, func(ctx context.Context, _ Ping) (string, error) {
		return "", handlerErr
	})

	future := mediator.SendAsync[Ping, string](context.Background(), m, Ping{})

	_, err := future.Wait(context.Background())
	require.Error(t, err)
	assert.Same(t, handlerErr, err, "Future должен передавать ошибку обработчика без изменений")
}

// Тест отмены ожидания результата по контексту.
func TestFuture_Wait_ContextCancelled(t *testing.T) {
	t.Parallel()

	m := mediator.New()

	started := make(chan struct{})
	release := make(chan struct{})
	mediator.RegisterHandler(m, func(ctx context.Context, _ Ping) (string, error) {
		close(started)
		<-release
		return "pong!", nil
	})

	future := mediator.SendAsync[Ping, string](context.Background(), m, Ping{})
	<-started

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := future.Wait(ctx)
	require.ErrorIs(t, err, context.Canceled, "Ожидание должно завершаться ошибкой отмененного контекста")

	// Обработчик при этом не прерывается и завершает Future штатно.
	close(release)
	result, err := future.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "pong!", result)
}

// Тест сигнального канала Done.
func TestFuture_Done(t *testing.T) {
	t.Parallel()

	m := mediator.New()
	mediator.RegisterHandler(m, func(ctx context.Context, _ Ping) (string, error) {
		return "pong!", nil
	})

	future := mediator.SendAsync[Ping, string](context.Background(), m, Ping{})

	select {
	case <-future.Done():
	case <-time.After(time.Second):
		t.Fatal("Future не завершился за отведенное время")
	}

	result, err := future.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "pong!", result)
}

// Тест асинхронного колбэка OnDone.
func TestFuture_OnDone(t *testing.T) {
	t.Parallel()

	m := mediator.New()
	mediator.RegisterHandler(m, func(ctx context.Context, q Sum) (int, error) {
		return q.A + q.B, nil
	})

	future := mediator.SendAsync[Sum, int](context.Background(), m, Sum{A: 2, B: 2})

	var wg sync.WaitGroup
	wg.Add(1)

	var got int
	future.OnDone(func(result int, err error) {
		require.NoError(t, err)
		got = result
		wg.Done()
	})

	wg.Wait()
	assert.Equal(t, 4, got, "Колбэк должен получить результат обработчика")
}
