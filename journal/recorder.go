package journal

import (
	"context"
	"sync"

	"log/slog"
)

// RecorderOption определяет функцию для конфигурации Recorder.
type RecorderOption func(*Recorder)

// WithWorkers устанавливает количество воркеров, пишущих в хранилище.
func WithWorkers(workers int) RecorderOption {
	return func(r *Recorder) {
		if workers > 0 {
			r.workers = workers
		}
	}
}

// WithQueueSize устанавливает размер очереди записей, ожидающих сохранения.
func WithQueueSize(size int) RecorderOption {
	return func(r *Recorder) {
		if size > 0 {
			r.queueSize = size
		}
	}
}

// WithLogger устанавливает логгер.
func WithLogger(logger *slog.Logger) RecorderOption {
	return func(r *Recorder) {
		r.logger = logger
	}
}

// Recorder - это фоновый писатель журнала. Записи ставятся в очередь и
// сохраняются пулом воркеров, поэтому отправка запроса не ждет хранилище.
// Ошибки сохранения логируются и никогда не попадают в результат отправки.
type Recorder struct {
	storage   Storage
	entries   chan *Entry
	wg        sync.WaitGroup
	closeOnce sync.Once

	// mu упорядочивает отправку в канал относительно его закрытия:
	// Record пишет под разделяемой блокировкой, Shutdown закрывает канал
	// под эксклюзивной, поэтому запись в закрытый канал невозможна.
	mu     sync.RWMutex
	closed bool

	workers   int
	queueSize int
	logger    *slog.Logger
}

// NewRecorder создает новый Recorder и запускает его воркеров.
func NewRecorder(storage Storage, opts ...RecorderOption) *Recorder {
	r := &Recorder{
		storage:   storage,
		workers:   1,              // Значение по умолчанию
		queueSize: 100,            // Значение по умолчанию
		logger:    slog.Default(), // Логгер по умолчанию
	}

	for _, opt := range opts {
		opt(r)
	}

	r.entries = make(chan *Entry, r.queueSize)

	for i := 0; i < r.workers; i++ {
		r.wg.Add(1)
		go r.worker()
	}

	return r
}

// Record ставит запись в очередь на сохранение.
// Вызов блокируется, только если очередь заполнена.
// После Shutdown новые записи отбрасываются.
func (r *Recorder) Record(entry *Entry) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return
	}
	r.entries <- entry
}

// worker - это основная функция горутины-воркера.
func (r *Recorder) worker() {
	defer r.wg.Done()
	for entry := range r.entries {
		if err := r.storage.Save(context.Background(), entry); err != nil {
			r.logger.Error("ошибка сохранения записи журнала",
				slog.String("entry_id", entry.ID.String()),
				slog.String("request_type", entry.RequestType),
				slog.Any("error", err),
			)
		}
	}
}

// Shutdown корректно завершает работу Recorder: новые записи не принимаются,
// уже поставленные в очередь записи дописываются. Если контекст отменяется
// раньше, чем очередь будет исчерпана, возвращается ctx.Err().
func (r *Recorder) Shutdown(ctx context.Context) error {
	r.closeOnce.Do(func() {
		r.mu.Lock()
		r.closed = true
		close(r.entries)
		r.mu.Unlock()
	})

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
