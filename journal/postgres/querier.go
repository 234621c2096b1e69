package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier абстрагирует выполнение SQL-запросов, необходимых хранилищу
// журнала. Интерфейсу удовлетворяют как *pgxpool.Pool, так и pgx.Tx,
// поэтому запись можно выполнять и в рамках внешней транзакции.
type Querier interface {
	// Exec выполняет SQL-запрос, который не возвращает строк.
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)

	// Query выполняет SQL-запрос и возвращает результат в виде pgx.Rows.
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}
