package postgres

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serviteca/taller-api/internal/domain"
	"github.com/serviteca/taller-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Querier de prueba: captura el SQL enviado y devuelve filas predefinidas
// ──────────────────────────────────────────────────────────────────────────────

type stubRow struct {
	err  error
	scan func(dest ...any)
}

func (r stubRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if r.scan != nil {
		r.scan(dest...)
	}
	return nil
}

type stubQuerier struct {
	lastSQL string
	row     stubRow
}

func (q *stubQuerier) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	q.lastSQL = sql
	return pgconn.CommandTag{}, nil
}

func (q *stubQuerier) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	q.lastSQL = sql
	return nil, pgx.ErrNoRows
}

func (q *stubQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	q.lastSQL = sql
	return q.row
}

// El insert perdedor de la carrera de creación no debe abortar la transacción
// en curso: el conflicto se resuelve con ON CONFLICT DO NOTHING (el RETURNING
// no produce filas) y se traduce a domain.ErrDuplicate para que el llamador
// relea la fila ganadora dentro de la misma tx. Un INSERT plano generaría un
// 23505 y dejaría la tx en estado abortado (25P02).
func TestStockLedgerInsert_ConflictoNoAbortaTransaccion(t *testing.T) {
	q := &stubQuerier{row: stubRow{err: pgx.ErrNoRows}}
	repo := NewStockLedgerRepository(q)

	err := repo.Insert(context.Background(), &entity.StockLedger{ResourceID: 42})

	assert.ErrorIs(t, err, domain.ErrDuplicate,
		"el conflicto debe traducirse a ErrDuplicate, no a un error interno")
	assert.Contains(t, q.lastSQL, "ON CONFLICT (resource_id) DO NOTHING",
		"el insert debe resolver el duplicado sin abortar la tx")
}

// Camino feliz: el insert asigna el ID generado por la base.
func TestStockLedgerInsert_AsignaID(t *testing.T) {
	q := &stubQuerier{row: stubRow{scan: func(dest ...any) {
		id, ok := dest[0].(*int64)
		require.True(t, ok)
		*id = 7
	}}}
	repo := NewStockLedgerRepository(q)

	ledger := &entity.StockLedger{ResourceID: 42}
	err := repo.Insert(context.Background(), ledger)

	require.NoError(t, err)
	assert.Equal(t, int64(7), ledger.ID)
}
