// Package testutil provee repositorios en memoria y un runner de transacciones
// simulado para los tests de los casos de uso. El runner toma una instantánea
// del estado antes de cada función y la restaura si esta devuelve error, para
// reproducir la semántica de rollback de una transacción real.
package testutil

import (
	"context"
	"strconv"
	"strings"

	"github.com/serviteca/taller-api/internal/domain"
	"github.com/serviteca/taller-api/internal/domain/entity"
	"github.com/serviteca/taller-api/internal/domain/repository"
)

// Store agrupa todas las tablas en memoria.
type Store struct {
	Ledgers *LedgerRepo
	TxLog   *TxLogRepo
	Imports *ImportRepo
	Exports *ExportRepo
	Tasks   *TaskRepo
	History *HistoryRepo
}

// NewStore crea un Store vacío.
func NewStore() *Store {
	return &Store{
		Ledgers: &LedgerRepo{rows: map[int64]entity.StockLedger{}},
		TxLog:   &TxLogRepo{},
		Imports: &ImportRepo{rows: map[int64]entity.ImportRequest{}},
		Exports: &ExportRepo{rows: map[int64]entity.ExportRequest{}},
		Tasks:   &TaskRepo{rows: map[int64]entity.Task{}},
		History: &HistoryRepo{},
	}
}

type snapshot struct {
	ledgers map[int64]entity.StockLedger
	txlog   []entity.StockTransaction
	imports map[int64]entity.ImportRequest
	exports map[int64]entity.ExportRequest
	tasks   map[int64]entity.Task
	history []entity.TaskHistoryEntry
}

func (s *Store) snapshot() snapshot {
	return snapshot{
		ledgers: copyMap(s.Ledgers.rows),
		txlog:   append([]entity.StockTransaction(nil), s.TxLog.rows...),
		imports: copyMap(s.Imports.rows),
		exports: copyMap(s.Exports.rows),
		tasks:   copyMap(s.Tasks.rows),
		history: append([]entity.TaskHistoryEntry(nil), s.History.rows...),
	}
}

func (s *Store) restore(snap snapshot) {
	s.Ledgers.rows = snap.ledgers
	s.TxLog.rows = snap.txlog
	s.Imports.rows = snap.imports
	s.Exports.rows = snap.exports
	s.Tasks.rows = snap.tasks
	s.History.rows = snap.history
}

func copyMap[T any](m map[int64]T) map[int64]T {
	out := make(map[int64]T, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Runner simula los runners de transacciones de los casos de uso contra el Store.
type Runner struct {
	store *Store
}

// Runner devuelve un runner transaccional sobre el Store.
func (s *Store) Runner() *Runner {
	return &Runner{store: s}
}

func (r *Runner) inTx(fn func() error) error {
	snap := r.store.snapshot()
	if err := fn(); err != nil {
		r.store.restore(snap)
		return err
	}
	return nil
}

// Run implementa inventory.TxRunner.
func (r *Runner) Run(ctx context.Context, fn func(repository.StockLedgerRepository, repository.StockTransactionRepository) error) error {
	return r.inTx(func() error { return fn(r.store.Ledgers, r.store.TxLog) })
}

// RunImport implementa workflow.ImportTxRunner.
func (r *Runner) RunImport(ctx context.Context, fn func(repository.ImportRequestRepository, repository.StockLedgerRepository, repository.StockTransactionRepository) error) error {
	return r.inTx(func() error { return fn(r.store.Imports, r.store.Ledgers, r.store.TxLog) })
}

// RunExport implementa workflow.ExportTxRunner.
func (r *Runner) RunExport(ctx context.Context, fn func(repository.ExportRequestRepository, repository.StockLedgerRepository, repository.StockTransactionRepository) error) error {
	return r.inTx(func() error { return fn(r.store.Exports, r.store.Ledgers, r.store.TxLog) })
}

// RunTask implementa taskflow.TxRunner.
func (r *Runner) RunTask(ctx context.Context, fn func(repository.TaskRepository, repository.TaskHistoryRepository) error) error {
	return r.inTx(func() error { return fn(r.store.Tasks, r.store.History) })
}

func paginate(page repository.Page, length int) (lo, hi int) {
	page.Normalize()
	lo = page.Offset()
	if lo > length {
		lo = length
	}
	hi = lo + page.Size
	if hi > length {
		hi = length
	}
	return lo, hi
}

// ─── Ledger ──────────────────────────────────────────────────────────────────

// LedgerRepo implementa repository.StockLedgerRepository en memoria.
// OnInsert, si está definido, corre antes de cada Insert: permite simular a un
// escritor concurrente que gana la carrera de creación.
type LedgerRepo struct {
	rows     map[int64]entity.StockLedger // por resource_id
	nextID   int64
	OnInsert func()
}

func (r *LedgerRepo) GetByResource(ctx context.Context, resourceID int64) (*entity.StockLedger, error) {
	if row, ok := r.rows[resourceID]; ok {
		return &row, nil
	}
	return nil, nil
}

func (r *LedgerRepo) GetForUpdate(ctx context.Context, resourceID int64) (*entity.StockLedger, error) {
	return r.GetByResource(ctx, resourceID)
}

func (r *LedgerRepo) Insert(ctx context.Context, ledger *entity.StockLedger) error {
	if r.OnInsert != nil {
		r.OnInsert()
	}
	if _, ok := r.rows[ledger.ResourceID]; ok {
		// Mismo contrato que el adaptador real (ON CONFLICT DO NOTHING): el
		// duplicado no envenena la transacción y la relectura posterior funciona.
		return domain.ErrDuplicate
	}
	r.nextID++
	ledger.ID = r.nextID
	r.rows[ledger.ResourceID] = *ledger
	return nil
}

func (r *LedgerRepo) Update(ctx context.Context, ledger *entity.StockLedger) error {
	if _, ok := r.rows[ledger.ResourceID]; !ok {
		return domain.ErrNotFound
	}
	r.rows[ledger.ResourceID] = *ledger
	return nil
}

// Seed inserta una fila directamente, sin pasar por Insert.
func (r *LedgerRepo) Seed(ledger entity.StockLedger) {
	if ledger.ID == 0 {
		r.nextID++
		ledger.ID = r.nextID
	}
	r.rows[ledger.ResourceID] = ledger
}

func (r *LedgerRepo) Search(ctx context.Context, filter repository.StockLedgerSearch, page repository.Page) ([]*entity.StockLedger, int64, error) {
	var out []*entity.StockLedger
	for _, row := range r.rows {
		if filter.OutOfStock && !row.IsOutOfStock() {
			continue
		}
		if filter.LowStock && !row.IsLowStock() {
			continue
		}
		if filter.Keyword != "" && !strings.Contains(strconv.FormatInt(row.ResourceID, 10)+row.LastUpdatedBy, filter.Keyword) {
			continue
		}
		out = append(out, &row)
	}
	total := int64(len(out))
	lo, hi := paginate(page, len(out))
	return out[lo:hi], total, nil
}

// ─── Log de transacciones ────────────────────────────────────────────────────

// TxLogRepo implementa repository.StockTransactionRepository en memoria.
type TxLogRepo struct {
	rows   []entity.StockTransaction
	nextID int64
}

func (r *TxLogRepo) Create(ctx context.Context, tx *entity.StockTransaction) error {
	r.nextID++
	tx.ID = r.nextID
	r.rows = append(r.rows, *tx)
	return nil
}

func (r *TxLogRepo) GetByID(ctx context.Context, id int64) (*entity.StockTransaction, error) {
	for _, row := range r.rows {
		if row.ID == id {
			row := row
			return &row, nil
		}
	}
	return nil, nil
}

func (r *TxLogRepo) List(ctx context.Context, filter repository.TransactionFilter, page repository.Page) ([]*entity.StockTransaction, int64, error) {
	var out []*entity.StockTransaction
	for _, row := range r.rows {
		if filter.ResourceID != nil && row.ResourceID != *filter.ResourceID {
			continue
		}
		if filter.Type != "" && row.Type != filter.Type {
			continue
		}
		if filter.ReferenceType != "" && row.ReferenceType != filter.ReferenceType {
			continue
		}
		if filter.ReferenceID != nil && (row.ReferenceID == nil || *row.ReferenceID != *filter.ReferenceID) {
			continue
		}
		if filter.Keyword != "" && !strings.Contains(row.TransactionNumber+row.Reason, filter.Keyword) {
			continue
		}
		out = append(out, &row)
	}
	total := int64(len(out))
	lo, hi := paginate(page, len(out))
	return out[lo:hi], total, nil
}

func (r *TxLogRepo) ListByResource(ctx context.Context, resourceID int64) ([]*entity.StockTransaction, error) {
	var out []*entity.StockTransaction
	for _, row := range r.rows {
		if row.ResourceID == resourceID {
			row := row
			out = append(out, &row)
		}
	}
	return out, nil
}

func (r *TxLogRepo) Stats(ctx context.Context) (*entity.TransactionStats, error) {
	s := &entity.TransactionStats{}
	for _, row := range r.rows {
		s.TotalCount++
		switch row.Type {
		case entity.TransactionTypeImport:
			s.ImportCount++
			s.TotalImported += row.QuantityChange
		case entity.TransactionTypeExport:
			s.ExportCount++
			s.TotalExported -= row.QuantityChange
		case entity.TransactionTypeAdjustment:
			s.AdjustmentCount++
		}
	}
	return s, nil
}

// Count devuelve la cantidad de transacciones registradas.
func (r *TxLogRepo) Count() int {
	return len(r.rows)
}

// Last devuelve la última transacción registrada, o nil si el log está vacío.
func (r *TxLogRepo) Last() *entity.StockTransaction {
	if len(r.rows) == 0 {
		return nil
	}
	row := r.rows[len(r.rows)-1]
	return &row
}

// ─── Solicitudes de importación ──────────────────────────────────────────────

// ImportRepo implementa repository.ImportRequestRepository en memoria.
type ImportRepo struct {
	rows   map[int64]entity.ImportRequest
	nextID int64
}

func (r *ImportRepo) Create(ctx context.Context, req *entity.ImportRequest) error {
	r.nextID++
	req.ID = r.nextID
	r.rows[req.ID] = *req
	return nil
}

func (r *ImportRepo) GetByID(ctx context.Context, id int64) (*entity.ImportRequest, error) {
	if row, ok := r.rows[id]; ok {
		return &row, nil
	}
	return nil, nil
}

func (r *ImportRepo) GetForUpdate(ctx context.Context, id int64) (*entity.ImportRequest, error) {
	return r.GetByID(ctx, id)
}

func (r *ImportRepo) Update(ctx context.Context, req *entity.ImportRequest) error {
	if _, ok := r.rows[req.ID]; !ok {
		return domain.ErrNotFound
	}
	r.rows[req.ID] = *req
	return nil
}

func (r *ImportRepo) List(ctx context.Context, filter repository.RequestFilter, page repository.Page) ([]*entity.ImportRequest, int64, error) {
	var out []*entity.ImportRequest
	for id := int64(1); id <= r.nextID; id++ {
		row, ok := r.rows[id]
		if !ok {
			continue
		}
		if filter.Status != "" && row.Status != filter.Status {
			continue
		}
		if filter.ResourceID != nil && row.ResourceID != *filter.ResourceID {
			continue
		}
		if filter.Keyword != "" && !strings.Contains(row.RequestNumber+row.Reason+row.Notes, filter.Keyword) {
			continue
		}
		out = append(out, &row)
	}
	total := int64(len(out))
	lo, hi := paginate(page, len(out))
	return out[lo:hi], total, nil
}

func (r *ImportRepo) Stats(ctx context.Context) (*entity.RequestStats, error) {
	s := &entity.RequestStats{}
	for _, row := range r.rows {
		s.Total++
		switch row.Status {
		case entity.ImportStatusPending:
			s.Pending++
		case entity.ImportStatusApproved:
			s.Approved++
		case entity.ImportStatusRejected:
			s.Rejected++
		case entity.ImportStatusCompleted:
			s.Completed++
		case entity.ImportStatusCancelled:
			s.Cancelled++
		}
	}
	return s, nil
}

// ─── Solicitudes de exportación ──────────────────────────────────────────────

// ExportRepo implementa repository.ExportRequestRepository en memoria.
type ExportRepo struct {
	rows   map[int64]entity.ExportRequest
	nextID int64
}

func (r *ExportRepo) Create(ctx context.Context, req *entity.ExportRequest) error {
	r.nextID++
	req.ID = r.nextID
	r.rows[req.ID] = *req
	return nil
}

func (r *ExportRepo) GetByID(ctx context.Context, id int64) (*entity.ExportRequest, error) {
	if row, ok := r.rows[id]; ok {
		return &row, nil
	}
	return nil, nil
}

func (r *ExportRepo) GetForUpdate(ctx context.Context, id int64) (*entity.ExportRequest, error) {
	return r.GetByID(ctx, id)
}

func (r *ExportRepo) Update(ctx context.Context, req *entity.ExportRequest) error {
	if _, ok := r.rows[req.ID]; !ok {
		return domain.ErrNotFound
	}
	r.rows[req.ID] = *req
	return nil
}

func (r *ExportRepo) List(ctx context.Context, filter repository.RequestFilter, page repository.Page) ([]*entity.ExportRequest, int64, error) {
	var out []*entity.ExportRequest
	for id := int64(1); id <= r.nextID; id++ {
		row, ok := r.rows[id]
		if !ok {
			continue
		}
		if filter.Status != "" && row.Status != filter.Status {
			continue
		}
		if filter.ResourceID != nil && row.ResourceID != *filter.ResourceID {
			continue
		}
		if filter.Keyword != "" && !strings.Contains(row.RequestNumber+row.Reason+row.Notes, filter.Keyword) {
			continue
		}
		out = append(out, &row)
	}
	total := int64(len(out))
	lo, hi := paginate(page, len(out))
	return out[lo:hi], total, nil
}

func (r *ExportRepo) Stats(ctx context.Context) (*entity.RequestStats, error) {
	s := &entity.RequestStats{}
	for _, row := range r.rows {
		s.Total++
		switch row.Status {
		case entity.ExportStatusPending:
			s.Pending++
		case entity.ExportStatusApproved:
			s.Approved++
		case entity.ExportStatusRejected:
			s.Rejected++
		case entity.ExportStatusIssued:
			s.Completed++
		case entity.ExportStatusCancelled:
			s.Cancelled++
		}
	}
	return s, nil
}

// ─── Tareas ──────────────────────────────────────────────────────────────────

// TaskRepo implementa repository.TaskRepository en memoria.
type TaskRepo struct {
	rows   map[int64]entity.Task
	nextID int64
}

func (r *TaskRepo) Create(ctx context.Context, task *entity.Task) error {
	r.nextID++
	task.ID = r.nextID
	r.rows[task.ID] = *task
	return nil
}

func (r *TaskRepo) GetByID(ctx context.Context, id int64) (*entity.Task, error) {
	if row, ok := r.rows[id]; ok {
		return &row, nil
	}
	return nil, nil
}

func (r *TaskRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Task, error) {
	return r.GetByID(ctx, id)
}

func (r *TaskRepo) Update(ctx context.Context, task *entity.Task) error {
	if _, ok := r.rows[task.ID]; !ok {
		return domain.ErrNotFound
	}
	r.rows[task.ID] = *task
	return nil
}

func (r *TaskRepo) List(ctx context.Context, filter repository.TaskFilter, page repository.Page) ([]*entity.Task, int64, error) {
	var out []*entity.Task
	for id := int64(1); id <= r.nextID; id++ {
		row, ok := r.rows[id]
		if !ok {
			continue
		}
		if filter.Status != "" && row.Status != filter.Status {
			continue
		}
		if filter.TechnicianID != nil && (row.AssignedTechnicianID == nil || *row.AssignedTechnicianID != *filter.TechnicianID) {
			continue
		}
		if filter.Keyword != "" && !strings.Contains(row.TaskNumber+row.Title+row.Description, filter.Keyword) {
			continue
		}
		out = append(out, &row)
	}
	total := int64(len(out))
	lo, hi := paginate(page, len(out))
	return out[lo:hi], total, nil
}

func (r *TaskRepo) Stats(ctx context.Context) (*entity.TaskStats, error) {
	s := &entity.TaskStats{}
	for _, row := range r.rows {
		s.Total++
		switch row.Status {
		case entity.TaskStatusPending:
			s.Pending++
		case entity.TaskStatusAssigned:
			s.Assigned++
		case entity.TaskStatusAccepted:
			s.Accepted++
		case entity.TaskStatusRejected:
			s.Rejected++
		case entity.TaskStatusInProgress:
			s.InProgress++
		case entity.TaskStatusCompleted:
			s.Completed++
		}
	}
	return s, nil
}

// ─── Historial de tareas ─────────────────────────────────────────────────────

// HistoryRepo implementa repository.TaskHistoryRepository en memoria.
type HistoryRepo struct {
	rows   []entity.TaskHistoryEntry
	nextID int64
}

func (r *HistoryRepo) Append(ctx context.Context, entry *entity.TaskHistoryEntry) error {
	r.nextID++
	entry.ID = r.nextID
	r.rows = append(r.rows, *entry)
	return nil
}

func (r *HistoryRepo) ListByTask(ctx context.Context, taskID int64) ([]*entity.TaskHistoryEntry, error) {
	var out []*entity.TaskHistoryEntry
	for _, row := range r.rows {
		if row.TaskID == taskID {
			row := row
			out = append(out, &row)
		}
	}
	return out, nil
}

// Verificaciones en tiempo de compilación.
var (
	_ repository.StockLedgerRepository      = (*LedgerRepo)(nil)
	_ repository.StockTransactionRepository = (*TxLogRepo)(nil)
	_ repository.ImportRequestRepository    = (*ImportRepo)(nil)
	_ repository.ExportRequestRepository    = (*ExportRepo)(nil)
	_ repository.TaskRepository             = (*TaskRepo)(nil)
	_ repository.TaskHistoryRepository      = (*HistoryRepo)(nil)
)
