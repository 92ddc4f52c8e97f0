// Package postgres implements the store.Store interface backed by PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"

	"github.com/alfredjeanlab/forge/internal/model"
	"github.com/alfredjeanlab/forge/internal/store"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresStore implements store.Store backed by a PostgreSQL database.
type PostgresStore struct {
	db *sql.DB
}

// Compile-time check that PostgresStore implements store.Store.
var _ store.Store = (*PostgresStore)(nil)

// New opens a connection to the PostgreSQL database at the given URL,
// configures the connection pool, and runs any pending migrations.
func New(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

func runMigrations(db *sql.DB) error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	dbDriver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration db driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", dbDriver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}

// Close closes the underlying database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) CreateIdea(ctx context.Context, idea *model.Idea) error {
	return queryCreateIdea(ctx, s.db, idea)
}

func (s *PostgresStore) GetIdea(ctx context.Context, id string) (*model.Idea, error) {
	return queryGetIdea(ctx, s.db, id)
}

func (s *PostgresStore) ListIdeas(ctx context.Context, filter model.IdeaFilter) ([]*model.Idea, int, error) {
	return queryListIdeas(ctx, s.db, filter)
}

func (s *PostgresStore) UpdateIdea(ctx context.Context, idea *model.Idea) error {
	return queryUpdateIdea(ctx, s.db, idea)
}

func (s *PostgresStore) DecideIdea(ctx context.Context, id string, status model.IdeaStatus, decidedBy string) (*model.Idea, error) {
	return queryDecideIdea(ctx, s.db, id, status, decidedBy)
}

func (s *PostgresStore) DeleteIdea(ctx context.Context, id string) error {
	return queryDeleteIdea(ctx, s.db, id)
}

func (s *PostgresStore) AddLabel(ctx context.Context, ideaID string, label string) error {
	return queryAddLabel(ctx, s.db, ideaID, label)
}

func (s *PostgresStore) RemoveLabel(ctx context.Context, ideaID string, label string) error {
	return queryRemoveLabel(ctx, s.db, ideaID, label)
}

func (s *PostgresStore) GetLabels(ctx context.Context, ideaID string) ([]string, error) {
	return queryGetLabels(ctx, s.db, ideaID)
}

func (s *PostgresStore) AddComment(ctx context.Context, comment *model.Comment) error {
	return queryAddComment(ctx, s.db, comment)
}

func (s *PostgresStore) GetComments(ctx context.Context, ideaID string) ([]*model.Comment, error) {
	return queryGetComments(ctx, s.db, ideaID)
}

func (s *PostgresStore) CreateScan(ctx context.Context, job *model.ScanJob) error {
	return queryCreateScan(ctx, s.db, job)
}

func (s *PostgresStore) GetScan(ctx context.Context, id string) (*model.ScanJob, error) {
	return queryGetScan(ctx, s.db, id)
}

func (s *PostgresStore) ListScans(ctx context.Context, filter model.ScanFilter) ([]*model.ScanJob, int, error) {
	return queryListScans(ctx, s.db, filter)
}

func (s *PostgresStore) ClaimNextScan(ctx context.Context) (*model.ScanJob, error) {
	return queryClaimNextScan(ctx, s.db)
}

func (s *PostgresStore) CompleteScan(ctx context.Context, id string, findings, ideas int) (*model.ScanJob, error) {
	return queryCompleteScan(ctx, s.db, id, findings, ideas)
}

func (s *PostgresStore) FailScan(ctx context.Context, id string, errMsg string) (*model.ScanJob, error) {
	return queryFailScan(ctx, s.db, id, errMsg)
}

func (s *PostgresStore) CancelScan(ctx context.Context, id string) (*model.ScanJob, error) {
	return queryCancelScan(ctx, s.db, id)
}

func (s *PostgresStore) AddFindings(ctx context.Context, scanID string, findings []*model.Finding) error {
	return queryAddFindings(ctx, s.db, scanID, findings)
}

func (s *PostgresStore) GetFindings(ctx context.Context, scanID string) ([]*model.Finding, error) {
	return queryGetFindings(ctx, s.db, scanID)
}

func (s *PostgresStore) CreateSpec(ctx context.Context, spec *model.RefactorSpec) error {
	return queryCreateSpec(ctx, s.db, spec)
}

func (s *PostgresStore) GetSpec(ctx context.Context, id string) (*model.RefactorSpec, error) {
	return queryGetSpec(ctx, s.db, id)
}

func (s *PostgresStore) ListSpecs(ctx context.Context, limit, offset int) ([]*model.RefactorSpec, int, error) {
	return queryListSpecs(ctx, s.db, limit, offset)
}

func (s *PostgresStore) UpdateSpec(ctx context.Context, spec *model.RefactorSpec) error {
	return queryUpdateSpec(ctx, s.db, spec)
}

func (s *PostgresStore) DeleteSpec(ctx context.Context, id string) error {
	return queryDeleteSpec(ctx, s.db, id)
}

func (s *PostgresStore) RecordEvent(ctx context.Context, event *model.Event) error {
	return queryRecordEvent(ctx, s.db, event)
}

func (s *PostgresStore) GetEvents(ctx context.Context, entityID string) ([]*model.Event, error) {
	return queryGetEvents(ctx, s.db, entityID)
}

func (s *PostgresStore) SetConfig(ctx context.Context, config *model.Config) error {
	return querySetConfig(ctx, s.db, config)
}

func (s *PostgresStore) GetConfig(ctx context.Context, key string) (*model.Config, error) {
	return queryGetConfig(ctx, s.db, key)
}

func (s *PostgresStore) ListConfigs(ctx context.Context, namespace string) ([]*model.Config, error) {
	return queryListConfigs(ctx, s.db, namespace)
}

func (s *PostgresStore) ListAllConfigs(ctx context.Context) ([]*model.Config, error) {
	return queryListAllConfigs(ctx, s.db)
}

func (s *PostgresStore) DeleteConfig(ctx context.Context, key string) error {
	return queryDeleteConfig(ctx, s.db, key)
}

func (s *PostgresStore) GetStats(ctx context.Context) (*model.WorkspaceStats, error) {
	return queryGetStats(ctx, s.db)
}

// RunInTransaction begins a database transaction, creates a txStore that
// delegates to it, calls fn, and commits on success or rolls back on error.
func (s *PostgresStore) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	txS := &txStore{tx: tx}
	if err := fn(txS); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// txStore implements store.Store using a *sql.Tx.
type txStore struct {
	tx *sql.Tx
}

// Compile-time check that txStore implements store.Store.
var _ store.Store = (*txStore)(nil)

func (s *txStore) CreateIdea(ctx context.Context, idea *model.Idea) error {
	return queryCreateIdea(ctx, s.tx, idea)
}

func (s *txStore) GetIdea(ctx context.Context, id string) (*model.Idea, error) {
	return queryGetIdea(ctx, s.tx, id)
}

func (s *txStore) ListIdeas(ctx context.Context, filter model.IdeaFilter) ([]*model.Idea, int, error) {
	return queryListIdeas(ctx, s.tx, filter)
}

func (s *txStore) UpdateIdea(ctx context.Context, idea *model.Idea) error {
	return queryUpdateIdea(ctx, s.tx, idea)
}

func (s *txStore) DecideIdea(ctx context.Context, id string, status model.IdeaStatus, decidedBy string) (*model.Idea, error) {
	return queryDecideIdea(ctx, s.tx, id, status, decidedBy)
}

func (s *txStore) DeleteIdea(ctx context.Context, id string) error {
	return queryDeleteIdea(ctx, s.tx, id)
}

func (s *txStore) AddLabel(ctx context.Context, ideaID string, label string) error {
	return queryAddLabel(ctx, s.tx, ideaID, label)
}

func (s *txStore) RemoveLabel(ctx context.Context, ideaID string, label string) error {
	return queryRemoveLabel(ctx, s.tx, ideaID, label)
}

func (s *txStore) GetLabels(ctx context.Context, ideaID string) ([]string, error) {
	return queryGetLabels(ctx, s.tx, ideaID)
}

func (s *txStore) AddComment(ctx context.Context, comment *model.Comment) error {
	return queryAddComment(ctx, s.tx, comment)
}

func (s *txStore) GetComments(ctx context.Context, ideaID string) ([]*model.Comment, error) {
	return queryGetComments(ctx, s.tx, ideaID)
}

func (s *txStore) CreateScan(ctx context.Context, job *model.ScanJob) error {
	return queryCreateScan(ctx, s.tx, job)
}

func (s *txStore) GetScan(ctx context.Context, id string) (*model.ScanJob, error) {
	return queryGetScan(ctx, s.tx, id)
}

func (s *txStore) ListScans(ctx context.Context, filter model.ScanFilter) ([]*model.ScanJob, int, error) {
	return queryListScans(ctx, s.tx, filter)
}

func (s *txStore) ClaimNextScan(ctx context.Context) (*model.ScanJob, error) {
	return queryClaimNextScan(ctx, s.tx)
}

func (s *txStore) CompleteScan(ctx context.Context, id string, findings, ideas int) (*model.ScanJob, error) {
	return queryCompleteScan(ctx, s.tx, id, findings, ideas)
}

func (s *txStore) FailScan(ctx context.Context, id string, errMsg string) (*model.ScanJob, error) {
	return queryFailScan(ctx, s.tx, id, errMsg)
}

func (s *txStore) CancelScan(ctx context.Context, id string) (*model.ScanJob, error) {
	return queryCancelScan(ctx, s.tx, id)
}

func (s *txStore) AddFindings(ctx context.Context, scanID string, findings []*model.Finding) error {
	return queryAddFindings(ctx, s.tx, scanID, findings)
}

func (s *txStore) GetFindings(ctx context.Context, scanID string) ([]*model.Finding, error) {
	return queryGetFindings(ctx, s.tx, scanID)
}

func (s *txStore) CreateSpec(ctx context.Context, spec *model.RefactorSpec) error {
	return queryCreateSpec(ctx, s.tx, spec)
}

func (s *txStore) GetSpec(ctx context.Context, id string) (*model.RefactorSpec, error) {
	return queryGetSpec(ctx, s.tx, id)
}

func (s *txStore) ListSpecs(ctx context.Context, limit, offset int) ([]*model.RefactorSpec, int, error) {
	return queryListSpecs(ctx, s.tx, limit, offset)
}

func (s *txStore) UpdateSpec(ctx context.Context, spec *model.RefactorSpec) error {
	return queryUpdateSpec(ctx, s.tx, spec)
}

func (s *txStore) DeleteSpec(ctx context.Context, id string) error {
	return queryDeleteSpec(ctx, s.tx, id)
}

func (s *txStore) RecordEvent(ctx context.Context, event *model.Event) error {
	return queryRecordEvent(ctx, s.tx, event)
}

func (s *txStore) GetEvents(ctx context.Context, entityID string) ([]*model.Event, error) {
	return queryGetEvents(ctx, s.tx, entityID)
}

func (s *txStore) SetConfig(ctx context.Context, config *model.Config) error {
	return querySetConfig(ctx, s.tx, config)
}

func (s *txStore) GetConfig(ctx context.Context, key string) (*model.Config, error) {
	return queryGetConfig(ctx, s.tx, key)
}

func (s *txStore) ListConfigs(ctx context.Context, namespace string) ([]*model.Config, error) {
	return queryListConfigs(ctx, s.tx, namespace)
}

func (s *txStore) ListAllConfigs(ctx context.Context) ([]*model.Config, error) {
	return queryListAllConfigs(ctx, s.tx)
}

func (s *txStore) DeleteConfig(ctx context.Context, key string) error {
	return queryDeleteConfig(ctx, s.tx, key)
}

func (s *txStore) GetStats(ctx context.Context) (*model.WorkspaceStats, error) {
	return queryGetStats(ctx, s.tx)
}

// RunInTransaction on a txStore reuses the existing transaction (no nesting).
func (s *txStore) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
	return fn(s)
}

// Close is a no-op for a transaction store; the parent store owns the connection.
func (s *txStore) Close() error {
	return nil
}
