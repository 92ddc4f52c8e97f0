package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/alfredjeanlab/forge/internal/model"
	"github.com/alfredjeanlab/forge/internal/store"
)

// ideaColumns is the column list used for SELECT statements on the ideas table.
const ideaColumns = `id, title, summary, notes, status, priority, framework,
	scan_id, effort, impact, author, created_at, updated_at, decided_at,
	decided_by, fields`

// scanColumns is the column list used for SELECT statements on the scans table.
const scanColumns = `id, type, framework, root, status, error, created_by,
	created_at, updated_at, started_at, ended_at, findings, ideas`

// specColumns is the column list used for SELECT statements on the specs table.
const specColumns = `id, name, version, description, target, operations,
	constraints, idea_id, created_by, created_at, updated_at`

// executor is the interface satisfied by both *sql.DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func queryCreateIdea(ctx context.Context, db executor, i *model.Idea) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO ideas (
			id, title, summary, notes, status, priority, framework,
			scan_id, effort, impact, author, created_at, updated_at,
			decided_at, decided_by, fields
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7,
			$8, $9, $10, $11, $12, $13,
			$14, $15, $16
		)`,
		i.ID,
		i.Title,
		i.Summary,
		i.Notes,
		string(i.Status),
		i.Priority,
		string(i.Framework),
		nullString(i.ScanID),
		i.Effort,
		i.Impact,
		i.Author,
		i.CreatedAt,
		i.UpdatedAt,
		nullTimePtr(i.DecidedAt),
		i.DecidedBy,
		jsonbBytes(i.Fields),
	)
	return err
}

func queryGetIdea(ctx context.Context, db executor, id string) (*model.Idea, error) {
	row := db.QueryRowContext(ctx, `SELECT `+ideaColumns+` FROM ideas WHERE id = $1`, id)
	i, err := scanIdea(row)
	if err != nil {
		return nil, err
	}
	return attachIdeaRelations(ctx, db, i)
}

// attachIdeaRelations loads labels and comments onto the idea.
func attachIdeaRelations(ctx context.Context, db executor, i *model.Idea) (*model.Idea, error) {
	labels, err := queryGetLabels(ctx, db, i.ID)
	if err != nil {
		return nil, err
	}
	i.Labels = labels

	comments, err := queryGetComments(ctx, db, i.ID)
	if err != nil {
		return nil, err
	}
	i.Comments = comments

	return i, nil
}

func queryListIdeas(ctx context.Context, db executor, filter model.IdeaFilter) ([]*model.Idea, int, error) {
	var (
		whereClauses []string
		args         []any
		argIdx       int
	)

	nextArg := func() string {
		argIdx++
		return fmt.Sprintf("$%d", argIdx)
	}

	if len(filter.Status) > 0 {
		placeholders := make([]string, len(filter.Status))
		for i, s := range filter.Status {
			placeholders[i] = nextArg()
			args = append(args, string(s))
		}
		whereClauses = append(whereClauses, "status IN ("+strings.Join(placeholders, ", ")+")")
	}

	if len(filter.Framework) > 0 {
		placeholders := make([]string, len(filter.Framework))
		for i, f := range filter.Framework {
			placeholders[i] = nextArg()
			args = append(args, string(f))
		}
		whereClauses = append(whereClauses, "framework IN ("+strings.Join(placeholders, ", ")+")")
	}

	if filter.ScanID != "" {
		whereClauses = append(whereClauses, "scan_id = "+nextArg())
		args = append(args, filter.ScanID)
	}

	if filter.Priority != nil {
		whereClauses = append(whereClauses, "priority = "+nextArg())
		args = append(args, *filter.Priority)
	}

	if len(filter.Labels) > 0 {
		for _, label := range filter.Labels {
			p := nextArg()
			whereClauses = append(whereClauses,
				fmt.Sprintf("EXISTS (SELECT 1 FROM labels WHERE labels.idea_id = ideas.id AND labels.label = %s)", p))
			args = append(args, label)
		}
	}

	if filter.Search != "" {
		p := nextArg()
		whereClauses = append(whereClauses,
			fmt.Sprintf("(title ILIKE '%%' || %s || '%%' OR summary ILIKE '%%' || %s || '%%')", p, p))
		args = append(args, filter.Search)
	}

	for key, val := range filter.Fields {
		kp := nextArg()
		vp := nextArg()
		whereClauses = append(whereClauses, fmt.Sprintf("fields->>%s = %s", kp, vp))
		args = append(args, key, val)
	}

	whereSQL := ""
	if len(whereClauses) > 0 {
		whereSQL = " WHERE " + strings.Join(whereClauses, " AND ")
	}

	// Single query with COUNT(*) OVER() to get total and rows atomically.
	dataQuery := "SELECT COUNT(*) OVER() AS total_count, " + ideaColumns + " FROM ideas" + whereSQL +
		" ORDER BY " + parseSortClause(filter.Sort, ideaSortColumns)

	if filter.Limit > 0 {
		dataQuery += " LIMIT " + nextArg()
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		dataQuery += " OFFSET " + nextArg()
		args = append(args, filter.Offset)
	}

	rows, err := db.QueryContext(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list ideas: %w", err)
	}
	defer rows.Close()

	var ideas []*model.Idea
	var total int
	for rows.Next() {
		i, t, err := scanIdeaWithTotal(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan ideas: %w", err)
		}
		total = t
		ideas = append(ideas, i)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("scan ideas: %w", err)
	}

	return ideas, total, nil
}

func queryUpdateIdea(ctx context.Context, db executor, i *model.Idea) error {
	return db.QueryRowContext(ctx, `
		UPDATE ideas SET
			title = $2,
			summary = $3,
			notes = $4,
			status = $5,
			priority = $6,
			framework = $7,
			scan_id = $8,
			effort = $9,
			impact = $10,
			author = $11,
			updated_at = NOW(),
			decided_at = $12,
			decided_by = $13,
			fields = $14
		WHERE id = $1
		RETURNING updated_at`,
		i.ID,
		i.Title,
		i.Summary,
		i.Notes,
		string(i.Status),
		i.Priority,
		string(i.Framework),
		nullString(i.ScanID),
		i.Effort,
		i.Impact,
		i.Author,
		nullTimePtr(i.DecidedAt),
		i.DecidedBy,
		jsonbBytes(i.Fields),
	).Scan(&i.UpdatedAt)
}

func queryDecideIdea(ctx context.Context, db executor, id string, status model.IdeaStatus, decidedBy string) (*model.Idea, error) {
	row := db.QueryRowContext(ctx, `
		UPDATE ideas
		SET status = $2, decided_at = NOW(), decided_by = $3, updated_at = NOW()
		WHERE id = $1 AND status = 'proposed'
		RETURNING `+ideaColumns,
		id, string(status), decidedBy,
	)
	i, err := scanIdea(row)
	if errors.Is(err, sql.ErrNoRows) {
		// Missing row and bad state look the same to the UPDATE; a second
		// lookup tells them apart.
		if _, getErr := queryGetIdea(ctx, db, id); getErr == nil {
			return nil, store.ErrInvalidTransition
		}
		return nil, sql.ErrNoRows
	}
	if err != nil {
		return nil, err
	}
	return attachIdeaRelations(ctx, db, i)
}

func queryDeleteIdea(ctx context.Context, db executor, id string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM ideas WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func queryAddLabel(ctx context.Context, db executor, ideaID, label string) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO labels (idea_id, label)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`,
		ideaID, label,
	)
	return err
}

func queryRemoveLabel(ctx context.Context, db executor, ideaID, label string) error {
	_, err := db.ExecContext(ctx, `
		DELETE FROM labels
		WHERE idea_id = $1 AND label = $2`,
		ideaID, label,
	)
	return err
}

func queryGetLabels(ctx context.Context, db executor, ideaID string) ([]string, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT label FROM labels WHERE idea_id = $1 ORDER BY label`,
		ideaID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var labels []string
	for rows.Next() {
		var label string
		if err := rows.Scan(&label); err != nil {
			return nil, err
		}
		labels = append(labels, label)
	}
	return labels, rows.Err()
}

func queryAddComment(ctx context.Context, db executor, c *model.Comment) error {
	return db.QueryRowContext(ctx, `
		INSERT INTO comments (idea_id, author, text)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`,
		c.IdeaID, c.Author, c.Text,
	).Scan(&c.ID, &c.CreatedAt)
}

func queryGetComments(ctx context.Context, db executor, ideaID string) ([]*model.Comment, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, idea_id, author, text, created_at
		FROM comments
		WHERE idea_id = $1
		ORDER BY created_at ASC`,
		ideaID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanComments(rows)
}

func queryCreateScan(ctx context.Context, db executor, j *model.ScanJob) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO scans (
			id, type, framework, root, status, error, created_by,
			created_at, updated_at, started_at, ended_at, findings, ideas
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7,
			$8, $9, $10, $11, $12, $13
		)`,
		j.ID,
		string(j.Type),
		string(j.Framework),
		j.Root,
		string(j.Status),
		j.Error,
		j.CreatedBy,
		j.CreatedAt,
		j.UpdatedAt,
		nullTimePtr(j.StartedAt),
		nullTimePtr(j.EndedAt),
		j.Findings,
		j.Ideas,
	)
	return err
}

func queryGetScan(ctx context.Context, db executor, id string) (*model.ScanJob, error) {
	row := db.QueryRowContext(ctx, `SELECT `+scanColumns+` FROM scans WHERE id = $1`, id)
	return scanScanJob(row)
}

func queryListScans(ctx context.Context, db executor, filter model.ScanFilter) ([]*model.ScanJob, int, error) {
	var (
		whereClauses []string
		args         []any
		argIdx       int
	)

	nextArg := func() string {
		argIdx++
		return fmt.Sprintf("$%d", argIdx)
	}

	if len(filter.Status) > 0 {
		placeholders := make([]string, len(filter.Status))
		for i, s := range filter.Status {
			placeholders[i] = nextArg()
			args = append(args, string(s))
		}
		whereClauses = append(whereClauses, "status IN ("+strings.Join(placeholders, ", ")+")")
	}

	if len(filter.Type) > 0 {
		placeholders := make([]string, len(filter.Type))
		for i, t := range filter.Type {
			placeholders[i] = nextArg()
			args = append(args, string(t))
		}
		whereClauses = append(whereClauses, "type IN ("+strings.Join(placeholders, ", ")+")")
	}

	if len(filter.Framework) > 0 {
		placeholders := make([]string, len(filter.Framework))
		for i, f := range filter.Framework {
			placeholders[i] = nextArg()
			args = append(args, string(f))
		}
		whereClauses = append(whereClauses, "framework IN ("+strings.Join(placeholders, ", ")+")")
	}

	whereSQL := ""
	if len(whereClauses) > 0 {
		whereSQL = " WHERE " + strings.Join(whereClauses, " AND ")
	}

	dataQuery := "SELECT COUNT(*) OVER() AS total_count, " + scanColumns + " FROM scans" + whereSQL +
		" ORDER BY " + parseSortClause(filter.Sort, scanSortColumns)

	if filter.Limit > 0 {
		dataQuery += " LIMIT " + nextArg()
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		dataQuery += " OFFSET " + nextArg()
		args = append(args, filter.Offset)
	}

	rows, err := db.QueryContext(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list scans: %w", err)
	}
	defer rows.Close()

	var scans []*model.ScanJob
	var total int
	for rows.Next() {
		j, t, err := scanScanJobWithTotal(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan scans: %w", err)
		}
		total = t
		scans = append(scans, j)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("scan scans: %w", err)
	}

	return scans, total, nil
}

// queryClaimNextScan atomically moves the oldest pending scan to running.
// FOR UPDATE SKIP LOCKED keeps concurrent workers from claiming the same job.
func queryClaimNextScan(ctx context.Context, db executor) (*model.ScanJob, error) {
	row := db.QueryRowContext(ctx, `
		UPDATE scans
		SET status = 'running', started_at = NOW(), updated_at = NOW()
		WHERE id = (
			SELECT id FROM scans
			WHERE status = 'pending'
			ORDER BY created_at ASC
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING ` + scanColumns)
	return scanScanJob(row)
}

func queryCompleteScan(ctx context.Context, db executor, id string, findings, ideas int) (*model.ScanJob, error) {
	row := db.QueryRowContext(ctx, `
		UPDATE scans
		SET status = 'completed', findings = $2, ideas = $3, ended_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = 'running'
		RETURNING `+scanColumns,
		id, findings, ideas,
	)
	return scanGuardedUpdate(ctx, db, id, row)
}

func queryFailScan(ctx context.Context, db executor, id string, errMsg string) (*model.ScanJob, error) {
	row := db.QueryRowContext(ctx, `
		UPDATE scans
		SET status = 'failed', error = $2, ended_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = 'running'
		RETURNING `+scanColumns,
		id, errMsg,
	)
	return scanGuardedUpdate(ctx, db, id, row)
}

func queryCancelScan(ctx context.Context, db executor, id string) (*model.ScanJob, error) {
	row := db.QueryRowContext(ctx, `
		UPDATE scans
		SET status = 'canceled', ended_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
		RETURNING `+scanColumns,
		id,
	)
	return scanGuardedUpdate(ctx, db, id, row)
}

// scanGuardedUpdate interprets the result of a status-guarded UPDATE:
// no row back means either the scan does not exist (sql.ErrNoRows) or it
// exists in a state the transition does not allow (ErrInvalidTransition).
func scanGuardedUpdate(ctx context.Context, db executor, id string, row *sql.Row) (*model.ScanJob, error) {
	j, err := scanScanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		if _, getErr := queryGetScan(ctx, db, id); getErr == nil {
			return nil, store.ErrInvalidTransition
		}
		return nil, sql.ErrNoRows
	}
	return j, err
}

func queryAddFindings(ctx context.Context, db executor, scanID string, findings []*model.Finding) error {
	for _, f := range findings {
		err := db.QueryRowContext(ctx, `
			INSERT INTO findings (scan_id, adapter, kind, file, line, symbol, detail)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id, created_at`,
			scanID, string(f.Adapter), f.Kind, f.File, f.Line, f.Symbol, f.Detail,
		).Scan(&f.ID, &f.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert finding: %w", err)
		}
		f.ScanID = scanID
	}
	return nil
}

func queryGetFindings(ctx context.Context, db executor, scanID string) ([]*model.Finding, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, scan_id, adapter, kind, file, line, symbol, detail, created_at
		FROM findings
		WHERE scan_id = $1
		ORDER BY id ASC`,
		scanID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanFindings(rows)
}

func queryCreateSpec(ctx context.Context, db executor, s *model.RefactorSpec) error {
	target, operations, constraints, err := marshalSpecParts(s)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO specs (
			id, name, version, description, target, operations,
			constraints, idea_id, created_by, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10, $11
		)`,
		s.ID,
		s.Name,
		s.Version,
		s.Description,
		target,
		operations,
		constraints,
		nullString(s.IdeaID),
		s.CreatedBy,
		s.CreatedAt,
		s.UpdatedAt,
	)
	return err
}

func queryGetSpec(ctx context.Context, db executor, id string) (*model.RefactorSpec, error) {
	row := db.QueryRowContext(ctx, `SELECT `+specColumns+` FROM specs WHERE id = $1`, id)
	return scanSpec(row)
}

func queryListSpecs(ctx context.Context, db executor, limit, offset int) ([]*model.RefactorSpec, int, error) {
	var args []any
	argIdx := 0
	nextArg := func() string {
		argIdx++
		return fmt.Sprintf("$%d", argIdx)
	}

	dataQuery := "SELECT COUNT(*) OVER() AS total_count, " + specColumns +
		" FROM specs ORDER BY created_at DESC"
	if limit > 0 {
		dataQuery += " LIMIT " + nextArg()
		args = append(args, limit)
	}
	if offset > 0 {
		dataQuery += " OFFSET " + nextArg()
		args = append(args, offset)
	}

	rows, err := db.QueryContext(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list specs: %w", err)
	}
	defer rows.Close()

	var specs []*model.RefactorSpec
	var total int
	for rows.Next() {
		s, t, err := scanSpecWithTotal(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan specs: %w", err)
		}
		total = t
		specs = append(specs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("scan specs: %w", err)
	}

	return specs, total, nil
}

func queryUpdateSpec(ctx context.Context, db executor, s *model.RefactorSpec) error {
	target, operations, constraints, err := marshalSpecParts(s)
	if err != nil {
		return err
	}
	return db.QueryRowContext(ctx, `
		UPDATE specs SET
			name = $2,
			version = $3,
			description = $4,
			target = $5,
			operations = $6,
			constraints = $7,
			idea_id = $8,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		s.ID,
		s.Name,
		s.Version,
		s.Description,
		target,
		operations,
		constraints,
		nullString(s.IdeaID),
	).Scan(&s.UpdatedAt)
}

func queryDeleteSpec(ctx context.Context, db executor, id string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM specs WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func queryRecordEvent(ctx context.Context, db executor, e *model.Event) error {
	return db.QueryRowContext(ctx, `
		INSERT INTO events (topic, entity_id, actor, payload)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		e.Topic, e.EntityID, e.Actor, []byte(e.Payload),
	).Scan(&e.ID, &e.CreatedAt)
}

func queryGetEvents(ctx context.Context, db executor, entityID string) ([]*model.Event, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, topic, entity_id, actor, payload, created_at
		FROM events
		WHERE entity_id = $1
		ORDER BY created_at ASC`,
		entityID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvents(rows)
}

func querySetConfig(ctx context.Context, db executor, c *model.Config) error {
	return db.QueryRowContext(ctx, `
		INSERT INTO configs (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = $2, updated_at = NOW()
		RETURNING created_at, updated_at`,
		c.Key, []byte(c.Value),
	).Scan(&c.CreatedAt, &c.UpdatedAt)
}

func queryGetConfig(ctx context.Context, db executor, key string) (*model.Config, error) {
	row := db.QueryRowContext(ctx, `
		SELECT key, value, created_at, updated_at
		FROM configs WHERE key = $1`, key)
	return scanConfig(row)
}

func queryListConfigs(ctx context.Context, db executor, namespace string) ([]*model.Config, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT key, value, created_at, updated_at
		FROM configs WHERE key LIKE $1 || ':%'
		ORDER BY key`, namespace)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanConfigs(rows)
}

func queryListAllConfigs(ctx context.Context, db executor) ([]*model.Config, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT key, value, created_at, updated_at
		FROM configs ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanConfigs(rows)
}

func queryDeleteConfig(ctx context.Context, db executor, key string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM configs WHERE key = $1`, key)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func queryGetStats(ctx context.Context, db executor) (*model.WorkspaceStats, error) {
	stats := &model.WorkspaceStats{}
	err := db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN status = 'proposed' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'accepted' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'in_progress' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'shipped' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'rejected' THEN 1 ELSE 0 END), 0)
		FROM ideas`).Scan(
		&stats.IdeasProposed,
		&stats.IdeasAccepted,
		&stats.IdeasInProgress,
		&stats.IdeasShipped,
		&stats.IdeasRejected,
	)
	if err != nil {
		return nil, fmt.Errorf("idea stats: %w", err)
	}

	err = db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN status = 'pending' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'running' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'completed' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END), 0)
		FROM scans`).Scan(
		&stats.ScansPending,
		&stats.ScansRunning,
		&stats.ScansCompleted,
		&stats.ScansFailed,
	)
	if err != nil {
		return nil, fmt.Errorf("scan stats: %w", err)
	}

	return stats, nil
}

var ideaSortColumns = map[string]bool{
	"priority": true, "created_at": true, "updated_at": true,
	"title": true, "status": true, "effort": true, "impact": true,
}

var scanSortColumns = map[string]bool{
	"created_at": true, "updated_at": true, "status": true, "type": true,
}

func parseSortClause(sort string, allowed map[string]bool) string {
	if sort == "" {
		return "created_at DESC"
	}
	desc := strings.HasPrefix(sort, "-")
	col := strings.TrimPrefix(sort, "-")
	if !allowed[col] {
		return "created_at DESC"
	}
	if desc {
		return col + " DESC"
	}
	return col + " ASC"
}
