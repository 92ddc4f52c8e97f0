package postgres

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/alfredjeanlab/forge/internal/model"
)

// scannable is the interface satisfied by both *sql.Row and *sql.Rows.
type scannable interface {
	Scan(dest ...any) error
}

// scanIdea scans a single row into a model.Idea.
// The row must contain columns in the order defined by ideaColumns.
func scanIdea(row scannable) (*model.Idea, error) {
	var i model.Idea
	var (
		scanID    sql.NullString
		decidedAt sql.NullTime
		fields    []byte
	)

	err := row.Scan(
		&i.ID,
		&i.Title,
		&i.Summary,
		&i.Notes,
		&i.Status,
		&i.Priority,
		&i.Framework,
		&scanID,
		&i.Effort,
		&i.Impact,
		&i.Author,
		&i.CreatedAt,
		&i.UpdatedAt,
		&decidedAt,
		&i.DecidedBy,
		&fields,
	)
	if err != nil {
		return nil, err
	}

	i.ScanID = scanID.String
	if decidedAt.Valid {
		t := decidedAt.Time
		i.DecidedAt = &t
	}
	if len(fields) > 0 {
		i.Fields = json.RawMessage(fields)
	}

	return &i, nil
}

// scanIdeaWithTotal scans a row that has a leading total_count column
// followed by the standard idea columns. Used by queryListIdeas with
// COUNT(*) OVER().
func scanIdeaWithTotal(row *sql.Rows) (*model.Idea, int, error) {
	var total int
	var i model.Idea
	var (
		scanID    sql.NullString
		decidedAt sql.NullTime
		fields    []byte
	)

	err := row.Scan(
		&total,
		&i.ID,
		&i.Title,
		&i.Summary,
		&i.Notes,
		&i.Status,
		&i.Priority,
		&i.Framework,
		&scanID,
		&i.Effort,
		&i.Impact,
		&i.Author,
		&i.CreatedAt,
		&i.UpdatedAt,
		&decidedAt,
		&i.DecidedBy,
		&fields,
	)
	if err != nil {
		return nil, 0, err
	}

	i.ScanID = scanID.String
	if decidedAt.Valid {
		t := decidedAt.Time
		i.DecidedAt = &t
	}
	if len(fields) > 0 {
		i.Fields = json.RawMessage(fields)
	}

	return &i, total, nil
}

// scanScanJob scans a single row into a model.ScanJob.
// The row must contain columns in the order defined by scanColumns.
func scanScanJob(row scannable) (*model.ScanJob, error) {
	var j model.ScanJob
	var startedAt, endedAt sql.NullTime

	err := row.Scan(
		&j.ID,
		&j.Type,
		&j.Framework,
		&j.Root,
		&j.Status,
		&j.Error,
		&j.CreatedBy,
		&j.CreatedAt,
		&j.UpdatedAt,
		&startedAt,
		&endedAt,
		&j.Findings,
		&j.Ideas,
	)
	if err != nil {
		return nil, err
	}

	if startedAt.Valid {
		t := startedAt.Time
		j.StartedAt = &t
	}
	if endedAt.Valid {
		t := endedAt.Time
		j.EndedAt = &t
	}

	return &j, nil
}

// scanScanJobWithTotal scans a row with a leading total_count column
// followed by the standard scan columns.
func scanScanJobWithTotal(row *sql.Rows) (*model.ScanJob, int, error) {
	var total int
	var j model.ScanJob
	var startedAt, endedAt sql.NullTime

	err := row.Scan(
		&total,
		&j.ID,
		&j.Type,
		&j.Framework,
		&j.Root,
		&j.Status,
		&j.Error,
		&j.CreatedBy,
		&j.CreatedAt,
		&j.UpdatedAt,
		&startedAt,
		&endedAt,
		&j.Findings,
		&j.Ideas,
	)
	if err != nil {
		return nil, 0, err
	}

	if startedAt.Valid {
		t := startedAt.Time
		j.StartedAt = &t
	}
	if endedAt.Valid {
		t := endedAt.Time
		j.EndedAt = &t
	}

	return &j, total, nil
}

// scanFinding scans a single row into a model.Finding.
func scanFinding(row scannable) (*model.Finding, error) {
	var f model.Finding
	err := row.Scan(
		&f.ID,
		&f.ScanID,
		&f.Adapter,
		&f.Kind,
		&f.File,
		&f.Line,
		&f.Symbol,
		&f.Detail,
		&f.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// scanFindings scans multiple rows into a slice of model.Finding pointers.
func scanFindings(rows *sql.Rows) ([]*model.Finding, error) {
	var findings []*model.Finding
	for rows.Next() {
		f, err := scanFinding(rows)
		if err != nil {
			return nil, err
		}
		findings = append(findings, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return findings, nil
}

// marshalSpecParts serializes the spec's structured columns for JSONB storage.
func marshalSpecParts(s *model.RefactorSpec) (target, operations, constraints []byte, err error) {
	target, err = json.Marshal(s.Target)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("marshal target: %w", err)
	}
	operations, err = json.Marshal(s.Operations)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("marshal operations: %w", err)
	}
	constraints, err = json.Marshal(s.Constraints)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("marshal constraints: %w", err)
	}
	return target, operations, constraints, nil
}

// unmarshalSpecParts populates the spec's structured fields from JSONB columns.
func unmarshalSpecParts(s *model.RefactorSpec, target, operations, constraints []byte) error {
	if len(target) > 0 {
		if err := json.Unmarshal(target, &s.Target); err != nil {
			return fmt.Errorf("unmarshal target: %w", err)
		}
	}
	if len(operations) > 0 {
		if err := json.Unmarshal(operations, &s.Operations); err != nil {
			return fmt.Errorf("unmarshal operations: %w", err)
		}
	}
	if len(constraints) > 0 {
		if err := json.Unmarshal(constraints, &s.Constraints); err != nil {
			return fmt.Errorf("unmarshal constraints: %w", err)
		}
	}
	return nil
}

// scanSpec scans a single row into a model.RefactorSpec.
// The row must contain columns in the order defined by specColumns.
func scanSpec(row scannable) (*model.RefactorSpec, error) {
	var s model.RefactorSpec
	var (
		target      []byte
		operations  []byte
		constraints []byte
		ideaID      sql.NullString
	)

	err := row.Scan(
		&s.ID,
		&s.Name,
		&s.Version,
		&s.Description,
		&target,
		&operations,
		&constraints,
		&ideaID,
		&s.CreatedBy,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	s.IdeaID = ideaID.String
	if err := unmarshalSpecParts(&s, target, operations, constraints); err != nil {
		return nil, err
	}

	return &s, nil
}

// scanSpecWithTotal scans a row with a leading total_count column
// followed by the standard spec columns.
func scanSpecWithTotal(row *sql.Rows) (*model.RefactorSpec, int, error) {
	var total int
	var s model.RefactorSpec
	var (
		target      []byte
		operations  []byte
		constraints []byte
		ideaID      sql.NullString
	)

	err := row.Scan(
		&total,
		&s.ID,
		&s.Name,
		&s.Version,
		&s.Description,
		&target,
		&operations,
		&constraints,
		&ideaID,
		&s.CreatedBy,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, 0, err
	}

	s.IdeaID = ideaID.String
	if err := unmarshalSpecParts(&s, target, operations, constraints); err != nil {
		return nil, 0, err
	}

	return &s, total, nil
}

// scanComment scans a single row into a model.Comment.
func scanComment(row scannable) (*model.Comment, error) {
	var c model.Comment
	var author sql.NullString
	err := row.Scan(
		&c.ID,
		&c.IdeaID,
		&author,
		&c.Text,
		&c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.Author = author.String
	return &c, nil
}

// scanComments scans multiple rows into a slice of model.Comment pointers.
func scanComments(rows *sql.Rows) ([]*model.Comment, error) {
	var comments []*model.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return comments, nil
}

// scanEvent scans a single row into a model.Event.
func scanEvent(row scannable) (*model.Event, error) {
	var e model.Event
	var (
		actor   sql.NullString
		payload []byte
	)
	err := row.Scan(&e.ID, &e.Topic, &e.EntityID, &actor, &payload, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	e.Actor = actor.String
	if len(payload) > 0 {
		e.Payload = json.RawMessage(payload)
	}
	return &e, nil
}

// scanEvents scans multiple rows into a slice of model.Event pointers.
func scanEvents(rows *sql.Rows) ([]*model.Event, error) {
	var events []*model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// scanConfig scans a single row into a model.Config.
func scanConfig(row scannable) (*model.Config, error) {
	var c model.Config
	var value []byte
	err := row.Scan(&c.Key, &value, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.Value = json.RawMessage(value)
	return &c, nil
}

// scanConfigs scans multiple rows into a slice of model.Config pointers.
func scanConfigs(rows *sql.Rows) ([]*model.Config, error) {
	var configs []*model.Config
	for rows.Next() {
		c, err := scanConfig(rows)
		if err != nil {
			return nil, err
		}
		configs = append(configs, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return configs, nil
}

// nullTimePtr converts a *time.Time to a sql.NullTime.
func nullTimePtr(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// nullString converts a string to sql.NullString; empty string is null.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// jsonbBytes converts json.RawMessage to a []byte suitable for JSONB columns.
func jsonbBytes(m json.RawMessage) []byte {
	if len(m) == 0 {
		return nil
	}
	return []byte(m)
}
