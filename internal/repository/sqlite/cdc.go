package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sakif/cahier-api/internal/apperror"
	"github.com/sakif/cahier-api/internal/model"
	"github.com/sakif/cahier-api/internal/repository"
)

var _ repository.CDCRepository = (*DB)(nil)
var _ repository.Pinger = (*DB)(nil)

// FLATTENED SECTIONS:
// The cdc table has one nullable TEXT column per section leaf. The column list
// is derived from model.Schema, so the SQL below never names a leaf directly;
// TestCDCColumnsMatchTable guards against the migration drifting from it.
var (
	sectionFields = model.SchemaFields()

	cdcHeaderColumns = []string{"id", "title", "type", "version", "contributors", "last_modified"}
	cdcColumns       = strings.Join(append(append([]string{}, cdcHeaderColumns...), columnNames()...), ", ")
	cdcPlaceholders  = strings.TrimSuffix(strings.Repeat("?, ", len(cdcHeaderColumns)+len(sectionFields)), ", ")
	cdcAssignments   = buildAssignments()
)

func columnNames() []string {
	cols := make([]string, len(sectionFields))
	for i, f := range sectionFields {
		cols[i] = f.Column
	}
	return cols
}

// buildAssignments returns "title = ?, type = ?, ..., <leaf> = ?" for UPDATE.
func buildAssignments() string {
	cols := append(append([]string{}, cdcHeaderColumns[1:]...), columnNames()...)
	for i, c := range cols {
		cols[i] = c + " = ?"
	}
	return strings.Join(cols, ", ")
}

// CreateCDC assigns a random UUID and the current time, then inserts.
func (db *DB) CreateCDC(ctx context.Context, cdc *model.CDC) error {
	cdc.ID = uuid.NewString()
	cdc.LastModified = now()

	args := append([]any{cdc.ID}, cdcValues(cdc)...)
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO cdc (`+cdcColumns+`) VALUES (`+cdcPlaceholders+`)`, args...)
	if err != nil {
		return fmt.Errorf("sqlite: inserting cdc: %w", err)
	}
	return nil
}

func (db *DB) GetCDC(ctx context.Context, id string) (*model.CDC, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+cdcColumns+` FROM cdc WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("sqlite: getting cdc %s: %w", id, err)
	}
	list, err := scanCDCs(rows)
	if err != nil {
		return nil, fmt.Errorf("sqlite: getting cdc %s: %w", id, err)
	}
	if len(list) == 0 {
		return nil, apperror.NotFound("CDC", id)
	}
	return &list[0], nil
}

func (db *DB) ListCDCs(ctx context.Context) ([]model.CDC, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+cdcColumns+` FROM cdc ORDER BY last_modified DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing cdc: %w", err)
	}
	list, err := scanCDCs(rows)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing cdc: %w", err)
	}
	return list, nil
}

// SearchCDCsByTitle matches fragment anywhere in the title, ignoring case.
// SQLite's own LIKE and lower() only fold ASCII, which would miss "Évaluation"
// for "évaluation", so the comparison goes through the casefold function
// registered in casefold.go.
func (db *DB) SearchCDCsByTitle(ctx context.Context, fragment string) ([]model.CDC, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+cdcColumns+` FROM cdc
		 WHERE instr(`+casefoldFunc+`(title), ?) > 0
		 ORDER BY last_modified DESC, id`,
		foldCase(fragment))
	if err != nil {
		return nil, fmt.Errorf("sqlite: searching cdc: %w", err)
	}
	list, err := scanCDCs(rows)
	if err != nil {
		return nil, fmt.Errorf("sqlite: searching cdc: %w", err)
	}
	return list, nil
}

// UpdateCDC rewrites every column of the row and refreshes LastModified.
func (db *DB) UpdateCDC(ctx context.Context, cdc *model.CDC) error {
	cdc.LastModified = now()

	args := append(cdcValues(cdc), cdc.ID)
	result, err := db.conn.ExecContext(ctx,
		`UPDATE cdc SET `+cdcAssignments+` WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("sqlite: updating cdc %s: %w", cdc.ID, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound("CDC", cdc.ID)
	}
	return nil
}

func (db *DB) DeleteCDC(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM cdc WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting cdc %s: %w", id, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound("CDC", id)
	}
	return nil
}

func (db *DB) CDCExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := db.conn.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM cdc WHERE id = ?)`, id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking cdc %s: %w", id, err)
	}
	return exists, nil
}

// cdcValues returns every column value after id, in cdcColumns order.
// database/sql stores a nil *string as NULL.
func cdcValues(cdc *model.CDC) []any {
	vals := []any{cdc.Title, cdc.Type, cdc.Version, cdc.Contributors, cdc.LastModified}
	for _, f := range sectionFields {
		vals = append(vals, f.Get(&cdc.Sections))
	}
	return vals
}

func scanCDCs(rows *sql.Rows) ([]model.CDC, error) {
	defer rows.Close()

	list := []model.CDC{}
	for rows.Next() {
		var c model.CDC
		var lastModified time.Time

		// Scanning into **string allocates for non-NULL and leaves nil for NULL.
		dest := []any{&c.ID, &c.Title, &c.Type, &c.Version, &c.Contributors, &lastModified}
		for _, f := range sectionFields {
			dest = append(dest, f.Addr(&c.Sections))
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scanning cdc row: %w", err)
		}

		c.LastModified = lastModified.UTC()
		c.Sections.DropEmptySections()
		list = append(list, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating cdc rows: %w", err)
	}
	return list, nil
}

// now is truncated to microseconds so a value read back compares equal to
// the one written.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
