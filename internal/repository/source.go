// Package repository implements the Postgres-backed source registry.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jonesrussell/content-discovery/internal/logger"
	"github.com/jonesrussell/content-discovery/internal/models"
)

// ErrNotFound is returned when a source does not exist.
var ErrNotFound = errors.New("source not found")

const sourceColumns = `id, name, url, description, active, check_frequency,
	       last_checked, last_check_status, created_at, updated_at`

type SourceRepository struct {
	db     *sql.DB
	logger logger.Logger
}

func NewSourceRepository(db *sql.DB, log logger.Logger) *SourceRepository {
	return &SourceRepository{
		db:     db,
		logger: log,
	}
}

func (r *SourceRepository) Create(ctx context.Context, source *models.Source) error {
	if err := source.Validate(); err != nil {
		return err
	}

	source.ID = uuid.New().String()
	source.CreatedAt = time.Now()
	source.UpdatedAt = time.Now()

	query := `
		INSERT INTO sources (
			id, name, url, description, active, check_frequency,
			last_check_status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(ctx,
		query,
		source.ID,
		source.Name,
		source.URL,
		source.Description,
		source.Active,
		source.CheckFrequency.String(),
		source.LastCheckStatus,
		source.CreatedAt,
		source.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("insert source: %w", err)
	}

	return nil
}

func (r *SourceRepository) GetByID(ctx context.Context, id string) (*models.Source, error) {
	query := `
		SELECT ` + sourceColumns + `
		FROM sources
		WHERE id = $1
	`

	source, err := scanSource(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query source: %w", err)
	}

	return source, nil
}

// FindSourcesForChecking returns active sources of the given frequency that
// are due: never checked, or last checked longer ago than the tier interval.
func (r *SourceRepository) FindSourcesForChecking(
	ctx context.Context,
	freq models.CheckFrequency,
) ([]models.Source, error) {
	if !freq.Valid() {
		return nil, fmt.Errorf("invalid check frequency %q", freq)
	}

	query := `
		SELECT ` + sourceColumns + `
		FROM sources
		WHERE active = true
		  AND check_frequency = $1
		  AND (last_checked IS NULL OR last_checked < $2)
		ORDER BY last_checked ASC NULLS FIRST
	`

	cutoff := time.Now().Add(-freq.Interval())

	rows, err := r.db.QueryContext(ctx, query, freq.String(), cutoff)
	if err != nil {
		return nil, fmt.Errorf("query due sources: %w", err)
	}
	defer rows.Close()

	return scanSourceRows(rows)
}

// MarkChecked records a check outcome for a source.
func (r *SourceRepository) MarkChecked(ctx context.Context, id, status string, checkedAt time.Time) error {
	query := `
		UPDATE sources
		SET last_checked = $2, last_check_status = $3, updated_at = $4
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id, checkedAt, status, time.Now())
	if err != nil {
		return fmt.Errorf("mark source checked: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// ListFilter holds pagination and filter params for ListPaginated.
type ListFilter struct {
	Limit     int
	Offset    int
	SortBy    string // name, url, check_frequency, last_checked, created_at
	SortOrder string // asc, desc
	Search    string // ILIKE on name or url
	Active    *bool  // nil = all, true = active only, false = inactive only
}

// Count returns the total number of sources matching the filter (ignores Limit/Offset/Sort).
func (r *SourceRepository) Count(ctx context.Context, filter ListFilter) (int, error) {
	whereClause, args := buildListWhere(filter)
	query := `SELECT COUNT(*) FROM sources WHERE 1=1` + whereClause

	var count int
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count sources: %w", err)
	}
	return count, nil
}

const (
	limitParamIdx  = 1
	offsetParamIdx = 2
)

// ListPaginated returns sources with pagination, sorting, and filtering.
func (r *SourceRepository) ListPaginated(ctx context.Context, filter ListFilter) ([]models.Source, error) {
	whereClause, whereArgs := buildListWhere(filter)
	orderClause := buildListOrder(filter)
	argCount := len(whereArgs)
	limitPlaceholder := strconv.Itoa(argCount + limitParamIdx)
	offsetPlaceholder := strconv.Itoa(argCount + offsetParamIdx)
	// whereClause and orderClause use whitelisted column names; limit/offset are integers
	// #nosec G202 -- SQL string built from validated filter, column names from whitelist
	query := `
		SELECT ` + sourceColumns + `
		FROM sources
		WHERE 1=1` + whereClause + orderClause + `
		LIMIT $` + limitPlaceholder + ` OFFSET $` + offsetPlaceholder

	args := append(append([]any{}, whereArgs...), filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sources: %w", err)
	}
	defer rows.Close()

	return scanSourceRows(rows)
}

func (r *SourceRepository) List(ctx context.Context) ([]models.Source, error) {
	query := `
		SELECT ` + sourceColumns + `
		FROM sources
		ORDER BY name
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query sources: %w", err)
	}
	defer rows.Close()

	return scanSourceRows(rows)
}

func (r *SourceRepository) Update(ctx context.Context, source *models.Source) error {
	if err := source.Validate(); err != nil {
		return err
	}

	source.UpdatedAt = time.Now()

	query := `
		UPDATE sources
		SET name = $2, url = $3, description = $4, active = $5,
		    check_frequency = $6, updated_at = $7
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx,
		query,
		source.ID,
		source.Name,
		source.URL,
		source.Description,
		source.Active,
		source.CheckFrequency.String(),
		source.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("update source: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *SourceRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM sources WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete source: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// UpsertSourcesTx upserts multiple sources in a single transaction.
// Returns the count of created and updated sources.
// If any upsert fails, the entire transaction is rolled back.
func (r *SourceRepository) UpsertSourcesTx(ctx context.Context, sources []*models.Source) (created, updated int, err error) {
	if len(sources) == 0 {
		return 0, 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				r.logger.Error("failed to rollback transaction",
					logger.Error(rbErr),
				)
			}
		}
	}()

	for _, source := range sources {
		isCreated, upsertErr := r.upsertSource(ctx, tx, source)
		if upsertErr != nil {
			err = fmt.Errorf("upsert source %q: %w", source.Name, upsertErr)
			return 0, 0, err
		}
		if isCreated {
			created++
		} else {
			updated++
		}
	}

	if commitErr := tx.Commit(); commitErr != nil {
		err = fmt.Errorf("commit transaction: %w", commitErr)
		return 0, 0, err
	}

	return created, updated, nil
}

// upsertSource inserts or updates a source within an existing transaction.
// Returns true if the source was created (new), false if updated (existed).
// Uses PostgreSQL's ON CONFLICT with xmax trick to determine insert vs update.
func (r *SourceRepository) upsertSource(ctx context.Context, tx *sql.Tx, source *models.Source) (bool, error) {
	now := time.Now()

	// Generate new ID if not set (will be overwritten if exists)
	if source.ID == "" {
		source.ID = uuid.New().String()
	}
	source.CreatedAt = now
	source.UpdatedAt = now

	query := `
		INSERT INTO sources (
			id, name, url, description, active, check_frequency,
			last_check_status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (name) DO UPDATE SET
			url = EXCLUDED.url,
			description = EXCLUDED.description,
			active = EXCLUDED.active,
			check_frequency = EXCLUDED.check_frequency,
			updated_at = EXCLUDED.updated_at
		RETURNING id, (xmax = 0) AS is_insert
	`

	var returnedID string
	var isInsert bool
	err := tx.QueryRowContext(ctx,
		query,
		source.ID,
		source.Name,
		source.URL,
		source.Description,
		source.Active,
		source.CheckFrequency.String(),
		source.LastCheckStatus,
		source.CreatedAt,
		source.UpdatedAt,
	).Scan(&returnedID, &isInsert)

	if err != nil {
		return false, fmt.Errorf("upsert source: %w", err)
	}

	// Update the source ID (may have changed if it was an update)
	source.ID = returnedID

	return isInsert, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSource(row rowScanner) (*models.Source, error) {
	var source models.Source
	var freq string
	var lastChecked sql.NullTime
	var lastStatus sql.NullString

	if err := row.Scan(
		&source.ID,
		&source.Name,
		&source.URL,
		&source.Description,
		&source.Active,
		&freq,
		&lastChecked,
		&lastStatus,
		&source.CreatedAt,
		&source.UpdatedAt,
	); err != nil {
		return nil, err
	}

	source.CheckFrequency = models.CheckFrequency(freq)
	if lastChecked.Valid {
		t := lastChecked.Time
		source.LastChecked = &t
	}
	if lastStatus.Valid {
		source.LastCheckStatus = lastStatus.String
	}

	return &source, nil
}

func scanSourceRows(rows *sql.Rows) ([]models.Source, error) {
	sources := make([]models.Source, 0)
	for rows.Next() {
		source, err := scanSource(rows)
		if err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}
		sources = append(sources, *source)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sources: %w", err)
	}
	return sources, nil
}

func buildListWhere(filter ListFilter) (whereClause string, args []any) {
	var clauses []string
	args = make([]any, 0)
	pos := 1

	if filter.Search != "" {
		clauses = append(clauses, fmt.Sprintf("(name ILIKE $%d OR url ILIKE $%d)", pos, pos))
		args = append(args, "%"+filter.Search+"%")
		pos++
	}
	if filter.Active != nil {
		clauses = append(clauses, fmt.Sprintf("active = $%d", pos))
		args = append(args, *filter.Active)
	}

	if len(clauses) == 0 {
		return "", args
	}
	whereClause = " AND " + strings.Join(clauses, " AND ")
	return whereClause, args
}

func buildListOrder(filter ListFilter) string {
	sortBy := filter.SortBy
	if sortBy == "" {
		sortBy = "name"
	}
	validSort := map[string]bool{
		"name": true, "url": true, "check_frequency": true,
		"last_checked": true, "created_at": true,
	}
	if !validSort[sortBy] {
		sortBy = "name"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}
	return fmt.Sprintf(" ORDER BY %s %s", sortBy, order)
}
