package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/dbpg"

	"neksa/internal/model"
)

var (
	ErrEventNotFound        = errors.New("event not found")
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrSlugTaken            = errors.New("slug already taken")
)

type Repository interface {
	CreateEvent(ctx context.Context, e *model.Event) (int64, error)
	GetEventByID(ctx context.Context, id int64) (*model.Event, error)
	GetEventBySlugOrID(ctx context.Context, slugOrID string) (*model.Event, error)
	GetAllEvents(ctx context.Context) ([]model.Event, error)
	InsertRegistration(ctx context.Context, reg *model.Registration) (int64, error)
	InsertRegistrations(ctx context.Context, regs []model.Registration) ([]int64, error)
	GetRegistrationByID(ctx context.Context, id int64) (*model.Registration, error)
	GetRegistrationsByEventID(ctx context.Context, eventID int64) ([]model.Registration, error)
	ConditionalSetAttended(ctx context.Context, registrationID, eventID int64) (int64, error)
	UpdateRegistrationFields(ctx context.Context, id int64, patch RegistrationPatch) error
	CountRegistrations(ctx context.Context, eventID int64) (int, error)
	MigrateUp(migrationsDir string) error
	MigrateDown(migrationsDir string) error
}

// RegistrationPatch is a partial field correction applied by an
// administrative override. Nil fields are left untouched. Status may move in
// either direction here; the scan path never uses this.
type RegistrationPatch struct {
	FullName *string
	Title    *string
	Email    *string
	Phone    *string
	DOB      *string
	Gender   *string
	Status   *model.Status
}

type repository struct {
	db  *dbpg.DB
	log *zerolog.Logger
}

func NewRepository(db *dbpg.DB, log *zerolog.Logger) (Repository, error) {
	if db == nil {
		return nil, fmt.Errorf("db cannot be nil")
	}
	if err := db.Master.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping DB: %w", err)
	}
	return &repository{db: db, log: log}, nil
}

func (r *repository) MigrateUp(migrationsDir string) error {
	files, err := filepath.Glob(filepath.Join(migrationsDir, "*.up.sql"))
	if err != nil {
		return fmt.Errorf("failed to read migration files: %w", err)
	}

	for _, file := range files {
		sqlBytes, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", file, err)
		}

		if _, err := r.db.ExecContext(context.Background(), string(sqlBytes)); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", file, err)
		}
	}

	r.log.Info().Msgf("Migrations applied successfully from %s", migrationsDir)
	return nil
}

func (r *repository) MigrateDown(migrationsDir string) error {
	files, err := filepath.Glob(filepath.Join(migrationsDir, "*.down.sql"))
	if err != nil {
		return fmt.Errorf("failed to read rollback files: %w", err)
	}

	for _, file := range files {
		sqlBytes, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read rollback file %s: %w", file, err)
		}

		if _, err := r.db.ExecContext(context.Background(), string(sqlBytes)); err != nil {
			return fmt.Errorf("failed to rollback migration %s: %w", file, err)
		}
	}

	r.log.Info().Msgf("Migrations rolled back successfully from %s", migrationsDir)
	return nil
}

func (r *repository) CreateEvent(ctx context.Context, e *model.Event) (int64, error) {
	query := `
		INSERT INTO events (name, slug, date, address, description)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	row := r.db.QueryRowContext(ctx, query,
		e.Name, nullable(e.Slug), e.Date, e.Address, e.Description,
	)

	var id int64
	if err := row.Scan(&id); err != nil {
		if strings.Contains(err.Error(), "events_slug_key") {
			return 0, ErrSlugTaken
		}
		return 0, fmt.Errorf("failed to insert event: %w", err)
	}
	return id, nil
}

const eventColumns = `id, name, slug, date, address, description, created_at, updated_at`

func (r *repository) GetEventByID(ctx context.Context, id int64) (*model.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	return r.scanEvent(r.db.QueryRowContext(ctx, query, id))
}

func (r *repository) getEventBySlug(ctx context.Context, slug string) (*model.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE slug = $1`
	return r.scanEvent(r.db.QueryRowContext(ctx, query, slug))
}

// GetEventBySlugOrID resolves the public event locator: slug first, then a
// plain id lookup when the input is numeric. A numeric slug therefore shadows
// any id it happens to collide with.
func (r *repository) GetEventBySlugOrID(ctx context.Context, slugOrID string) (*model.Event, error) {
	event, err := r.getEventBySlug(ctx, slugOrID)
	if err == nil {
		return event, nil
	}
	if !errors.Is(err, ErrEventNotFound) {
		return nil, err
	}
	id, convErr := strconv.ParseInt(slugOrID, 10, 64)
	if convErr != nil {
		return nil, ErrEventNotFound
	}
	return r.GetEventByID(ctx, id)
}

func (r *repository) scanEvent(row *sql.Row) (*model.Event, error) {
	var e model.Event
	var slug sql.NullString
	if err := row.Scan(
		&e.ID, &e.Name, &slug, &e.Date, &e.Address, &e.Description,
		&e.CreatedAt, &e.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to scan event: %w", err)
	}
	e.Slug = slug.String
	return &e, nil
}

func (r *repository) GetAllEvents(ctx context.Context) ([]model.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events ORDER BY date DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		var e model.Event
		var slug sql.NullString
		if err := rows.Scan(
			&e.ID, &e.Name, &slug, &e.Date, &e.Address, &e.Description,
			&e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		e.Slug = slug.String
		events = append(events, e)
	}

	return events, rows.Err()
}

const registrationColumns = `id, event_id, full_name, title, email, phone, dob, gender, status, created_at, updated_at`

func (r *repository) InsertRegistration(ctx context.Context, reg *model.Registration) (int64, error) {
	query := `
		INSERT INTO registrations (event_id, full_name, title, email, phone, dob, gender, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		reg.EventID, reg.FullName, reg.Title, reg.Email, reg.Phone,
		reg.DOB, reg.Gender, reg.Status,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create registration: %w", err)
	}
	return id, nil
}

// InsertRegistrations bulk-inserts validated drafts in one transaction. There
// is no cross-row retry: if the store rejects the batch, the whole insert
// fails as a single error and no row is persisted.
func (r *repository) InsertRegistrations(ctx context.Context, regs []model.Registration) ([]int64, error) {
	if len(regs) == 0 {
		return nil, nil
	}

	tx, err := r.db.Master.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	query := `
		INSERT INTO registrations (event_id, full_name, title, email, phone, dob, gender, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	ids := make([]int64, 0, len(regs))
	for _, reg := range regs {
		var id int64
		err := tx.QueryRowContext(ctx, query,
			reg.EventID, reg.FullName, reg.Title, reg.Email, reg.Phone,
			reg.DOB, reg.Gender, reg.Status,
		).Scan(&id)
		if err != nil {
			_ = tx.Rollback()
			return nil, fmt.Errorf("failed to bulk insert registrations: %w", err)
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit bulk insert: %w", err)
	}

	return ids, nil
}

func (r *repository) GetRegistrationByID(ctx context.Context, id int64) (*model.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations WHERE id = $1`

	var reg model.Registration
	if err := r.db.QueryRowContext(ctx, query, id).Scan(
		&reg.ID,
		&reg.EventID,
		&reg.FullName,
		&reg.Title,
		&reg.Email,
		&reg.Phone,
		&reg.DOB,
		&reg.Gender,
		&reg.Status,
		&reg.CreatedAt,
		&reg.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("failed to get registration: %w", err)
	}

	return &reg, nil
}

func (r *repository) GetRegistrationsByEventID(ctx context.Context, eventID int64) ([]model.Registration, error) {
	query := `
		SELECT ` + registrationColumns + `
		FROM registrations
		WHERE event_id = $1
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get registrations: %w", err)
	}
	defer rows.Close()

	var regs []model.Registration
	for rows.Next() {
		var reg model.Registration
		if err := rows.Scan(
			&reg.ID,
			&reg.EventID,
			&reg.FullName,
			&reg.Title,
			&reg.Email,
			&reg.Phone,
			&reg.DOB,
			&reg.Gender,
			&reg.Status,
			&reg.CreatedAt,
			&reg.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan registration: %w", err)
		}
		regs = append(regs, reg)
	}

	return regs, rows.Err()
}

// ConditionalSetAttended flips a registration to attended only when it still
// belongs to the given event and is still pending. The predicate lives in the
// WHERE clause, so the flip is atomic at the store: of N concurrent scans of
// one ticket exactly one sees rowsAffected == 1.
func (r *repository) ConditionalSetAttended(ctx context.Context, registrationID, eventID int64) (int64, error) {
	query := `
		UPDATE registrations
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND event_id = $3 AND status = $4
	`

	res, err := r.db.ExecContext(ctx, query,
		model.StatusAttended, registrationID, eventID, model.StatusPending,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to set registration attended: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected, nil
}

func (r *repository) UpdateRegistrationFields(ctx context.Context, id int64, patch RegistrationPatch) error {
	set := make([]string, 0, 8)
	args := make([]any, 0, 8)
	add := func(column string, value any) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.FullName != nil {
		add("full_name", *patch.FullName)
	}
	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Email != nil {
		add("email", *patch.Email)
	}
	if patch.Phone != nil {
		add("phone", *patch.Phone)
	}
	if patch.DOB != nil {
		add("dob", *patch.DOB)
	}
	if patch.Gender != nil {
		add("gender", *patch.Gender)
	}
	if patch.Status != nil {
		add("status", *patch.Status)
	}
	if len(set) == 0 {
		return nil
	}

	args = append(args, id)
	query := fmt.Sprintf(
		"UPDATE registrations SET %s, updated_at = NOW() WHERE id = $%d",
		strings.Join(set, ", "), len(args),
	)

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update registration fields: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrRegistrationNotFound
	}
	return nil
}

func (r *repository) CountRegistrations(ctx context.Context, eventID int64) (int, error) {
	query := `SELECT COUNT(*) FROM registrations WHERE event_id = $1`

	var count int
	if err := r.db.QueryRowContext(ctx, query, eventID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count registrations: %w", err)
	}

	return count, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
