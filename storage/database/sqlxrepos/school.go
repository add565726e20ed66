package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/school"
)

type announcementRow struct {
	ID        string    `db:"id"`
	Title     string    `db:"title"`
	Content   string    `db:"content"`
	CreatedBy string    `db:"created_by"`
	CreatedAt time.Time `db:"created_at"`
}

type eventRow struct {
	ID          string      `db:"id"`
	Title       string      `db:"title"`
	Description null.String `db:"description"`
	Date        time.Time   `db:"date"`
	Location    null.String `db:"location"`
	CreatedBy   string      `db:"created_by"`
	CreatedAt   time.Time   `db:"created_at"`
}

type settingsRow struct {
	Name      string      `db:"name"`
	Address   null.String `db:"address"`
	Phone     null.String `db:"phone"`
	Email     null.String `db:"email"`
	UpdatedAt time.Time   `db:"updated_at"`
}

type schoolRepository struct {
	db *sqlx.DB
}

var _ school.Repository = (*schoolRepository)(nil) // interface compliance check

func NewSchoolRepository(db *sqlx.DB) *schoolRepository {
	return &schoolRepository{db: db}
}

func (repo *schoolRepository) CreateAnnouncement(ctx context.Context, a school.Announcement) (school.Announcement, error) {
	a.ID = uuid.New().String()
	a.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO announcements (id, title, content, created_by, created_at) VALUES ($1, $2, $3, $4, $5)`
	if _, err := repo.db.ExecContext(ctx, query, a.ID, a.Title, a.Content, a.CreatedBy, a.CreatedAt); err != nil {
		return school.Announcement{}, errors.Wrap(err, "inserting announcement")
	}
	return a, nil
}

func (repo *schoolRepository) QueryAnnouncements(ctx context.Context, ordering []core.DBOrdering) ([]school.Announcement, error) {
	var rows []announcementRow
	const query = `SELECT id, title, content, created_by, created_at FROM announcements ORDER BY created_at DESC`
	if err := repo.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, errors.Wrap(err, "querying announcements")
	}
	anns := make([]school.Announcement, 0, len(rows))
	for _, row := range rows {
		anns = append(anns, school.Announcement(row))
	}
	return anns, nil
}

func (repo *schoolRepository) CreateEvent(ctx context.Context, e school.Event) (school.Event, error) {
	e.ID = uuid.New().String()
	e.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO events (id, title, description, date, location, created_by, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := repo.db.ExecContext(ctx, query,
		e.ID, e.Title, null.NewString(e.Description, e.Description != ""), e.Date,
		null.NewString(e.Location, e.Location != ""), e.CreatedBy, e.CreatedAt,
	); err != nil {
		return school.Event{}, errors.Wrap(err, "inserting event")
	}
	return e, nil
}

func (repo *schoolRepository) QueryEvents(ctx context.Context, ordering []core.DBOrdering) ([]school.Event, error) {
	var rows []eventRow
	const query = `SELECT id, title, description, date, location, created_by, created_at FROM events ORDER BY date ASC`
	if err := repo.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, errors.Wrap(err, "querying events")
	}
	events := make([]school.Event, 0, len(rows))
	for _, row := range rows {
		events = append(events, school.Event{
			ID:          row.ID,
			Title:       row.Title,
			Description: row.Description.String,
			Date:        row.Date,
			Location:    row.Location.String,
			CreatedBy:   row.CreatedBy,
			CreatedAt:   row.CreatedAt,
		})
	}
	return events, nil
}

func (repo *schoolRepository) GetSettings(ctx context.Context) (school.Settings, error) {
	var row settingsRow
	const query = `SELECT name, address, phone, email, updated_at FROM school_settings WHERE id = 1`
	if err := repo.db.GetContext(ctx, &row, query); err != nil {
		if err == sql.ErrNoRows {
			return school.Settings{}, school.ErrSettingsNotFound
		}
		return school.Settings{}, errors.Wrap(err, "getting school settings")
	}
	return school.Settings{
		Name:      row.Name,
		Address:   row.Address.String,
		Phone:     row.Phone.String,
		Email:     row.Email.String,
		UpdatedAt: row.UpdatedAt,
	}, nil
}

func (repo *schoolRepository) SaveSettings(ctx context.Context, s school.Settings) (school.Settings, error) {
	s.UpdatedAt = time.Now().UTC()
	const query = `
		INSERT INTO school_settings (id, name, address, phone, email, updated_at)
		VALUES (1, $1, $2, $3, $4, $5)
		ON CONFLICT (id)
		DO UPDATE SET name = EXCLUDED.name, address = EXCLUDED.address, phone = EXCLUDED.phone, email = EXCLUDED.email, updated_at = EXCLUDED.updated_at`
	if _, err := repo.db.ExecContext(ctx, query,
		s.Name, null.NewString(s.Address, s.Address != ""), null.NewString(s.Phone, s.Phone != ""),
		null.NewString(s.Email, s.Email != ""), s.UpdatedAt,
	); err != nil {
		return school.Settings{}, errors.Wrap(err, "saving school settings")
	}
	return s, nil
}
