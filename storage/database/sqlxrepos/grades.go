package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/grades"
)

type gradeRow struct {
	ID        string    `db:"id"`
	StudentID string    `db:"student_id"`
	CourseID  string    `db:"course_id"`
	Grade     float64   `db:"grade"`
	UpdatedBy string    `db:"updated_by"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r gradeRow) toDomain() grades.Grade {
	return grades.Grade{
		ID:        r.ID,
		StudentID: r.StudentID,
		CourseID:  r.CourseID,
		Grade:     r.Grade,
		UpdatedBy: r.UpdatedBy,
		UpdatedAt: r.UpdatedAt,
	}
}

type gradeRepository struct {
	db *sqlx.DB
}

var _ grades.Repository = (*gradeRepository)(nil) // interface compliance check

func NewGradeRepository(db *sqlx.DB) *gradeRepository {
	return &gradeRepository{db: db}
}

func (repo *gradeRepository) GetCourseGrades(ctx context.Context, courseID string) ([]grades.Grade, error) {
	var rows []gradeRow
	const query = `SELECT id, student_id, course_id, grade, updated_by, updated_at FROM grades WHERE course_id = $1`
	if err := repo.db.SelectContext(ctx, &rows, query, courseID); err != nil {
		return nil, errors.Wrap(err, "getting course grades")
	}
	cells := make([]grades.Grade, 0, len(rows))
	for _, row := range rows {
		cells = append(cells, row.toDomain())
	}
	return cells, nil
}

// UpsertGrades writes the whole batch in one transaction; the (student_id,
// course_id) unique constraint turns re-submissions into overwrites.
func (repo *gradeRepository) UpsertGrades(ctx context.Context, cells []grades.Grade) (int, error) {
	dbTx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, "beginning grades transaction")
	}
	defer func() { _ = dbTx.Rollback() }()

	const query = `
		INSERT INTO grades (id, student_id, course_id, grade, updated_by, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (student_id, course_id)
		DO UPDATE SET grade = EXCLUDED.grade, updated_by = EXCLUDED.updated_by, updated_at = EXCLUDED.updated_at`
	for _, cell := range cells {
		if _, err = dbTx.ExecContext(ctx, query,
			uuid.New().String(), cell.StudentID, cell.CourseID, cell.Grade, cell.UpdatedBy, cell.UpdatedAt,
		); err != nil {
			return 0, errors.Wrap(err, "upserting grade cell")
		}
	}

	if err = dbTx.Commit(); err != nil {
		return 0, errors.Wrap(err, "committing grades transaction")
	}
	return len(cells), nil
}
