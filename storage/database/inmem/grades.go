package inmemdb

import (
	"context"

	"github.com/google/uuid"

	"github.com/trezcool/shule/core/grades"
)

type gradeRepository struct {
	db *gradeTable
}

var _ grades.Repository = (*gradeRepository)(nil) // interface compliance check

func NewGradeRepository(db *DB) grades.Repository {
	return &gradeRepository{db: db.grade}
}

func (repo *gradeRepository) GetCourseGrades(_ context.Context, courseID string) ([]grades.Grade, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	cells := make([]grades.Grade, 0)
	for key, cell := range repo.db.table {
		if key.courseID == courseID {
			cells = append(cells, *cell)
		}
	}
	return cells, nil
}

func (repo *gradeRepository) UpsertGrades(_ context.Context, cells []grades.Grade) (int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, cell := range cells {
		cell := cell
		key := gradeKey{studentID: cell.StudentID, courseID: cell.CourseID}
		if orig, ok := repo.db.table[key]; ok {
			cell.ID = orig.ID // overwrite keeps the row identity
		} else {
			cell.ID = uuid.New().String()
		}
		repo.db.table[key] = &cell
	}
	return len(cells), nil
}
