package grades

import (
	"context"
	"time"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/user"
)

type (
	Repository interface {
		GetCourseGrades(ctx context.Context, courseID string) ([]Grade, error)
		// UpsertGrades inserts-or-updates all cells, keyed by (student_id,
		// course_id), within one transaction: either every cell is written or
		// none is.
		UpsertGrades(ctx context.Context, cells []Grade) (int, error)
	}

	Service interface {
		LoadGrades(ctx context.Context, courseID string) ([]Grade, error)
		SaveGrades(ctx context.Context, actor user.Actor, batch GradeBatch) (int, error)
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) LoadGrades(ctx context.Context, courseID string) ([]Grade, error) {
	return svc.repo.GetCourseGrades(ctx, courseID)
}

// SaveGrades upserts a batch of grade cells for one course. Teacher-only; the
// whole batch is validated before any write so a single out-of-range value
// rejects everything.
func (svc *service) SaveGrades(ctx context.Context, actor user.Actor, batch GradeBatch) (int, error) {
	if !actor.Role.IsTeacher() {
		return 0, core.ErrPermissionDenied
	}
	if err := batch.Validate(); err != nil {
		return 0, err
	}

	now := time.Now().UTC()
	cells := make([]Grade, 0, len(batch.Entries))
	for _, e := range batch.Entries {
		cells = append(cells, Grade{
			StudentID: e.StudentID,
			CourseID:  batch.CourseID,
			Grade:     e.Grade,
			UpdatedBy: actor.ID,
			UpdatedAt: now,
		})
	}
	return svc.repo.UpsertGrades(ctx, cells)
}
