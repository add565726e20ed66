package grades_test

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/grades"
	"github.com/trezcool/shule/core/user"
	inmemdb "github.com/trezcool/shule/storage/database/inmem"
)

var (
	teacher   = user.Actor{ID: uuid.New().String(), Role: user.RoleTeacher}
	principal = user.Actor{ID: uuid.New().String(), Role: user.RolePrincipal}
	staff     = user.Actor{ID: uuid.New().String(), Role: user.RoleStaff}
	student   = user.Actor{ID: uuid.New().String(), Role: user.RoleStudent}
)

func setup(t *testing.T) grades.Service {
	t.Helper()
	core.Conf = &core.Config{TestMode: true}
	return grades.NewService(inmemdb.NewGradeRepository(inmemdb.Open()))
}

func Test_service_SaveGrades(t *testing.T) {
	ctx := context.Background()
	s1 := uuid.New().String()
	s2 := uuid.New().String()

	t.Run("teacher saves a valid batch", func(t *testing.T) {
		svc := setup(t)

		n, err := svc.SaveGrades(ctx, teacher, grades.GradeBatch{
			CourseID: "math-101",
			Entries: []grades.GradeEntry{
				{StudentID: s1, Grade: 85},
				{StudentID: s2, Grade: 0},
			},
		})
		if err != nil {
			t.Fatalf("SaveGrades() failed: %v", err)
		}
		if n != 2 {
			t.Errorf("saved = %d, want 2", n)
		}

		cells, err := svc.LoadGrades(ctx, "math-101")
		if err != nil {
			t.Fatalf("LoadGrades() failed: %v", err)
		}
		if len(cells) != 2 {
			t.Fatalf("cells = %d, want 2", len(cells))
		}
		for _, cell := range cells {
			if cell.UpdatedBy != teacher.ID {
				t.Errorf("updated_by = %s, want %s", cell.UpdatedBy, teacher.ID)
			}
			if cell.UpdatedAt.IsZero() {
				t.Error("updated_at not set")
			}
		}
	})

	t.Run("one out-of-range cell rejects the whole batch", func(t *testing.T) {
		svc := setup(t)

		_, err := svc.SaveGrades(ctx, teacher, grades.GradeBatch{
			CourseID: "math-101",
			Entries: []grades.GradeEntry{
				{StudentID: s1, Grade: 85},
				{StudentID: s2, Grade: 150},
			},
		})
		if err == nil {
			t.Fatal("SaveGrades() expected a validation error")
		}

		cells, err := svc.LoadGrades(ctx, "math-101")
		if err != nil {
			t.Fatalf("LoadGrades() failed: %v", err)
		}
		if len(cells) != 0 {
			t.Errorf("cells = %d, want 0 (zero partial writes)", len(cells))
		}
	})

	t.Run("invalid batches", func(t *testing.T) {
		svc := setup(t)

		tests := []struct {
			name  string
			batch grades.GradeBatch
		}{
			{name: "no course", batch: grades.GradeBatch{Entries: []grades.GradeEntry{{StudentID: s1, Grade: 50}}}},
			{name: "no entries", batch: grades.GradeBatch{CourseID: "math-101"}},
			{name: "empty entries", batch: grades.GradeBatch{CourseID: "math-101", Entries: []grades.GradeEntry{}}},
			{name: "negative grade", batch: grades.GradeBatch{CourseID: "math-101", Entries: []grades.GradeEntry{{StudentID: s1, Grade: -1}}}},
			{name: "grade above 100", batch: grades.GradeBatch{CourseID: "math-101", Entries: []grades.GradeEntry{{StudentID: s1, Grade: 100.5}}}},
			{name: "malformed student ID", batch: grades.GradeBatch{CourseID: "math-101", Entries: []grades.GradeEntry{{StudentID: "lol", Grade: 50}}}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				if _, err := svc.SaveGrades(ctx, teacher, tt.batch); err == nil {
					t.Error("SaveGrades() expected a validation error")
				}
			})
		}
	})

	t.Run("boundary grades 0 and 100 are accepted", func(t *testing.T) {
		svc := setup(t)

		n, err := svc.SaveGrades(ctx, teacher, grades.GradeBatch{
			CourseID: "math-101",
			Entries: []grades.GradeEntry{
				{StudentID: s1, Grade: 0},
				{StudentID: s2, Grade: 100},
			},
		})
		if err != nil {
			t.Fatalf("SaveGrades() failed: %v", err)
		}
		if n != 2 {
			t.Errorf("saved = %d, want 2", n)
		}
	})

	t.Run("teacher only", func(t *testing.T) {
		svc := setup(t)
		unknown := user.Actor{ID: uuid.New().String(), Role: user.Role("superadmin")}

		batch := grades.GradeBatch{
			CourseID: "math-101",
			Entries:  []grades.GradeEntry{{StudentID: s1, Grade: 85}},
		}
		for _, actor := range []user.Actor{principal, staff, student, unknown} {
			if _, err := svc.SaveGrades(ctx, actor, batch); err != core.ErrPermissionDenied {
				t.Errorf("SaveGrades(%q) error = %v, want ErrPermissionDenied", actor.Role, err)
			}
		}
	})

	t.Run("re-saving a cell overwrites it", func(t *testing.T) {
		svc := setup(t)

		save := func(grade float64) {
			t.Helper()
			if _, err := svc.SaveGrades(ctx, teacher, grades.GradeBatch{
				CourseID: "math-101",
				Entries:  []grades.GradeEntry{{StudentID: s1, Grade: grade}},
			}); err != nil {
				t.Fatalf("SaveGrades() failed: %v", err)
			}
		}
		save(60)
		save(90) // last write wins

		cells, err := svc.LoadGrades(ctx, "math-101")
		if err != nil {
			t.Fatalf("LoadGrades() failed: %v", err)
		}
		if len(cells) != 1 {
			t.Fatalf("cells = %d, want 1", len(cells))
		}
		if cells[0].Grade != 90 {
			t.Errorf("grade = %v, want 90", cells[0].Grade)
		}
	})
}
