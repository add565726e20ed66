package grades

import (
	"time"

	"github.com/trezcool/shule/core"
)

// Grade is one grade cell, keyed by (student_id, course_id). Saving an existing
// key overwrites the cell (last write wins).
type Grade struct {
	ID        string    `json:"id"`
	StudentID string    `json:"student_id"`
	CourseID  string    `json:"course_id"`
	Grade     float64   `json:"grade"`
	UpdatedBy string    `json:"updated_by"`
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// GradeEntry is one cell of a SaveGrades batch.
type GradeEntry struct {
	StudentID string  `json:"student_id" validate:"required,uuid4"`
	Grade     float64 `json:"grade" validate:"min=0,max=100"`
}

// GradeBatch is a whole-or-nothing set of grade cells for one course: if any
// entry is invalid the entire batch is rejected and no cell is written.
type GradeBatch struct {
	CourseID string       `json:"course_id" validate:"required"`
	Entries  []GradeEntry `json:"entries" validate:"required,min=1,dive"`
}

func (gb *GradeBatch) Validate() error {
	gb.CourseID = core.CleanString(gb.CourseID)
	return core.Validate.Struct(gb)
}
