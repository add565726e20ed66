package eval

import (
	"time"

	"github.com/trezcool/shule/core"
)

// Evaluation is one immutable performance review: rows are only ever appended.
type Evaluation struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	EvaluatorID string    `json:"evaluator_id"`
	Score       float64   `json:"score"`
	Comments    string    `json:"comments,omitempty"`
	Date        time.Time `json:"date"` // UTC
}

// NewEvaluation contains information needed to submit a performance review.
type NewEvaluation struct {
	UserID   string  `json:"user_id" validate:"required,uuid4"`
	Score    float64 `json:"score" validate:"min=0,max=100"`
	Comments string  `json:"comments"`
}

func (ne *NewEvaluation) Validate() error {
	ne.Comments = core.CleanString(ne.Comments)
	return core.Validate.Struct(ne)
}
