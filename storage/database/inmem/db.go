package inmemdb

import (
	"sync"

	"github.com/trezcool/shule/core/eval"
	"github.com/trezcool/shule/core/finance"
	"github.com/trezcool/shule/core/grades"
	"github.com/trezcool/shule/core/school"
	"github.com/trezcool/shule/core/user"
)

// DB is an in-memory database used in tests and local smoke runs.
type DB struct {
	user    *userTable
	finance *financeTable
	grade   *gradeTable
	eval    *evalTable
	school  *schoolTable
}

func Open() *DB {
	return &DB{
		user:    &userTable{table: make(map[string]*user.User)},
		finance: &financeTable{},
		grade:   &gradeTable{table: make(map[gradeKey]*grades.Grade)},
		eval:    &evalTable{},
		school: &schoolTable{
			announcements: make(map[string]*school.Announcement),
			events:        make(map[string]*school.Event),
		},
	}
}

type userTable struct {
	sync.RWMutex
	table map[string]*user.User
}

type financeTable struct {
	sync.RWMutex
	balance      finance.Balance
	initialized  bool
	transactions []finance.Transaction
}

// gradeKey is the natural key of a grade cell.
type gradeKey struct {
	studentID string
	courseID  string
}

type gradeTable struct {
	sync.RWMutex
	table map[gradeKey]*grades.Grade
}

type evalTable struct {
	sync.RWMutex
	evaluations []eval.Evaluation
}

type schoolTable struct {
	sync.RWMutex
	announcements map[string]*school.Announcement
	events        map[string]*school.Event
	settings      *school.Settings
}
