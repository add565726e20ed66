package tests

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	. "github.com/trezcool/shule/apps/api/echo"
	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/eval"
	"github.com/trezcool/shule/core/finance"
	"github.com/trezcool/shule/core/grades"
	"github.com/trezcool/shule/core/school"
	"github.com/trezcool/shule/core/user"
	emailsvc "github.com/trezcool/shule/services/email"
	logsvc "github.com/trezcool/shule/services/logger"
	inmemdb "github.com/trezcool/shule/storage/database/inmem"
)

var (
	app     Server
	usrRepo user.Repository
	finRepo *financeSeeder

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
	errForbidden    = httpErr{Error: "permission denied"}
)

type financeSeeder struct {
	finance.Repository
	init func(decimal.Decimal)
}

func TestMain(m *testing.M) {
	core.Conf = &core.Config{
		AppName:          "Shule",
		SecretKey:        "secret",
		TestMode:         true,
		FrontendBaseURL:  "http://localhost:3000",
		DefaultFromEmail: "noreply@localhost",
		WorkDir:          core.Getwd(),
		Server: core.ServerConfig{
			JWTExpirationDelta:        7 * 24 * time.Hour,
			JWTRefreshExpirationDelta: 4 * time.Hour,
		},
		Kafka: core.KafkaConfig{PaymentsTopic: "payment.completed"},
	}

	// set up DB & repos
	db := inmemdb.Open()
	usrRepo = inmemdb.NewUserRepository(db)
	fin := inmemdb.NewFinanceRepository(db)
	finRepo = &financeSeeder{Repository: fin, init: fin.InitBalance}

	// set up services
	logger := logsvc.NewRollbarLogger(log.New(os.Stdout, "TEST : ", log.LstdFlags), core.Conf)
	logger.Enable(false)
	mailSvc := emailsvc.NewConsoleServiceMock()
	usrSvc := user.NewServiceMock(usrRepo, mailSvc)
	finSvc := finance.NewService(finRepo, usrSvc, mailSvc, nil)
	gradesSvc := grades.NewService(inmemdb.NewGradeRepository(db))
	evalSvc := eval.NewService(inmemdb.NewEvalRepository(db), usrSvc)
	schoolSvc := school.NewService(inmemdb.NewSchoolRepository(db))

	// set up server
	app = NewServer(
		&Options{
			DisableReqLogs: true,
			Logger:         logger,
			UserSvc:        usrSvc,
			FinanceSvc:     finSvc,
			GradesSvc:      gradesSvc,
			EvalSvc:        evalSvc,
			SchoolSvc:      schoolSvc,
		},
	)

	os.Exit(m.Run())
}

func createUser(t *testing.T, name, uname, email, pwd string, role user.Role, isActive bool) user.User {
	t.Helper()
	usr := user.User{
		Name:      name,
		Username:  uname,
		Email:     email,
		Role:      role,
		IsActive:  &isActive,
		CreatedAt: time.Now().UTC(),
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("SetPassword(): %v", err)
		}
	}
	usr, err := usrRepo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser(): %v", err)
	}
	return usr
}
