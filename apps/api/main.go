package main

import (
	"log"
	"os"

	"github.com/jmoiron/sqlx"

	echoapi "github.com/trezcool/shule/apps/api/echo"
	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/eval"
	"github.com/trezcool/shule/core/finance"
	"github.com/trezcool/shule/core/grades"
	"github.com/trezcool/shule/core/school"
	"github.com/trezcool/shule/core/user"
	emailsvc "github.com/trezcool/shule/services/email"
	sendgridmail "github.com/trezcool/shule/services/email/sendgrid"
	logsvc "github.com/trezcool/shule/services/logger"
	streamsvc "github.com/trezcool/shule/services/stream"
	"github.com/trezcool/shule/storage/database"
	"github.com/trezcool/shule/storage/database/sqlxrepos"
)

func main() {
	core.InitConf()

	std := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(std, core.Conf)
	logger.Enable(!core.Conf.Debug && core.Conf.RollbarToken != "")

	// set up DB
	sdb, err := database.Open(core.Conf)
	if err != nil {
		logger.Fatal("opening database", err)
	}
	defer func() { _ = sdb.Close() }()
	db := sqlx.NewDb(sdb, core.Conf.Database.Engine)

	// set up services
	var mailSvc core.EmailService
	if core.Conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = sendgridmail.NewService(core.Conf.SendgridAPIKey, core.Conf.AppName, core.Conf.DefaultFromEmail, logger)
	}

	var events core.EventPublisher
	if core.Conf.Kafka.Enabled {
		events = streamsvc.NewKafkaPublisher(core.Conf.Kafka.Brokers, logger)
	} else {
		events = streamsvc.NewConsolePublisher(logger)
	}

	usrSvc := user.NewService(sqlxrepos.NewUserRepository(db), mailSvc)
	finSvc := finance.NewService(sqlxrepos.NewFinanceRepository(db), usrSvc, mailSvc, events)
	gradesSvc := grades.NewService(sqlxrepos.NewGradeRepository(db))
	evalSvc := eval.NewService(sqlxrepos.NewEvalRepository(db), usrSvc)
	schoolSvc := school.NewService(sqlxrepos.NewSchoolRepository(db))

	// start API server
	app := echoapi.NewServer(
		&echoapi.Options{
			Address:    core.Conf.Server.Address(),
			Logger:     logger,
			UserSvc:    usrSvc,
			FinanceSvc: finSvc,
			GradesSvc:  gradesSvc,
			EvalSvc:    evalSvc,
			SchoolSvc:  schoolSvc,
		},
	)
	app.Start()
}
