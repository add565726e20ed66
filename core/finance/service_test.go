package finance_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/finance"
	"github.com/trezcool/shule/core/user"
	emailsvc "github.com/trezcool/shule/services/email"
	inmemdb "github.com/trezcool/shule/storage/database/inmem"
)

type testEnv struct {
	svc       finance.Service
	repo      *inmemdb.DB
	finRepo   interface{ InitBalance(decimal.Decimal) }
	usrRepo   user.Repository
	principal user.User
	teacher   user.User
	staff     user.User
	student   user.User
}

func setup(t *testing.T, balance string) *testEnv {
	t.Helper()
	core.Conf = &core.Config{
		AppName:          "Shule",
		SecretKey:        "secret",
		TestMode:         true,
		FrontendBaseURL:  "http://localhost:3000",
		DefaultFromEmail: "noreply@localhost",
		WorkDir:          core.Getwd(),
	}

	db := inmemdb.Open()
	usrRepo := inmemdb.NewUserRepository(db)
	finRepo := inmemdb.NewFinanceRepository(db)
	if balance != "" { // "" leaves the balance row unseeded
		finRepo.InitBalance(decimal.RequireFromString(balance))
	}

	mailSvc := emailsvc.NewConsoleServiceMock()
	usrSvc := user.NewServiceMock(usrRepo, mailSvc)
	svc := finance.NewService(finRepo, usrSvc, mailSvc, nil)

	env := &testEnv{svc: svc, repo: db, finRepo: finRepo, usrRepo: usrRepo}
	env.principal = createUser(t, usrRepo, "Principal", "principal@test.cd", user.RolePrincipal)
	env.teacher = createUser(t, usrRepo, "Teacher", "teacher@test.cd", user.RoleTeacher)
	env.staff = createUser(t, usrRepo, "Staff", "staff@test.cd", user.RoleStaff)
	env.student = createUser(t, usrRepo, "Student", "student@test.cd", user.RoleStudent)
	return env
}

func createUser(t *testing.T, repo user.Repository, uname, email string, role user.Role) user.User {
	t.Helper()
	active := true
	usr, err := repo.CreateUser(context.Background(), user.User{
		Name:      uname,
		Username:  uname,
		Email:     email,
		Role:      role,
		IsActive:  &active,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func amount(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func Test_service_Pay(t *testing.T) {
	ctx := context.Background()

	t.Run("principal salary payment debits balance and appends transaction", func(t *testing.T) {
		env := setup(t, "1000")

		txn, bal, err := env.svc.Pay(ctx, env.principal.Actor(), finance.NewPayment{
			RecipientID: env.teacher.ID,
			Amount:      amount("300"),
			Type:        "salary",
		})
		if err != nil {
			t.Fatalf("Pay() failed: %v", err)
		}
		if !bal.Amount.Equal(amount("700")) {
			t.Errorf("balance = %s, want 700", bal.Amount)
		}
		if txn.ID == "" {
			t.Error("transaction ID not set")
		}
		if txn.Date.IsZero() {
			t.Error("transaction date not set")
		}
		if txn.RecipientID != env.teacher.ID {
			t.Errorf("recipient = %s, want %s", txn.RecipientID, env.teacher.ID)
		}
		if txn.Type != finance.PaymentSalary {
			t.Errorf("type = %s, want salary", txn.Type)
		}
	})

	t.Run("insufficient funds leaves ledger untouched", func(t *testing.T) {
		env := setup(t, "1000")

		_, _, err := env.svc.Pay(ctx, env.principal.Actor(), finance.NewPayment{
			RecipientID: env.teacher.ID,
			Amount:      amount("1500"),
			Type:        "salary",
		})
		if err != finance.ErrInsufficientFunds {
			t.Fatalf("Pay() error = %v, want ErrInsufficientFunds", err)
		}

		bal, err := env.svc.Balance(ctx, env.principal.Actor())
		if err != nil {
			t.Fatalf("Balance() failed: %v", err)
		}
		if !bal.Amount.Equal(amount("1000")) {
			t.Errorf("balance = %s, want 1000 (unchanged)", bal.Amount)
		}
		txns, err := env.svc.QueryTransactions(ctx, env.principal.Actor(), nil)
		if err != nil {
			t.Fatalf("QueryTransactions() failed: %v", err)
		}
		if len(txns) != 0 {
			t.Errorf("transactions = %d, want 0", len(txns))
		}
	})

	t.Run("exact balance payment drains to zero", func(t *testing.T) {
		env := setup(t, "1000")

		_, bal, err := env.svc.Pay(ctx, env.principal.Actor(), finance.NewPayment{
			RecipientID: env.staff.ID,
			Amount:      amount("1000"),
			Type:        "bonus",
		})
		if err != nil {
			t.Fatalf("Pay() failed: %v", err)
		}
		if !bal.Amount.IsZero() {
			t.Errorf("balance = %s, want 0", bal.Amount)
		}
	})

	t.Run("role gate runs before any validation", func(t *testing.T) {
		env := setup(t, "1000")

		// a student is denied even with a nonsense payload
		_, _, err := env.svc.Pay(ctx, env.student.Actor(), finance.NewPayment{
			RecipientID: "not-a-uuid",
			Amount:      amount("-5"),
			Type:        "lol",
		})
		if err != core.ErrPermissionDenied {
			t.Errorf("Pay() error = %v, want ErrPermissionDenied", err)
		}
	})

	t.Run("gate matrix", func(t *testing.T) {
		env := setup(t, "1000")
		unknown := user.Actor{ID: env.staff.ID, Role: user.Role("superadmin")}

		tests := []struct {
			name     string
			actor    user.Actor
			ptype    string
			wantDeny bool
		}{
			{name: "principal salary", actor: env.principal.Actor(), ptype: "salary"},
			{name: "principal bonus", actor: env.principal.Actor(), ptype: "bonus"},
			{name: "principal reimbursement", actor: env.principal.Actor(), ptype: "reimbursement"},
			{name: "principal transfer", actor: env.principal.Actor(), ptype: "transfer"},
			{name: "teacher transfer", actor: env.teacher.Actor(), ptype: "transfer"},
			{name: "teacher salary", actor: env.teacher.Actor(), ptype: "salary", wantDeny: true},
			{name: "teacher bonus", actor: env.teacher.Actor(), ptype: "bonus", wantDeny: true},
			{name: "staff transfer", actor: env.staff.Actor(), ptype: "transfer", wantDeny: true},
			{name: "student transfer", actor: env.student.Actor(), ptype: "transfer", wantDeny: true},
			{name: "unrecognized role transfer", actor: unknown, ptype: "transfer", wantDeny: true},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, _, err := env.svc.Pay(ctx, tt.actor, finance.NewPayment{
					RecipientID: env.student.ID,
					Amount:      amount("1"),
					Type:        tt.ptype,
				})
				if tt.wantDeny {
					if err != core.ErrPermissionDenied {
						t.Errorf("Pay() error = %v, want ErrPermissionDenied", err)
					}
				} else if err != nil {
					t.Errorf("Pay() failed: %v", err)
				}
			})
		}
	})

	t.Run("unknown recipient", func(t *testing.T) {
		env := setup(t, "1000")

		_, _, err := env.svc.Pay(ctx, env.principal.Actor(), finance.NewPayment{
			RecipientID: "deadbeef-dead-4eef-8ead-beefdeadbeef",
			Amount:      amount("100"),
			Type:        "salary",
		})
		if err != finance.ErrRecipientNotFound {
			t.Fatalf("Pay() error = %v, want ErrRecipientNotFound", err)
		}

		bal, _ := env.svc.Balance(ctx, env.principal.Actor())
		if !bal.Amount.Equal(amount("1000")) {
			t.Errorf("balance = %s, want 1000 (unchanged)", bal.Amount)
		}
	})

	t.Run("invalid payloads are rejected before any debit", func(t *testing.T) {
		env := setup(t, "1000")

		tests := []struct {
			name string
			np   finance.NewPayment
		}{
			{name: "zero amount", np: finance.NewPayment{RecipientID: env.teacher.ID, Amount: amount("0"), Type: "salary"}},
			{name: "negative amount", np: finance.NewPayment{RecipientID: env.teacher.ID, Amount: amount("-300"), Type: "salary"}},
			{name: "missing recipient", np: finance.NewPayment{Amount: amount("300"), Type: "salary"}},
			{name: "malformed recipient", np: finance.NewPayment{RecipientID: "lol", Amount: amount("300"), Type: "salary"}},
			{name: "unknown type", np: finance.NewPayment{RecipientID: env.teacher.ID, Amount: amount("300"), Type: "lottery"}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				if _, _, err := env.svc.Pay(ctx, env.principal.Actor(), tt.np); err == nil {
					t.Error("Pay() expected a validation error")
				}
			})
		}

		bal, _ := env.svc.Balance(ctx, env.principal.Actor())
		if !bal.Amount.Equal(amount("1000")) {
			t.Errorf("balance = %s, want 1000 (unchanged)", bal.Amount)
		}
	})

	t.Run("funds are conserved across a run of payments", func(t *testing.T) {
		env := setup(t, "1000")

		payments := []string{"300", "150.50", "49.50", "200"}
		for _, amt := range payments {
			if _, _, err := env.svc.Pay(ctx, env.principal.Actor(), finance.NewPayment{
				RecipientID: env.teacher.ID,
				Amount:      amount(amt),
				Type:        "salary",
			}); err != nil {
				t.Fatalf("Pay(%s) failed: %v", amt, err)
			}
		}

		bal, err := env.svc.Balance(ctx, env.principal.Actor())
		if err != nil {
			t.Fatalf("Balance() failed: %v", err)
		}
		txns, err := env.svc.QueryTransactions(ctx, env.principal.Actor(), nil)
		if err != nil {
			t.Fatalf("QueryTransactions() failed: %v", err)
		}

		total := bal.Amount
		for _, txn := range txns {
			total = total.Add(txn.Amount)
		}
		if !total.Equal(amount("1000")) {
			t.Errorf("balance + transactions = %s, want 1000", total)
		}
		if len(txns) != len(payments) {
			t.Errorf("transactions = %d, want %d", len(txns), len(payments))
		}
	})
}

func Test_service_Balance(t *testing.T) {
	ctx := context.Background()
	env := setup(t, "1000")

	t.Run("principal only", func(t *testing.T) {
		for _, actor := range []user.Actor{env.teacher.Actor(), env.staff.Actor(), env.student.Actor(), {}} {
			if _, err := env.svc.Balance(ctx, actor); err != core.ErrPermissionDenied {
				t.Errorf("Balance(%q) error = %v, want ErrPermissionDenied", actor.Role, err)
			}
		}
	})

	t.Run("reads are idempotent", func(t *testing.T) {
		bal1, err := env.svc.Balance(ctx, env.principal.Actor())
		if err != nil {
			t.Fatalf("Balance() failed: %v", err)
		}
		bal2, err := env.svc.Balance(ctx, env.principal.Actor())
		if err != nil {
			t.Fatalf("Balance() failed: %v", err)
		}
		if !bal1.Amount.Equal(bal2.Amount) {
			t.Errorf("repeated reads differ: %s != %s", bal1.Amount, bal2.Amount)
		}
	})
}

func Test_service_QueryTransactions(t *testing.T) {
	ctx := context.Background()
	env := setup(t, "1000")

	pay := func(recipientID, amt string) {
		t.Helper()
		if _, _, err := env.svc.Pay(ctx, env.principal.Actor(), finance.NewPayment{
			RecipientID: recipientID,
			Amount:      amount(amt),
			Type:        "salary",
		}); err != nil {
			t.Fatalf("Pay() failed: %v", err)
		}
	}
	pay(env.teacher.ID, "100")
	pay(env.staff.ID, "200")
	pay(env.teacher.ID, "50")

	t.Run("principal sees all", func(t *testing.T) {
		txns, err := env.svc.QueryTransactions(ctx, env.principal.Actor(), nil)
		if err != nil {
			t.Fatalf("QueryTransactions() failed: %v", err)
		}
		if len(txns) != 3 {
			t.Errorf("transactions = %d, want 3", len(txns))
		}
	})

	t.Run("principal can filter by recipient", func(t *testing.T) {
		txns, err := env.svc.QueryTransactions(ctx, env.principal.Actor(), &finance.QueryFilter{RecipientID: env.staff.ID})
		if err != nil {
			t.Fatalf("QueryTransactions() failed: %v", err)
		}
		if len(txns) != 1 {
			t.Errorf("transactions = %d, want 1", len(txns))
		}
	})

	t.Run("non-principal roles only see their own rows", func(t *testing.T) {
		// a teacher asking for someone else's rows still gets their own
		txns, err := env.svc.QueryTransactions(ctx, env.teacher.Actor(), &finance.QueryFilter{RecipientID: env.staff.ID})
		if err != nil {
			t.Fatalf("QueryTransactions() failed: %v", err)
		}
		if len(txns) != 2 {
			t.Errorf("transactions = %d, want 2", len(txns))
		}
		for _, txn := range txns {
			if txn.RecipientID != env.teacher.ID {
				t.Errorf("leaked transaction for recipient %s", txn.RecipientID)
			}
		}
	})

	t.Run("unrecognized role is denied", func(t *testing.T) {
		unknown := user.Actor{ID: env.teacher.ID, Role: user.Role("superadmin")}
		if _, err := env.svc.QueryTransactions(ctx, unknown, nil); err != core.ErrPermissionDenied {
			t.Errorf("QueryTransactions() error = %v, want ErrPermissionDenied", err)
		}
	})
}

func Test_service_uninitializedBalance(t *testing.T) {
	ctx := context.Background()
	env := setup(t, "")

	t.Run("balance read fails instead of defaulting to zero", func(t *testing.T) {
		if _, err := env.svc.Balance(ctx, env.principal.Actor()); err != finance.ErrBalanceNotFound {
			t.Errorf("Balance() error = %v, want ErrBalanceNotFound", err)
		}
	})

	t.Run("payment fails and appends nothing", func(t *testing.T) {
		_, _, err := env.svc.Pay(ctx, env.principal.Actor(), finance.NewPayment{
			RecipientID: env.teacher.ID,
			Amount:      amount("300"),
			Type:        "salary",
		})
		if err != finance.ErrBalanceNotFound {
			t.Fatalf("Pay() error = %v, want ErrBalanceNotFound", err)
		}
		txns, err := env.svc.QueryTransactions(ctx, env.principal.Actor(), nil)
		if err != nil {
			t.Fatalf("QueryTransactions() failed: %v", err)
		}
		if len(txns) != 0 {
			t.Errorf("transactions = %d, want 0", len(txns))
		}
	})
}

func Test_service_optionalCollaborators(t *testing.T) {
	ctx := context.Background()
	env := setup(t, "1000")

	// payments must commit even when no mail service or event publisher is wired
	usrSvc := user.NewServiceMock(env.usrRepo, emailsvc.NewConsoleServiceMock())
	svc := finance.NewService(inmemdb.NewFinanceRepository(env.repo), usrSvc, nil, nil)

	txn, bal, err := svc.Pay(ctx, env.principal.Actor(), finance.NewPayment{
		RecipientID: env.teacher.ID,
		Amount:      amount("300"),
		Type:        "salary",
	})
	if err != nil {
		t.Fatalf("Pay() failed: %v", err)
	}
	if txn.ID == "" {
		t.Error("transaction not created")
	}
	if !bal.Amount.Equal(amount("700")) {
		t.Errorf("balance = %s, want 700", bal.Amount)
	}
}
