package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/trezcool/shule/core/finance"
	"github.com/trezcool/shule/core/user"
)

func Test_financeApi_pay(t *testing.T) {
	principal := createUser(t, "Fin Principal", "finprincipal", "finprincipal@test.cd", "", user.RolePrincipal, true)
	teacher := createUser(t, "Fin Teacher", "finteacher", "finteacher@test.cd", "", user.RoleTeacher, true)
	staff := createUser(t, "Fin Staff", "finstaff", "finstaff@test.cd", "", user.RoleStaff, true)
	student := createUser(t, "Fin Student", "finstudent", "finstudent@test.cd", "", user.RoleStudent, true)

	// the ledger is still unseeded at this point
	t.Run("balance missing reads as not found", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/finance/balance", getToken(t, principal))
		app.ServeHTTP(rec, req)
		tt := httpTest{
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "school balance not initialized"}),
		}
		checkCodeAndData(t, tt, rec)
	})

	finRepo.init(decimal.RequireFromString("1000"))

	payment := func(recipientID, amount, ptype string) []byte {
		return marchallObj(t, map[string]interface{}{
			"recipient_id": recipientID,
			"amount":       amount,
			"type":         ptype,
		})
	}

	tests := []httpTest{
		{
			name: "auth required", body: payment(teacher.ID, "300", "salary"),
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "student denied", token: getToken(t, student), body: payment(teacher.ID, "300", "salary"),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "staff denied", token: getToken(t, staff), body: payment(teacher.ID, "300", "salary"),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "teacher cannot pay salary", token: getToken(t, teacher), body: payment(staff.ID, "300", "salary"),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "principal pays salary", token: getToken(t, principal), body: payment(teacher.ID, "300", "salary"),
			wantCode: http.StatusCreated,
		},
		{
			name: "teacher makes transfer", token: getToken(t, teacher), body: payment(staff.ID, "50", "transfer"),
			wantCode: http.StatusCreated,
		},
		{
			name: "insufficient funds", token: getToken(t, principal), body: payment(teacher.ID, "10000", "salary"),
			wantCode: http.StatusConflict, wantData: marchallObj(t, httpErr{Error: "insufficient funds"}),
		},
		{
			name: "unknown recipient", token: getToken(t, principal),
			body:     payment("deadbeef-dead-4eef-8ead-beefdeadbeef", "300", "salary"),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "recipient not found"}),
		},
		{
			name: "zero amount rejected", token: getToken(t, principal), body: payment(teacher.ID, "0", "salary"),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "unknown type rejected", token: getToken(t, principal), body: payment(teacher.ID, "300", "lottery"),
			wantCode: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/finance/payments", tt.token, tt.body)
			app.ServeHTTP(rec, req)
			if tt.wantData != nil {
				checkCodeAndData(t, tt, rec)
			} else {
				checkCode(t, tt, rec)
			}
		})
	}

	// failed attempts above must not have touched the ledger: 1000 - 300 - 50
	t.Run("balance reflects committed payments only", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/finance/balance", getToken(t, principal))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %d, want %d", rec.Code, http.StatusOK)
		}
		var bal finance.Balance
		if err := json.Unmarshal(rec.Body.Bytes(), &bal); err != nil {
			t.Fatalf("unmarshalling Balance: %v", err)
		}
		if want := decimal.RequireFromString("650"); !bal.Amount.Equal(want) {
			t.Errorf("balance = %s, want %s", bal.Amount, want)
		}
	})
}

func Test_financeApi_balance(t *testing.T) {
	principal := createUser(t, "Bal Principal", "balprincipal", "balprincipal@test.cd", "", user.RolePrincipal, true)
	teacher := createUser(t, "Bal Teacher", "balteacher", "balteacher@test.cd", "", user.RoleTeacher, true)

	finRepo.init(decimal.RequireFromString("1000"))

	tests := []httpTest{
		{name: "auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "teacher denied", token: getToken(t, teacher), wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{name: "principal allowed", token: getToken(t, principal), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/v1/finance/balance", tt.token)
			app.ServeHTTP(rec, req)
			if tt.wantData != nil {
				checkCodeAndData(t, tt, rec)
			} else {
				checkCode(t, tt, rec)
			}
		})
	}
}

func Test_financeApi_queryTransactions(t *testing.T) {
	principal := createUser(t, "Txn Principal", "txnprincipal", "txnprincipal@test.cd", "", user.RolePrincipal, true)
	teacher := createUser(t, "Txn Teacher", "txnteacher", "txnteacher@test.cd", "", user.RoleTeacher, true)
	staff := createUser(t, "Txn Staff", "txnstaff", "txnstaff@test.cd", "", user.RoleStaff, true)

	finRepo.init(decimal.RequireFromString("1000"))

	pay := func(recipientID, amount string) {
		t.Helper()
		body := marchallObj(t, map[string]interface{}{
			"recipient_id": recipientID,
			"amount":       amount,
			"type":         "salary",
		})
		req, rec := newAuthRequest(http.MethodPost, "/v1/finance/payments", getToken(t, principal), body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("payment setup failed: code = %d, body = %s", rec.Code, rec.Body.String())
		}
	}
	pay(teacher.ID, "100")
	pay(staff.ID, "200")

	listTxns := func(t *testing.T, token, path string) []finance.Transaction {
		t.Helper()
		req, rec := newAuthRequest(http.MethodGet, path, token)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %d, want %d", rec.Code, http.StatusOK)
		}
		var txns []finance.Transaction
		if err := json.Unmarshal(rec.Body.Bytes(), &txns); err != nil {
			t.Fatalf("unmarshalling transactions: %v", err)
		}
		return txns
	}

	t.Run("auth required", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/finance/transactions", "")
		app.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("teacher only sees own rows", func(t *testing.T) {
		txns := listTxns(t, getToken(t, teacher), "/v1/finance/transactions")
		if len(txns) == 0 {
			t.Fatal("no transactions returned")
		}
		for _, txn := range txns {
			if txn.RecipientID != teacher.ID {
				t.Errorf("transaction %s belongs to %s, want %s", txn.ID, txn.RecipientID, teacher.ID)
			}
		}
	})

	t.Run("teacher cannot filter into other recipients", func(t *testing.T) {
		txns := listTxns(t, getToken(t, teacher), "/v1/finance/transactions?recipient="+staff.ID)
		for _, txn := range txns {
			if txn.RecipientID != teacher.ID {
				t.Errorf("transaction %s belongs to %s, want %s", txn.ID, txn.RecipientID, teacher.ID)
			}
		}
	})

	t.Run("principal filters by recipient", func(t *testing.T) {
		txns := listTxns(t, getToken(t, principal), "/v1/finance/transactions?recipient="+staff.ID)
		if len(txns) != 1 {
			t.Fatalf("len(txns) = %d, want 1", len(txns))
		}
		if txns[0].RecipientID != staff.ID {
			t.Errorf("RecipientID = %s, want %s", txns[0].RecipientID, staff.ID)
		}
	})
}
