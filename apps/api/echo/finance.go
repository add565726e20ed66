package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/finance"
)

type financeApi struct {
	svc finance.Service
}

// registerFinanceAPI mounts the school ledger endpoints. Role gates live in the
// finance service itself; handlers only resolve the actor and relay it.
func registerFinanceAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc finance.Service) {
	api := financeApi{svc: svc}

	fg := g.Group("/finance", jwt)
	fg.GET("/balance", api.balance)
	fg.POST("/payments", api.pay)
	fg.GET("/transactions", api.queryTransactions)
}

func (api *financeApi) balance(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}

	bal, err := api.svc.Balance(ctx.Request().Context(), actor)
	if err != nil {
		return errors.Wrap(err, "getting balance")
	}
	return ctx.JSON(http.StatusOK, bal)
}

func (api *financeApi) pay(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}

	var data finance.NewPayment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPayment")
	}

	txn, bal, err := api.svc.Pay(ctx.Request().Context(), actor, data)
	if err != nil {
		return errors.Wrap(err, "making payment")
	}
	return ctx.JSON(http.StatusCreated, PaymentResponse{Transaction: txn, Balance: bal})
}

func (api *financeApi) queryTransactions(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}

	filter := new(finance.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []finance.Transaction{})
	}

	txns, err := api.svc.QueryTransactions(ctx.Request().Context(), actor, filter)
	if err != nil {
		return errors.Wrap(err, "querying transactions")
	}
	if txns == nil {
		txns = []finance.Transaction{}
	}
	return ctx.JSON(http.StatusOK, txns)
}

type PaymentResponse struct {
	Transaction finance.Transaction `json:"transaction"`
	Balance     finance.Balance     `json:"balance"`
}
