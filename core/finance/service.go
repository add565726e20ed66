package finance

import (
	"context"
	"net/mail"

	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/user"
)

var (
	// errors
	ErrBalanceNotFound   = errors.New("school balance not initialized")
	ErrRecipientNotFound = errors.New("recipient not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrTxnNotFound       = errors.New("transaction not found")
)

type (
	Repository interface {
		GetBalance(ctx context.Context) (Balance, error)
		// MakePayment atomically debits the school balance and appends the
		// transaction: both commit together or neither does. It must check the
		// balance within the same transaction boundary (not a stale read) and
		// fail with ErrInsufficientFunds when the debit would drive the balance
		// below zero.
		MakePayment(ctx context.Context, txn Transaction) (Transaction, Balance, error)
		FilterTransactions(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Transaction, error)
	}

	Service interface {
		Balance(ctx context.Context, actor user.Actor) (Balance, error)
		Pay(ctx context.Context, actor user.Actor, np NewPayment) (Transaction, Balance, error)
		QueryTransactions(ctx context.Context, actor user.Actor, filter *QueryFilter) ([]Transaction, error)
	}

	service struct {
		repo    Repository
		usrSvc  user.Service
		mailSvc core.EmailService
		events  core.EventPublisher
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, usrSvc user.Service, mailSvc core.EmailService, events core.EventPublisher) Service {
	return &service{
		repo:    repo,
		usrSvc:  usrSvc,
		mailSvc: mailSvc,
		events:  events,
	}
}

func (svc *service) Balance(ctx context.Context, actor user.Actor) (Balance, error) {
	if !actor.Role.IsPrincipal() {
		return Balance{}, core.ErrPermissionDenied
	}
	return svc.repo.GetBalance(ctx)
}

// Pay executes a role-gated transfer out of the school balance.
// Principals may send any payment type; teachers may only send balance transfers.
func (svc *service) Pay(ctx context.Context, actor user.Actor, np NewPayment) (Transaction, Balance, error) {
	ptype := ParsePaymentType(np.Type)
	if !svc.canPay(actor, ptype) {
		return Transaction{}, Balance{}, core.ErrPermissionDenied
	}
	if err := np.Validate(); err != nil {
		return Transaction{}, Balance{}, err
	}

	recipient, err := svc.usrSvc.GetByID(ctx, np.RecipientID)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return Transaction{}, Balance{}, ErrRecipientNotFound
		}
		return Transaction{}, Balance{}, errors.Wrap(err, "finding recipient")
	}

	txn, bal, err := svc.repo.MakePayment(ctx, Transaction{
		RecipientID: recipient.ID,
		Amount:      np.Amount,
		Type:        ptype,
	})
	if err != nil {
		return Transaction{}, Balance{}, err
	}

	// both are fire-and-forget: the transfer is already committed
	svc.publishPaymentCompleted(txn, bal)
	svc.sendPaymentReceivedMail(recipient, txn)
	return txn, bal, nil
}

func (svc *service) QueryTransactions(ctx context.Context, actor user.Actor, filter *QueryFilter) ([]Transaction, error) {
	if filter == nil {
		filter = new(QueryFilter)
	}
	switch {
	case actor.Role.IsPrincipal():
		// principals see all; optional recipient filter applies as-is
	case actor.Role.IsValid():
		// everyone else only ever sees their own rows
		filter.RecipientID = actor.ID
	default:
		return nil, core.ErrPermissionDenied
	}
	ordering := []core.DBOrdering{{Field: "date", Ascending: false}}
	return svc.repo.FilterTransactions(ctx, filter, ordering)
}

func (svc *service) canPay(actor user.Actor, ptype PaymentType) bool {
	if actor.Role.IsPrincipal() {
		return true
	}
	return actor.Role.IsTeacher() && ptype == PaymentTransfer
}

func (svc *service) publishPaymentCompleted(txn Transaction, bal Balance) {
	if svc.events == nil {
		return
	}
	svc.events.Publish(core.Event{
		Topic: core.Conf.Kafka.PaymentsTopic,
		Payload: PaymentCompleted{
			TransactionID: txn.ID,
			RecipientID:   txn.RecipientID,
			Amount:        txn.Amount,
			Type:          txn.Type,
			Date:          txn.Date,
			Balance:       bal.Amount,
		},
	})
}

func (svc *service) sendPaymentReceivedMail(recipient user.User, txn Transaction) {
	if svc.mailSvc == nil || recipient.Email == "" {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: recipient.Name, Address: recipient.Email}},
		Subject:      "Payment Received",
		TemplateName: "payment-received",
		TemplateData: struct {
			Username string
			Amount   string
			Type     string
		}{recipient.Username, txn.Amount.StringFixed(2), txn.Type.String()},
	})
}
