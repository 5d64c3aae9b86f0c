package finance

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("payment not found")

type (
	// Gateway is any checkout provider that can turn a pending fee payment
	// into an order reference and a redirect URL.
	Gateway interface {
		CreateTransaction(ctx context.Context, payment FeePayment, payerName, payerEmail string) (reference, redirectURL string, err error)
	}

	Repository interface {
		CreateFeePayment(ctx context.Context, fp FeePayment) (FeePayment, error)
		GetFeePaymentByID(ctx context.Context, id string) (FeePayment, error)
		GetFeePaymentByReference(ctx context.Context, reference string) (FeePayment, error)
		QueryFeePaymentsByStudent(ctx context.Context, schoolID, studentID string) ([]FeePayment, error)
		UpdateFeePayment(ctx context.Context, fp FeePayment) (FeePayment, error)

		CreateExpense(ctx context.Context, e Expense) (Expense, error)
		GetExpenseByID(ctx context.Context, id string) (Expense, error)
		QueryExpensesBySchool(ctx context.Context, schoolID string) ([]Expense, error)
		DeleteExpense(ctx context.Context, id string) error
	}

	Service interface {
		// PayFee records a pending payment and opens a gateway checkout.
		PayFee(ctx context.Context, schoolID string, nf NewFeePayment, payerName, payerEmail string) (FeePayment, error)
		// SettleFee is driven by the gateway's settlement callback.
		SettleFee(ctx context.Context, reference string) (FeePayment, error)
		QueryFeesByStudent(ctx context.Context, schoolID, studentID string) ([]FeePayment, error)

		RecordExpense(ctx context.Context, schoolID string, ne NewExpense) (Expense, error)
		QueryExpenses(ctx context.Context, schoolID string) ([]Expense, error)
		// DeleteExpense treats another school's expense as not found.
		DeleteExpense(ctx context.Context, schoolID, id string) error
	}

	service struct {
		repo    Repository
		gateway Gateway
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, gateway Gateway) Service {
	return &service{repo: repo, gateway: gateway}
}

func (svc *service) PayFee(ctx context.Context, schoolID string, nf NewFeePayment, payerName, payerEmail string) (FeePayment, error) {
	fp := FeePayment{
		SchoolID:  schoolID,
		StudentID: nf.StudentID,
		Amount:    nf.Amount,
		Currency:  nf.Currency,
		Semester:  nf.Semester,
		Status:    StatusPending,
		CreatedAt: time.Now().UTC(),
	}
	fp, err := svc.repo.CreateFeePayment(ctx, fp)
	if err != nil {
		return FeePayment{}, err
	}

	ref, redirect, err := svc.gateway.CreateTransaction(ctx, fp, payerName, payerEmail)
	if err != nil {
		return FeePayment{}, errors.Wrap(err, "creating gateway transaction")
	}
	fp.Reference = ref
	fp.RedirectURL = redirect
	return svc.repo.UpdateFeePayment(ctx, fp)
}

func (svc *service) SettleFee(ctx context.Context, reference string) (FeePayment, error) {
	fp, err := svc.repo.GetFeePaymentByReference(ctx, reference)
	if err != nil {
		return FeePayment{}, err
	}
	fp.Status = StatusSettled
	return svc.repo.UpdateFeePayment(ctx, fp)
}

func (svc *service) QueryFeesByStudent(ctx context.Context, schoolID, studentID string) ([]FeePayment, error) {
	return svc.repo.QueryFeePaymentsByStudent(ctx, schoolID, studentID)
}

func (svc *service) RecordExpense(ctx context.Context, schoolID string, ne NewExpense) (Expense, error) {
	return svc.repo.CreateExpense(ctx, Expense{
		SchoolID:  schoolID,
		Label:     ne.Label,
		Amount:    ne.Amount,
		CreatedAt: time.Now().UTC(),
	})
}

func (svc *service) QueryExpenses(ctx context.Context, schoolID string) ([]Expense, error) {
	return svc.repo.QueryExpensesBySchool(ctx, schoolID)
}

func (svc *service) DeleteExpense(ctx context.Context, schoolID, id string) error {
	exp, err := svc.repo.GetExpenseByID(ctx, id)
	if err != nil {
		return err
	}
	if exp.SchoolID != schoolID {
		return ErrNotFound
	}
	return svc.repo.DeleteExpense(ctx, exp.ID)
}
