package docrepos

import (
	"context"
	"sort"

	"github.com/pkg/errors"

	"github.com/madrasahub/madrasa/core/finance"
	"github.com/madrasahub/madrasa/storage/document"
)

type financeRepository struct {
	store document.Store
}

var _ finance.Repository = (*financeRepository)(nil)

func NewFinanceRepository(store document.Store) finance.Repository {
	return &financeRepository{store: store}
}

func (repo *financeRepository) CreateFeePayment(ctx context.Context, fp finance.FeePayment) (finance.FeePayment, error) {
	rec, err := toRecord(fp)
	if err != nil {
		return finance.FeePayment{}, err
	}
	rec, err = repo.store.Insert(ctx, document.FeePayments, rec)
	if err != nil {
		return finance.FeePayment{}, err
	}
	err = fromRecord(rec, &fp)
	return fp, err
}

func (repo *financeRepository) GetFeePaymentByID(ctx context.Context, id string) (finance.FeePayment, error) {
	return repo.getFeePayment(ctx, document.Eq("id", id))
}

func (repo *financeRepository) GetFeePaymentByReference(ctx context.Context, reference string) (finance.FeePayment, error) {
	return repo.getFeePayment(ctx, document.Eq("reference", reference))
}

func (repo *financeRepository) getFeePayment(ctx context.Context, filter document.Filter) (finance.FeePayment, error) {
	records, err := repo.store.Select(ctx, document.FeePayments, filter)
	if err != nil {
		return finance.FeePayment{}, err
	}
	if len(records) == 0 {
		return finance.FeePayment{}, finance.ErrNotFound
	}
	var fp finance.FeePayment
	err = fromRecord(records[0], &fp)
	return fp, err
}

func (repo *financeRepository) QueryFeePaymentsByStudent(ctx context.Context, schoolID, studentID string) ([]finance.FeePayment, error) {
	records, err := repo.store.Select(ctx, document.FeePayments,
		document.Eq("school_id", schoolID, "student_id", studentID))
	if err != nil {
		return nil, err
	}
	payments := make([]finance.FeePayment, 0, len(records))
	for _, rec := range records {
		var fp finance.FeePayment
		if err = fromRecord(rec, &fp); err != nil {
			return nil, err
		}
		payments = append(payments, fp)
	}
	sort.SliceStable(payments, func(i, j int) bool { return payments[i].CreatedAt.After(payments[j].CreatedAt) })
	return payments, nil
}

func (repo *financeRepository) UpdateFeePayment(ctx context.Context, fp finance.FeePayment) (finance.FeePayment, error) {
	changes, err := toRecord(fp)
	if err != nil {
		return finance.FeePayment{}, err
	}
	rec, err := repo.store.Update(ctx, document.FeePayments, document.ByID(fp.ID), changes)
	if err != nil {
		if errors.Cause(err) == document.ErrNotFound {
			return finance.FeePayment{}, finance.ErrNotFound
		}
		return finance.FeePayment{}, err
	}
	err = fromRecord(rec, &fp)
	return fp, err
}

func (repo *financeRepository) CreateExpense(ctx context.Context, e finance.Expense) (finance.Expense, error) {
	rec, err := toRecord(e)
	if err != nil {
		return finance.Expense{}, err
	}
	rec, err = repo.store.Insert(ctx, document.Expenses, rec)
	if err != nil {
		return finance.Expense{}, err
	}
	err = fromRecord(rec, &e)
	return e, err
}

func (repo *financeRepository) GetExpenseByID(ctx context.Context, id string) (finance.Expense, error) {
	records, err := repo.store.Select(ctx, document.Expenses, document.Eq("id", id))
	if err != nil {
		return finance.Expense{}, err
	}
	if len(records) == 0 {
		return finance.Expense{}, finance.ErrNotFound
	}
	var e finance.Expense
	err = fromRecord(records[0], &e)
	return e, err
}

func (repo *financeRepository) QueryExpensesBySchool(ctx context.Context, schoolID string) ([]finance.Expense, error) {
	records, err := repo.store.Select(ctx, document.Expenses, document.Eq("school_id", schoolID))
	if err != nil {
		return nil, err
	}
	expenses := make([]finance.Expense, 0, len(records))
	for _, rec := range records {
		var e finance.Expense
		if err = fromRecord(rec, &e); err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	sort.SliceStable(expenses, func(i, j int) bool { return expenses[i].CreatedAt.After(expenses[j].CreatedAt) })
	return expenses, nil
}

func (repo *financeRepository) DeleteExpense(ctx context.Context, id string) error {
	err := repo.store.Delete(ctx, document.Expenses, document.ByID(id))
	if errors.Cause(err) == document.ErrNotFound {
		return finance.ErrNotFound
	}
	return err
}
