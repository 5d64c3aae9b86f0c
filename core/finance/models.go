package finance

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/madrasahub/madrasa/core"
)

// Fee payment statuses
const (
	StatusPending = "pending"
	StatusSettled = "settled"
)

type (
	FeePayment struct {
		ID        string  `json:"id"`
		SchoolID  string  `json:"school_id"`
		StudentID string  `json:"student_id"`
		Amount    float64 `json:"amount"`
		Currency  string  `json:"currency"`
		Semester  int     `json:"semester"`
		Status    string  `json:"status"`
		// Reference is the payment gateway order reference; RedirectURL is
		// where the guardian completes the checkout.
		Reference   string    `json:"reference,omitempty"`
		RedirectURL string    `json:"redirect_url,omitempty"`
		CreatedAt   time.Time `json:"created_at"` // UTC
	}

	Expense struct {
		ID        string    `json:"id"`
		SchoolID  string    `json:"school_id"`
		Label     string    `json:"label"`
		Amount    float64   `json:"amount"`
		CreatedAt time.Time `json:"created_at"` // UTC
	}
)

// NewFeePayment contains information needed to start a fee checkout.
type NewFeePayment struct {
	StudentID string  `json:"student_id" validate:"required"`
	Amount    float64 `json:"amount" validate:"required,gt=0"`
	Currency  string  `json:"currency" validate:"required,len=3"`
	Semester  int     `json:"semester" validate:"semester"`
}

func (nf *NewFeePayment) Validate(validate *validator.Validate) error {
	nf.Currency = core.CleanString(nf.Currency, true /* lower */)
	return validate.Struct(nf)
}

// NewExpense contains information needed to record a school expense.
type NewExpense struct {
	Label  string  `json:"label" validate:"required"`
	Amount float64 `json:"amount" validate:"required,gt=0"`
}

func (ne *NewExpense) Validate(validate *validator.Validate) error {
	ne.Label = core.CleanString(ne.Label)
	return validate.Struct(ne)
}
