// Package paymentsvc implements the fee checkout gateway on Midtrans Snap.
package paymentsvc

import (
	"context"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
	"github.com/pkg/errors"

	"github.com/madrasahub/madrasa/core"
	"github.com/madrasahub/madrasa/core/finance"
)

type midtransGateway struct {
	client snap.Client
}

var _ finance.Gateway = (*midtransGateway)(nil)

func NewMidtransGateway(conf *core.Config) finance.Gateway {
	env := midtrans.Production
	if conf.Debug {
		env = midtrans.Sandbox
	}
	gw := &midtransGateway{}
	gw.client.New(conf.MidtransKey, env)
	return gw
}

func (gw *midtransGateway) CreateTransaction(ctx context.Context, payment finance.FeePayment, payerName, payerEmail string) (string, string, error) {
	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  payment.ID,
			GrossAmt: int64(payment.Amount),
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: payerName,
			Email: payerEmail,
		},
	}
	resp, err := gw.client.CreateTransaction(req)
	if err != nil {
		return "", "", errors.Wrap(err, "creating snap transaction")
	}
	return payment.ID, resp.RedirectURL, nil
}

// DummyGateway settles nothing and redirects nowhere. It keeps checkout
// flows working in tests and local development without a Midtrans account.
type DummyGateway struct{}

var _ finance.Gateway = (*DummyGateway)(nil)

func (DummyGateway) CreateTransaction(_ context.Context, payment finance.FeePayment, _, _ string) (string, string, error) {
	return payment.ID, "http://localhost/checkout/" + payment.ID, nil
}
