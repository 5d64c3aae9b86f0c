package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/madrasahub/madrasa/core"
	"github.com/madrasahub/madrasa/core/finance"
)

type paymentApi struct {
	financeSvc finance.Service
	logger     core.Logger
}

// registerPaymentAPI mounts the gateway's settlement webhook. It is
// un-authed: Midtrans calls it server-to-server.
func registerPaymentAPI(g *echo.Group, deps ServerDeps) {
	api := paymentApi{financeSvc: deps.FinanceSvc, logger: deps.Logger}
	g.POST("/payments/notify", api.notify)
}

func (api *paymentApi) notify(ctx echo.Context) error {
	var data PaymentNotification
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PaymentNotification")
	}

	switch data.TransactionStatus {
	case "settlement", "capture":
		if _, err := api.financeSvc.SettleFee(ctx.Request().Context(), data.OrderID); err != nil {
			if errors.Cause(err) == finance.ErrNotFound {
				// an unknown order is logged, acknowledged and dropped;
				// failing here would only make the gateway retry forever
				api.logger.Warn("settlement for unknown order " + data.OrderID)
				return ctx.NoContent(http.StatusOK)
			}
			return errors.Wrap(err, "settling fee")
		}
	}
	return ctx.NoContent(http.StatusOK)
}

type PaymentNotification struct {
	OrderID           string `json:"order_id"`
	TransactionStatus string `json:"transaction_status"`
}
