package payments

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/northmart/shop-backend/app/auth"
	"github.com/northmart/shop-backend/app/httpx"
)

type PaymentCreator interface {
	CreatePayment(ctx context.Context, amount decimal.Decimal, description, returnURL string) (*Payment, error)
}

type PaymentHandler struct {
	client PaymentCreator
}

func NewPaymentHandler(client PaymentCreator) *PaymentHandler {
	return &PaymentHandler{client: client}
}

// HandleCreate starts a payment for the authenticated user and returns
// the provider's confirmation redirect.
func (h *PaymentHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.UserFrom(r.Context()); !ok {
		httpx.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var input struct {
		Amount      string `json:"amount"`
		Description string `json:"description"`
		ReturnURL   string `json:"return_url"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	amount, err := decimal.NewFromString(input.Amount)
	if err != nil || !amount.IsPositive() {
		httpx.Error(w, http.StatusBadRequest, "Invalid amount")
		return
	}
	if input.ReturnURL == "" {
		httpx.Error(w, http.StatusBadRequest, "Missing return_url")
		return
	}

	payment, err := h.client.CreatePayment(r.Context(), amount, input.Description, input.ReturnURL)
	if err != nil {
		httpx.Error(w, http.StatusBadGateway, "Payment provider unavailable")
		return
	}

	httpx.JSON(w, http.StatusOK, payment)
}
