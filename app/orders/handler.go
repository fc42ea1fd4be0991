package orders

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/northmart/shop-backend/app/auth"
	"github.com/northmart/shop-backend/app/delivery"
	"github.com/northmart/shop-backend/app/httpx"
	"github.com/northmart/shop-backend/models"
)

type OrderStore interface {
	Create(order *models.Order) error
	GetByUser(userID uint) ([]models.Order, error)
}

// ShipmentRequester is the carrier integration called after the order
// commit. Its result is observed, never propagated.
type ShipmentRequester interface {
	RequestShipment(ctx context.Context, order *models.Order, user *models.User) delivery.ShipmentResult
}

type OrderHandler struct {
	builder *Builder
	store   OrderStore
	shipper ShipmentRequester
}

func NewOrderHandler(builder *Builder, store OrderStore, shipper ShipmentRequester) *OrderHandler {
	return &OrderHandler{
		builder: builder,
		store:   store,
		shipper: shipper,
	}
}

// --- response DTOs ---

type LineResponse struct {
	ProductID *uint  `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
}

type AddressResponse struct {
	ID          uint   `json:"id"`
	AddressLine string `json:"address_line"`
	City        string `json:"city"`
	Country     string `json:"country"`
}

type OrderResponse struct {
	ID        uint            `json:"id"`
	Address   AddressResponse `json:"address"`
	Lines     []LineResponse  `json:"lines"`
	CreatedAt time.Time       `json:"created_at"`
}

// HandleCreate creates an order for the authenticated user and then
// fires the shipment request. The order is committed before the
// carrier is contacted, and a carrier failure does not change the
// response.
func (h *OrderHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFrom(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	order, err := h.builder.Build(req, user)
	if err != nil {
		var vErr *ValidationError
		switch {
		case errors.As(err, &vErr):
			httpx.Error(w, http.StatusBadRequest, vErr.Error())
		case errors.Is(err, models.ErrAddressNotFound):
			httpx.Error(w, http.StatusNotFound, "Address not found")
		case errors.Is(err, models.ErrProductNotFound):
			httpx.Error(w, http.StatusNotFound, "Product not found")
		default:
			httpx.Error(w, http.StatusInternalServerError, "failed to build order")
		}
		return
	}

	if err := h.store.Create(order); err != nil {
		httpx.Error(w, http.StatusInternalServerError, "failed to create order")
		return
	}

	// Best effort from here on: the order is already durable.
	h.shipper.RequestShipment(r.Context(), order, user)

	httpx.JSON(w, http.StatusCreated, toOrderResponse(order))
}

// HandleList returns the authenticated user's own orders.
func (h *OrderHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFrom(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	orders, err := h.store.GetByUser(user.ID)
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, "failed to fetch orders")
		return
	}

	response := make([]OrderResponse, len(orders))
	for i := range orders {
		response[i] = toOrderResponse(&orders[i])
	}
	httpx.JSON(w, http.StatusOK, response)
}

func toOrderResponse(order *models.Order) OrderResponse {
	lines := make([]LineResponse, len(order.Lines))
	for i, l := range order.Lines {
		lines[i] = LineResponse{
			ProductID: l.ProductID,
			Name:      l.DisplayName(),
			Quantity:  l.Quantity,
			UnitPrice: l.DisplayPrice().StringFixed(2),
		}
	}
	return OrderResponse{
		ID: order.ID,
		Address: AddressResponse{
			ID:          order.Address.ID,
			AddressLine: order.Address.AddressLine,
			City:        order.Address.City,
			Country:     order.Address.Country,
		},
		Lines:     lines,
		CreatedAt: order.CreatedAt,
	}
}
