package addresses

import (
	"encoding/json"
	"net/http"

	"github.com/northmart/shop-backend/app/auth"
	"github.com/northmart/shop-backend/app/httpx"
	"github.com/northmart/shop-backend/models"
)

type AddressResponse struct {
	ID          uint   `json:"id"`
	AddressLine string `json:"address_line"`
	City        string `json:"city"`
	Country     string `json:"country"`
}

type AddressProvider interface {
	GetByUserID(userID uint) ([]models.Address, error)
	Create(address *models.Address) error
}

type AddressHandler struct {
	repo AddressProvider
}

func NewAddressHandler(r AddressProvider) *AddressHandler {
	return &AddressHandler{repo: r}
}

// HandleGetAll lists the authenticated user's addresses.
func (h *AddressHandler) HandleGetAll(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFrom(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	addresses, err := h.repo.GetByUserID(user.ID)
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, "failed to fetch addresses")
		return
	}

	response := make([]AddressResponse, len(addresses))
	for i, a := range addresses {
		response[i] = AddressResponse{
			ID:          a.ID,
			AddressLine: a.AddressLine,
			City:        a.City,
			Country:     a.Country,
		}
	}

	httpx.JSON(w, http.StatusOK, response)
}

// HandleCreate stores a new address for the authenticated user. The
// owner always comes from the principal, never from the body.
func (h *AddressHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFrom(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var input struct {
		AddressLine string `json:"address_line"`
		City        string `json:"city"`
		Country     string `json:"country"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if input.AddressLine == "" || input.City == "" || input.Country == "" {
		httpx.Error(w, http.StatusBadRequest, "Missing address_line, city or country")
		return
	}

	address := &models.Address{
		AddressLine: input.AddressLine,
		City:        input.City,
		Country:     input.Country,
		UserID:      user.ID,
	}

	if err := h.repo.Create(address); err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Failed to create address")
		return
	}

	httpx.JSON(w, http.StatusCreated, AddressResponse{
		ID:          address.ID,
		AddressLine: address.AddressLine,
		City:        address.City,
		Country:     address.Country,
	})
}
