package catalog

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/northmart/shop-backend/app/auth"
	"github.com/northmart/shop-backend/app/httpx"
	"github.com/northmart/shop-backend/models"
)

type Response struct {
	Total    int       `json:"total"`
	Products []Product `json:"products"`
}

type Product struct {
	ID               uint    `json:"id"`
	Name             string  `json:"name"`
	ShortDescription string  `json:"short_description"`
	Price            float64 `json:"price"`
	Rating           float64 `json:"rating"`
	Image            string  `json:"image"`
}

type Specs struct {
	Model            string `json:"model,omitempty"`
	ArticleSKU       string `json:"article_sku,omitempty"`
	Dimensions       string `json:"dimensions,omitempty"`
	Weight           string `json:"weight,omitempty"`
	ColorFinish      string `json:"color_finish,omitempty"`
	PowerConsumption string `json:"power_consumption,omitempty"`
	Capacity         string `json:"capacity,omitempty"`
	Materials        string `json:"materials,omitempty"`
	Warranty         string `json:"warranty,omitempty"`
	CountryOfOrigin  string `json:"country_of_origin,omitempty"`
}

type ProductProvider interface {
	GetFilteredProducts(offset, limit int, filters models.ProductFilters) ([]models.Product, int64, error)
	GetByID(id uint) (*models.Product, error)
	Create(product *models.Product) error
}

// ProductDeleter drives the soft/hard deletion lifecycle.
type ProductDeleter interface {
	SoftDelete(id uint, reason string) error
	Restore(id uint) error
	HardDelete(id uint) error
	PurgeExpired(olderThan time.Duration) (int, error)
}

// ImageSaver stores an uploaded product image and returns its key.
type ImageSaver interface {
	Save(fileName, base64Payload string) (string, error)
}

type CatalogHandler struct {
	repo     ProductProvider
	deletion ProductDeleter
	images   ImageSaver
}

func NewCatalogHandler(r ProductProvider, deletion ProductDeleter, images ImageSaver) *CatalogHandler {
	return &CatalogHandler{
		repo:     r,
		deletion: deletion,
		images:   images,
	}
}

func (h *CatalogHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	// Parse pagination query params
	offset := 0
	limit := 10

	if oStr := r.URL.Query().Get("offset"); oStr != "" {
		if o, err := strconv.Atoi(oStr); err == nil && o >= 0 {
			offset = o
		}
	}

	if lStr := r.URL.Query().Get("limit"); lStr != "" {
		if l, err := strconv.Atoi(lStr); err == nil {
			if l < 1 {
				limit = 1
			} else if l > 100 {
				limit = 100
			} else {
				limit = l
			}
		}
	}

	// Parse filters
	var priceFilter *float64
	if priceStr := r.URL.Query().Get("price_lt"); priceStr != "" {
		if val, err := strconv.ParseFloat(priceStr, 64); err == nil {
			priceFilter = &val
		}
	}

	filters := models.ProductFilters{
		NameContains:  r.URL.Query().Get("name"),
		PriceLessThan: priceFilter,
	}

	res, total, err := h.repo.GetFilteredProducts(offset, limit, filters)
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, "failed to get products")
		return
	}

	products := make([]Product, len(res))
	for i, p := range res {
		products[i] = toProduct(&p)
	}

	httpx.JSON(w, http.StatusOK, Response{
		Total:    int(total),
		Products: products,
	})
}

func (h *CatalogHandler) HandleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	product, err := h.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, models.ErrProductNotFound) {
			httpx.Error(w, http.StatusNotFound, "Product not found")
			return
		}
		httpx.Error(w, http.StatusInternalServerError, "Failed to retrieve product")
		return
	}

	response := struct {
		Product
		LongDescription string `json:"long_description"`
		Specs           *Specs `json:"specs,omitempty"`
		InStock         int    `json:"in_stock"`
	}{
		Product:         toProduct(product),
		LongDescription: product.LongDescription,
	}
	if product.Description != nil {
		d := product.Description
		response.Specs = &Specs{
			Model:            d.Model,
			ArticleSKU:       d.ArticleSKU,
			Dimensions:       d.Dimensions,
			Weight:           d.Weight,
			ColorFinish:      d.ColorFinish,
			PowerConsumption: d.PowerConsumption,
			Capacity:         d.Capacity,
			Materials:        d.Materials,
			Warranty:         d.Warranty,
			CountryOfOrigin:  d.CountryOfOrigin,
		}
	}
	if product.Inventory != nil {
		response.InStock = product.Inventory.Quantity
	}

	httpx.JSON(w, http.StatusOK, response)
}

func (h *CatalogHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.RequireAdmin(w, r); !ok {
		return
	}

	var input struct {
		Name             string  `json:"name"`
		ShortDescription string  `json:"short_description"`
		LongDescription  string  `json:"long_description"`
		Price            float64 `json:"price"`
		Rating           float64 `json:"rating"`
		Image            string  `json:"image"`
		ImageName        string  `json:"image_name"`
		Quantity         int     `json:"quantity"`
		Specs            *Specs  `json:"specs"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if input.Name == "" || input.ShortDescription == "" || input.Image == "" || input.ImageName == "" {
		httpx.Error(w, http.StatusBadRequest, "Missing name, short_description or image")
		return
	}

	imageKey, err := h.images.Save(input.ImageName, input.Image)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid image payload")
		return
	}

	product := &models.Product{
		Name:             input.Name,
		ShortDescription: input.ShortDescription,
		LongDescription:  input.LongDescription,
		Price:            decimal.NewFromFloat(input.Price),
		Rating:           input.Rating,
		Image:            imageKey,
		Inventory:        &models.Inventory{Quantity: input.Quantity},
	}
	if s := input.Specs; s != nil {
		product.Description = &models.Description{
			Model:            s.Model,
			ArticleSKU:       s.ArticleSKU,
			Dimensions:       s.Dimensions,
			Weight:           s.Weight,
			ColorFinish:      s.ColorFinish,
			PowerConsumption: s.PowerConsumption,
			Capacity:         s.Capacity,
			Materials:        s.Materials,
			Warranty:         s.Warranty,
			CountryOfOrigin:  s.CountryOfOrigin,
		}
	}

	if err := h.repo.Create(product); err != nil {
		if errors.Is(err, models.ErrDuplicateProductName) {
			httpx.Error(w, http.StatusConflict, "Product name already in use")
			return
		}
		httpx.Error(w, http.StatusInternalServerError, "Failed to create product")
		return
	}

	httpx.JSON(w, http.StatusCreated, toProduct(product))
}

// HandleSoftDelete flags a product as deleted. Reversible.
func (h *CatalogHandler) HandleSoftDelete(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.RequireAdmin(w, r); !ok {
		return
	}
	id, ok := productID(w, r)
	if !ok {
		return
	}

	var input struct {
		Reason string `json:"reason"`
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&input) // reason is optional
	}

	if err := h.deletion.SoftDelete(id, input.Reason); err != nil {
		h.writeDeletionError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CatalogHandler) HandleRestore(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.RequireAdmin(w, r); !ok {
		return
	}
	id, ok := productID(w, r)
	if !ok {
		return
	}

	if err := h.deletion.Restore(id); err != nil {
		h.writeDeletionError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleHardDelete removes the product row permanently, freezing
// historical order lines first.
func (h *CatalogHandler) HandleHardDelete(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.RequireAdmin(w, r); !ok {
		return
	}
	id, ok := productID(w, r)
	if !ok {
		return
	}

	if err := h.deletion.HardDelete(id); err != nil {
		h.writeDeletionError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandlePurgeExpired hard-deletes products soft-deleted more than
// ?days= days ago.
func (h *CatalogHandler) HandlePurgeExpired(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.RequireAdmin(w, r); !ok {
		return
	}

	days := 30
	if dStr := r.URL.Query().Get("days"); dStr != "" {
		d, err := strconv.Atoi(dStr)
		if err != nil || d < 0 {
			httpx.Error(w, http.StatusBadRequest, "Invalid days value")
			return
		}
		days = d
	}

	deleted, err := h.deletion.PurgeExpired(time.Duration(days) * 24 * time.Hour)
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Purge failed")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]int{"deleted": deleted})
}

func (h *CatalogHandler) writeDeletionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrProductNotFound):
		httpx.Error(w, http.StatusNotFound, "Product not found")
	case errors.Is(err, ErrNotDeleted):
		httpx.Error(w, http.StatusConflict, "Product is not deleted")
	default:
		httpx.Error(w, http.StatusInternalServerError, "Operation failed")
	}
}

func productID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 32)
	if err != nil {
		httpx.Error(w, http.StatusNotFound, "Product not found")
		return 0, false
	}
	return uint(id), true
}

func toProduct(p *models.Product) Product {
	return Product{
		ID:               p.ID,
		Name:             p.Name,
		ShortDescription: p.ShortDescription,
		Price:            p.Price.InexactFloat64(),
		Rating:           p.Rating,
		Image:            p.Image,
	}
}
