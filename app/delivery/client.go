// Package delivery integrates with the external delivery carrier. A
// shipment request is a downstream side effect of a committed order:
// it runs after the order transaction, on a bounded timeout, and its
// failure never invalidates the order.
package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/northmart/shop-backend/models"
)

const (
	requestTimeout = 30 * time.Second

	// Used for the destination point when the stored address line is
	// blank; the carrier rejects empty route points.
	fallbackAddressLine = "address to be confirmed with recipient"

	costCurrency = "RUB"

	sourcePointID      = 1
	destinationPointID = 2
)

// Config carries the carrier credentials and endpoints. It is injected
// at construction; there is no ambient global state.
type Config struct {
	URL   string
	Token string
	// WarehouseAddress is the fixed source route point.
	WarehouseAddress string
	// EmergencyName/EmergencyPhone identify the shop-side contact the
	// courier can call when the recipient is unreachable.
	EmergencyName  string
	EmergencyPhone string
}

// ShipmentResult is the outcome of a shipment request. A failed
// request is reported, not propagated: the order stands either way.
type ShipmentResult struct {
	OK  bool
	Err error
}

type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: requestTimeout},
		logger: logger,
	}
}

// --- wire types ---

type shipmentRequest struct {
	Items            []shipmentItem `json:"items"`
	RoutePoints      []routePoint   `json:"route_points"`
	RecipientInfo    contactInfo    `json:"recipient_info"`
	BillingInfo      billingInfo    `json:"billing_info"`
	EmergencyContact contactInfo    `json:"emergency_contact"`
	Comment          string         `json:"comment"`
}

type shipmentItem struct {
	Title        string     `json:"title"`
	Quantity     int        `json:"quantity"`
	CostValue    string     `json:"cost_value"`
	CostCurrency string     `json:"cost_currency"`
	Weight       float64    `json:"weight"`
	Size         Dimensions `json:"size"`
	PickupPoint  int        `json:"pickup_point"`
	DropoffPoint int        `json:"dropoff_point"`
}

type routePoint struct {
	PointID int          `json:"point_id"`
	Type    string       `json:"type"`
	Address pointAddress `json:"address"`
	Contact contactInfo  `json:"contact"`
}

type pointAddress struct {
	Fullname string `json:"fullname"`
}

type contactInfo struct {
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

type billingInfo struct {
	PayerName  string `json:"payer_name"`
	PayerEmail string `json:"payer_email"`
}

// RequestShipment asks the carrier to create a shipment for a
// persisted order. The order id doubles as the carrier-side
// deduplication key, so a retried call for the same order is
// idempotent. Any failure is logged and returned in the result; it is
// never an error of order creation.
func (c *Client) RequestShipment(ctx context.Context, order *models.Order, user *models.User) ShipmentResult {
	payload := c.buildRequest(order, user)

	body, err := json.Marshal(payload)
	if err != nil {
		return c.fail(order, fmt.Errorf("encoding shipment request: %w", err))
	}

	endpoint, err := url.Parse(c.cfg.URL)
	if err != nil {
		return c.fail(order, fmt.Errorf("carrier url: %w", err))
	}
	q := endpoint.Query()
	q.Set("request_id", strconv.FormatUint(uint64(order.ID), 10))
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return c.fail(order, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)

	resp, err := c.http.Do(req)
	if err != nil {
		return c.fail(order, fmt.Errorf("carrier request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return c.fail(order, fmt.Errorf("carrier responded %d: %s", resp.StatusCode, detail))
	}

	c.logger.Info("shipment requested", "order_id", order.ID)
	return ShipmentResult{OK: true}
}

func (c *Client) buildRequest(order *models.Order, user *models.User) shipmentRequest {
	destination := order.Address.AddressLine
	if destination == "" {
		destination = fallbackAddressLine
	}
	destination = fmt.Sprintf("%s, %s, %s", destination, order.Address.City, order.Address.Country)

	recipient := contactInfo{
		Name:  user.FullName(),
		Phone: user.Phone,
		Email: user.Email,
	}

	items := make([]shipmentItem, len(order.Lines))
	for i, line := range order.Lines {
		items[i] = shipmentItem{
			Title:        line.DisplayName(),
			Quantity:     line.Quantity,
			CostValue:    line.DisplayPrice().StringFixed(2),
			CostCurrency: costCurrency,
			Weight:       c.itemWeight(line.Product),
			Size:         c.itemSize(line.Product),
			PickupPoint:  sourcePointID,
			DropoffPoint: destinationPointID,
		}
	}

	return shipmentRequest{
		Items: items,
		RoutePoints: []routePoint{
			{
				PointID: sourcePointID,
				Type:    "source",
				Address: pointAddress{Fullname: c.cfg.WarehouseAddress},
				Contact: contactInfo{Name: c.cfg.EmergencyName, Phone: c.cfg.EmergencyPhone},
			},
			{
				PointID: destinationPointID,
				Type:    "destination",
				Address: pointAddress{Fullname: destination},
				Contact: recipient,
			},
		},
		RecipientInfo: recipient,
		BillingInfo: billingInfo{
			PayerName:  user.FullName(),
			PayerEmail: user.Email,
		},
		EmergencyContact: contactInfo{Name: c.cfg.EmergencyName, Phone: c.cfg.EmergencyPhone},
		Comment:          fmt.Sprintf("Order #%d", order.ID),
	}
}

// itemSize reads the free-text dimensions off the product description.
// Bad or missing text degrades to the default size, never to an error.
func (c *Client) itemSize(p *models.Product) Dimensions {
	if p == nil || p.Description == nil || p.Description.Dimensions == "" {
		return defaultDimensions()
	}
	dims, err := parseDimensions(p.Description.Dimensions)
	if err != nil {
		c.logger.Warn("unparsable product dimensions, using defaults",
			"product_id", p.ID, "dimensions", p.Description.Dimensions, "err", err)
		return defaultDimensions()
	}
	return dims
}

func (c *Client) itemWeight(p *models.Product) float64 {
	if p == nil || p.Description == nil || p.Description.Weight == "" {
		return defaultWeightKg
	}
	w, err := parseWeight(p.Description.Weight)
	if err != nil {
		c.logger.Warn("unparsable product weight, using default",
			"product_id", p.ID, "weight", p.Description.Weight, "err", err)
		return defaultWeightKg
	}
	return w
}

func (c *Client) fail(order *models.Order, err error) ShipmentResult {
	c.logger.Warn("shipment request failed", "order_id", order.ID, "err", err)
	return ShipmentResult{OK: false, Err: err}
}
