package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/chaussup/shop/internal/models"
)

type CartHandler struct {
	DB *gorm.DB
}

// The cart lives in the client's localStorage, so every field of the
// submitted payload is untrusted: ids may reference deleted products,
// quantities may be garbage. Validation degrades instead of erroring.
type cartItemRequest struct {
	ID       json.RawMessage `json:"id"`
	Quantity json.RawMessage `json:"quantity"`
}

type cartRequest struct {
	Items []cartItemRequest `json:"items"`
}

type cartItemResponse struct {
	ID       uint    `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	Subtotal float64 `json:"subtotal"`
}

type cartResponse struct {
	Items []cartItemResponse `json:"items"`
	Total float64            `json:"total"`
}

func (h *CartHandler) Validate(c echo.Context) error {
	resp := cartResponse{Items: []cartItemResponse{}}

	var req cartRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusOK, resp)
	}

	ids := make([]uint, 0, len(req.Items))
	for _, item := range req.Items {
		if id, ok := coerceID(item.ID); ok {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return c.JSON(http.StatusOK, resp)
	}

	var products []models.Product
	if err := h.DB.Where("id IN ?", ids).Find(&products).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not validate cart")
	}

	byID := make(map[uint]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	total := decimal.Zero
	for _, item := range req.Items {
		id, ok := coerceID(item.ID)
		if !ok {
			continue
		}
		product, ok := byID[id]
		if !ok {
			// Stale client cart referencing a deleted product.
			continue
		}

		quantity := coerceQuantity(item.Quantity)
		price := decimal.NewFromFloat(product.Price).Round(2)
		subtotal := price.Mul(decimal.NewFromInt(int64(quantity)))
		total = total.Add(subtotal)

		resp.Items = append(resp.Items, cartItemResponse{
			ID:       product.ID,
			Name:     product.Name,
			Price:    price.InexactFloat64(),
			Quantity: quantity,
			Subtotal: subtotal.InexactFloat64(),
		})
	}

	resp.Total = total.InexactFloat64()
	return c.JSON(http.StatusOK, resp)
}

func coerceID(raw json.RawMessage) (uint, bool) {
	var n int64
	if err := json.Unmarshal(raw, &n); err == nil {
		if n > 0 {
			return uint(n), true
		}
		return 0, false
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil && v > 0 {
			return uint(v), true
		}
	}

	return 0, false
}

func coerceQuantity(raw json.RawMessage) int {
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		if q := int(f); q >= 1 {
			return q
		}
		return 1
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			if q := int(v); q >= 1 {
				return q
			}
		}
	}

	return 1
}
