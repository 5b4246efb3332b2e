package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"agrisense/api/internal/middleware"
	"agrisense/api/internal/models"
	"agrisense/api/internal/service"
)

type productResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	PriceInINR  int64  `json:"priceInINR"`
	ImageURL    string `json:"imageUrl"`
}

func toProductResponse(p models.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		PriceInINR:  p.PriceInINR,
		ImageURL:    p.ImageURL,
	}
}

func (h HandlerSet) ListProducts(c *gin.Context) {
	products, err := h.market.Products(c.Request.Context())
	if err != nil {
		h.serverError(c, err)
		return
	}

	resp := make([]productResponse, 0, len(products))
	for _, p := range products {
		resp = append(resp, toProductResponse(p))
	}
	c.JSON(http.StatusOK, gin.H{"products": resp})
}

type createProductRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	PriceInINR  int64  `json:"priceInINR" binding:"required,min=1"`
	ImageURL    string `json:"imageUrl"`
}

func (h HandlerSet) CreateProduct(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product, err := h.market.CreateProduct(c.Request.Context(), service.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		PriceInINR:  req.PriceInINR,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product"})
			return
		}
		h.serverError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"product": toProductResponse(product)})
}

type cartLineResponse struct {
	ItemID  string          `json:"itemId"`
	Qty     int             `json:"qty"`
	Product productResponse `json:"product"`
}

func (h HandlerSet) GetCart(c *gin.Context) {
	view, err := h.market.GetCart(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.serverError(c, err)
		return
	}

	lines := make([]cartLineResponse, 0, len(view.Lines))
	for _, line := range view.Lines {
		lines = append(lines, cartLineResponse{
			ItemID:  line.Item.ID,
			Qty:     line.Item.Qty,
			Product: toProductResponse(line.Product),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"cartId": view.CartID,
		"items":  lines,
		"total":  view.Total,
	})
}

type upsertCartItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Qty       int    `json:"qty" binding:"required,min=1,max=999"`
}

func (h HandlerSet) UpsertCartItem(c *gin.Context) {
	var req upsertCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.market.UpsertCartItem(c.Request.Context(), middleware.UserID(c), req.ProductID, req.Qty)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item"})
			return
		}
		h.serverError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"item": gin.H{
		"id":        item.ID,
		"productId": item.ProductID,
		"qty":       item.Qty,
	}})
}

func (h HandlerSet) RemoveCartItem(c *gin.Context) {
	itemID := c.Param("itemId")
	if itemID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "itemId required"})
		return
	}

	if err := h.market.RemoveCartItem(c.Request.Context(), middleware.UserID(c), itemID); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "item not in your cart"})
			return
		}
		h.serverError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
