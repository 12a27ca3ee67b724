package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"techstore/internal/domain"
	cartsvc "techstore/internal/service/cart"
)

type setQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *handlers) getCart(c *gin.Context) {
	customerID, ok := h.customerID(c, nil)
	if !ok {
		return
	}
	cart, err := h.deps.CartSvc.Get(c.Request.Context(), customerID)
	h.writeCart(c, cart, err)
}

func (h *handlers) addCartItem(c *gin.Context) {
	var req cartsvc.AddItemInput
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	customerID, ok := h.customerID(c, nil)
	if !ok {
		return
	}
	cart, err := h.deps.CartSvc.AddItem(c.Request.Context(), customerID, req)
	h.writeCart(c, cart, err)
}

func (h *handlers) setCartItem(c *gin.Context) {
	var req setQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	customerID, ok := h.customerID(c, nil)
	if !ok {
		return
	}
	cart, err := h.deps.CartSvc.SetQuantity(c.Request.Context(), customerID, c.Param("productId"), req.Quantity)
	h.writeCart(c, cart, err)
}

func (h *handlers) removeCartItem(c *gin.Context) {
	customerID, ok := h.customerID(c, nil)
	if !ok {
		return
	}
	cart, err := h.deps.CartSvc.RemoveItem(c.Request.Context(), customerID, c.Param("productId"))
	h.writeCart(c, cart, err)
}

func (h *handlers) writeCart(c *gin.Context, cart *domain.Cart, err error) {
	if err == nil {
		c.JSON(http.StatusOK, cart)
		return
	}
	switch {
	case errors.Is(err, domain.ErrUnknownCustomer):
		writeError(c, http.StatusBadRequest, "Unknown customer")
	case errors.Is(err, domain.ErrNotFound):
		writeError(c, http.StatusNotFound, "Cart item not found")
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(c, http.StatusBadRequest, validationDetail(err))
	default:
		h.logger.Printf("cart: error=%v", err)
		writeError(c, http.StatusInternalServerError, "Cart operation failed")
	}
}
