package httpserver

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"techstore/internal/domain"
	"techstore/internal/metrics"
	checkoutsvc "techstore/internal/service/checkout"
)

type checkoutRequest struct {
	CustomerID     *int64             `json:"customerId"`
	CustomerName   string             `json:"customerName"`
	CustomerEmail  string             `json:"customerEmail"`
	CustomerPhone  string             `json:"customerPhone"`
	RecipientName  string             `json:"recipientName"`
	RecipientPhone string             `json:"recipientPhone"`
	Address        string             `json:"address"`
	Note           *string            `json:"note"`
	Items          []checkoutsvc.Item `json:"items"`
}

func (h *handlers) checkout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	customerID, ok := h.customerID(c, req.CustomerID)
	if !ok {
		return
	}
	in := checkoutsvc.Input{
		CustomerID:      customerID,
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		RecipientName:   req.RecipientName,
		RecipientPhone:  req.RecipientPhone,
		ShipmentAddress: req.Address,
		Items:           req.Items,
		IdempotencyKey:  strings.TrimSpace(c.GetHeader(idempotencyHeader)),
	}
	if req.Note != nil {
		in.Note = *req.Note
	}

	receipt, err := h.deps.CheckoutSvc.Checkout(c.Request.Context(), in)
	if err != nil {
		if checkoutsvc.IsClientError(err) {
			h.observeCheckout(metrics.CheckoutRejected)
			writeError(c, http.StatusBadRequest, err.Error())
			return
		}
		h.observeCheckout(metrics.CheckoutFailed)
		h.logger.Printf("checkout: customer_id=%d error=%v", customerID, err)
		writeError(c, http.StatusInternalServerError, "Checkout failed")
		return
	}
	if receipt.Replayed {
		h.observeCheckout(metrics.CheckoutReplayed)
		c.Header("Idempotent-Replayed", "true")
	} else {
		h.observeCheckout(metrics.CheckoutPlaced)
	}
	c.JSON(http.StatusOK, receipt)
}

func (h *handlers) listOrders(c *gin.Context) {
	customerID, ok := h.customerID(c, nil)
	if !ok {
		return
	}
	orders, err := h.deps.CheckoutSvc.Orders(c.Request.Context(), customerID)
	if err != nil {
		h.logger.Printf("orders: list customer_id=%d error=%v", customerID, err)
		writeError(c, http.StatusInternalServerError, "Failed to list orders")
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *handlers) getOrder(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("orderId"), 10, 64)
	if err != nil || orderID <= 0 {
		writeError(c, http.StatusNotFound, "Order not found")
		return
	}
	customerID, ok := h.customerID(c, nil)
	if !ok {
		return
	}
	receipt, err := h.deps.CheckoutSvc.Order(c.Request.Context(), customerID, orderID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(c, http.StatusNotFound, "Order not found")
			return
		}
		h.logger.Printf("orders: get id=%d error=%v", orderID, err)
		writeError(c, http.StatusInternalServerError, "Failed to load order")
		return
	}
	c.JSON(http.StatusOK, receipt)
}

func (h *handlers) observeCheckout(outcome string) {
	if h.deps.Metrics != nil {
		h.deps.Metrics.ObserveCheckout(outcome)
	}
}
