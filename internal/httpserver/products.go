package httpserver

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"techstore/internal/domain"
	"techstore/internal/images"
	productsvc "techstore/internal/service/product"
)

type productResponse struct {
	ProductID      string          `json:"productId"`
	ProductName    string          `json:"productName"`
	Brand          *string         `json:"brand"`
	Price          decimal.Decimal `json:"price"`
	Color          *string         `json:"color"`
	Quantity       int             `json:"quantity"`
	Specification  *string         `json:"specification"`
	WarrantyPeriod *int            `json:"warrantyPeriod"`
	ReleaseDate    *string         `json:"releaseDate"`
	Status         string          `json:"status"`
	ImageBaseURL   *string         `json:"imageBaseUrl"`
}

func (h *handlers) toProductResponse(p domain.Product) productResponse {
	out := productResponse{
		ProductID:      p.ID,
		ProductName:    p.Name,
		Brand:          p.Brand,
		Price:          p.Price,
		Color:          p.Color,
		Quantity:       p.Quantity,
		Specification:  p.Specification,
		WarrantyPeriod: p.WarrantyPeriod,
		Status:         string(p.Status),
	}
	if p.ReleaseDate != nil {
		d := p.ReleaseDate.Format(time.DateOnly)
		out.ReleaseDate = &d
	}
	if h.deps.Images != nil {
		if url := h.deps.Images.URL(p.ID); url != "" {
			out.ImageBaseURL = &url
		}
	}
	return out
}

func (h *handlers) productList(products []domain.Product) []productResponse {
	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, h.toProductResponse(p))
	}
	return out
}

func (h *handlers) listBuyerProducts(c *gin.Context) {
	products, err := h.deps.ProductSvc.List(c.Request.Context(), domain.ProductFilter{Query: c.Query("q")})
	if err != nil {
		h.logger.Printf("products: list error=%v", err)
		writeError(c, http.StatusInternalServerError, "Failed to list products")
		return
	}
	c.JSON(http.StatusOK, h.productList(products))
}

func (h *handlers) getProduct(c *gin.Context) {
	p, err := h.deps.ProductSvc.Get(c.Request.Context(), c.Param("productId"))
	if err != nil {
		h.productError(c, err, "get")
		return
	}
	c.JSON(http.StatusOK, h.toProductResponse(*p))
}

func (h *handlers) listStaffProducts(c *gin.Context) {
	include, _ := strconv.ParseBool(c.DefaultQuery("include_deactivated", "false"))
	products, err := h.deps.ProductSvc.List(c.Request.Context(), domain.ProductFilter{
		Query:              c.Query("q"),
		IncludeDeactivated: include,
	})
	if err != nil {
		h.logger.Printf("products: staff list error=%v", err)
		writeError(c, http.StatusInternalServerError, "Failed to list products")
		return
	}
	c.JSON(http.StatusOK, h.productList(products))
}

func (h *handlers) createProduct(c *gin.Context) {
	var req productsvc.CreateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	p, err := h.deps.ProductSvc.Create(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			writeError(c, http.StatusBadRequest, "ProductId already exists")
			return
		}
		h.productError(c, err, "create")
		return
	}
	c.JSON(http.StatusOK, h.toProductResponse(*p))
}

func (h *handlers) updateProduct(c *gin.Context) {
	var req productsvc.UpdateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	p, err := h.deps.ProductSvc.Update(c.Request.Context(), c.Param("productId"), req)
	if err != nil {
		h.productError(c, err, "update")
		return
	}
	c.JSON(http.StatusOK, h.toProductResponse(*p))
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *handlers) updateProductStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	id := c.Param("productId")
	status, err := h.deps.ProductSvc.SetStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(c, http.StatusNotFound, "Not found")
			return
		}
		h.productError(c, err, "status")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "productId": id, "status": status})
}

func (h *handlers) uploadProductImage(c *gin.Context) {
	if h.deps.Images == nil {
		writeError(c, http.StatusServiceUnavailable, "Image storage not configured")
		return
	}
	id := c.Param("productId")
	if _, err := h.deps.ProductSvc.Get(c.Request.Context(), id); err != nil {
		h.productError(c, err, "image")
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		writeError(c, http.StatusBadRequest, "file field required")
		return
	}
	f, err := fh.Open()
	if err != nil {
		writeError(c, http.StatusBadRequest, "unreadable upload")
		return
	}
	defer f.Close()

	url, err := h.deps.Images.Save(id, fh.Filename, f)
	if err != nil {
		if errors.Is(err, images.ErrUnsupportedType) || errors.Is(err, images.ErrInvalidProductID) {
			writeError(c, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Printf("products: image upload id=%s error=%v", id, err)
		writeError(c, http.StatusInternalServerError, "Upload failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"productId": id, "imageBaseUrl": url})
}

func (h *handlers) productError(c *gin.Context, err error, op string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(c, http.StatusNotFound, "Product not found")
	case errors.Is(err, productsvc.ErrInvalidStatus):
		writeError(c, http.StatusBadRequest, "Invalid status")
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(c, http.StatusBadRequest, validationDetail(err))
	default:
		h.logger.Printf("products: %s error=%v", op, err)
		writeError(c, http.StatusInternalServerError, "Product operation failed")
	}
}
