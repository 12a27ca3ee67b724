package httpserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"techstore/internal/domain"
	"techstore/internal/images"
)

var staffTokens = map[string]*domain.Account{"staff": {ID: 2, Role: domain.RoleStaff}}

func staffDeps(products *stubProductService) Deps {
	deps := testDeps()
	deps.CustomerSvc = &stubCustomerAuthSvc{tokens: staffTokens}
	deps.ProductSvc = products
	return deps
}

func staffRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer staff")
	return req
}

func TestListBuyerProducts(t *testing.T) {
	release := time.Date(2024, 9, 20, 0, 0, 0, 0, time.UTC)
	products := &stubProductService{products: []domain.Product{{
		ID: "IP16", Name: "iPhone 16", Price: decimal.RequireFromString("999.90"),
		Quantity: 5, ReleaseDate: &release, Status: domain.ProductActive,
	}}}
	deps := testDeps()
	deps.ProductSvc = products
	router := newTestRouter(t, deps)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/buyer/products?q=iphone&include_deactivated=true", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if products.lastFilter.Query != "iphone" || products.lastFilter.IncludeDeactivated {
		t.Fatalf("buyer listing must not include deactivated products: %+v", products.lastFilter)
	}
	var resp []productResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp) != 1 || resp[0].ReleaseDate == nil || *resp[0].ReleaseDate != "2024-09-20" {
		t.Fatalf("unexpected products: %+v", resp)
	}
	if resp[0].ImageBaseURL != nil {
		t.Fatalf("expected no image url")
	}
}

func TestStaffListProducts_IncludeDeactivated(t *testing.T) {
	products := &stubProductService{}
	router := newTestRouter(t, staffDeps(products))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, staffRequest(http.MethodGet, "/staff/products?include_deactivated=true", ""))
	if rec.Code != http.StatusOK || !products.lastFilter.IncludeDeactivated {
		t.Fatalf("expected deactivated products, code=%d filter=%+v", rec.Code, products.lastFilter)
	}
}

func TestGetProduct_NotFound(t *testing.T) {
	router := newTestRouter(t, testDeps())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/buyer/products/NOPE", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestCreateProduct(t *testing.T) {
	products := &stubProductService{}
	router := newTestRouter(t, staffDeps(products))

	body := `{"productId":"P1","productName":"Phone","price":"199.99","quantity":4}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, staffRequest(http.MethodPost, "/staff/products", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	if products.created == nil || !products.created.Price.Equal(decimal.RequireFromString("199.99")) {
		t.Fatalf("unexpected create input: %+v", products.created)
	}
}

func TestCreateProduct_Errors(t *testing.T) {
	cases := []struct {
		err    error
		want   int
		detail string
	}{
		{domain.ErrAlreadyExists, http.StatusBadRequest, "ProductId already exists"},
		{fmt.Errorf("%w: productName is required", domain.ErrInvalidInput), http.StatusBadRequest, "productName is required"},
		{fmt.Errorf("boom"), http.StatusInternalServerError, "Product operation failed"},
	}
	for _, tc := range cases {
		router := newTestRouter(t, staffDeps(&stubProductService{createErr: tc.err}))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, staffRequest(http.MethodPost, "/staff/products", `{"productId":"P1"}`))

		if rec.Code != tc.want {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.want, rec.Code)
		}
		var resp errorResponse
		_ = json.Unmarshal(rec.Body.Bytes(), &resp)
		if resp.Detail != tc.detail {
			t.Fatalf("expected detail %q, got %q", tc.detail, resp.Detail)
		}
	}
}

func TestUpdateProduct(t *testing.T) {
	products := &stubProductService{products: []domain.Product{{ID: "P1", Name: "Phone", Status: domain.ProductActive}}}
	router := newTestRouter(t, staffDeps(products))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, staffRequest(http.MethodPut, "/staff/products/P1", `{"quantity":9}`))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, staffRequest(http.MethodPut, "/staff/products/P2", `{"quantity":9}`))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestUpdateProductStatus(t *testing.T) {
	router := newTestRouter(t, staffDeps(&stubProductService{}))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, staffRequest(http.MethodPut, "/staff/products/P1/update_product_status", `{"status":"inactive"}`))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"status":"Deactivated"`) || !strings.Contains(rec.Body.String(), `"success":true`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, staffRequest(http.MethodPut, "/staff/products/P1/update_product_status", `{"status":"sold"}`))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown status, got %d", rec.Code)
	}

	router = newTestRouter(t, staffDeps(&stubProductService{statusErr: domain.ErrNotFound}))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, staffRequest(http.MethodPut, "/staff/products/P1/update_product_status", `{"status":"active"}`))
	if rec.Code != http.StatusNotFound || !strings.Contains(rec.Body.String(), `"detail":"Not found"`) {
		t.Fatalf("expected 404 Not found, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestUploadProductImage(t *testing.T) {
	dir := t.TempDir()
	products := &stubProductService{products: []domain.Product{{ID: "P1", Name: "Phone", Status: domain.ProductActive}}}
	deps := staffDeps(products)
	deps.Images = images.NewStore(dir, "http://files.test")
	router := newTestRouter(t, deps)

	upload := func(productID, filename string) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		part, err := w.CreateFormFile("file", filename)
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		part.Write([]byte("image-bytes"))
		w.Close()

		req := httptest.NewRequest(http.MethodPost, "/staff/products/"+productID+"/images", &buf)
		req.Header.Set("Content-Type", w.FormDataContentType())
		req.Header.Set("Authorization", "Bearer staff")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	rec := upload("P1", "photo.PNG")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "http://files.test/product_images/P1/1.png") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
	if _, err := os.Stat(filepath.Join(dir, "P1", "1.png")); err != nil {
		t.Fatalf("file not stored: %v", err)
	}

	if rec := upload("P1", "doc.pdf"); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for pdf, got %d", rec.Code)
	}
	if rec := upload("P404", "photo.png"); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown product, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/buyer/products/P1", nil))
	if !strings.Contains(rec.Body.String(), `"imageBaseUrl":"http://files.test/product_images/P1/1.png"`) {
		t.Fatalf("expected image url on product: %s", rec.Body.String())
	}
}
