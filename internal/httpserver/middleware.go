package httpserver

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"techstore/internal/domain"
	customersvc "techstore/internal/service/customer"
)

const (
	requestIDHeader   = "X-Request-Id"
	customerIDHeader  = "X-Customer-Id"
	idempotencyHeader = "Idempotency-Key"
)

type ctxKey string

const (
	accountCtxKey ctxKey = "account"
	tokenCtxKey   ctxKey = "token"
)

type errorResponse struct {
	Detail string `json:"detail"`
}

func writeError(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, errorResponse{Detail: detail})
}

// validationDetail strips the sentinel prefix from a wrapped ErrInvalidInput.
func validationDetail(err error) string {
	return strings.TrimPrefix(err.Error(), domain.ErrInvalidInput.Error()+": ")
}

// requestIDMiddleware echoes the caller's request id or assigns a new one.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// authMiddleware attaches the account of a bearer token to the request
// context. Requests without a token pass through anonymously.
func authMiddleware(logger *log.Logger, svc customerService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.Next()
			return
		}
		account, err := svc.LookupByToken(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, customersvc.ErrInvalidToken) {
				writeError(c, http.StatusUnauthorized, "Invalid token")
				return
			}
			logger.Printf("auth: token lookup error=%v", err)
			writeError(c, http.StatusInternalServerError, "Authentication failed")
			return
		}
		ctx := context.WithValue(c.Request.Context(), accountCtxKey, account)
		ctx = context.WithValue(ctx, tokenCtxKey, token)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func requireAccount() gin.HandlerFunc {
	return func(c *gin.Context) {
		if accountFrom(c.Request.Context()) == nil {
			writeError(c, http.StatusUnauthorized, "Not authenticated")
			return
		}
		c.Next()
	}
}

func requireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		account := accountFrom(c.Request.Context())
		if account == nil {
			writeError(c, http.StatusUnauthorized, "Not authenticated")
			return
		}
		if !account.IsStaff() {
			writeError(c, http.StatusForbidden, "Staff access required")
			return
		}
		c.Next()
	}
}

func accountFrom(ctx context.Context) *domain.Account {
	a, _ := ctx.Value(accountCtxKey).(*domain.Account)
	return a
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// customerID picks the buyer identity: an explicit id from the request body,
// then the bearer token's customer, then the X-Customer-Id header, then the
// configured default.
func (h *handlers) customerID(c *gin.Context, explicit *int64) (int64, bool) {
	if explicit != nil && *explicit > 0 {
		return *explicit, true
	}
	if a := accountFrom(c.Request.Context()); a != nil && a.Role == domain.RoleCustomer {
		return a.ID, true
	}
	if raw := strings.TrimSpace(c.GetHeader(customerIDHeader)); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			writeError(c, http.StatusBadRequest, "Invalid "+customerIDHeader)
			return 0, false
		}
		return id, true
	}
	return h.deps.DefaultCustomerID, true
}
