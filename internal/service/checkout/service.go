// Package checkout places orders: it validates stock, decrements inventory,
// records line items and prices the result inside one store transaction.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"techstore/internal/domain"
	"techstore/internal/outbox"
	"techstore/internal/pricing"
	orderrepo "techstore/internal/repository/order"
)

type store interface {
	InTx(ctx context.Context, fn func(ctx context.Context, tx orderrepo.Tx) error) error
	GetByID(ctx context.Context, orderID int64) (*domain.Order, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]domain.Order, error)
	FindByIdempotencyKey(ctx context.Context, customerID int64, key string) (int64, error)
}

type Service struct {
	store   store
	policy  pricing.Policy
	timeout time.Duration
	now     func() time.Time
}

func New(store orderrepo.Store, policy pricing.Policy, timeout time.Duration) *Service {
	return &Service{store: store, policy: policy, timeout: timeout, now: time.Now}
}

// Item is one requested (product, quantity) pair.
type Item struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type Input struct {
	CustomerID      int64
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	RecipientName   string
	RecipientPhone  string
	ShipmentAddress string
	Note            string
	Items           []Item
	// IdempotencyKey, when set, makes a resubmitted checkout return the first receipt.
	IdempotencyKey string
}

type ReceiptItem struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Quantity    int             `json:"quantity"`
	LineTotal   decimal.Decimal `json:"lineTotal"`
}

type Receipt struct {
	OrderID              int64           `json:"id,string"`
	RecipientName        string          `json:"recipientName"`
	RecipientPhone       string          `json:"recipientPhone"`
	Address              string          `json:"address"`
	Status               string          `json:"status"`
	IntendedShipmentDate string          `json:"intendedShipmentDate"`
	Items                []ReceiptItem   `json:"items"`
	Subtotal             decimal.Decimal `json:"subtotal"`
	Discount             decimal.Decimal `json:"discount"`
	Total                decimal.Decimal `json:"total"`
	// Replayed is true when the receipt belongs to an earlier request with the same idempotency key.
	Replayed bool `json:"-"`
}

// Checkout places an order for in.Items. Client errors are the typed errors of
// this package; any other error means the store failed and nothing was written.
func (s *Service) Checkout(ctx context.Context, in Input) (*Receipt, error) {
	if len(in.Items) == 0 {
		return nil, ErrEmptyCart
	}
	items := make([]Item, len(in.Items))
	for i, it := range in.Items {
		it.ProductID = strings.TrimSpace(it.ProductID)
		if it.Quantity < 1 {
			return nil, &InvalidQuantityError{ProductID: it.ProductID, Quantity: it.Quantity}
		}
		items[i] = it
	}
	key := strings.TrimSpace(in.IdempotencyKey)

	if key != "" {
		if rec, err := s.replay(ctx, in.CustomerID, key); err == nil {
			return rec, nil
		} else if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	var placed *domain.Order
	err := s.store.InTx(ctx, func(ctx context.Context, tx orderrepo.Tx) error {
		o, err := s.place(ctx, tx, in, items, key)
		if err != nil {
			return err
		}
		placed = o
		return nil
	})
	if err != nil {
		if key != "" && errors.Is(err, domain.ErrAlreadyExists) {
			// A concurrent request with the same key committed first.
			return s.replay(ctx, in.CustomerID, key)
		}
		return nil, err
	}
	return receiptFor(placed), nil
}

func (s *Service) place(ctx context.Context, tx orderrepo.Tx, in Input, items []Item, key string) (*domain.Order, error) {
	cartID, err := tx.ResolveCart(ctx, in.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("resolve cart: %w", err)
	}

	o := domain.Order{
		CustomerID:           in.CustomerID,
		CartID:               cartID,
		IntendedShipmentDate: shipmentDate(s.now()),
		RecipientName:        in.RecipientName,
		RecipientPhone:       in.RecipientPhone,
		RecipientContact:     ContactRecord(in.RecipientPhone, in.CustomerEmail, in.CustomerPhone, in.Note),
		ShipmentAddress:      in.ShipmentAddress,
		Status:               domain.OrderStatusPending,
	}
	if o.ID, err = tx.InsertOrder(ctx, o); err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}
	if key != "" {
		if err := tx.RecordIdempotencyKey(ctx, in.CustomerID, key, o.ID); err != nil {
			return nil, err
		}
	}

	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ProductID
	}
	locked, err := tx.LockProducts(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("lock products: %w", err)
	}

	// Requests may name a product more than once; remaining tracks the stock
	// left after the earlier lines of this same order.
	remaining := make(map[string]int, len(locked))
	for id, p := range locked {
		remaining[id] = p.Quantity
	}

	for _, it := range items {
		p, ok := locked[it.ProductID]
		if !ok || !p.Purchasable() {
			return nil, &ProductUnavailableError{ProductID: it.ProductID}
		}
		if remaining[it.ProductID] < it.Quantity {
			return nil, &InsufficientStockError{ProductID: it.ProductID, Remaining: remaining[it.ProductID]}
		}
		changed, err := tx.DecrementStock(ctx, it.ProductID, it.Quantity)
		if err != nil {
			return nil, fmt.Errorf("decrement stock: %w", err)
		}
		if !changed {
			return nil, &InsufficientStockError{ProductID: it.ProductID, Remaining: remaining[it.ProductID]}
		}
		remaining[it.ProductID] -= it.Quantity

		line := domain.OrderLine{
			ProductID:   p.ID,
			ProductName: p.Name,
			UnitPrice:   p.Price,
			Quantity:    it.Quantity,
		}
		if err := tx.InsertLine(ctx, o.ID, line); err != nil {
			return nil, fmt.Errorf("insert line: %w", err)
		}
		o.Lines = append(o.Lines, line)
	}

	sum := pricing.Calculate(o.Lines, s.policy)
	o.Subtotal, o.Discount, o.Total = sum.Subtotal, sum.Discount, sum.Total
	if err := tx.SetTotals(ctx, o.ID, o.Subtotal, o.Discount, o.Total); err != nil {
		return nil, fmt.Errorf("set totals: %w", err)
	}

	if err := tx.ClearCart(ctx, cartID, in.CustomerID); err != nil {
		return nil, fmt.Errorf("clear cart: %w", err)
	}

	if err := tx.Enqueue(ctx, outbox.Event{
		Type:    outbox.EventOrderPlaced,
		Key:     fmt.Sprintf("%d", o.ID),
		Payload: receiptFor(&o),
	}); err != nil {
		return nil, fmt.Errorf("enqueue event: %w", err)
	}
	return &o, nil
}

func (s *Service) replay(ctx context.Context, customerID int64, key string) (*Receipt, error) {
	orderID, err := s.store.FindByIdempotencyKey(ctx, customerID, key)
	if err != nil {
		return nil, err
	}
	o, err := s.store.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	rec := receiptFor(o)
	rec.Replayed = true
	return rec, nil
}

// Order returns the receipt of one of the customer's orders.
func (s *Service) Order(ctx context.Context, customerID, orderID int64) (*Receipt, error) {
	o, err := s.store.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.CustomerID != customerID {
		return nil, domain.ErrNotFound
	}
	return receiptFor(o), nil
}

// Orders lists the customer's orders, newest first. Items are left empty.
func (s *Service) Orders(ctx context.Context, customerID int64) ([]Receipt, error) {
	orders, err := s.store.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	out := make([]Receipt, 0, len(orders))
	for i := range orders {
		out = append(out, *receiptFor(&orders[i]))
	}
	return out, nil
}

// ContactRecord folds the contact fields into the single stored contact text.
func ContactRecord(recipientPhone, customerEmail, customerPhone, note string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Phone: %s\nEmail: %s\nCustomerPhone: %s", recipientPhone, customerEmail, customerPhone)
	if note = strings.TrimSpace(note); note != "" {
		fmt.Fprintf(&b, "\nNote: %s", note)
	}
	return b.String()
}

// shipmentDate is the calendar day after now's date.
func shipmentDate(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, time.UTC)
}

func receiptFor(o *domain.Order) *Receipt {
	rec := &Receipt{
		OrderID:              o.ID,
		RecipientName:        o.RecipientName,
		RecipientPhone:       o.RecipientPhone,
		Address:              o.ShipmentAddress,
		Status:               o.Status,
		IntendedShipmentDate: o.IntendedShipmentDate.Format(time.DateOnly),
		Items:                make([]ReceiptItem, 0, len(o.Lines)),
		Subtotal:             o.Subtotal,
		Discount:             o.Discount,
		Total:                o.Total,
	}
	for _, l := range o.Lines {
		rec.Items = append(rec.Items, ReceiptItem{
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			UnitPrice:   l.UnitPrice,
			Quantity:    l.Quantity,
			LineTotal:   l.LineTotal(),
		})
	}
	return rec
}
