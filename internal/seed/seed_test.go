package seed

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"techstore/internal/domain"
	customersvc "techstore/internal/service/customer"
	productsvc "techstore/internal/service/product"
)

type fakeAccounts struct {
	created map[domain.Role][]string
	exists  bool
}

func (f *fakeAccounts) Register(_ context.Context, in customersvc.RegisterInput) (*domain.Account, error) {
	return f.add(domain.RoleCustomer, in)
}

func (f *fakeAccounts) CreateStaff(_ context.Context, role domain.Role, in customersvc.RegisterInput) (*domain.Account, error) {
	return f.add(role, in)
}

func (f *fakeAccounts) add(role domain.Role, in customersvc.RegisterInput) (*domain.Account, error) {
	if f.exists {
		return nil, domain.ErrAlreadyExists
	}
	f.created[role] = append(f.created[role], in.Username+":"+in.Password)
	return &domain.Account{ID: 1, Role: role, Username: in.Username}, nil
}

type fakeProducts struct {
	ids []string
	err error
}

func (f *fakeProducts) Import(_ context.Context, in productsvc.CreateInput) (*domain.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.ids = append(f.ids, in.ProductID)
	return &domain.Product{ID: in.ProductID}, nil
}

func discard() *log.Logger { return log.New(io.Discard, "", 0) }

func TestApply_CreatesAccountsAndCatalog(t *testing.T) {
	accounts := &fakeAccounts{created: map[domain.Role][]string{}}
	products := &fakeProducts{}

	err := Apply(context.Background(), accounts, products, Passwords{Customer: "c-pass", Staff: "s-pass", Admin: "a-pass"}, discard())
	require.NoError(t, err)

	assert.Equal(t, []string{"demo:c-pass"}, accounts.created[domain.RoleCustomer])
	assert.Equal(t, []string{"staff:s-pass"}, accounts.created[domain.RoleStaff])
	assert.Equal(t, []string{"admin:a-pass"}, accounts.created[domain.RoleAdmin])
	assert.Len(t, products.ids, len(demoProducts))
	assert.Equal(t, "P001", products.ids[0])
}

func TestApply_IsRepeatable(t *testing.T) {
	accounts := &fakeAccounts{created: map[domain.Role][]string{}, exists: true}
	products := &fakeProducts{}

	require.NoError(t, Apply(context.Background(), accounts, products, Passwords{}, discard()))
	assert.Len(t, products.ids, len(demoProducts))
}

func TestApply_ProductFailure(t *testing.T) {
	accounts := &fakeAccounts{created: map[domain.Role][]string{}}
	boom := errors.New("boom")

	err := Apply(context.Background(), accounts, &fakeProducts{err: boom}, Passwords{}, discard())
	assert.ErrorIs(t, err, boom)
}
