package orm

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/superj80820/session-auth/domain"
	ormKit "github.com/superj80820/session-auth/kit/orm"
)

func TestAccountRepo(t *testing.T) {
	ctx := context.Background()

	db, err := ormKit.CreateDB(ormKit.UseSQLite(":memory:"))
	assert.Nil(t, err)
	defer db.Close()

	accountRepo, err := CreateAccountRepo(db)
	assert.Nil(t, err)

	alice := &domain.Account{Username: "alice", Email: "a@x.com", Password: "hash", Role: domain.RoleUser}
	assert.Nil(t, accountRepo.Create(ctx, alice))
	assert.NotZero(t, alice.ID)

	found, err := accountRepo.Get(ctx, alice.ID)
	assert.Nil(t, err)
	assert.Equal(t, "alice", found.Username)
	assert.Equal(t, "hash", found.Password)
	assert.Equal(t, domain.RoleUser, found.Role)

	found, err = accountRepo.GetByEmail(ctx, "a@x.com")
	assert.Nil(t, err)
	assert.Equal(t, alice.ID, found.ID)

	_, err = accountRepo.GetByEmail(ctx, "missing@x.com")
	assert.True(t, errors.Is(err, domain.ErrNoData))

	err = accountRepo.Create(ctx, &domain.Account{Username: "alice", Email: "a@x.com", Password: "hash", Role: domain.RoleUser})
	assert.True(t, errors.Is(err, domain.ErrDuplicate))

	bob := &domain.Account{Username: "bob", Email: "b@x.com", Password: "hash", Role: domain.RoleAdmin}
	assert.Nil(t, accountRepo.Create(ctx, bob))

	username := "alice2"
	updated, err := accountRepo.Update(ctx, alice.ID, &domain.AccountUpdate{Username: &username})
	assert.Nil(t, err)
	assert.Equal(t, "alice2", updated.Username)
	assert.Equal(t, "a@x.com", updated.Email)

	email := "b@x.com"
	_, err = accountRepo.Update(ctx, alice.ID, &domain.AccountUpdate{Email: &email})
	assert.True(t, errors.Is(err, domain.ErrDuplicate))

	_, err = accountRepo.Update(ctx, alice.ID+bob.ID, &domain.AccountUpdate{Username: &username})
	assert.True(t, errors.Is(err, domain.ErrNoData))
}
