package domain

import (
	"context"
	"time"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// RoleSet is the allow set a role gate checks against.
type RoleSet map[Role]struct{}

func NewRoleSet(roles ...Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, role := range roles {
		set[role] = struct{}{}
	}
	return set
}

func (r RoleSet) Contains(role Role) bool {
	_, ok := r[role]
	return ok
}

type Account struct {
	ID        int64     `json:"id" bson:"_id" gorm:"primaryKey;autoIncrement:false"`
	Username  string    `json:"username" bson:"username" gorm:"size:50;not null"`
	Email     string    `json:"email" bson:"email" gorm:"size:255;uniqueIndex;not null"`
	Password  string    `json:"-" bson:"password" gorm:"not null"`
	Role      Role      `json:"role" bson:"role" gorm:"size:16;not null;default:user"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`

	AccessToken  string `json:"-" bson:"-" gorm:"-"`
	RefreshToken string `json:"-" bson:"-" gorm:"-"`
}

type AccountView struct {
	ID       int64  `json:"id,string"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     Role   `json:"role,omitempty"`
}

// View is the public projection of an account, without credential or role.
func (a *Account) View() *AccountView {
	return &AccountView{
		ID:       a.ID,
		Username: a.Username,
		Email:    a.Email,
	}
}

func (a *Account) ViewWithRole() *AccountView {
	view := a.View()
	view.Role = a.Role
	return view
}

// WithoutCredential returns a copy safe to hand to request handlers.
func (a *Account) WithoutCredential() *Account {
	account := *a
	account.Password = ""
	account.AccessToken = ""
	account.RefreshToken = ""
	return &account
}

type AccountRepo interface {
	Create(ctx context.Context, account *Account) error
	Get(ctx context.Context, accountID int64) (*Account, error)
	GetByEmail(ctx context.Context, email string) (*Account, error)
	Update(ctx context.Context, accountID int64, update *AccountUpdate) (*Account, error)
}

// AccountUpdate holds the optional profile fields. Nil means unchanged.
type AccountUpdate struct {
	Username *string
	Email    *string
}

type AccountUseCase interface {
	Get(ctx context.Context, accountID int64) (*Account, error)
	UpdateProfile(ctx context.Context, accountID int64, update *AccountUpdate) (*Account, error)
}
