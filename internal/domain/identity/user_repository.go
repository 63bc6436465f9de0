package identity

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopadmin/backoffice/internal/domain/shared"
)

// UserRepository stores users. Lookups that find nothing return
// shared.ErrNotFound; Create returns shared.ErrAlreadyExists when the
// normalized email is taken.
//
// There is no whole-row update. Each write below touches only the columns
// its use case owns, so concurrent use cases never overwrite each other with
// stale copies. Writes to a missing user return shared.ErrNotFound.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	Delete(ctx context.Context, id uuid.UUID) error

	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	// FindByEmail expects an already normalized address.
	FindByEmail(ctx context.Context, email string) (*User, error)
	// FindAll returns one page of matches and the total match count.
	FindAll(ctx context.Context, filter UserFilter) ([]*User, int64, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Count(ctx context.Context) (int64, error)

	// UpdateRefreshToken writes only the token column, so it does not bump
	// the aggregate version. Concurrent logins race and the last one wins.
	UpdateRefreshToken(ctx context.Context, id uuid.UUID, token string) error
	// RecordLogin stores the refresh token and login time, provided the
	// stored hash is still checkedHash. A password changed after the
	// credentials were checked yields shared.ErrNotFound.
	RecordLogin(ctx context.Context, id uuid.UUID, checkedHash, refreshToken string, at time.Time) error
	// UpdatePassword stores a new hash and clears the refresh token.
	UpdatePassword(ctx context.Context, id uuid.UUID, hash string, at time.Time) error
	UpdateRole(ctx context.Context, id, roleID uuid.UUID, at time.Time) error
	SetEmailVerified(ctx context.Context, id uuid.UUID, at time.Time) error
}

// UserFilter narrows a user listing. Keyword matches email or display name
// case-insensitively. SortBy names a column; unknown columns sort by
// creation time.
type UserFilter struct {
	Keyword string
	RoleID  *uuid.UUID

	SortBy    string
	SortOrder string

	Page     int
	PageSize int
}

func (f UserFilter) paging() shared.Filter {
	return shared.Filter{Page: f.Page, PageSize: f.PageSize}
}

func (f UserFilter) Offset() int { return f.paging().Offset() }

func (f UserFilter) Limit() int { return f.paging().Limit() }
