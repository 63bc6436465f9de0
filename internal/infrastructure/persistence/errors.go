package persistence

import (
	"errors"

	"github.com/shopadmin/backoffice/internal/domain/shared"
	"gorm.io/gorm"
)

// translateError maps gorm sentinel errors to domain errors.
// Requires gorm.Config.TranslateError so dialect errors arrive as gorm sentinels.
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return shared.ErrAlreadyExists
	default:
		return err
	}
}

// affected translates a write result, reporting shared.ErrNotFound when the
// statement matched no row.
func affected(result *gorm.DB) error {
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
