package trusted

import (
	"errors"

	"github.com/bizgrid/backend/internal/domain/shared"
	"gorm.io/gorm"
)

func translateDuplicate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.ErrAlreadyExists
	}
	return err
}
