package agents

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	perrors "github.com/yungbote/pathforge-backend/internal/pkg/errors"
)

func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, perrors.ErrNotFound)
	}
	return err
}
