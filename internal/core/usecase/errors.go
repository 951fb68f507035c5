package usecase

import (
	"errors"
	"fmt"

	"github.com/rbroggi/atoll/internal/core/model"
)

// referenceErr turns the absence of a referenced entity into model.ErrReferenceNotFound.
func referenceErr(err error, kind string, id model.ID) error {
	if errors.Is(err, model.ErrNotFound) {
		return fmt.Errorf("%w: %s [%s]", model.ErrReferenceNotFound, kind, id)
	}
	return fmt.Errorf("error loading %s [%s]: %w", kind, id, err)
}
