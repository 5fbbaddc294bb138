package dtos

import (
	"github.com/go-playground/validator/v10"

	"github.com/bookline/console/modules/assignments/domain/assignment"
	"github.com/bookline/console/pkg/constants"
)

type ToggleDTO struct {
	Kind string `json:"kind" validate:"required"`
	ID   int64  `json:"id" validate:"required,gt=0"`
}

func (d *ToggleDTO) Ok() (assignment.Kind, error) {
	if err := constants.Validate.Struct(d); err != nil {
		return "", err
	}
	return assignment.ParseKind(d.Kind)
}

// UpdateOverrideDTO is a partial override edit. A nil value with the
// matching clear flag unset leaves the field untouched; the clear flag
// reverts it to the inherited default.
type UpdateOverrideDTO struct {
	Kind          string `json:"kind" validate:"required"`
	ID            int64  `json:"id" validate:"required,gt=0"`
	Price         *int64 `json:"price" validate:"omitempty,gte=0"`
	ClearPrice    bool   `json:"clear_price"`
	Duration      *int32 `json:"duration" validate:"omitempty,gt=0"`
	ClearDuration bool   `json:"clear_duration"`
}

func (d *UpdateOverrideDTO) Ok() (assignment.Kind, assignment.OverridePatch, error) {
	if err := constants.Validate.Struct(d); err != nil {
		return "", assignment.OverridePatch{}, err
	}
	kind, err := assignment.ParseKind(d.Kind)
	if err != nil {
		return "", assignment.OverridePatch{}, err
	}

	var patch assignment.OverridePatch
	switch {
	case d.ClearPrice:
		patch.Price = assignment.ClearTo[int64]()
	case d.Price != nil:
		patch.Price = assignment.SetTo(*d.Price)
	}
	switch {
	case d.ClearDuration:
		patch.Duration = assignment.ClearTo[int32]()
	case d.Duration != nil:
		patch.Duration = assignment.SetTo(*d.Duration)
	}
	return kind, patch, nil
}

// FirstValidationError flattens a validator error to one operator-facing
// message.
func FirstValidationError(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return err.Error()
	}
	return verrs[0].Field() + " is invalid"
}
