package service

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"user-directory/internal/domain"
)

// mapError tags any failure with an aggregate code. Everything that is not a
// validation or missing-row failure is a persistence failure.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var de *domain.Error
	if errors.As(err, &de) {
		return err
	}
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		return domain.NewError(domain.CodeValidation, op, describeValidation(verrs), err)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.Wrap(domain.CodeNotFound, op, err)
	default:
		return domain.Wrap(domain.CodePersistence, op, err)
	}
}

func describeValidation(verrs validator.ValidationErrors) string {
	if len(verrs) == 0 {
		return "invalid input"
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	default:
		return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
	}
}

func notFound(op string, id uint) error {
	return domain.NewError(domain.CodeNotFound, op, fmt.Sprintf("user %d not found", id), gorm.ErrRecordNotFound)
}
