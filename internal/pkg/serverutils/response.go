package serverutils

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

type Response[T any] struct {
	Message string `json:"message"`
	Data    T      `json:"data"`
}

func SuccessResponse[T any](message string, data T) Response[T] {
	return Response[T]{
		Message: message,
		Data:    data,
	}
}

var validate = validator.New()

// ValidateRequest runs struct tag validation and converts the first
// failure into a ValidationError the middleware can render.
func ValidateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		var vErrs validator.ValidationErrors
		if errors.As(err, &vErrs) && len(vErrs) > 0 {
			f := vErrs[0]
			return BadRequest("field '" + f.Field() + "' failed on '" + f.Tag() + "' rule")
		}
		return BadRequest(err.Error())
	}
	return nil
}
