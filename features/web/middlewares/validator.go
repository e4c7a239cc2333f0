package middlewares

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Validator struct {
	validator *validator.Validate
}

// Validate renders failures compactly (field, rule, allowed values) since
// the message goes straight into the error response body.
func (v *Validator) Validate(i interface{}) error {
	err := v.validator.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	var msg strings.Builder
	for i, fe := range fieldErrs {
		if i > 0 {
			msg.WriteString("; ")
		}
		msg.WriteString(fe.Field())
		msg.WriteString(" failed on ")
		msg.WriteString(fe.Tag())
		if fe.Param() != "" {
			msg.WriteString(" [")
			msg.WriteString(fe.Param())
			msg.WriteString("]")
		}
	}
	return errors.New(msg.String())
}

func ConfigureValidator(e *echo.Echo) {
	e.Validator = &Validator{validator: validator.New()}
}
