// Package validate adapts go-playground/validator to echo's Validator
// interface, translating tag failures into the API's validation error shape.
package validate

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/hmo/claims/internal/platform/respond"
)

type EchoValidator struct {
	v *validator.Validate
}

func New() *EchoValidator {
	return &EchoValidator{v: validator.New(validator.WithRequiredStructEnabled())}
}

func (ev *EchoValidator) Validate(i interface{}) error {
	err := ev.v.Struct(i)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[strings.ToLower(fe.Field())] = "failed " + fe.Tag() + " validation"
	}
	return &respond.ValidationError{Msg: "invalid request body", Fields: fields}
}
