package service

import (
	"fmt"

	"go-resto-ops/pkg/validator"
)

// validate runs the struct tags of a request and reports the first failure.
func validate(req interface{}) error {
	errs := validator.ValidateStruct(req)
	if len(errs) == 0 {
		return nil
	}
	first := errs[0]
	return invalid(first.FailedField, reasonFor(first.Tag, first.Value))
}

func reasonFor(tag, param string) string {
	switch tag {
	case "required", "notblank", "uuid_required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s", param)
	case "max":
		return fmt.Sprintf("must be at most %s", param)
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", param)
	case "gtfield", "gtefield":
		return fmt.Sprintf("must not be lower than %s", param)
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", param)
	case "dive":
		return "is invalid"
	}
	return fmt.Sprintf("failed on '%s'", tag)
}
