package ledger

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/simaogato/cpay-backend/internal/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	return v
}

// validateInput runs the struct tag rules of an input record and reports
// failures as INVALID_INPUT
func validateInput(input any) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return domain.InvalidInputf("invalid input: %v", err)
	}

	msgs := make([]string, 0, len(errs))
	for _, fe := range errs {
		msgs = append(msgs, fmt.Sprintf("%s %s", fe.Field(), validationMessage(fe)))
	}
	sort.Strings(msgs)
	return domain.InvalidInputf("invalid input: %s", strings.Join(msgs, "; "))
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "eth_addr":
		return "must be a 0x-prefixed 20 byte hex address"
	case "nefield":
		return fmt.Sprintf("must differ from %s", strings.ToLower(fe.Param()))
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	}
	return "is invalid"
}
