// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package content

import (
	"errors"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// maxLen mirrors the max tags on PostInput for fields checked by hand on
// update.
var maxLen = map[string]int{
	"title":    300,
	"category": 100,
}

func tooLong(field string, n int) *ValidationError {
	return &ValidationError{Field: field, Message: "is too long (max " + strconv.Itoa(n) + " characters)"}
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON name so messages match the request body.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// check runs struct validation and converts the first failure into a
// *ValidationError.
func check(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &ValidationError{Field: "body", Message: err.Error()}
	}

	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required":
		return &ValidationError{Field: fe.Field(), Message: "is required"}
	case "max":
		n, _ := strconv.Atoi(fe.Param())
		return tooLong(fe.Field(), n)
	}
	return &ValidationError{Field: fe.Field(), Message: "is invalid"}
}

// coerceBool maps the loose boolean inputs accepted by the API onto a bool:
// true and "true" are true, everything else is false.
func coerceBool(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return b == "true"
	case *bool:
		return b != nil && *b
	case *string:
		return b != nil && *b == "true"
	}
	return false
}
