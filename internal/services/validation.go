package services

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their wire names so clients see the keys they sent.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})
	_ = v.RegisterValidation("cas", func(fl validator.FieldLevel) bool {
		return casNumber.MatchString(fl.Field().String())
	})
	return v
}

// validateStruct runs the struct's validate tags and folds every violation
// into one InvalidInput error.
func validateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return internal(err, "validation failed")
	}

	var missing, malformed []string
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			missing = append(missing, fe.Field())
		} else {
			malformed = append(malformed, fe.Field())
		}
	}

	e := &Error{Kind: KindInvalidInput, Fields: append(missing, malformed...)}
	switch {
	case len(missing) > 0 && len(malformed) > 0:
		e.Message = "Missing required fields: " + strings.Join(missing, ", ") +
			"; invalid fields: " + strings.Join(malformed, ", ")
	case len(missing) > 0:
		e.Message = "Missing required fields: " + strings.Join(missing, ", ")
	default:
		e.Message = "Invalid fields: " + strings.Join(malformed, ", ")
	}
	return e
}

// requireFields reports every name in names whose value is empty, in order.
func requireFields(values map[string]string, names ...string) error {
	var missing []string
	for _, n := range names {
		if strings.TrimSpace(values[n]) == "" {
			missing = append(missing, n)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return &Error{
		Kind:    KindInvalidInput,
		Message: "Missing required fields: " + strings.Join(missing, ", "),
		Fields:  missing,
	}
}
