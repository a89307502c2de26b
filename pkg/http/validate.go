package http

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	// report wire names rather than Go field names
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "query", "param"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
}

// ReadAndValidateRequest binds req, fills `default` tags and validates it.
// It returns nil or a []ValidationError ready for BadRequestResponse.
func ReadAndValidateRequest(c echo.Context, req interface{}) interface{} {
	if err := c.Bind(req); err != nil {
		return toValidationErrors(err)
	}
	if err := defaults.Set(req); err != nil {
		return toValidationErrors(err)
	}
	if err := validate.StructCtx(c.Request().Context(), req); err != nil {
		return toValidationErrors(err)
	}
	return nil
}

func toValidationErrors(err error) []ValidationError {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		out := make([]ValidationError, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			out = append(out, describe(fe))
		}
		return out
	}

	msg := err.Error()
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg = fmt.Sprint(he.Message)
	}
	return []ValidationError{{Code: "ERR_UNKNOWN", Message: msg}}
}

// ruleText maps a validator tag to its message suffix; %s is the tag parameter.
var ruleText = map[string]string{
	"required": "is required",
	"numeric":  "must be a number",
	"datetime": "must match %s",
	"oneof":    "must be one of: %s",
	"gt":       "must be greater than %s",
	"gte":      "must be greater than or equal to %s",
	"lt":       "must be less than %s",
	"lte":      "must be less than or equal to %s",
	"min":      "must hold at least %s items",
	"max":      "must hold at most %s items",
}

// paramKey names the Params entry carrying the tag parameter.
var paramKey = map[string]string{
	"gt": "value", "lt": "value",
	"gte": "min", "min": "min",
	"lte": "max", "max": "max",
	"datetime": "layout",
}

func describe(fe validator.FieldError) ValidationError {
	tag, param := fe.Tag(), fe.Param()
	v := ValidationError{
		Code:  "ERR_" + strings.ToUpper(tag),
		Field: fe.Field(),
	}

	text, ok := ruleText[tag]
	switch {
	case tag == "max" && fe.Kind() == reflect.String:
		text = "must be at most %s characters"
	case tag == "oneof":
		param = strings.ReplaceAll(param, " ", ", ")
	case !ok:
		text = "failed validation: " + tag
	}
	if strings.Contains(text, "%s") {
		text = fmt.Sprintf(text, param)
	}
	v.Message = v.Field + " " + text

	if key, ok := paramKey[tag]; ok {
		v.Params = map[string]interface{}{key: fe.Param()}
	} else if tag == "oneof" {
		v.Params = map[string]interface{}{"options": strings.Fields(fe.Param())}
	}
	return v
}
