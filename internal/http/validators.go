package http

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"expense-api/internal/domain"
)

var (
	currencyRe       = regexp.MustCompile(`^[A-Z]{3}$`)
	registerOnce     sync.Once
	validatorMessage = map[string]string{
		"required":  "is required",
		"currency":  "Currency must be a 3-letter code (e.g., INR, USD)",
		"isodate":   "Date must be YYYY-MM-DD",
		"yearmonth": "Month must be YYYY-MM",
		"gt":        "must be greater than %s",
		"gte":       "must be %s or greater",
		"min":       "must be at least %s",
		"max":       "must be at most %s",
		"email":     "Invalid email address",
	}
)

// RegisterValidators agrega las reglas propias al validador que usa gin al hacer binding.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
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
		_ = v.RegisterValidation("currency", func(fl validator.FieldLevel) bool {
			return currencyRe.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
			_, err := time.Parse(domain.DateLayout, fl.Field().String())
			return err == nil
		})
		_ = v.RegisterValidation("yearmonth", func(fl validator.FieldLevel) bool {
			_, err := time.Parse("2006-01", fl.Field().String())
			return err == nil
		})
	})
}

// bindingDetails traduce errores de binding a mensajes por campo.
func bindingDetails(err error) map[string][]string {
	details := make(map[string][]string)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		details["body"] = []string{"Malformed request"}
		return details
	}
	for _, fe := range verrs {
		field := fe.Field()
		details[field] = append(details[field], fieldMessage(fe))
	}
	return details
}

func fieldMessage(fe validator.FieldError) string {
	msg, ok := validatorMessage[fe.Tag()]
	if !ok {
		return "is invalid"
	}
	if strings.Contains(msg, "%s") {
		return strings.Replace(msg, "%s", fe.Param(), 1)
	}
	return msg
}
