// Package validate checks console form input and single-field edits before
// anything is sent to the booking API.
package validate

import (
	"errors"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/me/busdesk/pkg/model"
)

var (
	lettersRe   = regexp.MustCompile(`^[A-Za-z\s]+$`)
	seatCountRe = regexp.MustCompile(`^[1-9]\d*$`)
	clockRe     = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)
)

// Validator wraps a configured validator.Validate.
type Validator struct {
	v *validator.Validate
}

// New creates a Validator with the console's custom tags registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	mustRegister(v, "no_leading_space", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "" || !isSpace(s[0])
	})
	mustRegister(v, "not_blank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	mustRegister(v, "letters", func(fl validator.FieldLevel) bool {
		return lettersRe.MatchString(fl.Field().String())
	})
	mustRegister(v, "seat_count", func(fl validator.FieldLevel) bool {
		return seatCountRe.MatchString(fl.Field().String())
	})
	mustRegister(v, "positive_number", func(fl validator.FieldLevel) bool {
		n, ok := parseNumber(fl.Field().String())
		return ok && n > 0
	})
	mustRegister(v, "min_price", func(fl validator.FieldLevel) bool {
		n, ok := parseNumber(fl.Field().String())
		return ok && n >= 1
	})
	mustRegister(v, "clock", func(fl validator.FieldLevel) bool {
		return clockRe.MatchString(fl.Field().String())
	})
	mustRegister(v, "stop_list", func(fl validator.FieldLevel) bool {
		return validStops(fl.Field().String())
	})
	mustRegister(v, "date", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(time.DateOnly, fl.Field().String())
		return err == nil
	})

	v.RegisterStructValidation(scheduleTimes, ScheduleForm{})
	return &Validator{v: v}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic("register " + tag + ": " + err.Error())
	}
}

// Struct validates a form and returns one FieldError per failing field,
// worded with the form's messages.
func (v *Validator) Struct(form any, messages Messages) []model.FieldError {
	err := v.v.Struct(form)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []model.FieldError{{Message: err.Error()}}
	}
	out := make([]model.FieldError, 0, len(verrs))
	seen := make(map[string]bool)
	for _, fe := range verrs {
		field := fe.Field()
		if i := strings.IndexByte(field, '['); i >= 0 {
			field = field[:i]
		}
		if seen[field] {
			continue
		}
		seen[field] = true
		out = append(out, model.FieldError{Field: field, Message: messages.lookup(field, fe.Tag())})
	}
	return out
}

// Var validates a single value against a tag expression.
func (v *Validator) Var(value string, tag string) bool {
	return v.v.Var(value, tag) == nil
}

// Messages maps field -> tag -> message. The "*" tag is the fallback for
// a field.
type Messages map[string]map[string]string

func (m Messages) lookup(field, tag string) string {
	if byTag, ok := m[field]; ok {
		if msg, ok := byTag[tag]; ok {
			return msg
		}
		if msg, ok := byTag["*"]; ok {
			return msg
		}
	}
	return field + " is invalid"
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

func parseNumber(s string) (float64, bool) {
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return n, err == nil
}

func validStops(s string) bool {
	if strings.TrimSpace(s) == "" {
		return false
	}
	for _, stop := range strings.Split(s, ",") {
		if strings.TrimSpace(stop) == "" {
			return false
		}
	}
	return true
}
