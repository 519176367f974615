package config

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	validatorOnce sync.Once
	validate      *validator.Validate
	translator    ut.Translator
)

func validatorInstance() (*validator.Validate, ut.Translator) {
	validatorOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())

		// Report yaml keys, which is what users write.
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return fld.Name
			}
			return name
		})

		enLoc := en.New()
		uni := ut.New(enLoc, enLoc)
		trans, _ := uni.GetTranslator("en")
		_ = en_translations.RegisterDefaultTranslations(v, trans)

		validate, translator = v, trans
	})
	return validate, translator
}

// FieldProblem is one failed constraint.
type FieldProblem struct {
	Field   string // yaml path, e.g. swipe.thresholds.position
	Message string
}

// ValidationError lists every failed constraint in a Config.
type ValidationError struct {
	Problems []FieldProblem
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		parts[i] = p.Field + ": " + p.Message
	}
	return "invalid config: " + strings.Join(parts, "; ")
}

// IsValidationError reports whether err is (or wraps) a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Validate checks every constraint and returns a *ValidationError listing
// all of them.
func (c Config) Validate() error {
	v, trans := validatorInstance()
	err := v.Struct(c)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	out := &ValidationError{Problems: make([]FieldProblem, 0, len(fieldErrs))}
	for _, fe := range fieldErrs {
		out.Problems = append(out.Problems, FieldProblem{
			Field:   trimRoot(fe.Namespace()),
			Message: fe.Translate(trans),
		})
	}
	return out
}

// trimRoot drops the leading "Config." from a validator namespace.
func trimRoot(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
