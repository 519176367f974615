package record

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// ValidationError reports a record that cannot enter a deck.
type ValidationError struct {
	Index   int    // position in the input slice
	ID      string // offending record id, may be empty
	Field   string // struct field, empty for deck-level problems
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("record[%d] (id=%q): %s: %s", e.Index, e.ID, e.Field, e.Message)
	}
	return fmt.Sprintf("record[%d] (id=%q): %s", e.Index, e.ID, e.Message)
}

// IsValidationError reports whether err is (or wraps) a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Validate checks a single record's field constraints.
func (r Record) Validate() error {
	return validateAt(0, r)
}

func validateAt(i int, r Record) error {
	if strings.TrimSpace(r.ID) == "" {
		return &ValidationError{Index: i, Field: "ID", Message: "id is required"}
	}
	err := validatorInstance().Struct(r)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &ValidationError{
			Index:   i,
			ID:      r.ID,
			Field:   fe.StructNamespace(),
			Message: fmt.Sprintf("failed %q constraint (value %v)", fe.Tag(), fe.Value()),
		}
	}
	return &ValidationError{Index: i, ID: r.ID, Message: err.Error()}
}

// ValidateDeck checks every record and that ids are unique after normalisation.
// It returns the first problem found.
func ValidateDeck(records []Record) error {
	seen := make(map[string]int, len(records))
	for i, r := range records {
		if err := validateAt(i, r); err != nil {
			return err
		}
		id := NormalizeID(r.ID)
		if prev, dup := seen[id]; dup {
			return &ValidationError{
				Index:   i,
				ID:      r.ID,
				Message: fmt.Sprintf("duplicate id (first seen at record[%d])", prev),
			}
		}
		seen[id] = i
	}
	return nil
}

// Sanitize normalises ids and drops records that are invalid or duplicate,
// keeping the first occurrence. It is used on provider batches, where a
// single bad record must not discard the whole delivery. The returned count
// is the number of records dropped.
func Sanitize(records []Record) ([]Record, int) {
	out := make([]Record, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	dropped := 0
	for i, r := range records {
		n := r.Normalized()
		if validateAt(i, n) != nil {
			dropped++
			continue
		}
		if _, dup := seen[n.ID]; dup {
			dropped++
			continue
		}
		seen[n.ID] = struct{}{}
		out = append(out, n)
	}
	return out, dropped
}
