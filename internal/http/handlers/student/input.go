package student

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/aanand-mishra/students-api/internal/types"
	"github.com/aanand-mishra/students-api/internal/utils/response"
)

// errMalformedBody marks a body that is not JSON at all. It is treated as
// an unexpected failure (500), not as a client error.
var errMalformedBody = errors.New("malformed request body")

// inputError is a client mistake that maps to 400 with Message as the body.
type inputError struct {
	Message string
}

func (e *inputError) Error() string { return e.Message }

// validate is shared by every request; a *validator.Validate caches struct
// metadata and is safe for concurrent use.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(fmt.Sprintf("register notblank validator: %v", err))
	}
	return v
}

// decodeNewStudent reads a create request body and applies the checks in
// order: body present → fields present → age is an integer → name is a
// string → struct rules (age range, then non-blank name).
func decodeNewStudent(body io.Reader) (types.NewStudent, error) {
	dec := json.NewDecoder(body)
	dec.UseNumber()

	var payload any
	if err := dec.Decode(&payload); err != nil {
		return types.NewStudent{}, fmt.Errorf("%w: %v", errMalformedBody, err)
	}

	// The body must hold exactly one JSON value.
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return types.NewStudent{}, fmt.Errorf("%w: trailing data after JSON value", errMalformedBody)
	}

	fields, ok := payload.(map[string]any)
	if !ok {
		if falsy(payload) {
			return types.NewStudent{}, &inputError{response.MsgNoJSON}
		}
		return types.NewStudent{}, &inputError{response.MsgMissingFields}
	}
	if len(fields) == 0 {
		return types.NewStudent{}, &inputError{response.MsgNoJSON}
	}

	rawName, hasName := fields["name"]
	rawAge, hasAge := fields["age"]
	if !hasName || !hasAge {
		return types.NewStudent{}, &inputError{response.MsgMissingFields}
	}

	age, err := coerceAge(rawAge)
	if err != nil {
		return types.NewStudent{}, err
	}

	name, ok := rawName.(string)
	if !ok {
		return types.NewStudent{}, &inputError{response.MsgNameNotString}
	}

	input := types.NewStudent{Age: age, Name: name}
	if err := validate.Struct(input); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return types.NewStudent{}, &inputError{response.ValidationError(verrs).Error}
		}
		return types.NewStudent{}, err
	}

	return input, nil
}

// outOfRangeAge stands in for integers too large to hold in an int; the
// range rule rejects it like any other out-of-range age.
const outOfRangeAge = math.MaxInt32

// coerceAge accepts JSON numbers (fractions are truncated toward zero) and
// strings holding a base-10 integer. Booleans, null, objects and arrays
// are rejected.
func coerceAge(v any) (int, error) {
	notNumber := &inputError{response.MsgAgeNotNumber}

	switch age := v.(type) {
	case json.Number:
		if n, err := age.Int64(); err == nil {
			return clampAge(n), nil
		}
		f, err := age.Float64()
		if err != nil {
			if errors.Is(err, strconv.ErrRange) {
				return outOfRangeAge, nil
			}
			return 0, notNumber
		}
		f = math.Trunc(f)
		if f < math.MinInt32 || f > math.MaxInt32 {
			return outOfRangeAge, nil
		}
		return int(f), nil

	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(age), 10, 64)
		if err != nil {
			if errors.Is(err, strconv.ErrRange) {
				return outOfRangeAge, nil
			}
			return 0, notNumber
		}
		return clampAge(n), nil
	}

	return 0, notNumber
}

func clampAge(n int64) int {
	if n < math.MinInt32 || n > math.MaxInt32 {
		return outOfRangeAge
	}
	return int(n)
}

// falsy reports whether a decoded JSON value is empty: null, false, zero,
// an empty string or an empty array.
func falsy(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case bool:
		return !x
	case json.Number:
		f, err := x.Float64()
		return err == nil && f == 0
	case string:
		return x == ""
	case []any:
		return len(x) == 0
	}
	return false
}
