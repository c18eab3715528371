package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/okian/sugarsignal/internal/domain/features"
)

// maxCount bounds the integer fields so float -> int conversion stays exact.
const maxCount = math.MaxInt32

// errTrailingData marks bytes after the request object.
var errTrailingData = errors.New("unexpected data after JSON object")

// ParseInput decodes and validates a JSON request body.
func ParseInput(data []byte) (InputData, error) {
	return DecodeInput(bytes.NewReader(data))
}

// DecodeInput reads exactly one JSON object from r and validates it.
//
// Field names match exactly; other keys, including differently cased ones,
// are ignored. Syntax errors, non-object bodies and trailing data wrap
// ErrMalformedBody. Missing, null, non-numeric or out-of-domain fields yield a
// *ValidationError.
func DecodeInput(r io.Reader) (InputData, error) {
	dec := json.NewDecoder(r)

	var raw map[string]json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return InputData{}, fmt.Errorf("%w: %w", ErrMalformedBody, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errTrailingData
		}
		return InputData{}, fmt.Errorf("%w: %w", ErrMalformedBody, err)
	}
	return validateRaw(raw)
}

func validateRaw(raw map[string]json.RawMessage) (InputData, error) {
	var (
		values [features.Count]float64
		issues []Issue
	)
	for i, name := range features.Order() {
		msg := ""
		v, ok := raw[name]
		switch {
		case !ok || bytes.Equal(bytes.TrimSpace(v), []byte("null")):
			msg = "field required"
		case json.Unmarshal(v, &values[i]) != nil:
			msg = "must be a number"
		default:
			msg = checkDomain(name, values[i])
		}
		if msg != "" {
			issues = append(issues, Issue{Field: name, Message: msg})
		}
	}
	if len(issues) > 0 {
		return InputData{}, &ValidationError{Issues: issues}
	}

	return InputData{
		Pregnancies:              int(values[features.Index(features.Pregnancies)]),
		Glucose:                  values[features.Index(features.Glucose)],
		BloodPressure:            values[features.Index(features.BloodPressure)],
		SkinThickness:            values[features.Index(features.SkinThickness)],
		Insulin:                  values[features.Index(features.Insulin)],
		BMI:                      values[features.Index(features.BMI)],
		DiabetesPedigreeFunction: values[features.Index(features.DiabetesPedigreeFunction)],
		Age:                      int(values[features.Index(features.Age)]),
	}, nil
}

// checkDomain returns an empty string when v is acceptable for name.
func checkDomain(name string, v float64) string {
	switch name {
	case features.Pregnancies:
		if v < 0 {
			return "must be a non-negative integer"
		}
		if v != math.Trunc(v) || v > maxCount {
			return "must be an integer"
		}
	case features.Age:
		if v < 1 {
			return "must be a positive integer"
		}
		if v != math.Trunc(v) || v > maxCount {
			return "must be an integer"
		}
	default:
		if v < 0 {
			return "must be non-negative"
		}
	}
	return ""
}

// Validate checks an already-typed InputData against the same domain rules
// used for request bodies.
func (in InputData) Validate() error {
	var issues []Issue
	for _, name := range features.Order() {
		if msg := checkDomain(name, in.Feature(name)); msg != "" {
			issues = append(issues, Issue{Field: name, Message: msg})
		}
	}
	if len(issues) > 0 {
		return &ValidationError{Issues: issues}
	}
	return nil
}
