// Package features owns the canonical feature order shared by the inference
// endpoint and the model artifact loader.
//
// The model was fitted on columns in exactly this order. Anything that builds
// a vector for the model, or checks an artifact's declared columns, must go
// through this package.
package features

// Feature names as they appear in request bodies and artifact headers.
const (
	Pregnancies              = "Pregnancies"
	Glucose                  = "Glucose"
	BloodPressure            = "BloodPressure"
	SkinThickness            = "SkinThickness"
	Insulin                  = "Insulin"
	BMI                      = "BMI"
	DiabetesPedigreeFunction = "DiabetesPedigreeFunction"
	Age                      = "Age"
)

// Count is the model input dimensionality.
const Count = 8

// canonical is the column order the model was trained on.
var canonical = [Count]string{
	Pregnancies,
	Glucose,
	BloodPressure,
	SkinThickness,
	Insulin,
	BMI,
	DiabetesPedigreeFunction,
	Age,
}

// Order returns a copy of the canonical feature order.
func Order() []string {
	out := make([]string, Count)
	copy(out, canonical[:])
	return out
}

// Index returns the column of name, or -1 if name is not a model feature.
func Index(name string) int {
	for i, n := range canonical {
		if n == name {
			return i
		}
	}
	return -1
}

// Matches reports whether names is exactly the canonical order.
func Matches(names []string) bool {
	if len(names) != Count {
		return false
	}
	for i, n := range names {
		if canonical[i] != n {
			return false
		}
	}
	return true
}

// Source yields the value of a named feature.
type Source interface {
	Feature(name string) float64
}

// Vector assembles the model input row from src in canonical order.
func Vector(src Source) []float64 {
	v := make([]float64, Count)
	for i, name := range canonical {
		v[i] = src.Feature(name)
	}
	return v
}
