package probe

import (
	"math"
	"math/rand/v2"

	"github.com/google/uuid"

	"github.com/okian/sugarsignal/internal/domain/model"
)

// Measurement ranges offered by the input form.
const (
	maxPregnancies   = 20
	maxGlucose       = 300
	maxBloodPressure = 200
	maxSkinThickness = 100
	maxInsulin       = 1000
	maxBMI           = 70
	maxPedigree      = 3
	minAge           = 1
	maxAge           = 120
)

// Generate returns n valid inputs. Equal seeds produce equal inputs; case ids
// are always fresh.
func Generate(n int, seed uint64) []Case {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	cases := make([]Case, n)
	for i := range cases {
		cases[i] = Case{
			ID: uuid.NewString(),
			Input: model.InputData{
				Pregnancies:              rng.IntN(maxPregnancies + 1),
				Glucose:                  round(rng.Float64()*maxGlucose, 0),
				BloodPressure:            round(rng.Float64()*maxBloodPressure, 0),
				SkinThickness:            round(rng.Float64()*maxSkinThickness, 0),
				Insulin:                  round(rng.Float64()*maxInsulin, 0),
				BMI:                      round(rng.Float64()*maxBMI, 1),
				DiabetesPedigreeFunction: round(rng.Float64()*maxPedigree, 3),
				Age:                      minAge + rng.IntN(maxAge-minAge+1),
			},
		}
	}
	return cases
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
