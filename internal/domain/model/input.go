// Package model contains domain models passed between layers.
package model

import (
	"github.com/okian/sugarsignal/internal/domain/features"
)

// InputData is one prediction request after validation.
// Field names mirror the JSON body of POST /predict.
type InputData struct {
	Pregnancies              int     `json:"Pregnancies"`
	Glucose                  float64 `json:"Glucose"`
	BloodPressure            float64 `json:"BloodPressure"`
	SkinThickness            float64 `json:"SkinThickness"`
	Insulin                  float64 `json:"Insulin"`
	BMI                      float64 `json:"BMI"`
	DiabetesPedigreeFunction float64 `json:"DiabetesPedigreeFunction"`
	Age                      int     `json:"Age"`
}

// Feature implements features.Source.
func (in InputData) Feature(name string) float64 {
	switch name {
	case features.Pregnancies:
		return float64(in.Pregnancies)
	case features.Glucose:
		return in.Glucose
	case features.BloodPressure:
		return in.BloodPressure
	case features.SkinThickness:
		return in.SkinThickness
	case features.Insulin:
		return in.Insulin
	case features.BMI:
		return in.BMI
	case features.DiabetesPedigreeFunction:
		return in.DiabetesPedigreeFunction
	case features.Age:
		return float64(in.Age)
	}
	return 0
}

// Vector returns the model input row for in.
func (in InputData) Vector() []float64 {
	return features.Vector(in)
}

// PredictionResponse is the body returned by POST /predict.
type PredictionResponse struct {
	Prediction int `json:"prediction"`
}
