// Package site serves the browser form for the prediction endpoint.
package site

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/okian/sugarsignal/internal/domain/features"
)

// Error constants
var (
	ErrRender = errors.New("site render failed")
)

// Field describes one form input.
type Field struct {
	Name        string
	Label       string
	Description string
	Min, Max    float64
	Step        float64
	Default     float64
}

// Fields lists the form inputs in canonical feature order. The bounds are
// browser hints; the API enforces its own domain rules.
var Fields = []Field{
	{features.Pregnancies, "Pregnancies", "Number of times pregnant", 0, 20, 1, 1},
	{features.Glucose, "Glucose Level", "Plasma glucose concentration (mg/dL)", 0, 300, 1, 120},
	{features.BloodPressure, "Blood Pressure", "Diastolic blood pressure (mmHg)", 0, 200, 1, 80},
	{features.SkinThickness, "Skin Thickness", "Triceps skin fold thickness (mm)", 0, 100, 1, 20},
	{features.Insulin, "Insulin", "2-Hour serum insulin (uU/mL)", 0, 1000, 1, 80},
	{features.BMI, "BMI", "Body mass index (kg/m^2)", 0, 70, 0.1, 25},
	{features.DiabetesPedigreeFunction, "Diabetes Pedigree Function", "Diabetes pedigree function score", 0, 3, 0.001, 0.5},
	{features.Age, "Age", "Age in years", 1, 120, 1, 30},
}

// RootHandler serves the form at exactly "/".
type RootHandler struct {
	page []byte
}

// NewRootHandler renders the form to post to endpoint.
func NewRootHandler(endpoint string) (*RootHandler, error) {
	var buf bytes.Buffer
	data := struct {
		Endpoint string
		Fields   []Field
	}{Endpoint: endpoint, Fields: Fields}
	if err := indexTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRender, err)
	}
	return &RootHandler{page: buf.Bytes()}, nil
}

// HandleRoot handles GET / requests. Any other unmatched path is a 404.
func (h *RootHandler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(h.page)
}

// Register attaches the form page to mux.
func Register(_ context.Context, mux *http.ServeMux, endpoint string) error {
	if mux == nil {
		panic("mux is nil")
	}
	h, err := NewRootHandler(endpoint)
	if err != nil {
		return err
	}
	mux.HandleFunc("/", h.HandleRoot)
	return nil
}
