package classifier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/okian/sugarsignal/internal/domain/features"
)

// Format is an artifact encoding.
type Format string

// Supported encodings. FormatAuto sniffs the payload.
const (
	FormatAuto    Format = ""
	FormatJSON    Format = "json"
	FormatMsgpack Format = "msgpack"
)

// structTag is shared by both encodings so one set of tags describes the artifact.
const structTag = "json"

// Artifact is the serialized description of a fitted model.
type Artifact struct {
	Kind     Kind        `json:"kind"`
	Features []string    `json:"features,omitempty"`
	Classes  []int       `json:"classes,omitempty"`
	Scaler   *ScalerSpec `json:"scaler,omitempty"`
	Linear   *LinearSpec `json:"linear,omitempty"`
	Tree     *TreeSpec   `json:"tree,omitempty"`
	Forest   *ForestSpec `json:"forest,omitempty"`
}

// ScalerSpec holds per-column standardization parameters.
type ScalerSpec struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// LinearSpec holds a linear decision function.
type LinearSpec struct {
	Coefficients []float64 `json:"coefficients"`
	Intercept    float64   `json:"intercept"`
}

// TreeSpec is a flat node array; node 0 is the root.
type TreeSpec struct {
	Nodes []NodeSpec `json:"nodes"`
}

// NodeSpec is one tree node. Leaves use Label; splits use the rest.
type NodeSpec struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Label     int     `json:"label"`
	Leaf      bool    `json:"leaf"`
}

// ForestSpec is an ensemble of trees voting on the label.
type ForestSpec struct {
	Trees []TreeSpec `json:"trees"`
}

// FormatFromName infers the encoding from a file name or object key.
func FormatFromName(name string) Format {
	switch strings.ToLower(path.Ext(name)) {
	case ".json":
		return FormatJSON
	case ".msgpack", ".mpk", ".mp":
		return FormatMsgpack
	}
	return FormatAuto
}

// Detect sniffs the encoding of data.
func Detect(data []byte) Format {
	if mimetype.Detect(data).Is("application/json") {
		return FormatJSON
	}
	return FormatMsgpack
}

// Decode parses an artifact in the given encoding.
func Decode(data []byte, format Format) (*Artifact, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty artifact", ErrDecode)
	}
	if format == FormatAuto {
		format = Detect(data)
	}

	var a Artifact
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &a); err != nil {
			return nil, fmt.Errorf("%w: json: %v", ErrDecode, err)
		}
	case FormatMsgpack:
		dec := msgpack.NewDecoder(bytes.NewReader(data))
		dec.SetCustomStructTag(structTag)
		if err := dec.Decode(&a); err != nil {
			return nil, fmt.Errorf("%w: msgpack: %v", ErrDecode, err)
		}
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", ErrDecode, format)
	}
	return &a, nil
}

// Encode serializes an artifact.
func Encode(a *Artifact, format Format) ([]byte, error) {
	switch format {
	case FormatJSON, FormatAuto:
		return json.MarshalIndent(a, "", "  ")
	case FormatMsgpack:
		var buf bytes.Buffer
		enc := msgpack.NewEncoder(&buf)
		enc.SetCustomStructTag(structTag)
		if err := enc.Encode(a); err != nil {
			return nil, fmt.Errorf("encode msgpack: %w", err)
		}
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("unsupported format %q", format)
}

// Build validates an artifact against the expected feature order and
// constructs the matching Classifier.
func Build(a *Artifact, expected []string) (Classifier, error) {
	if a == nil {
		return nil, fmt.Errorf("%w: nil artifact", ErrInvalidArtifact)
	}
	if len(expected) == 0 {
		expected = features.Order()
	}
	if len(a.Features) > 0 && !sameNames(a.Features, expected) {
		return nil, fmt.Errorf("%w: artifact features %v do not match %v", ErrInvalidArtifact, a.Features, expected)
	}

	classes := a.Classes
	if len(classes) == 0 {
		classes = []int{0, 1}
	}
	if err := uniqueClasses(classes); err != nil {
		return nil, err
	}

	dim := len(expected)
	sc, err := newScaler(a.Scaler, dim)
	if err != nil {
		return nil, err
	}
	b := base{kind: a.Kind, dim: dim, classes: classes, scaler: sc}

	var c Classifier
	switch a.Kind {
	case KindLinear:
		m, err := newLinear(a.Linear, b)
		if err != nil {
			return nil, err
		}
		c = m
	case KindDecisionTree:
		m, err := newTreeModel(a.Tree, b)
		if err != nil {
			return nil, err
		}
		c = m
	case KindRandomForest:
		m, err := newForest(a.Forest, b)
		if err != nil {
			return nil, err
		}
		c = m
	default:
		return nil, fmt.Errorf("%w: %w: %q", ErrInvalidArtifact, ErrUnknownKind, a.Kind)
	}
	return c, nil
}

// Load decodes and builds a classifier from raw artifact bytes.
func Load(data []byte, opts ...Option) (Classifier, *Artifact, error) {
	o := &loadOptions{}
	for _, opt := range opts {
		opt(o)
	}
	a, err := Decode(data, o.format)
	if err != nil {
		return nil, nil, err
	}
	c, err := Build(a, o.expected)
	if err != nil {
		return nil, nil, err
	}
	return c, a, nil
}

func sameNames(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func uniqueClasses(classes []int) error {
	seen := make(map[int]struct{}, len(classes))
	for _, c := range classes {
		if _, ok := seen[c]; ok {
			return fmt.Errorf("%w: duplicate class %d", ErrInvalidArtifact, c)
		}
		seen[c] = struct{}{}
	}
	return nil
}
