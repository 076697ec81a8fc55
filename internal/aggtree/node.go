// Package aggtree models the host-supplied hierarchical aggregation result:
// a rooted tree of member nodes with optional measure payloads, plus a flat
// level-descriptor list mapping each tree depth to a semantic axis role.
package aggtree

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
)

// NumAxes is the number of grouping axes in a cube dataset.
const NumAxes = 3

// AxisRole identifies which semantic axis a tree level belongs to.
type AxisRole int

// Axis role constants. A level mapped to AxisUnassigned belongs to none of
// the three configured grouping roles and contributes no path segments.
const (
	AxisUnassigned AxisRole = -1
	Axis0          AxisRole = 0
	Axis1          AxisRole = 1
	Axis2          AxisRole = 2
)

// Assigned reports whether the role is one of the three grouping axes.
func (r AxisRole) Assigned() bool {
	return r >= Axis0 && r <= Axis2
}

// Level describes one tree depth: which axis it belongs to and an optional
// display name for that hierarchy level.
type Level struct {
	Axis AxisRole `json:"axis"           yaml:"axis"`
	Name string   `json:"name,omitempty" yaml:"name,omitempty"`
}

// Measure is a single measure entry on a data-point node.
type Measure struct {
	Value any `json:"value"`
}

// MeasureSet holds the measures carried by one node. The host serializes it
// either as an array or as an object keyed by measure index; both forms
// decode to the same ordered list.
type MeasureSet []Measure

// UnmarshalJSON accepts both the array and the index-keyed object encodings.
func (m *MeasureSet) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*m = nil

		return nil
	}

	if trimmed[0] == '[' {
		var arr []Measure

		err := json.Unmarshal(trimmed, &arr)
		if err != nil {
			return fmt.Errorf("decode measure array: %w", err)
		}

		*m = arr

		return nil
	}

	var obj map[string]Measure

	err := json.Unmarshal(trimmed, &obj)
	if err != nil {
		return fmt.Errorf("decode measure object: %w", err)
	}

	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}

	sort.Slice(keys, func(i, j int) bool {
		ni, errI := strconv.Atoi(keys[i])
		nj, errJ := strconv.Atoi(keys[j])

		if errI == nil && errJ == nil {
			return ni < nj
		}

		return keys[i] < keys[j]
	})

	set := make(MeasureSet, 0, len(keys))
	for _, k := range keys {
		set = append(set, obj[k])
	}

	*m = set

	return nil
}

// Node is one tree node: an optional member value, an optional measure
// payload, and zero or more children. Only nodes carrying a measure payload
// represent realized data points; ancestor nodes never double-count.
type Node struct {
	Value    any        `json:"value,omitempty"`
	Values   MeasureSet `json:"values,omitempty"`
	Children []*Node    `json:"children,omitempty"`
}

// HasMeasure reports whether the node carries a measure payload.
func (n *Node) HasMeasure() bool {
	return len(n.Values) > 0
}

// MeasureValue returns the first measure field's numeric value.
// Missing or null measures yield 0.
func (n *Node) MeasureValue() float64 {
	if len(n.Values) == 0 {
		return 0
	}

	return NumericValue(n.Values[0].Value)
}

// Key returns the node's member value as a string key. A nil value yields
// the empty string; the node is still treated as a data point, degraded
// rather than rejected.
func (n *Node) Key() string {
	return StringValue(n.Value)
}

// NumericValue coerces a decoded JSON value to float64, yielding 0 for
// anything that is not numeric.
func NumericValue(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return 0
		}

		return f
	case string:
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return 0
		}

		return f
	default:
		return 0
	}
}

// floatKeyPrecision is the shortest-round-trip float formatting precision.
const floatKeyPrecision = -1

// StringValue coerces a decoded JSON value to its string-key representation.
func StringValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', floatKeyPrecision, 64)
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// Input is one complete host update: the aggregation tree, the level
// descriptors, and the opaque measure display name.
type Input struct {
	Measure string  `json:"measure,omitempty"`
	Levels  []Level `json:"levels"`
	Root    *Node   `json:"root"`
}

// Sentinel errors for host input decoding.
var (
	// ErrNilRoot indicates the update carries no aggregation tree at all.
	ErrNilRoot = errors.New("aggtree: input has no root node")
)

// Decode reads one host update from the reader. A missing root is the only
// hard failure; every other shape irregularity is tolerated downstream.
func Decode(r io.Reader) (*Input, error) {
	var in Input

	dec := json.NewDecoder(r)

	err := dec.Decode(&in)
	if err != nil {
		return nil, fmt.Errorf("decode aggregation input: %w", err)
	}

	if in.Root == nil {
		return nil, ErrNilRoot
	}

	return &in, nil
}
