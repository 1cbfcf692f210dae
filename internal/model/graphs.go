// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"fmt"
)

// =============================================================================
// GRAPH PAYLOADS
// =============================================================================

// GraphKind names the four chart shapes the backend emits mid-stream.
type GraphKind string

const (
	GraphBar      GraphKind = "bar"
	GraphLine     GraphKind = "line"
	GraphArea     GraphKind = "area"
	GraphDoughnut GraphKind = "doughnut"
)

// AxisValue is a categorical x-axis entry. The backend emits either
// strings or numbers in x_coordinates; both decode to their string form
// since the axis is rendered categorically.
type AxisValue string

// UnmarshalJSON accepts both JSON strings and numbers.
func (a *AxisValue) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*a = AxisValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*a = AxisValue(n.String())
		return nil
	}
	return fmt.Errorf("axis value must be string or number, got %s", data)
}

func (a AxisValue) String() string { return string(a) }

// SeriesData is the shared geometry of bar, line, and area graphs: a
// labeled categorical x-axis with a numeric y-series.
type SeriesData struct {
	XLabel       string      `json:"x_label"`
	YLabel       string      `json:"y_label"`
	XCoordinates []AxisValue `json:"x_coordinates"`
	YCoordinates []float64   `json:"y_coordinates"`
	Legend       string      `json:"legend,omitempty"`
	Description  string      `json:"description,omitempty"`
}

// SliceData is the doughnut geometry: parallel label/value arrays.
type SliceData struct {
	Labels      []string  `json:"labels"`
	Values      []float64 `json:"values"`
	Legend      string    `json:"legend,omitempty"`
	Description string    `json:"description,omitempty"`
}

// Graph is one chart payload attached to an assistant turn. Exactly one
// of Series or Slices is set, matching Kind.
type Graph struct {
	Kind   GraphKind
	Series *SeriesData
	Slices *SliceData
}

// Points returns the series as (label, value) pairs, truncated to the
// shorter of the two coordinate arrays when the backend sends ragged data.
func (g Graph) Points() []Point {
	switch {
	case g.Series != nil:
		n := len(g.Series.XCoordinates)
		if len(g.Series.YCoordinates) < n {
			n = len(g.Series.YCoordinates)
		}
		pts := make([]Point, n)
		for i := 0; i < n; i++ {
			pts[i] = Point{Label: g.Series.XCoordinates[i].String(), Value: g.Series.YCoordinates[i]}
		}
		return pts
	case g.Slices != nil:
		n := len(g.Slices.Labels)
		if len(g.Slices.Values) < n {
			n = len(g.Slices.Values)
		}
		pts := make([]Point, n)
		for i := 0; i < n; i++ {
			pts[i] = Point{Label: g.Slices.Labels[i], Value: g.Slices.Values[i]}
		}
		return pts
	default:
		return nil
	}
}

// Point is one labeled value of a graph, ready for terminal rendering.
type Point struct {
	Label string
	Value float64
}

// =============================================================================
// GRAPH ATTACHMENT STORE
// =============================================================================

// GraphStore associates chart payloads with the assistant message that
// produced them. Attachment is append-only and retrieval order equals
// attachment order; entries are never reordered or removed while the
// conversation view lives.
type GraphStore struct {
	byMessage map[int][]Graph
}

// NewGraphStore creates an empty store.
func NewGraphStore() *GraphStore {
	return &GraphStore{byMessage: make(map[int][]Graph)}
}

// Attach appends a graph under the given assistant message id.
func (s *GraphStore) Attach(messageID int, g Graph) {
	s.byMessage[messageID] = append(s.byMessage[messageID], g)
}

// Get returns the graphs attached to a message in attachment order.
// Unknown ids yield an empty slice, never nil, so renderers need no
// special case.
func (s *GraphStore) Get(messageID int) []Graph {
	graphs := s.byMessage[messageID]
	if graphs == nil {
		return []Graph{}
	}
	return graphs
}

// Count returns the number of graphs attached to a message.
func (s *GraphStore) Count(messageID int) int {
	return len(s.byMessage[messageID])
}
