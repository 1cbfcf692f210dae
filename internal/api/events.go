// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"encoding/json"
	"fmt"

	"github.com/bot360/bot360-tui/internal/model"
)

// =============================================================================
// STREAM EVENTS
// =============================================================================

// EventKind classifies a decoded stream event.
type EventKind int

const (
	// KindUnknown is an event with an unrecognized type and no error
	// field; ignored for forward compatibility.
	KindUnknown EventKind = iota
	KindThinking
	KindToken
	KindGraph
	KindError
)

// StreamEvent is one decoded frame of the chat stream. It is a tagged
// union over the type field, except that a present error field dominates
// regardless of type.
type StreamEvent struct {
	Type        string          `json:"type"`
	Content     string          `json:"content"`
	Description string          `json:"description"`
	Data        json.RawMessage `json:"data"`
	Error       *string         `json:"error"`
}

// graphKinds maps wire event types to chart kinds.
var graphKinds = map[string]model.GraphKind{
	"bar_graph_data":      model.GraphBar,
	"line_graph_data":     model.GraphLine,
	"area_graph_data":     model.GraphArea,
	"doughnut_graph_data": model.GraphDoughnut,
}

// ParseEvent decodes one frame. Callers treat a decode failure as a
// dropped frame, never a stream abort.
func ParseEvent(frame string) (StreamEvent, error) {
	var ev StreamEvent
	if err := json.Unmarshal([]byte(frame), &ev); err != nil {
		return StreamEvent{}, fmt.Errorf("malformed stream frame: %w", err)
	}
	return ev, nil
}

// Kind classifies the event. An error field wins over any type tag.
func (e StreamEvent) Kind() EventKind {
	if e.Error != nil {
		return KindError
	}
	switch e.Type {
	case "thinking":
		return KindThinking
	case "token":
		return KindToken
	}
	if _, ok := graphKinds[e.Type]; ok {
		return KindGraph
	}
	return KindUnknown
}

// ErrorText returns the terminal error content, or "" for non-error
// events.
func (e StreamEvent) ErrorText() string {
	if e.Error == nil {
		return ""
	}
	return *e.Error
}

// Graph decodes the nested data object of a graph event into its chart
// payload.
func (e StreamEvent) Graph() (model.Graph, error) {
	kind, ok := graphKinds[e.Type]
	if !ok {
		return model.Graph{}, fmt.Errorf("event type %q carries no graph", e.Type)
	}

	if kind == model.GraphDoughnut {
		var slices model.SliceData
		if err := json.Unmarshal(e.Data, &slices); err != nil {
			return model.Graph{}, fmt.Errorf("malformed %s payload: %w", e.Type, err)
		}
		return model.Graph{Kind: kind, Slices: &slices}, nil
	}

	var series model.SeriesData
	if err := json.Unmarshal(e.Data, &series); err != nil {
		return model.Graph{}, fmt.Errorf("malformed %s payload: %w", e.Type, err)
	}
	return model.Graph{Kind: kind, Series: &series}, nil
}
