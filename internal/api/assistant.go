// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// =============================================================================
// ASSISTANT CONFIGURATION
// =============================================================================

// SupportedModels lists the backend model identifiers a configuration may
// select.
var SupportedModels = []string{
	"gpt-4.1",
	"gpt-4.1-mini",
	"gpt-4.1-nano",
	"gpt-4o",
	"gpt-4o-mini",
}

// ErrUnsupportedModel indicates a configuration names a model outside
// SupportedModels.
var ErrUnsupportedModel = errors.New("unsupported model")

// AssistantConfig is one saved assistant personality plus its model
// parameters.
//
// Personality fields are optional: a nil pointer persists as null, which
// the backend reads as "disabled". Languages nil means the assistant
// follows the language of the user's last message.
type AssistantConfig struct {
	UUID string `json:"uuid,omitempty"`

	AgentName        *string `json:"agent_name"`
	OrgName          *string `json:"organisation_name"`
	OrgDescription   *string `json:"organisation_description"`
	ConversationTone *string `json:"conversation_tone"`
	Examples         *string `json:"examples"`
	Goal             *string `json:"goal"`
	Languages        *string `json:"languages"`

	Model            string  `json:"model"`
	Temperature      float64 `json:"temperature"`
	MaxTokens        int     `json:"max_tokens"`
	TopP             float64 `json:"top_p"`
	FrequencyPenalty float64 `json:"frequency_penalty"`

	StreamResponses         bool    `json:"stream_responses"`
	JSONMode                bool    `json:"json_mode"`
	AutoToolChoice          bool    `json:"auto_tool_choice"`
	EnableEmojis            bool    `json:"enable_emojis"`
	AnswerCompetitorQueries bool    `json:"answer_competitor_queries"`
	CompetitorResponseBias  float64 `json:"competitor_response_bias"`

	KnowledgeBaseIDs []int `json:"knowledge_base_ids,omitempty"`
}

// DefaultAssistantConfig returns the configuration a new assistant starts
// from.
func DefaultAssistantConfig() AssistantConfig {
	name := "Bot360"
	return AssistantConfig{
		AgentName:       &name,
		Model:           "gpt-4.1",
		Temperature:     0.7,
		MaxTokens:       1024,
		TopP:            1.0,
		StreamResponses: true,
		EnableEmojis:    true,
	}
}

// Validate checks parameter ranges before any save round trip.
func (a *AssistantConfig) Validate() error {
	supported := false
	for _, m := range SupportedModels {
		if a.Model == m {
			supported = true
			break
		}
	}
	if !supported {
		return fmt.Errorf("%w: %q", ErrUnsupportedModel, a.Model)
	}
	if a.Temperature < 0 || a.Temperature > 2 {
		return errors.New("temperature must be between 0 and 2")
	}
	if a.TopP < 0 || a.TopP > 1 {
		return errors.New("top_p must be between 0 and 1")
	}
	if a.MaxTokens <= 0 {
		return errors.New("max_tokens must be positive")
	}
	if a.CompetitorResponseBias < 0 || a.CompetitorResponseBias > 1 {
		return errors.New("competitor_response_bias must be between 0 and 1")
	}
	return nil
}

// AssistantSummary is one row of the saved-assistant list.
type AssistantSummary struct {
	UUID      string  `json:"uuid"`
	AgentName *string `json:"agent_name"`
	Model     string  `json:"model"`
	UpdatedAt string  `json:"updated_at"`
}

// ListAssistants returns the account's saved configurations.
func (c *Client) ListAssistants(ctx context.Context) ([]AssistantSummary, error) {
	var out []AssistantSummary
	if err := c.getJSON(ctx, "/api/analytics/assistant/configs/", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetConfiguration fetches one saved configuration by uuid.
func (c *Client) GetConfiguration(ctx context.Context, id string) (AssistantConfig, error) {
	var out AssistantConfig
	if err := c.getJSON(ctx, "/api/analytics/assistant/config/"+id+"/", &out); err != nil {
		return AssistantConfig{}, err
	}
	return out, nil
}

// SaveConfiguration persists a configuration. A config without a uuid is
// created under a freshly minted one; an existing uuid is updated in
// place. The stored uuid is returned either way.
func (c *Client) SaveConfiguration(ctx context.Context, cfg AssistantConfig) (string, error) {
	if err := cfg.Validate(); err != nil {
		return "", err
	}

	if cfg.UUID == "" {
		cfg.UUID = uuid.NewString()
		if err := c.postJSON(ctx, "/api/analytics/save-configuration/", cfg, nil); err != nil {
			return "", err
		}
		return cfg.UUID, nil
	}

	if err := c.putJSON(ctx, "/api/analytics/assistant/config/"+cfg.UUID+"/", cfg, nil); err != nil {
		return "", err
	}
	return cfg.UUID, nil
}

// DeleteConfiguration removes a saved configuration.
func (c *Client) DeleteConfiguration(ctx context.Context, id string) error {
	return c.deleteJSON(ctx, "/api/analytics/assistant/config/"+id+"/")
}
