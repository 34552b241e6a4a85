package types

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// StyleConfig holds the per-context writing style hints a character
// carries into prompt construction.
type StyleConfig struct {
	All  []string `json:"all,omitempty" yaml:"all,omitempty"`
	Chat []string `json:"chat,omitempty" yaml:"chat,omitempty"`
	Post []string `json:"post,omitempty" yaml:"post,omitempty"`
}

// KnowledgeItem is either a bare path string or a {path,shared} /
// {directory,shared} object; UnmarshalJSON accepts all three shapes.
type KnowledgeItem struct {
	Path      string `json:"path,omitempty"`
	Directory string `json:"directory,omitempty"`
	Shared    bool   `json:"shared,omitempty"`
}

func (k *KnowledgeItem) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		k.Path = s
		return nil
	}
	type alias KnowledgeItem
	var a alias
	if err := json.Unmarshal(b, &a); err != nil {
		return fmt.Errorf("types: invalid knowledge item: %w", err)
	}
	*k = KnowledgeItem(a)
	return nil
}

// Character is the authored identity an Agent wraps at runtime. Name and
// Bio are required; unknown top-level keys are rejected on decode
// (original_source's Character.model_config sets extra="forbid").
type Character struct {
	ID               string            `json:"id,omitempty"`
	Name             string            `json:"name"`
	Bio              []string          `json:"bio"`
	System           string            `json:"system,omitempty"`
	Templates        map[string]string `json:"templates,omitempty"`
	MessageExamples  [][]Content       `json:"message_examples,omitempty"`
	PostExamples     []string          `json:"post_examples,omitempty"`
	Topics           []string          `json:"topics,omitempty"`
	Adjectives       []string          `json:"adjectives,omitempty"`
	Knowledge        []KnowledgeItem   `json:"knowledge,omitempty"`
	Plugins          []string          `json:"plugins,omitempty"`
	Settings         map[string]any    `json:"settings,omitempty"`
	Secrets          map[string]any    `json:"secrets,omitempty"`
	Style            StyleConfig       `json:"style,omitempty"`
	AdvancedPlanning bool              `json:"advanced_planning,omitempty"`
	AdvancedMemory   bool              `json:"advanced_memory,omitempty"`
}

// Validate enforces Character's required fields (name and bio). Unknown
// keys are rejected by DecodeCharacterStrict, not by Validate. Callers
// that build a Character in Go directly (not from JSON) should still call
// Validate before registering it with a runtime.
func (c Character) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidCharacter)
	}
	if len(c.Bio) == 0 {
		return fmt.Errorf("%w: bio is required", ErrInvalidCharacter)
	}
	return nil
}

// DecodeCharacterStrict parses raw as a Character, rejecting any top-level
// key not present on the struct (extra="forbid" in original_source).
func DecodeCharacterStrict(raw []byte) (Character, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	var c Character
	if err := dec.Decode(&c); err != nil {
		return Character{}, fmt.Errorf("%w: %v", ErrInvalidCharacter, err)
	}
	if err := c.Validate(); err != nil {
		return Character{}, err
	}
	return c, nil
}

// AgentStatus is the lifecycle status of a registered Agent.
type AgentStatus string

const (
	AgentStatusActive   AgentStatus = "active"
	AgentStatusInactive AgentStatus = "inactive"
)

// Agent extends Character with process-lifecycle fields. Unlike Character,
// Agent allows extra fields (original_source sets extra="allow" here).
type Agent struct {
	Character
	Enabled   bool        `json:"enabled"`
	Status    AgentStatus `json:"status"`
	CreatedAt int64       `json:"created_at"`
	UpdatedAt int64       `json:"updated_at"`
	Extras    map[string]any `json:"-"`
}
