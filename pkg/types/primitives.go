// Package types holds the wire-level primitives shared by every runtime
// component: Content, Memory, Media, Character/Agent, and the capability
// record shapes (Action, Provider, Evaluator, Service, ModelHandler,
// Plugin). Nothing in this package depends on the rest of the module.
package types

import "time"

// MediaContentType enumerates the kinds of media a Content/Memory may
// reference.
type MediaContentType string

const (
	MediaImage    MediaContentType = "image"
	MediaVideo    MediaContentType = "video"
	MediaAudio    MediaContentType = "audio"
	MediaDocument MediaContentType = "document"
	MediaLink     MediaContentType = "link"
)

// Media describes a single attachment.
type Media struct {
	ID          string           `json:"id"`
	URL         string           `json:"url"`
	Title       string           `json:"title,omitempty"`
	Source      string           `json:"source,omitempty"`
	Description string           `json:"description,omitempty"`
	Text        string           `json:"text,omitempty"`
	ContentType MediaContentType `json:"content_type"`
}

// MentionContext carries platform-reported mention/reply/thread flags.
type MentionContext struct {
	IsMention    bool   `json:"is_mention"`
	IsReply      bool   `json:"is_reply"`
	IsThread     bool   `json:"is_thread"`
	MentionType  string `json:"mention_type,omitempty"`
}

// Content is the payload of a Memory: the visible text plus the
// thought/action-plan scaffolding the planner and executor attach to it.
//
// Params is keyed by action name; each value is an open parameter bag the
// executor validates against that action's declared ActionParameter list.
type Content struct {
	Thought           string              `json:"thought,omitempty"`
	Text              string              `json:"text,omitempty"`
	Actions           []string            `json:"actions,omitempty"`
	Params            map[string]map[string]any `json:"params,omitempty"`
	Providers         []string            `json:"providers,omitempty"`
	Source            string              `json:"source,omitempty"`
	Target            string              `json:"target,omitempty"`
	URL               string              `json:"url,omitempty"`
	InReplyTo         string              `json:"in_reply_to,omitempty"`
	Attachments       []Media             `json:"attachments,omitempty"`
	ChannelType       string              `json:"channel_type,omitempty"`
	MentionContext    *MentionContext     `json:"mention_context,omitempty"`
	ResponseMessageID string              `json:"response_message_id,omitempty"`
}

// MemoryMetadata describes how a Memory was produced and where it lives.
// Extras carries plugin-defined fields that do not warrant a typed field
// on the struct (DESIGN NOTES: closed sum type + open extras bag, instead
// of dynamic attribute attachment).
type MemoryMetadata struct {
	Type     string            `json:"type,omitempty"`
	Source   string            `json:"source,omitempty"`
	SourceID string            `json:"source_id,omitempty"`
	Scope    string            `json:"scope,omitempty"`
	Timestamp time.Time        `json:"timestamp,omitempty"`
	Tags     []string          `json:"tags,omitempty"`
	Extras   map[string]any    `json:"extras,omitempty"`
}

// Memory is an immutable, append-only record: a message, a reflection, a
// fact, or any other persisted unit tied to a room/entity/agent triple.
type Memory struct {
	ID         string          `json:"id,omitempty"`
	EntityID   string          `json:"entity_id"`
	AgentID    string          `json:"agent_id,omitempty"`
	RoomID     string          `json:"room_id"`
	WorldID    string          `json:"world_id,omitempty"`
	CreatedAt  time.Time       `json:"created_at,omitempty"`
	Content    Content         `json:"content"`
	Embedding  []float32       `json:"embedding,omitempty"`
	Metadata   *MemoryMetadata `json:"metadata,omitempty"`
	Unique     bool            `json:"unique,omitempty"`
	Similarity float64         `json:"similarity,omitempty"`
}

// NewMessageMemory builds a Memory intended to represent one chat turn. It
// validates at construction, per DESIGN NOTES' guidance to prefer explicit
// constructors over structural subtyping: original_source's MessageMemory
// requires non-empty content.text.
func NewMessageMemory(entityID, roomID string, content Content) (Memory, error) {
	if content.Text == "" {
		return Memory{}, ErrEmptyMessageText
	}
	return Memory{
		EntityID: entityID,
		RoomID:   roomID,
		Content:  content,
		Metadata: &MemoryMetadata{Type: MemoryTypeMessage},
	}, nil
}

// Memory type tags used in MemoryMetadata.Type.
const (
	MemoryTypeMessage     = "message"
	MemoryTypeDocument    = "document"
	MemoryTypeFragment    = "fragment"
	MemoryTypeDescription = "description"
	MemoryTypeCustom      = "custom"
)
