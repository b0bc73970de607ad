// Package streamable defines the tagged payload types delivered to clients
// over server-sent events. Each payload carries a type discriminator so
// consumers can dispatch without inspecting the body.
package streamable

import (
	"encoding/json"
	"fmt"

	"github.com/vnykmshr/papertrail/internal/domain"
)

// Type tags carried in the "type" field of every streamed payload.
const (
	TypeSetAuthorList      = "set:author:list"
	TypeSetPublicationList = "set:publication:list"
	TypeUpdateAuthor       = "update:author"
	TypeUpdatePublication  = "update:publication"
)

// Message is the closed set of payloads a search stream can deliver.
// Only types in this package implement it.
type Message interface {
	// MessageType returns the wire discriminator for the payload.
	MessageType() string

	json.Marshaler
}

// SetAuthorList replaces the client's author list with an initial result set.
type SetAuthorList struct {
	Payload []domain.Author
}

// SetPublicationList replaces the client's publication list with an initial
// result set.
type SetPublicationList struct {
	Payload []domain.Publication
}

// UpdateAuthor delivers a single enriched author, replacing the matching
// entry streamed earlier.
type UpdateAuthor struct {
	Payload domain.Author
}

// UpdatePublication delivers a single enriched publication.
type UpdatePublication struct {
	Payload domain.Publication
}

func (SetAuthorList) MessageType() string      { return TypeSetAuthorList }
func (SetPublicationList) MessageType() string { return TypeSetPublicationList }
func (UpdateAuthor) MessageType() string       { return TypeUpdateAuthor }
func (UpdatePublication) MessageType() string  { return TypeUpdatePublication }

type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func marshalTagged(typ string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", typ, err)
	}
	return json.Marshal(envelope{Type: typ, Payload: raw})
}

// MarshalJSON implements json.Marshaler.
func (m SetAuthorList) MarshalJSON() ([]byte, error) {
	if m.Payload == nil {
		m.Payload = []domain.Author{}
	}
	return marshalTagged(TypeSetAuthorList, m.Payload)
}

// MarshalJSON implements json.Marshaler.
func (m SetPublicationList) MarshalJSON() ([]byte, error) {
	if m.Payload == nil {
		m.Payload = []domain.Publication{}
	}
	return marshalTagged(TypeSetPublicationList, m.Payload)
}

// MarshalJSON implements json.Marshaler.
func (m UpdateAuthor) MarshalJSON() ([]byte, error) {
	return marshalTagged(TypeUpdateAuthor, m.Payload)
}

// MarshalJSON implements json.Marshaler.
func (m UpdatePublication) MarshalJSON() ([]byte, error) {
	return marshalTagged(TypeUpdatePublication, m.Payload)
}

// Decode parses a tagged payload back into its concrete Message type.
// Returns an error for unknown type tags.
func Decode(data []byte) (Message, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode stream message: %w", err)
	}

	switch env.Type {
	case TypeSetAuthorList:
		var m SetAuthorList
		if err := json.Unmarshal(env.Payload, &m.Payload); err != nil {
			return nil, fmt.Errorf("decode %s: %w", env.Type, err)
		}
		return m, nil
	case TypeSetPublicationList:
		var m SetPublicationList
		if err := json.Unmarshal(env.Payload, &m.Payload); err != nil {
			return nil, fmt.Errorf("decode %s: %w", env.Type, err)
		}
		return m, nil
	case TypeUpdateAuthor:
		var m UpdateAuthor
		if err := json.Unmarshal(env.Payload, &m.Payload); err != nil {
			return nil, fmt.Errorf("decode %s: %w", env.Type, err)
		}
		return m, nil
	case TypeUpdatePublication:
		var m UpdatePublication
		if err := json.Unmarshal(env.Payload, &m.Payload); err != nil {
			return nil, fmt.Errorf("decode %s: %w", env.Type, err)
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unknown stream message type %q", env.Type)
	}
}

// Packet wraps a Message with the identifier of the stream that produced it.
type Packet struct {
	StreamID string  `json:"streamId"`
	Content  Message `json:"content"`
}
