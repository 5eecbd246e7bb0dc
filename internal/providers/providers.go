// Package providers defines the model adapter contract used by the
// translation pipeline and its OpenAI, Vertex AI, and Bedrock implementations.
package providers

import (
	"context"
	"fmt"
	"os"
)

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// PartType discriminates message parts.
type PartType string

const (
	PartText  PartType = "text"
	PartImage PartType = "image"
)

// Part is one piece of message content. Image parts reference a PNG on disk.
type Part struct {
	Type      PartType `json:"type"`
	Text      string   `json:"text,omitempty"`
	ImagePath string   `json:"image_path,omitempty"`
}

// Message is one conversation turn.
type Message struct {
	Role  Role   `json:"role"`
	Parts []Part `json:"parts"`
}

// Text creates a text part.
func Text(s string) Part {
	return Part{Type: PartText, Text: s}
}

// Image creates an image part from a PNG path.
func Image(path string) Part {
	return Part{Type: PartImage, ImagePath: path}
}

// UserMessage creates a user turn from parts.
func UserMessage(parts ...Part) Message {
	return Message{Role: RoleUser, Parts: parts}
}

// AssistantText creates an assistant turn holding s.
func AssistantText(s string) Message {
	return Message{Role: RoleAssistant, Parts: []Part{Text(s)}}
}

// Request is a single model invocation. Schema, when set, constrains the
// reply to a JSON object matching it.
type Request struct {
	System   string
	Messages []Message
	Schema   *Schema
}

// Response carries the raw model reply.
type Response struct {
	Text string
}

// Model generates a reply for a conversation.
type Model interface {
	Generate(ctx context.Context, req Request) (Response, error)
}

// ModelFunc adapts a function to the Model interface.
type ModelFunc func(ctx context.Context, req Request) (Response, error)

func (f ModelFunc) Generate(ctx context.Context, req Request) (Response, error) {
	return f(ctx, req)
}

func readImage(p Part) ([]byte, error) {
	if p.ImagePath == "" {
		return nil, ErrMissingImage
	}
	data, err := os.ReadFile(p.ImagePath)
	if err != nil {
		return nil, fmt.Errorf("read image %s: %w", p.ImagePath, err)
	}
	return data, nil
}
