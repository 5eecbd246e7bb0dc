package providers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/vertexai/genai"
)

type vertexModel struct {
	client  *genai.Client
	model   string
	retries int
}

func newVertex(ctx context.Context, cfg *Config) (*vertexModel, error) {
	client, err := genai.NewClient(ctx, cfg.Project, cfg.Region)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}
	return &vertexModel{
		client:  client,
		model:   cfg.Model,
		retries: cfg.MaxRetries,
	}, nil
}

func (m *vertexModel) Close() error {
	return m.client.Close()
}

func (m *vertexModel) Generate(ctx context.Context, req Request) (Response, error) {
	if len(req.Messages) == 0 || req.Messages[len(req.Messages)-1].Role != RoleUser {
		return Response{}, errors.New("vertex: conversation must end with a user turn")
	}

	contents := make([]*genai.Content, 0, len(req.Messages))
	for _, msg := range req.Messages {
		c, err := vertexContent(msg)
		if err != nil {
			return Response{}, err
		}
		contents = append(contents, c)
	}

	model := m.client.GenerativeModel(m.model)
	if req.System != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(req.System)},
		}
	}
	if req.Schema != nil {
		model.GenerationConfig.ResponseMIMEType = "application/json"
		model.GenerationConfig.ResponseSchema = vertexSchema(req.Schema.Definition)
	}

	last := contents[len(contents)-1]

	return withRetry(ctx, m.retries, backoff, func() (Response, error) {
		cs := model.StartChat()
		cs.History = contents[:len(contents)-1]

		resp, err := cs.SendMessage(ctx, last.Parts...)
		if err != nil {
			return Response{}, fmt.Errorf("vertex send message: %w", err)
		}
		return vertexResponse(resp)
	})
}

func vertexContent(msg Message) (*genai.Content, error) {
	role := "user"
	if msg.Role == RoleAssistant {
		role = "model"
	}

	parts := make([]genai.Part, 0, len(msg.Parts))
	for _, p := range msg.Parts {
		switch p.Type {
		case PartText:
			parts = append(parts, genai.Text(p.Text))
		case PartImage:
			data, err := readImage(p)
			if err != nil {
				return nil, err
			}
			parts = append(parts, genai.ImageData("png", data))
		}
	}
	return &genai.Content{Role: role, Parts: parts}, nil
}

func vertexResponse(resp *genai.GenerateContentResponse) (Response, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return Response{}, ErrEmptyResponse
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	if b.Len() == 0 {
		return Response{}, ErrEmptyResponse
	}
	return Response{Text: b.String()}, nil
}

// vertexSchema converts a JSON schema definition into the subset Vertex AI
// accepts for constrained output.
func vertexSchema(def map[string]any) *genai.Schema {
	s := &genai.Schema{}

	switch def["type"] {
	case "object":
		s.Type = genai.TypeObject
	case "array":
		s.Type = genai.TypeArray
	case "string":
		s.Type = genai.TypeString
	case "boolean":
		s.Type = genai.TypeBoolean
	case "integer":
		s.Type = genai.TypeInteger
	case "number":
		s.Type = genai.TypeNumber
	}

	if desc, ok := def["description"].(string); ok {
		s.Description = desc
	}

	if props, ok := def["properties"].(map[string]any); ok {
		s.Properties = make(map[string]*genai.Schema, len(props))
		for name, v := range props {
			if prop, ok := v.(map[string]any); ok {
				s.Properties[name] = vertexSchema(prop)
			}
		}
	}

	if items, ok := def["items"].(map[string]any); ok {
		s.Items = vertexSchema(items)
	}

	switch req := def["required"].(type) {
	case []string:
		s.Required = req
	case []any:
		for _, v := range req {
			if name, ok := v.(string); ok {
				s.Required = append(s.Required, name)
			}
		}
	}

	return s
}
