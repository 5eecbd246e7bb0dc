package providers

import (
	"context"
	"fmt"

	"github.com/JaimeStill/document-context/pkg/document"
	"github.com/JaimeStill/document-context/pkg/encoding"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

type openAIModel struct {
	client openai.Client
	model  string
}

func newOpenAI(cfg *Config) Model {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &openAIModel{
		client: openai.NewClient(opts...),
		model:  cfg.Model,
	}
}

func (m *openAIModel) Generate(ctx context.Context, req Request) (Response, error) {
	messages, err := openAIMessages(req)
	if err != nil {
		return Response{}, err
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(m.model),
		Messages: messages,
	}

	if req.Schema != nil {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   req.Schema.Name,
					Schema: req.Schema.Definition,
					Strict: openai.Bool(true),
				},
			},
		}
	}

	completion, err := m.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return Response{}, fmt.Errorf("openai chat completion: %w", err)
	}

	if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
		return Response{}, ErrEmptyResponse
	}

	return Response{Text: completion.Choices[0].Message.Content}, nil
}

func openAIMessages(req Request) ([]openai.ChatCompletionMessageParamUnion, error) {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages)+1)
	if req.System != "" {
		out = append(out, openai.SystemMessage(req.System))
	}

	for _, msg := range req.Messages {
		if msg.Role == RoleAssistant {
			out = append(out, openai.AssistantMessage(joinText(msg.Parts)))
			continue
		}

		parts := make([]openai.ChatCompletionContentPartUnionParam, 0, len(msg.Parts))
		for _, p := range msg.Parts {
			switch p.Type {
			case PartText:
				parts = append(parts, openai.TextContentPart(p.Text))
			case PartImage:
				data, err := readImage(p)
				if err != nil {
					return nil, err
				}
				uri, err := encoding.EncodeImageDataURI(data, document.PNG)
				if err != nil {
					return nil, fmt.Errorf("encode image: %w", err)
				}
				parts = append(parts, openai.ImageContentPart(
					openai.ChatCompletionContentPartImageImageURLParam{URL: uri},
				))
			}
		}
		out = append(out, openai.UserMessage(parts))
	}

	return out, nil
}

func joinText(parts []Part) string {
	var text string
	for _, p := range parts {
		if p.Type != PartText {
			continue
		}
		if text != "" {
			text += "\n"
		}
		text += p.Text
	}
	return text
}
