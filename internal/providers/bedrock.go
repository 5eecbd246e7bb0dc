package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

type bedrockModel struct {
	client *bedrockruntime.Client
	model  string
}

func newBedrock(ctx context.Context, cfg *Config) (*bedrockModel, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithRetryMaxAttempts(cfg.MaxRetries+1),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &bedrockModel{
		client: bedrockruntime.NewFromConfig(awsCfg),
		model:  cfg.Model,
	}, nil
}

func (m *bedrockModel) Generate(ctx context.Context, req Request) (Response, error) {
	messages, err := bedrockMessages(req.Messages)
	if err != nil {
		return Response{}, err
	}

	input := &bedrockruntime.ConverseInput{
		ModelId:  aws.String(m.model),
		Messages: messages,
	}

	if system := bedrockSystem(req); system != "" {
		input.System = []types.SystemContentBlock{
			&types.SystemContentBlockMemberText{Value: system},
		}
	}

	out, err := m.client.Converse(ctx, input)
	if err != nil {
		return Response{}, fmt.Errorf("bedrock converse: %w", err)
	}

	msg, ok := out.Output.(*types.ConverseOutputMemberMessage)
	if !ok {
		return Response{}, ErrEmptyResponse
	}

	var b strings.Builder
	for _, block := range msg.Value.Content {
		if text, ok := block.(*types.ContentBlockMemberText); ok {
			b.WriteString(text.Value)
		}
	}
	if b.Len() == 0 {
		return Response{}, ErrEmptyResponse
	}
	return Response{Text: b.String()}, nil
}

// bedrockSystem appends the output schema to the system prompt. Converse
// has no native response schema, so the reply is validated after decode.
func bedrockSystem(req Request) string {
	if req.Schema == nil {
		return req.System
	}

	schema, err := json.Marshal(req.Schema.Definition)
	if err != nil {
		return req.System
	}

	var b strings.Builder
	if req.System != "" {
		b.WriteString(req.System)
		b.WriteString("\n\n")
	}
	b.WriteString("Respond with a single JSON object, without surrounding prose, that matches this JSON schema:\n")
	b.Write(schema)
	return b.String()
}

// bedrockMessages converts messages, merging consecutive turns of the same
// role since Converse requires alternating roles.
func bedrockMessages(msgs []Message) ([]types.Message, error) {
	out := make([]types.Message, 0, len(msgs))

	for _, msg := range msgs {
		role := types.ConversationRoleUser
		if msg.Role == RoleAssistant {
			role = types.ConversationRoleAssistant
		}

		blocks := make([]types.ContentBlock, 0, len(msg.Parts))
		for _, p := range msg.Parts {
			switch p.Type {
			case PartText:
				blocks = append(blocks, &types.ContentBlockMemberText{Value: p.Text})
			case PartImage:
				data, err := readImage(p)
				if err != nil {
					return nil, err
				}
				blocks = append(blocks, &types.ContentBlockMemberImage{
					Value: types.ImageBlock{
						Format: types.ImageFormatPng,
						Source: &types.ImageSourceMemberBytes{Value: data},
					},
				})
			}
		}

		if n := len(out); n > 0 && out[n-1].Role == role {
			out[n-1].Content = append(out[n-1].Content, blocks...)
			continue
		}
		out = append(out, types.Message{Role: role, Content: blocks})
	}

	return out, nil
}
