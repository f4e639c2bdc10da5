package ai

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/zhouzirui/alex-chat/backend/internal/config"
	"github.com/zhouzirui/alex-chat/backend/internal/model/chat"
	"github.com/zhouzirui/alex-chat/backend/internal/service/conversation"
)

const transcriptKey = "transcript"

// Service sends whole transcripts to the configured chat model.
type Service struct {
	cfg   config.AIConfig
	chain compose.Runnable[map[string]any, *schema.Message]
}

// NewService creates a Service backed by the provider named in cfg.
func NewService(ctx context.Context, cfg config.AIConfig) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}
	return NewServiceWithModel(ctx, chatModel, cfg)
}

// NewServiceWithModel wires an existing chat model into the completion chain.
func NewServiceWithModel(ctx context.Context, chatModel model.BaseChatModel, cfg config.AIConfig) (*Service, error) {
	// The transcript already carries the persona message, so the template is
	// a bare placeholder: no message content passes through the formatter.
	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.MessagesPlaceholder(transcriptKey, false),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &Service{
		cfg:   cfg,
		chain: runnable,
	}, nil
}

// Complete returns the model's reply to the transcript.
func (s *Service) Complete(ctx context.Context, transcript []chat.Message) (string, error) {
	response, err := s.chain.Invoke(ctx, map[string]any{
		transcriptKey: toSchemaMessages(transcript),
	})
	if err != nil {
		return "", fmt.Errorf("failed to run AI chain: %w", err)
	}
	if response == nil || strings.TrimSpace(response.Content) == "" {
		return "", conversation.ErrEmptyReply
	}

	log.Printf("[ai] generated response provider=%s model=%s turns=%d length=%d", s.cfg.Provider, s.cfg.Model, len(transcript), len(response.Content))
	return response.Content, nil
}

func toSchemaMessages(transcript []chat.Message) []*schema.Message {
	messages := make([]*schema.Message, 0, len(transcript))
	for _, msg := range transcript {
		switch msg.Role {
		case chat.RoleSystem:
			messages = append(messages, schema.SystemMessage(msg.Content))
		case chat.RoleUser:
			messages = append(messages, schema.UserMessage(msg.Content))
		case chat.RoleAssistant:
			messages = append(messages, schema.AssistantMessage(msg.Content, nil))
		}
	}
	return messages
}
