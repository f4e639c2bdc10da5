package ai

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/alex-chat/backend/internal/config"
	"github.com/zhouzirui/alex-chat/backend/internal/model/chat"
	"github.com/zhouzirui/alex-chat/backend/internal/model/persona"
	"github.com/zhouzirui/alex-chat/backend/internal/service/conversation"
)

type fakeChatModel struct {
	mu    sync.Mutex
	reply string
	err   error
	input []*schema.Message
}

func (f *fakeChatModel) Generate(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.input = input
	if f.err != nil {
		return nil, f.err
	}
	return schema.AssistantMessage(f.reply, nil), nil
}

func (f *fakeChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := f.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

func (f *fakeChatModel) received() []*schema.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.input
}

func newTestService(t *testing.T, fake *fakeChatModel) *Service {
	t.Helper()
	svc, err := NewServiceWithModel(context.Background(), fake, config.AIConfig{Provider: config.ProviderOpenAI, Model: config.DefaultModel})
	require.NoError(t, err)
	return svc
}

func TestCompleteSendsWholeTranscript(t *testing.T) {
	fake := &fakeChatModel{reply: "Hi! 😊"}
	svc := newTestService(t, fake)

	transcript := []chat.Message{
		{Role: chat.RoleSystem, Content: "You are Alex. Use {braces} freely."},
		{Role: chat.RoleAssistant, Content: persona.DefaultGreeting},
		{Role: chat.RoleUser, Content: "Hello"},
	}

	reply, err := svc.Complete(context.Background(), transcript)
	require.NoError(t, err)
	assert.Equal(t, "Hi! 😊", reply)

	got := fake.received()
	require.Len(t, got, 3)
	assert.Equal(t, schema.System, got[0].Role)
	assert.Equal(t, "You are Alex. Use {braces} freely.", got[0].Content)
	assert.Equal(t, schema.Assistant, got[1].Role)
	assert.Equal(t, schema.User, got[2].Role)
	assert.Equal(t, "Hello", got[2].Content)
}

func TestCompleteWrapsProviderError(t *testing.T) {
	providerErr := errors.New("status 429: rate limited")
	svc := newTestService(t, &fakeChatModel{err: providerErr})

	_, err := svc.Complete(context.Background(), []chat.Message{{Role: chat.RoleUser, Content: "Hello"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, providerErr)
}

func TestCompleteRejectsEmptyReply(t *testing.T) {
	svc := newTestService(t, &fakeChatModel{reply: "   "})

	_, err := svc.Complete(context.Background(), []chat.Message{{Role: chat.RoleUser, Content: "Hello"}})
	assert.ErrorIs(t, err, conversation.ErrEmptyReply)
}

func TestServiceDrivesController(t *testing.T) {
	svc := newTestService(t, &fakeChatModel{reply: "Hi! 😊"})
	alex := persona.Seed()[0]
	ctrl := conversation.New(BuildSystemPrompt(&alex), alex.Greeting, alex.Fallback, svc)

	require.True(t, ctrl.Submit(context.Background(), "Hello"))
	transcript := ctrl.Transcript()
	require.Len(t, transcript, 4)
	assert.Equal(t, chat.Message{Role: chat.RoleAssistant, Content: "Hi! 😊"}, transcript[3])
}

func TestBuildSystemPrompt(t *testing.T) {
	alex := persona.Seed()[0]
	assert.Equal(t, alex.Prompt, BuildSystemPrompt(&alex))

	bare := persona.Persona{Name: "Sam", Title: "Study Buddy", Tone: "calm", Traits: []string{"patient"}}
	got := BuildSystemPrompt(&bare)
	assert.Contains(t, got, "You are Sam, study buddy.")
	assert.Contains(t, got, "- patient")
}
