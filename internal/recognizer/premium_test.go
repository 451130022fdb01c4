package recognizer

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fieldserve/nameplate-cli/internal/engine"
	"github.com/fieldserve/nameplate-cli/pkg/anthropic"
)

type mockAnthropicClient struct {
	mock.Mock
}

func (m *mockAnthropicClient) CreateMessage(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*anthropic.MessageResponse), args.Error(1)
}

const structuredReply = `{"brand": "Bosch", "model": "WAG28461BY", "device_type": "washing machine", "capacity": "9 kg", "serial_number": "FD9901", "confidence": "high"}`

func TestPremium_Recognize(t *testing.T) {
	client := &mockAnthropicClient{}
	client.On("CreateMessage", mock.Anything, mock.MatchedBy(func(req anthropic.MessageRequest) bool {
		return req.Model == "test-model" &&
			len(req.Messages) == 1 &&
			req.Messages[0].Image != nil &&
			req.Messages[0].Image.MediaType == "image/png"
	})).Return(&anthropic.MessageResponse{Model: "test-model", Text: structuredReply}, nil)

	p := NewPremium(client, "test-model", 512)
	attempt := p.Recognize(context.Background(), pngHeader(t))

	require.True(t, attempt.Succeeded)
	assert.Equal(t, engine.SourceVisionPremium, attempt.Source)
	assert.Equal(t, structuredReply, attempt.RawText)
	require.NotNil(t, attempt.Structured)
	assert.Equal(t, "Bosch", attempt.Structured.Brand)
	assert.Equal(t, "WAG28461BY", attempt.Structured.Model)
	assert.Equal(t, "high", attempt.Structured.Confidence)
	client.AssertExpectations(t)
}

func TestPremium_Recognize_RequestFailure(t *testing.T) {
	client := &mockAnthropicClient{}
	client.On("CreateMessage", mock.Anything, mock.Anything).
		Return(nil, eris.New("invalid api key"))

	attempt := NewPremium(client, "test-model", 0).Recognize(context.Background(), pngHeader(t))

	assert.False(t, attempt.Succeeded)
	assert.Contains(t, attempt.ErrorReason, "vision request")
	assert.Nil(t, attempt.Structured)
}

func TestPremium_Recognize_UnparsableReply(t *testing.T) {
	client := &mockAnthropicClient{}
	client.On("CreateMessage", mock.Anything, mock.Anything).
		Return(&anthropic.MessageResponse{Text: "I cannot read this label."}, nil)

	attempt := NewPremium(client, "test-model", 0).Recognize(context.Background(), pngHeader(t))

	assert.False(t, attempt.Succeeded)
	assert.Contains(t, attempt.ErrorReason, "parse structured response")
}

func TestParseStructured(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantErr bool
		model   string
	}{
		{name: "plain json", text: structuredReply, model: "WAG28461BY"},
		{name: "json fenced", text: "```json\n" + structuredReply + "\n```", model: "WAG28461BY"},
		{name: "bare fenced", text: "```\n" + structuredReply + "\n```", model: "WAG28461BY"},
		{name: "surrounding whitespace", text: "\n  " + structuredReply + "  \n", model: "WAG28461BY"},
		{name: "prose reply", text: "The model appears to be WAG28461BY.", wantErr: true},
		{name: "empty", text: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			guess, err := parseStructured(tt.text)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.model, guess.Model)
		})
	}
}

func TestSniffMediaType(t *testing.T) {
	assert.Equal(t, "image/png", sniffMediaType(pngHeader(t)))
	assert.Equal(t, "image/jpeg", sniffMediaType([]byte{0x00, 0x01, 0x02, 0x03}))
}
