package recognizer

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fieldserve/nameplate-cli/internal/engine"
	"github.com/fieldserve/nameplate-cli/pkg/cloudvision"
)

type mockVisionClient struct {
	mock.Mock
}

func (m *mockVisionClient) DetectText(ctx context.Context, image []byte) (*cloudvision.DetectTextResponse, error) {
	args := m.Called(ctx, image)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cloudvision.DetectTextResponse), args.Error(1)
}

func TestEconomy_Recognize(t *testing.T) {
	detected := "BOSCH\nWAG28461BY\nSerie | 6\n230V ~ 50Hz"
	client := &mockVisionClient{}
	client.On("DetectText", mock.Anything, []byte("img")).
		Return(&cloudvision.DetectTextResponse{Text: detected, Locale: "en"}, nil)

	attempt := NewEconomy(client).Recognize(context.Background(), []byte("img"))

	require.True(t, attempt.Succeeded)
	assert.Equal(t, engine.SourceVisionEconomy, attempt.Source)
	assert.Equal(t, detected, attempt.RawText, "raw text passes through untouched")
	assert.Nil(t, attempt.Structured)
	client.AssertExpectations(t)
}

func TestEconomy_Recognize_EmptyDetection(t *testing.T) {
	client := &mockVisionClient{}
	client.On("DetectText", mock.Anything, mock.Anything).
		Return(&cloudvision.DetectTextResponse{}, nil)

	attempt := NewEconomy(client).Recognize(context.Background(), []byte("img"))

	assert.True(t, attempt.Succeeded, "no text found is still a successful attempt")
	assert.Empty(t, attempt.RawText)
}

func TestEconomy_Recognize_Failure(t *testing.T) {
	client := &mockVisionClient{}
	client.On("DetectText", mock.Anything, mock.Anything).
		Return(nil, eris.New("API key not valid"))

	attempt := NewEconomy(client).Recognize(context.Background(), []byte("img"))

	assert.False(t, attempt.Succeeded)
	assert.Contains(t, attempt.ErrorReason, "text detection")
}
