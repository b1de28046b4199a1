package services_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/therapease/therapease-backend/internal/services"
)

func TestLexiconPredictorLabels(t *testing.T) {
	predictor := services.NewLexiconPredictor()
	ctx := context.Background()

	tests := []struct {
		text  string
		label string
	}{
		{"I feel great today, everything was wonderful", "joy"},
		{"I am so sad and lonely, everything feels hopeless", "sadness"},
		{"I was furious, it was so unfair and I hate it", "anger"},
		{"I am scared and anxious about tomorrow", "fear"},
		{"I love spending time with my family, I adore them", "love"},
		{"That was so unexpected, I was completely shocked", "surprise"},
		{"The meeting is scheduled at three", "neutral"},
	}

	for _, tt := range tests {
		label, err := predictor.Predict(ctx, tt.text)
		require.NoError(t, err)
		assert.Equal(t, tt.label, label, "text: %q", tt.text)
	}
}

func TestLexiconPredictorNormalization(t *testing.T) {
	predictor := services.NewLexiconPredictor()

	// Punctuation and case must not hide lexicon words
	label, err := predictor.Predict(context.Background(), "HAPPY!!! So... happy, GREAT.")
	require.NoError(t, err)
	assert.Equal(t, "joy", label)
}

func TestHTTPEmotionPredictor(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Text string `json:"text"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "I feel great", body.Text)

		json.NewEncoder(w).Encode(map[string]string{"emotion": "joy"})
	}))
	defer server.Close()

	predictor := services.NewHTTPEmotionPredictor(server.URL)
	label, err := predictor.Predict(context.Background(), "I feel great")
	require.NoError(t, err)
	assert.Equal(t, "joy", label)
}

func TestHTTPEmotionPredictorServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	predictor := services.NewHTTPEmotionPredictor(server.URL)
	_, err := predictor.Predict(context.Background(), "anything")
	assert.Error(t, err)
}

func TestNewPredictorSelection(t *testing.T) {
	assert.IsType(t, &services.HTTPEmotionPredictor{}, services.NewPredictor("http://model.internal/predict"))
	assert.IsType(t, &services.LexiconPredictor{}, services.NewPredictor(""))
}
