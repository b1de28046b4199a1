package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"
	"unicode"
)

// Predictor scores free text with a single emotion label. The production
// implementation calls the external emotion-recognition model; the lexicon
// predictor stands in when no model endpoint is configured.
type Predictor interface {
	Predict(ctx context.Context, text string) (string, error)
}

// EmotionUnknown is stored when prediction fails; journal writes never fail
// because the model is unavailable.
const EmotionUnknown = "unknown"

// HTTPEmotionPredictor calls an external model endpoint:
// POST {"text": ...} -> {"emotion": ...}
type HTTPEmotionPredictor struct {
	URL    string
	Client *http.Client
}

func NewHTTPEmotionPredictor(url string) *HTTPEmotionPredictor {
	return &HTTPEmotionPredictor{
		URL:    url,
		Client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (p *HTTPEmotionPredictor) Predict(ctx context.Context, text string) (string, error) {
	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.URL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("emotion model returned status %d", resp.StatusCode)
	}

	var result struct {
		Emotion string `json:"emotion"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	if result.Emotion == "" {
		return "", fmt.Errorf("emotion model returned empty label")
	}
	return result.Emotion, nil
}

// Lexicons for the fallback predictor, matching the label set of the
// external model.
var emotionLexicons = []struct {
	label string
	words []string
}{
	{"sadness", []string{
		"sad", "unhappy", "depressed", "miserable", "terrible", "awful",
		"lonely", "hopeless", "crying", "cried", "grief", "heartbroken",
		"down", "empty", "worthless",
	}},
	{"joy", []string{
		"happy", "great", "wonderful", "amazing", "joyful", "excited",
		"glad", "delighted", "fantastic", "cheerful", "grateful", "proud",
		"hopeful", "better",
	}},
	{"love", []string{
		"love", "loved", "caring", "affection", "adore", "cherish",
		"warmth", "close", "together",
	}},
	{"anger", []string{
		"angry", "furious", "mad", "annoyed", "irritated", "frustrated",
		"rage", "hate", "resent", "unfair",
	}},
	{"fear", []string{
		"afraid", "scared", "anxious", "worried", "nervous", "panic",
		"terrified", "dread", "fear", "overwhelmed",
	}},
	{"surprise", []string{
		"surprised", "shocked", "unexpected", "sudden", "astonished",
		"unbelievable", "startled",
	}},
}

// LexiconPredictor is a keyword-based fallback used when EMOTION_API_URL is
// not configured (development, tests). It scores normalized text against the
// per-emotion lexicons and returns the label with the most hits.
type LexiconPredictor struct{}

func NewLexiconPredictor() *LexiconPredictor {
	return &LexiconPredictor{}
}

func (p *LexiconPredictor) Predict(ctx context.Context, text string) (string, error) {
	words := strings.Fields(normalizeText(text))
	wordSet := make(map[string]bool, len(words))
	for _, w := range words {
		wordSet[w] = true
	}

	bestLabel := "neutral"
	bestScore := 0
	for _, lexicon := range emotionLexicons {
		score := 0
		for _, w := range lexicon.words {
			if wordSet[w] {
				score++
			}
		}
		if score > bestScore {
			bestScore = score
			bestLabel = lexicon.label
		}
	}
	return bestLabel, nil
}

var spaceRegex = regexp.MustCompile(`\s+`)

// normalizeText lowercases the input and strips everything but letters so
// lexicon lookups see clean words.
func normalizeText(text string) string {
	cleaned := strings.ToLower(text)

	var builder strings.Builder
	for _, r := range cleaned {
		if unicode.IsLetter(r) {
			builder.WriteRune(r)
		} else {
			builder.WriteRune(' ')
		}
	}

	cleaned = spaceRegex.ReplaceAllString(builder.String(), " ")
	return strings.TrimSpace(cleaned)
}

// NewPredictor picks the model client when an endpoint is configured, else
// the lexicon fallback.
func NewPredictor(emotionAPIURL string) Predictor {
	if emotionAPIURL != "" {
		return NewHTTPEmotionPredictor(emotionAPIURL)
	}
	return NewLexiconPredictor()
}
