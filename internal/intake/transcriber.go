package intake

import (
	"context"
	"fmt"
	"io"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"vibeledger/internal/core"
	"vibeledger/internal/log"
)

// Transcriber converts spoken entries into a transaction suggestion via a
// Whisper-compatible endpoint followed by the rules parser.
type Transcriber struct {
	client *openai.Client
	model  string
	rules  *RulesParser
	logger *log.Logger
}

// NewTranscriber builds a transcriber. baseURL may be empty to use the
// public OpenAI endpoint; model defaults to whisper-1.
func NewTranscriber(apiKey, baseURL, model string, logger *log.Logger) *Transcriber {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	if model == "" {
		model = openai.Whisper1
	}
	return &Transcriber{
		client: openai.NewClientWithConfig(config),
		model:  model,
		rules:  NewRulesParser(),
		logger: logger.WithComponent(log.ComponentIntake),
	}
}

// acceptedAudio lists the upload formats the transcription endpoint takes.
var acceptedAudio = map[string]bool{
	".webm": true, ".mp3": true, ".mp4": true, ".m4a": true,
	".wav": true, ".ogg": true, ".flac": true,
}

// FromAudio transcribes the recording and parses the text into a
// suggestion. filename is used only for its extension.
func (t *Transcriber) FromAudio(ctx context.Context, audio io.Reader, filename string) (core.Suggested, error) {
	dot := strings.LastIndex(filename, ".")
	if dot < 0 || !acceptedAudio[strings.ToLower(filename[dot:])] {
		return core.Suggested{}, fmt.Errorf("%w: %s", ErrUnsupportedMedia, filename)
	}

	resp, err := t.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    t.model,
		Reader:   audio,
		FilePath: filename,
	})
	if err != nil {
		t.logger.ErrorContext(ctx, "transcription request failed",
			log.FieldOperation, log.OpTranscribe, log.FieldError, err)
		return core.Suggested{}, fmt.Errorf("%w: %v", ErrTranscription, err)
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return core.Suggested{}, ErrTranscription
	}

	t.logger.InfoContext(ctx, "audio transcribed",
		log.FieldOperation, log.OpTranscribe, "chars", len(text))

	suggestion := t.rules.Parse(text)
	suggestion.Source = "voice"
	return suggestion, nil
}
