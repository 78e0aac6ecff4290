package extract

import (
	"context"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Speech transcribes audio and video files through a Whisper-shaped
// transcription API with a fixed target language hint. Construct it only
// when an API key is available; the ingestion pipeline treats a nil Speech
// extractor as "media files are skipped".
type Speech struct {
	client   openai.Client
	language string
}

type SpeechOption func(*Speech)

// WithLanguage overrides the transcription language hint
func WithLanguage(language string) SpeechOption {
	return func(x *Speech) {
		x.language = language
	}
}

func NewSpeech(apiKey string, opts ...SpeechOption) *Speech {
	x := &Speech{
		client:   openai.NewClient(option.WithAPIKey(apiKey)),
		language: "ru",
	}

	for _, opt := range opts {
		opt(x)
	}

	return x
}

func (x *Speech) Extract(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", goerr.Wrap(err, "failed to open media file", goerr.V("path", path))
	}
	defer f.Close()

	resp, err := x.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		File:     f,
		Model:    openai.AudioModelWhisper1,
		Language: openai.String(x.language),
	})
	if err != nil {
		return "", goerr.Wrap(err, "failed to transcribe media", goerr.V("path", path))
	}

	return resp.Text, nil
}
