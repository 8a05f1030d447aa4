// Package tts wraps the speech synthesis and transcription APIs behind
// narrow request/response contracts.
package tts

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"novelcast/internal/config"

	"github.com/avast/retry-go/v4"
	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/rs/zerolog/log"
)

const (
	defaultModel = string(openai.SpeechModelTTS1)
	defaultVoice = "fable" // narration-friendly default

	transcribeModel    = openai.AudioModelWhisper1
	transcribeLanguage = "ja"

	maxAttempts = 3
	retryDelay  = 2 * time.Second
)

// Client issues speech synthesis and transcription requests.
type Client struct {
	client openai.Client
	model  string
	voice  string
}

func NewClient(cfg *config.TTSConfig) *Client {
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	voice := cfg.Voice
	if voice == "" {
		voice = defaultVoice
	}
	return &Client{
		client: openai.NewClient(option.WithAPIKey(cfg.Key)),
		model:  model,
		voice:  voice,
	}
}

// Synthesize converts one text segment into mp3 audio. Failure aborts
// that chunk; the caller decides what to do with its siblings.
func (c *Client) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	if voice == "" {
		voice = c.voice
	}

	var audio []byte
	err := retry.Do(
		func() error {
			resp, err := c.client.Audio.Speech.New(ctx, openai.AudioSpeechNewParams{
				Input:          text,
				Model:          openai.SpeechModel(c.model),
				Voice:          openai.AudioSpeechNewParamsVoice(voice),
				ResponseFormat: openai.AudioSpeechNewParamsResponseFormatMP3,
			})
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			audio, err = io.ReadAll(resp.Body)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(maxAttempts),
		retry.Delay(retryDelay),
		retry.OnRetry(func(n uint, err error) {
			log.Warn().Err(err).Uint("attempt", n+1).Msg("speech synthesis retry")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("speech synthesis failed: %w", err)
	}
	return audio, nil
}

// Transcribe turns an audio segment back into plain text. This is
// best-effort: callers treat an error as an empty transcript.
func (c *Client) Transcribe(ctx context.Context, audio []byte) (string, error) {
	var text string
	err := retry.Do(
		func() error {
			transcription, err := c.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
				File:     openai.File(bytes.NewReader(audio), "chunk.mp3", "audio/mpeg"),
				Model:    transcribeModel,
				Language: openai.String(transcribeLanguage),
			})
			if err != nil {
				return err
			}
			text = transcription.Text
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(maxAttempts),
		retry.Delay(retryDelay),
		retry.OnRetry(func(n uint, err error) {
			log.Warn().Err(err).Uint("attempt", n+1).Msg("transcription retry")
		}),
	)
	if err != nil {
		return "", fmt.Errorf("transcription failed: %w", err)
	}
	return text, nil
}
