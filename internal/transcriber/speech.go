package transcriber

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	speech "cloud.google.com/go/speech/apiv1"
	speechpb "cloud.google.com/go/speech/apiv1/speechpb"
	"cloud.google.com/go/storage"

	"github.com/nguyentantai21042004/lecture-flow/internal/config"
	"github.com/nguyentantai21042004/lecture-flow/internal/gcp"
	"github.com/nguyentantai21042004/lecture-flow/internal/logger"
	"github.com/nguyentantai21042004/lecture-flow/internal/stageerr"
)

// inline audio above this size must go through Cloud Storage
const maxInlineAudio = 10 << 20

type speechTranscriber struct {
	cfg        config.TranscriptionConfig
	sampleRate int
	client     *speech.Client
	storage    *storage.Client
	logger     logger.Logger
	backoff    gcp.Backoff
}

func newSpeech(cfg config.TranscriptionConfig, sampleRate int, log logger.Logger) (Transcriber, error) {
	ctx := context.Background()
	opts := gcp.ClientOptionsFromEnv()

	c, err := speech.NewClient(ctx, opts...)
	if err != nil {
		return nil, stageerr.NewFatal(stage, fmt.Errorf("speech client: %w", err))
	}

	s := &speechTranscriber{
		cfg:        cfg,
		sampleRate: sampleRate,
		client:     c,
		logger:     log,
		backoff:    gcp.Backoff{MaxRetries: 4},
	}

	if cfg.GCSBucket != "" {
		sc, err := storage.NewClient(ctx, opts...)
		if err != nil {
			c.Close()
			return nil, stageerr.NewFatal(stage, fmt.Errorf("storage client: %w", err))
		}
		s.storage = sc
	}
	return s, nil
}

func (s *speechTranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	audio, err := s.recognitionAudio(ctx, audioPath)
	if err != nil {
		return "", err
	}

	req := buildRequest(s.cfg.LanguageCode, s.sampleRate, audio)
	s.logger.Info(ctx, "Transcribing with Cloud Speech (%s): %s", s.cfg.LanguageCode, audioPath)

	ctx, cancel := context.WithTimeout(ctx, 30*time.Minute)
	defer cancel()

	resp, err := gcp.Retry(ctx, s.backoff, func() (*speechpb.LongRunningRecognizeResponse, error) {
		op, err := s.client.LongRunningRecognize(ctx, req)
		if err != nil {
			return nil, err
		}
		return op.Wait(ctx)
	})
	if err != nil {
		return "", stageerr.NewFatal(stage, fmt.Errorf("speech longrunningrecognize: %w", err))
	}
	return joinResults(resp), nil
}

// recognitionAudio uploads to GCS when a bucket is configured, otherwise sends the bytes inline.
func (s *speechTranscriber) recognitionAudio(ctx context.Context, audioPath string) (*speechpb.RecognitionAudio, error) {
	if s.storage == nil {
		data, err := os.ReadFile(audioPath)
		if err != nil {
			return nil, fmt.Errorf("read audio: %w", err)
		}
		if len(data) > maxInlineAudio {
			s.logger.Warn(ctx, "Audio is %d MB, inline requests may be rejected; set transcription.gcs_bucket", len(data)>>20)
		}
		return &speechpb.RecognitionAudio{AudioSource: &speechpb.RecognitionAudio_Content{Content: data}}, nil
	}

	uri, err := s.upload(ctx, audioPath)
	if err != nil {
		return nil, stageerr.NewFatal(stage, err)
	}
	return &speechpb.RecognitionAudio{AudioSource: &speechpb.RecognitionAudio_Uri{Uri: uri}}, nil
}

func (s *speechTranscriber) upload(ctx context.Context, audioPath string) (string, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return "", fmt.Errorf("open audio: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash audio: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind audio: %w", err)
	}
	key := objectKey(hex.EncodeToString(h.Sum(nil)), audioPath)

	w := s.storage.Bucket(s.cfg.GCSBucket).Object(key).NewWriter(ctx)
	w.ContentType = "audio/wav"
	if _, err := io.Copy(w, f); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("upload audio: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize upload: %w", err)
	}

	uri := fmt.Sprintf("gs://%s/%s", s.cfg.GCSBucket, key)
	s.logger.Debug(ctx, "Uploaded audio to %s", uri)
	return uri, nil
}

func (s *speechTranscriber) Close() error {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	return s.client.Close()
}

// objectKey names uploads by content so re-runs overwrite the same object.
func objectKey(digest, audioPath string) string {
	return fmt.Sprintf("lecture-flow/audio/%s%s", digest[:16], filepath.Ext(audioPath))
}

func buildRequest(languageCode string, sampleRate int, audio *speechpb.RecognitionAudio) *speechpb.LongRunningRecognizeRequest {
	return &speechpb.LongRunningRecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			LanguageCode:               languageCode,
			Encoding:                   speechpb.RecognitionConfig_LINEAR16,
			SampleRateHertz:            int32(sampleRate),
			AudioChannelCount:          1,
			EnableAutomaticPunctuation: true,
		},
		Audio: audio,
	}
}

// joinResults joins the top alternative of every result with single spaces.
func joinResults(resp *speechpb.LongRunningRecognizeResponse) string {
	if resp == nil {
		return ""
	}
	segments := make([]string, 0, len(resp.Results))
	for _, r := range resp.Results {
		if r == nil || len(r.Alternatives) == 0 || r.Alternatives[0] == nil {
			continue
		}
		segments = append(segments, r.Alternatives[0].Transcript)
	}
	return joinSegments(segments)
}
