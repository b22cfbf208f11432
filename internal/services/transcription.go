package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	speech "cloud.google.com/go/speech/apiv1"
	speechpb "cloud.google.com/go/speech/apiv1/speechpb"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/yungbote/notey-backend/internal/logger"
	"github.com/yungbote/notey-backend/internal/pkg/retry"
	"github.com/yungbote/notey-backend/internal/utils"
)

// TranscriptionService turns a chunk's audio into transcript + summary. This
// is the one external-call layer that must not degrade to empty: the result
// is returned directly to the user, so the pipeline retries as a unit and
// surfaces a terminal failure once the attempt budget is spent.
type TranscriptionService interface {
	TranscribeAndSummarize(ctx context.Context, audio []byte, mimeType string) (transcript string, summary string, err error)
	Close() error
}

type transcriptionService struct {
	log      *logger.Logger
	client   *speech.Client
	ai       AIClient
	language string
	policy   retry.Policy
}

func NewTranscriptionService(log *logger.Logger, ai AIClient) (TranscriptionService, error) {
	serviceLog := log.With("service", "TranscriptionService")

	creds := utils.GetEnv("GOOGLE_APPLICATION_CREDENTIALS_JSON", "", log)
	if creds == "" {
		creds = utils.GetEnv("GOOGLE_APPLICATION_CREDENTIALS", "", log)
	}

	ctx := context.Background()
	var client *speech.Client
	var err error
	if creds != "" {
		client, err = speech.NewClient(ctx, option.WithCredentialsFile(creds))
	} else {
		client, err = speech.NewClient(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("speech client: %w", err)
	}

	return &transcriptionService{
		log:      serviceLog,
		client:   client,
		ai:       ai,
		language: utils.GetEnv("SPEECH_LANGUAGE_CODE", "en-US", log),
		policy: retry.Policy{
			Attempts:       3,
			InitialBackoff: 2 * time.Second,
			MaxBackoff:     10 * time.Second,
			JitterFraction: 0.2,
		},
	}, nil
}

func (s *transcriptionService) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}

func (s *transcriptionService) TranscribeAndSummarize(ctx context.Context, audio []byte, mimeType string) (string, string, error) {
	if len(audio) == 0 {
		return "", "", nil
	}

	var transcript, summary string
	err := s.policy.Do(ctx, func(ctx context.Context) error {
		t, err := s.transcribeOnce(ctx, audio, mimeType)
		if err != nil {
			return err
		}
		sum, err := s.summarizeOnce(ctx, t)
		if err != nil {
			return err
		}
		transcript, summary = t, sum
		return nil
	}, isRetryableTranscriptionErr, nil)
	if err != nil {
		s.log.Error("transcribe+summarize pipeline failed", "error", err)
		return "", "", err
	}
	return transcript, summary, nil
}

func (s *transcriptionService) transcribeOnce(ctx context.Context, audio []byte, mimeType string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Minute)
	defer cancel()

	req := &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			LanguageCode:               s.language,
			Encoding:                   inferEncoding(mimeType),
			EnableAutomaticPunctuation: true,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audio},
		},
	}
	resp, err := s.client.Recognize(ctx, req)
	if err != nil {
		return "", fmt.Errorf("speech recognize: %w", err)
	}

	var sb strings.Builder
	for _, result := range resp.Results {
		if len(result.Alternatives) == 0 {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(strings.TrimSpace(result.Alternatives[0].Transcript))
	}
	return sb.String(), nil
}

func (s *transcriptionService) summarizeOnce(ctx context.Context, transcript string) (string, error) {
	if strings.TrimSpace(transcript) == "" {
		return "", nil
	}
	prompt := fmt.Sprintf(
		"Summarize the following voice note transcript in 1-2 concise sentences. "+
			"Keep concrete names and decisions; drop filler.\n\nTranscript:\n%s", transcript)
	return s.ai.GenerateText(ctx, prompt, GenerateOptions{MaxTokens: 200, Temperature: 0.3})
}

func inferEncoding(mimeType string) speechpb.RecognitionConfig_AudioEncoding {
	switch {
	case strings.Contains(mimeType, "wav"), strings.Contains(mimeType, "x-wav"):
		return speechpb.RecognitionConfig_LINEAR16
	case strings.Contains(mimeType, "flac"):
		return speechpb.RecognitionConfig_FLAC
	case strings.Contains(mimeType, "ogg"), strings.Contains(mimeType, "opus"):
		return speechpb.RecognitionConfig_OGG_OPUS
	default:
		return speechpb.RecognitionConfig_ENCODING_UNSPECIFIED
	}
}

func isRetryableTranscriptionErr(err error) bool {
	if err == nil {
		return false
	}
	if st, ok := status.FromError(err); ok {
		switch st.Code() {
		case codes.Unavailable, codes.ResourceExhausted, codes.DeadlineExceeded, codes.Aborted:
			return true
		}
	}
	return isRetryableAIErr(err)
}
