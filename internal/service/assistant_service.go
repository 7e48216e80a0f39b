package service

import (
	"context"
	"strings"

	"quickfirstaid/internal/client"

	"go.uber.org/zap"
)

// AssistantService answers first-aid questions by text or voice.
type AssistantService interface {
	Ask(ctx context.Context, question string) (string, error)
	VoiceTurn(ctx context.Context, audio []byte, filename string, lang VoiceLanguage) (*VoiceTurnResponse, error)
}

// VoiceLanguage selects the spoken language of a voice turn.
type VoiceLanguage string

const (
	LanguageEnglish VoiceLanguage = "en"
	LanguageUrdu    VoiceLanguage = "ur"
	LanguagePunjabi VoiceLanguage = "pb"
)

// ParseVoiceLanguage accepts en, ur and pb; empty means English.
func ParseVoiceLanguage(s string) (VoiceLanguage, error) {
	lang := VoiceLanguage(strings.ToLower(strings.TrimSpace(s)))
	if lang == "" {
		return LanguageEnglish, nil
	}
	if _, ok := voicePrompts[lang]; !ok {
		return "", invalid("lang", "must be one of en, ur, pb")
	}
	return lang, nil
}

// transcriptionHint is the language code sent to speech-to-text. The model has
// no Punjabi Shahmukhi code, so both Urdu-script languages use "ur".
func (l VoiceLanguage) transcriptionHint() string {
	if l == LanguageEnglish {
		return ""
	}
	return "ur"
}

type VoiceTurnResponse struct {
	Language   VoiceLanguage `json:"lang"`
	Transcript string        `json:"transcript"`
	Reply      string        `json:"reply"`
	// Audio is empty for Urdu and Punjabi, and when English synthesis failed;
	// the device speaks the reply text itself then.
	Audio []byte `json:"audio,omitempty"`
}

type assistantService struct {
	chat   Completer
	speech Speech
	logger *zap.Logger
}

func NewAssistantService(chat Completer, speech Speech, logger *zap.Logger) AssistantService {
	return &assistantService{chat: chat, speech: speech, logger: logger}
}

func (s *assistantService) Ask(ctx context.Context, question string) (string, error) {
	return s.ask(ctx, assistantSystemPrompt, question)
}

func (s *assistantService) ask(ctx context.Context, systemPrompt, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", invalid("text", "question is required")
	}
	reply, err := s.chat.Complete(ctx, client.CompletionRequest{
		Messages: []client.ChatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: question},
		},
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(reply), nil
}

// VoiceTurn transcribes the recording, asks the chat model in lang and, for
// English only, speaks the reply.
func (s *assistantService) VoiceTurn(ctx context.Context, audio []byte, filename string, lang VoiceLanguage) (*VoiceTurnResponse, error) {
	if len(audio) == 0 {
		return nil, invalid("audio", "recording is empty")
	}
	prompt, ok := voicePrompts[lang]
	if !ok {
		return nil, invalid("lang", "must be one of en, ur, pb")
	}
	transcript, err := s.speech.Transcribe(ctx, audio, filename, lang.transcriptionHint())
	if err != nil {
		return nil, err
	}
	if transcript == "" {
		return nil, ErrEmptyTranscript
	}

	reply, err := s.ask(ctx, prompt, transcript)
	if err != nil {
		return nil, err
	}

	resp := &VoiceTurnResponse{Language: lang, Transcript: transcript, Reply: reply}
	if lang != LanguageEnglish {
		return resp, nil
	}
	spoken, err := s.speech.Synthesize(ctx, reply)
	if err != nil {
		s.logger.Warn("Reply not synthesized", zap.Error(err))
		return resp, nil
	}
	resp.Audio = spoken
	return resp, nil
}
