package service

import (
	"context"
	"testing"

	"quickfirstaid/internal/client"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestAssistantService_Ask(t *testing.T) {
	chat := &fakeCompleter{replies: []string{" Run cool water over it for 20 minutes. "}}
	svc := NewAssistantService(chat, &fakeSpeech{}, zap.NewNop())

	reply, err := svc.Ask(context.Background(), "how do I treat a burn?")
	require.NoError(t, err)
	assert.Equal(t, "Run cool water over it for 20 minutes.", reply)

	msgs := chat.reqs[0].Messages
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].Role)
	assert.Equal(t, assistantSystemPrompt, msgs[0].Content)

	_, err = svc.Ask(context.Background(), " ")
	assert.True(t, IsValidationError(err))
}

func TestAssistantService_VoiceTurn(t *testing.T) {
	tests := []struct {
		name      string
		lang      VoiceLanguage
		prompt    string
		hint      string
		withAudio bool
	}{
		{"english", LanguageEnglish, "You are a concise first aid doctor. 1 short sentence.", "", true},
		{"urdu", LanguageUrdu, voicePrompts[LanguageUrdu], "ur", false},
		{"punjabi", LanguagePunjabi, voicePrompts[LanguagePunjabi], "ur", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chat := &fakeCompleter{replies: []string{"Apply pressure."}}
			speech := &fakeSpeech{transcript: "my finger is bleeding", audio: []byte("RIFF")}
			svc := NewAssistantService(chat, speech, zap.NewNop())

			resp, err := svc.VoiceTurn(context.Background(), []byte("m4a"), "audio.m4a", tt.lang)
			require.NoError(t, err)
			assert.Equal(t, tt.lang, resp.Language)
			assert.Equal(t, "my finger is bleeding", resp.Transcript)
			assert.Equal(t, "Apply pressure.", resp.Reply)
			assert.Equal(t, []string{tt.hint}, speech.languages)

			msgs := chat.reqs[0].Messages
			assert.Equal(t, tt.prompt, msgs[0].Content)
			assert.Equal(t, "my finger is bleeding", msgs[1].Content)

			if tt.withAudio {
				assert.Equal(t, []byte("RIFF"), resp.Audio)
				assert.Equal(t, []string{"Apply pressure."}, speech.synthesized)
			} else {
				assert.Nil(t, resp.Audio)
				assert.Empty(t, speech.synthesized)
			}
		})
	}
}

func TestAssistantService_VoicePromptsDiffer(t *testing.T) {
	assert.NotEqual(t, voicePrompts[LanguageUrdu], voicePrompts[LanguagePunjabi])
	assert.NotEqual(t, voicePrompts[LanguageEnglish], voicePrompts[LanguageUrdu])
}

func TestParseVoiceLanguage(t *testing.T) {
	for in, want := range map[string]VoiceLanguage{"": LanguageEnglish, "en": LanguageEnglish, " UR ": LanguageUrdu, "pb": LanguagePunjabi} {
		got, err := ParseVoiceLanguage(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseVoiceLanguage("fr")
	assert.True(t, IsValidationError(err))
}

func TestAssistantService_VoiceTurnUnknownLanguage(t *testing.T) {
	speech := &fakeSpeech{transcript: "hello"}
	svc := NewAssistantService(&fakeCompleter{}, speech, zap.NewNop())

	_, err := svc.VoiceTurn(context.Background(), []byte("m4a"), "", VoiceLanguage("fr"))
	assert.True(t, IsValidationError(err))
	assert.Empty(t, speech.languages)
}

func TestAssistantService_VoiceTurnDegradesWithoutAudio(t *testing.T) {
	speech := &fakeSpeech{transcript: "hello", ttsErr: &client.Error{Service: "speech", Op: "synthesize", StatusCode: 500}}
	svc := NewAssistantService(&fakeCompleter{replies: []string{"Hi."}}, speech, zap.NewNop())

	resp, err := svc.VoiceTurn(context.Background(), []byte("m4a"), "", LanguageEnglish)
	require.NoError(t, err)
	assert.Equal(t, "Hi.", resp.Reply)
	assert.Nil(t, resp.Audio)
}

func TestAssistantService_VoiceTurnEmptyTranscript(t *testing.T) {
	svc := NewAssistantService(&fakeCompleter{}, &fakeSpeech{}, zap.NewNop())

	_, err := svc.VoiceTurn(context.Background(), []byte("m4a"), "", LanguageEnglish)
	assert.ErrorIs(t, err, ErrEmptyTranscript)

	_, err = svc.VoiceTurn(context.Background(), nil, "", LanguageEnglish)
	assert.True(t, IsValidationError(err))
}
