package protocol

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_SetLang(t *testing.T) {
	msg, err := Decode([]byte(`{"type":"set_lang","lang":"es-419","display_name":"Ana"}`))
	require.NoError(t, err)
	assert.Equal(t, SetLang{Lang: "es-419", DisplayName: "Ana"}, msg)
}

func TestDecode_Chat(t *testing.T) {
	msg, err := Decode([]byte(`{"type":"chat","text":"hi"}`))
	require.NoError(t, err)
	assert.Equal(t, Chat{Text: "hi"}, msg)
}

func TestDecode_ChatWithoutText(t *testing.T) {
	_, err := Decode([]byte(`{"type":"chat"}`))
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestDecode_PersonalChat(t *testing.T) {
	msg, err := Decode([]byte(`{"type":"personal_chat","text":"hi","target_id":"abc"}`))
	require.NoError(t, err)
	assert.Equal(t, PersonalChat{Text: "hi", TargetID: "abc"}, msg)
}

func TestDecode_PersonalChatMissingTarget(t *testing.T) {
	_, err := Decode([]byte(`{"type":"personal_chat","text":"hi"}`))
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestDecode_HeadsetAudio(t *testing.T) {
	b64 := base64.StdEncoding.EncodeToString([]byte{0x52, 0x49, 0x46, 0x46})
	msg, err := Decode([]byte(`{"type":"headset_audio","audio_base64":"` + b64 + `","sample_rate":16000,"language_hint":"es"}`))
	require.NoError(t, err)
	audio, ok := msg.(HeadsetAudio)
	require.True(t, ok)
	assert.Equal(t, []byte{0x52, 0x49, 0x46, 0x46}, audio.Audio)
	assert.Equal(t, 16000, audio.SampleRate)
	assert.Equal(t, "es", audio.LanguageHint)
}

func TestDecode_HeadsetAudioBadEncoding(t *testing.T) {
	_, err := Decode([]byte(`{"type":"headset_audio","audio_base64":"not base64!!!"}`))
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestDecode_UnknownTypeIsNotAnError(t *testing.T) {
	msg, err := Decode([]byte(`{"type":"dance"}`))
	require.NoError(t, err)
	assert.Equal(t, Unrecognized{Type: "dance"}, msg)
}

func TestDecode_MalformedEnvelope(t *testing.T) {
	_, err := Decode([]byte(`{not json`))
	assert.ErrorIs(t, err, ErrMalformed)
}
