package testutil

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/require"
)

// SampleTranscript is the canned text used by pipeline tests.
const SampleTranscript = "And so my fellow Americans, ask not what your country can do for you."

// SampleUploads maps every accepted extension to an upload file name.
var SampleUploads = map[string]string{
	"mp3":  "interview.mp3",
	"wav":  "jfk.wav",
	"m4a":  "voice-memo.m4a",
	"flac": "lecture.FLAC",
	"ogg":  "podcast.ogg",
	"aac":  "call.aac",
}

// WriteWAV writes a 16-bit PCM sine tone to path.
func WriteWAV(t testing.TB, path string, sampleRate, channels int, seconds float64) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	frames := int(float64(sampleRate) * seconds)
	data := make([]int, 0, frames*channels)
	for i := 0; i < frames; i++ {
		v := int(8000 * math.Sin(2*math.Pi*440*float64(i)/float64(sampleRate)))
		for c := 0; c < channels; c++ {
			data = append(data, v)
		}
	}

	enc := wav.NewEncoder(f, sampleRate, 16, channels, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	require.NoError(t, enc.Write(buf))
	require.NoError(t, enc.Close())
}

// WAVBytes returns the bytes of a short 16 kHz mono WAV.
func WAVBytes(t testing.TB) []byte {
	t.Helper()

	path := filepath.Join(t.TempDir(), "fixture.wav")
	WriteWAV(t, path, 16000, 1, 0.25)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, []byte("RIFF")))
	return data
}
