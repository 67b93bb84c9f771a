package audio_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"whisper-web/internal/app/audio"
	"whisper-web/internal/app/testutil"
)

func TestFormatFromFilename(t *testing.T) {
	tests := []struct {
		name      string
		filename  string
		want      audio.Format
		supported bool
	}{
		{"mp3", "/uploads/talk.mp3", audio.FormatMP3, true},
		{"upper case", "LECTURE.FLAC", audio.FormatFLAC, true},
		{"wav", "jfk.wav", audio.FormatWAV, true},
		{"m4a", "memo.m4a", audio.FormatM4A, true},
		{"ogg", "podcast.ogg", audio.FormatOGG, true},
		{"aac", "call.aac", audio.FormatAAC, true},
		{"double extension", "archive.tar.mp3", audio.FormatMP3, true},
		{"video", "clip.mp4", audio.Format("mp4"), false},
		{"amr is not accepted", "note.amr", audio.Format("amr"), false},
		{"no extension", "audio", audio.Format(""), false},
		{"trailing dot", "audio.", audio.Format(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := audio.FormatFromFilename(tt.filename)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.supported, got.IsSupported())
		})
	}
}

func TestSupportedExtensions(t *testing.T) {
	assert.Equal(t,
		[]string{".mp3", ".wav", ".m4a", ".flac", ".ogg", ".aac"},
		audio.SupportedExtensions(),
	)
}

func TestIs16kHzMonoWav(t *testing.T) {
	dir := t.TempDir()

	mono16k := filepath.Join(dir, "mono16k.wav")
	testutil.WriteWAV(t, mono16k, 16000, 1, 0.1)

	stereo44k := filepath.Join(dir, "stereo44k.wav")
	testutil.WriteWAV(t, stereo44k, 44100, 2, 0.1)

	stereo16k := filepath.Join(dir, "stereo16k.wav")
	testutil.WriteWAV(t, stereo16k, 16000, 2, 0.1)

	notWav := filepath.Join(dir, "song.mp3")
	require.NoError(t, os.WriteFile(notWav, []byte("ID3\x03\x00\x00\x00 not really audio"), 0o600))

	tests := []struct {
		name    string
		path    string
		want    bool
		wantErr bool
	}{
		{"16k mono", mono16k, true, false},
		{"44.1k stereo", stereo44k, false, false},
		{"16k stereo", stereo16k, false, false},
		{"not a wav", notWav, false, false},
		{"missing", filepath.Join(dir, "missing.wav"), false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := audio.Is16kHzMonoWav(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConvertArgs(t *testing.T) {
	args := audio.ConvertArgs("/tmp/in.mp3", "/tmp/out.wav")

	assert.Equal(t, "/tmp/out.wav", args[len(args)-1])
	assert.Contains(t, args, "/tmp/in.mp3")
	assert.Subset(t, args, []string{"-ar", "16000", "-ac", "1", "pcm_s16le"})
}
