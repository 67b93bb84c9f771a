package audio

import (
	"os"

	"github.com/go-audio/wav"
)

const whisperSampleRate = 16000

// Is16kHzMonoWav reports whether the file is a 16 kHz, mono, 16-bit PCM WAV,
// the only input whisper.cpp reads without conversion. Files that are not WAV
// at all report false without an error.
func Is16kHzMonoWav(filePath string) (bool, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return false, err
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	decoder.ReadInfo()
	if decoder.Err() != nil {
		return false, nil
	}

	return decoder.SampleRate == whisperSampleRate &&
		decoder.NumChans == 1 &&
		decoder.BitDepth == 16, nil
}

// ConvertArgs returns the ffmpeg arguments that transcode input into a
// 16 kHz mono PCM WAV at output, overwriting output if it exists.
func ConvertArgs(inputPath, outputPath string) []string {
	return []string{
		"-nostdin",
		"-y",
		"-i", inputPath,
		"-vn",
		"-acodec", "pcm_s16le",
		"-ar", "16000",
		"-ac", "1",
		outputPath,
	}
}
