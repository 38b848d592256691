// Package voice drives microphone capture and playback through external
// audio tooling. Captures land as temporary WAV files that are uploaded to
// the transcription endpoint and removed afterwards.
package voice
