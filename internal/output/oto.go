// Package output plays decoded audio through the system sound device
package output

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/linuxmatters/tapedeck/internal/audio"
)

// pollInterval is how often Play checks for the end of playback
const pollInterval = 50 * time.Millisecond

// ErrFormatMismatch is returned when a decoder does not match the device format.
// oto allows one context per process, so the format is fixed at NewOto.
var ErrFormatMismatch = errors.New("decoder format does not match output")

// Oto plays 16-bit PCM from decoders using the oto library
type Oto struct {
	otoCtx     *oto.Context
	sampleRate int
	channels   int
	volume     int
}

// NewOto opens the sound device for the given format and waits until it is ready
func NewOto(sampleRate, channels int) (*Oto, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channels,
		Format:       oto.FormatSignedInt16LE,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("failed to create oto context: %w", err)
	}
	<-readyChan

	return &Oto{
		otoCtx:     ctx,
		sampleRate: sampleRate,
		channels:   channels,
		volume:     100,
	}, nil
}

// SetVolume sets the playback volume (0-100)
func (o *Oto) SetVolume(volume int) {
	o.volume = max(0, min(volume, 100))
}

// Volume returns the playback volume
func (o *Oto) Volume() int {
	return o.volume
}

// Play streams an opened decoder from its current position until the stream
// ends or ctx is cancelled. It blocks for the duration of playback.
func (o *Oto) Play(ctx context.Context, dec audio.Decoder) error {
	if !dec.IsOpened() {
		return audio.ErrNotOpened
	}
	if dec.SampleRate() != o.sampleRate || dec.ChannelCount() != o.channels {
		return fmt.Errorf("%w: %d Hz %d ch, output is %d Hz %d ch",
			ErrFormatMismatch, dec.SampleRate(), dec.ChannelCount(), o.sampleRate, o.channels)
	}

	player := o.otoCtx.NewPlayer(audio.NewPCMReader(dec))
	defer player.Close()

	player.SetVolume(float64(o.volume) / 100.0)
	player.Play()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for player.IsPlaying() {
		select {
		case <-ctx.Done():
			player.Pause()
			return ctx.Err()
		case <-ticker.C:
		}
	}

	if err := player.Err(); err != nil {
		return fmt.Errorf("playback failed: %w", err)
	}
	return nil
}

// Close suspends the sound device
func (o *Oto) Close() error {
	if o.otoCtx == nil {
		return nil
	}
	err := o.otoCtx.Suspend()
	o.otoCtx = nil
	return err
}
