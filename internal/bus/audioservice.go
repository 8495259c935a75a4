package bus

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Emitter sends messages onto the host bus.
type Emitter interface {
	Emit(msg *Message) error
}

// AudioService drives the host-owned audio playback surface over the bus.
// Playback state is tracked locally: the host owns the player, this side
// only mirrors what it asked for.
type AudioService struct {
	emitter Emitter
	logger  *zap.Logger

	mu      sync.Mutex
	playing bool
}

func NewAudioService(emitter Emitter, logger *zap.Logger) *AudioService {
	return &AudioService{
		emitter: emitter,
		logger:  logger,
	}
}

// IsPlaying reports whether playback was started and not yet stopped.
func (a *AudioService) IsPlaying() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.playing
}

// Play asks the host audio service to play the stream URL.
func (a *AudioService) Play(_ context.Context, url string) error {
	msg := NewMessage(MsgAudioPlay, map[string]any{
		"tracks": []string{url},
	})
	if err := a.emitter.Emit(msg); err != nil {
		return err
	}

	a.mu.Lock()
	a.playing = true
	a.mu.Unlock()

	a.logger.Info("Requested audio service playback", zap.String("url", url))
	return nil
}

// Stop asks the host audio service to halt playback.
func (a *AudioService) Stop(_ context.Context) error {
	if err := a.emitter.Emit(NewMessage(MsgAudioStop, nil)); err != nil {
		return err
	}

	a.mu.Lock()
	a.playing = false
	a.mu.Unlock()

	a.logger.Info("Requested audio service stop")
	return nil
}
