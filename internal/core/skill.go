// Package core implements the radio skill: utterance resolution against the
// station directory and the playback bridge to the host audio service.
package core

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
)

const (
	playbackStatusStarted = "started"
	playbackStatusStopped = "stopped"
	playbackStatusError   = "error"

	volumeStatusSet    = "set"
	volumeStatusNoSink = "no_sink"
	volumeStatusError  = "error"
)

// ErrEmptyStreamURL is returned when playback is requested without a URL.
var ErrEmptyStreamURL = errors.New("refusing playback without a stream URL")

// Skill is the playback bridge satisfying the host's common-play contract.
type Skill struct {
	config   *Config
	logger   *zap.Logger
	resolver *Resolver
	audio    AudioService
	volume   VolumeControl
	clicks   ClickStore
	metrics  Metrics

	directory Directory
}

func NewSkill(
	config *Config,
	resolver *Resolver,
	directory Directory,
	audio AudioService,
	volume VolumeControl,
	clicks ClickStore,
	metrics Metrics,
	logger *zap.Logger,
) *Skill {
	return &Skill{
		config:    config,
		logger:    logger,
		resolver:  resolver,
		directory: directory,
		audio:     audio,
		volume:    volume,
		clicks:    clicks,
		metrics:   metrics,
	}
}

// MatchQuery answers the host's common-play query for an utterance. A genre
// request (contains both "a " and " station") goes through the genre
// resolver, which itself falls back to a name match; anything else is a
// station-name match. A nil match means this skill cannot play the phrase.
func (s *Skill) MatchQuery(ctx context.Context, utterance string) (*Match, error) {
	searchPhrase := strings.ToLower(utterance)

	var (
		match *Match
		err   error
	)
	if strings.Contains(searchPhrase, "a ") && strings.Contains(searchPhrase, " station") {
		match, err = s.resolver.ResolveGenre(ctx, searchPhrase)
	} else {
		match, err = s.resolver.ResolveStation(ctx, utterance)
	}
	if err != nil {
		return nil, err
	}

	if match == nil {
		s.logger.Info("No station matched", zap.String("phrase", utterance))
		return nil, nil
	}

	if s.metrics != nil {
		s.metrics.RecordMatch(match.Level.String())
	}

	return match, nil
}

// Start stops any current playback, starts the matched stream on the host
// audio service and then runs the best-effort volume sideband. The empty-URL
// invariant is enforced here: a match without a stream URL is rejected
// before any playback call.
func (s *Skill) Start(ctx context.Context, match *Match) error {
	if match == nil || match.Station.StreamURL == "" {
		s.recordPlayback(playbackStatusError)
		return ErrEmptyStreamURL
	}

	if s.audio.IsPlaying() {
		if err := s.audio.Stop(ctx); err != nil {
			s.logger.Warn("Failed to stop current playback", zap.Error(err))
		}
	}

	s.logger.Info("Starting playback",
		zap.String("station", match.Station.Name),
		zap.String("url", match.Station.StreamURL))

	if err := s.audio.Play(ctx, match.Station.StreamURL); err != nil {
		s.recordPlayback(playbackStatusError)
		return err
	}
	s.recordPlayback(playbackStatusStarted)

	s.registerClick(ctx, match.Station.UUID)
	s.adjustPlayerVolume(ctx)

	return nil
}

// Stop halts playback. Registered against the host stop event.
func (s *Skill) Stop(ctx context.Context) error {
	if !s.audio.IsPlaying() {
		return nil
	}
	if err := s.audio.Stop(ctx); err != nil {
		return err
	}
	s.recordPlayback(playbackStatusStopped)
	return nil
}

// HandleStationIntent plays the station named by the intent slot.
func (s *Skill) HandleStationIntent(ctx context.Context, slot string) error {
	return s.handleIntent(ctx, slot)
}

// HandleGenreIntent plays the station for the genre named by the intent
// slot. The slot value is matched by name, same as station intents.
func (s *Skill) HandleGenreIntent(ctx context.Context, slot string) error {
	return s.handleIntent(ctx, slot)
}

func (s *Skill) handleIntent(ctx context.Context, slot string) error {
	match, err := s.resolver.ResolveStation(ctx, slot)
	if err != nil {
		return err
	}
	if match == nil {
		s.logger.Info("Intent matched no station", zap.String("slot", slot))
		return nil
	}
	return s.Start(ctx, match)
}

// registerClick reports the station click to the directory once per station
// per session; the directory uses clicks for its popularity ranking.
func (s *Skill) registerClick(ctx context.Context, stationUUID string) {
	if !s.config.Skill.ClickTracking || stationUUID == "" || s.clicks == nil {
		return
	}
	if s.clicks.Has(stationUUID) {
		return
	}

	if err := s.directory.Click(ctx, stationUUID); err != nil {
		s.logger.Debug("Click registration failed", zap.Error(err))
		return
	}
	s.clicks.Add(stationUUID)
}

// adjustPlayerVolume locates the media player's sink input on the audio
// daemon and force-sets its volume. A missing sink input is a normal
// outcome; daemon errors are logged and never fail playback.
func (s *Skill) adjustPlayerVolume(ctx context.Context) {
	index, err := s.volume.FindSinkInput(ctx, s.config.Skill.PlayerAppName)
	if err != nil {
		s.logger.Warn("Failed to find player sink input", zap.Error(err))
		s.recordVolumeAdjust(volumeStatusError)
		return
	}
	if index < 0 {
		s.logger.Debug("Player sink input not found, skipping volume adjust",
			zap.String("app", s.config.Skill.PlayerAppName))
		s.recordVolumeAdjust(volumeStatusNoSink)
		return
	}

	s.logger.Info("Setting player volume",
		zap.Int("sinkInput", index),
		zap.Float64("volume", s.config.Skill.PlayerVolume))

	if err := s.volume.SetSinkInputVolume(ctx, index, s.config.Skill.PlayerVolume); err != nil {
		s.logger.Warn("Failed to set player volume", zap.Error(err))
		s.recordVolumeAdjust(volumeStatusError)
		return
	}
	s.recordVolumeAdjust(volumeStatusSet)
}

func (s *Skill) recordPlayback(status string) {
	if s.metrics != nil {
		s.metrics.RecordPlayback(status)
	}
}

func (s *Skill) recordVolumeAdjust(status string) {
	if s.metrics != nil {
		s.metrics.RecordVolumeAdjust(status)
	}
}
