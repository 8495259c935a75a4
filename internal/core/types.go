package core

import (
	"context"
)

// MatchLevel is the confidence tier reported to the host's common-play
// matching contract. Competing skills are ranked by this value.
type MatchLevel int

const (
	// MatchLevelGeneric indicates a loose, catch-all match
	MatchLevelGeneric MatchLevel = iota
	// MatchLevelCategory indicates a match on genre or category
	MatchLevelCategory
	// MatchLevelTitle indicates a match on the station title
	MatchLevelTitle
	// MatchLevelExact indicates an exact match; this skill always reports
	// the top tier as a static policy
	MatchLevelExact
)

func (l MatchLevel) String() string {
	switch l {
	case MatchLevelExact:
		return "exact"
	case MatchLevelTitle:
		return "title"
	case MatchLevelCategory:
		return "category"
	default:
		return "generic"
	}
}

// Station is a single record from the station directory.
type Station struct {
	UUID      string
	Name      string
	StreamURL string
	Homepage  string
	Tags      string
	Country   string
	Codec     string
	Bitrate   int
	Votes     int
}

// Match is the resolved answer to a common-play query: the original phrase,
// the reported confidence and the station carrying the stream URL.
type Match struct {
	Phrase  string
	Level   MatchLevel
	Station Station
}

// Data returns the callback payload handed back to the host with the match.
func (m *Match) Data() map[string]any {
	return map[string]any{
		"url":  m.Station.StreamURL,
		"name": m.Station.Name,
		"uuid": m.Station.UUID,
	}
}

// Directory is the station directory service boundary.
type Directory interface {
	SearchByName(ctx context.Context, name string) ([]Station, error)
	SearchByTag(ctx context.Context, tag string) ([]Station, error)
	Click(ctx context.Context, stationUUID string) error
}

// AudioService is the host-owned playback surface.
type AudioService interface {
	IsPlaying() bool
	Play(ctx context.Context, url string) error
	Stop(ctx context.Context) error
}

// VolumeControl is the audio-mixing daemon sideband. A sink index of -1
// means the target application has no sink input and is not an error.
type VolumeControl interface {
	FindSinkInput(ctx context.Context, appName string) (int, error)
	SetSinkInputVolume(ctx context.Context, index int, fraction float64) error
}

// ClickStore remembers which station UUIDs have already been click-reported
// to the directory this session.
type ClickStore interface {
	Has(stationUUID string) bool
	Add(stationUUID string)
	Size() int
	Clear()
}

// Metrics receives skill-level counters. Implemented by the HTTP server.
type Metrics interface {
	RecordSearch(kind, status string)
	RecordMatch(level string)
	RecordPlayback(status string)
	RecordVolumeAdjust(status string)
}
