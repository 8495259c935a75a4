package core

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"radiodj/pkg/phrase"
)

const (
	searchKindName = "name"
	searchKindTag  = "tag"

	searchStatusOK    = "ok"
	searchStatusEmpty = "empty"
	searchStatusError = "error"
)

// Resolver turns utterances into playable stations via the directory.
type Resolver struct {
	directory Directory
	logger    *zap.Logger
	metrics   Metrics
}

func NewResolver(directory Directory, logger *zap.Logger, metrics Metrics) *Resolver {
	return &Resolver{
		directory: directory,
		logger:    logger,
		metrics:   metrics,
	}
}

// ResolveStation searches the directory for a station by name. The first
// result is accepted unconditionally and reported at exact confidence. On
// zero results two mutually exclusive textual fallbacks apply: digit runs
// flanked by spaces are spelled out as words, otherwise spoken numerals are
// turned into digits, and the search is retried once with the transformed
// phrase. The retried result is returned to the caller. A nil match with a
// nil error means the utterance resolved to nothing.
func (r *Resolver) ResolveStation(ctx context.Context, utterance string) (*Match, error) {
	return r.resolveStation(ctx, utterance, false)
}

func (r *Resolver) resolveStation(ctx context.Context, utterance string, retried bool) (*Match, error) {
	r.logger.Info("Searching for station by name", zap.String("phrase", utterance))

	stations, err := r.directory.SearchByName(ctx, utterance)
	if err != nil {
		r.recordSearch(searchKindName, searchStatusError)
		return nil, fmt.Errorf("station search failed: %w", err)
	}

	if len(stations) > 0 {
		r.recordSearch(searchKindName, searchStatusOK)
		r.logger.Info("Found station",
			zap.String("name", stations[0].Name),
			zap.String("url", stations[0].StreamURL))
		return &Match{Phrase: utterance, Level: MatchLevelExact, Station: stations[0]}, nil
	}

	r.recordSearch(searchKindName, searchStatusEmpty)

	// One transformation round at most: spelling digits as words and words
	// as digits would otherwise ping-pong forever on an unknown station.
	if retried {
		return nil, nil
	}

	switch {
	case phrase.HasSpacedDigitRun(utterance):
		transformed := phrase.DigitsToWords(utterance)
		r.logger.Debug("No results, retrying with digits spelled out",
			zap.String("phrase", transformed))
		return r.resolveStation(ctx, transformed, true)
	case phrase.ContainsNumberWord(utterance):
		transformed := phrase.WordsToDigits(utterance)
		r.logger.Debug("No results, retrying with numerals as digits",
			zap.String("phrase", transformed))
		return r.resolveStation(ctx, transformed, true)
	}

	return nil, nil
}

// ResolveGenre strips the filler words from the utterance and searches by
// tag, vote-ranked, accepting only the top result. An empty tag search falls
// back to a station-name search on the original, unstripped phrase, and that
// result is propagated.
func (r *Resolver) ResolveGenre(ctx context.Context, utterance string) (*Match, error) {
	stripped := phrase.StripGenreFiller(utterance)

	r.logger.Info("Searching for station by genre", zap.String("tag", stripped))

	stations, err := r.directory.SearchByTag(ctx, stripped)
	if err != nil {
		r.recordSearch(searchKindTag, searchStatusError)
		return nil, fmt.Errorf("genre search failed: %w", err)
	}

	if len(stations) > 0 {
		r.recordSearch(searchKindTag, searchStatusOK)
		r.logger.Info("Found station",
			zap.String("name", stations[0].Name),
			zap.String("url", stations[0].StreamURL))
		return &Match{Phrase: utterance, Level: MatchLevelExact, Station: stations[0]}, nil
	}

	r.recordSearch(searchKindTag, searchStatusEmpty)
	return r.ResolveStation(ctx, utterance)
}

func (r *Resolver) recordSearch(kind, status string) {
	if r.metrics != nil {
		r.metrics.RecordSearch(kind, status)
	}
}
