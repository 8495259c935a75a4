package bus

import (
	"context"

	"go.uber.org/zap"

	"radiodj/internal/core"
	"radiodj/pkg/phrase"
)

// SkillID identifies this skill in common-play responses.
const SkillID = "radiodj"

// PlaybackSkill is the skill surface bound to the bus: the common-play
// match/start pair, the intent handlers and the host stop hook.
type PlaybackSkill interface {
	MatchQuery(ctx context.Context, utterance string) (*core.Match, error)
	Start(ctx context.Context, match *core.Match) error
	Stop(ctx context.Context) error
	HandleStationIntent(ctx context.Context, slot string) error
	HandleGenreIntent(ctx context.Context, slot string) error
}

// RegisterSkill wires a playback skill onto the bus: common-play queries,
// start requests, the two radio intents and the host stop event.
func RegisterSkill(client *Client, skill PlaybackSkill, logger *zap.Logger) {
	client.On(MsgPlayQuery, func(ctx context.Context, msg *Message) {
		handlePlayQuery(ctx, client, skill, msg, logger)
	})

	client.On(MsgPlayStart, func(ctx context.Context, msg *Message) {
		handlePlayStart(ctx, skill, msg, logger)
	})

	client.On(MsgStationIntent, func(ctx context.Context, msg *Message) {
		if err := skill.HandleStationIntent(ctx, phrase.Normalize(msg.DataString("station"))); err != nil {
			logger.Error("Station intent failed", zap.Error(err))
		}
	})

	client.On(MsgGenreIntent, func(ctx context.Context, msg *Message) {
		if err := skill.HandleGenreIntent(ctx, phrase.Normalize(msg.DataString("genre"))); err != nil {
			logger.Error("Genre intent failed", zap.Error(err))
		}
	})

	client.On(MsgStop, func(ctx context.Context, _ *Message) {
		if err := skill.Stop(ctx); err != nil {
			logger.Warn("Stop event failed", zap.Error(err))
		}
	})
}

// handlePlayQuery answers a common-play query. Transcribed speech carries
// stray whitespace and diacritics the directory does not match on, so the
// utterance is normalized at the boundary. No response is emitted when
// nothing matched: absence is the no-match signal.
func handlePlayQuery(ctx context.Context, emitter Emitter, skill PlaybackSkill, msg *Message, logger *zap.Logger) {
	utterance := phrase.Normalize(msg.DataString("phrase"))
	if utterance == "" {
		return
	}

	match, err := skill.MatchQuery(ctx, utterance)
	if err != nil {
		logger.Error("Common-play match failed", zap.String("phrase", utterance), zap.Error(err))
		return
	}
	if match == nil {
		return
	}

	response := NewMessage(MsgPlayQueryResponse, map[string]any{
		"phrase":        match.Phrase,
		"skill_id":      SkillID,
		"conf":          match.Level.String(),
		"callback_data": match.Data(),
	})
	if err := emitter.Emit(response); err != nil {
		logger.Error("Failed to emit query response", zap.Error(err))
	}
}

// handlePlayStart reconstructs the match from the host's callback data and
// starts playback.
func handlePlayStart(ctx context.Context, skill PlaybackSkill, msg *Message, logger *zap.Logger) {
	data := msg.DataMap("callback_data")
	if data == nil {
		logger.Warn("Play start without callback data")
		return
	}

	match := &core.Match{
		Phrase: msg.DataString("phrase"),
		Level:  core.MatchLevelExact,
		Station: core.Station{
			StreamURL: stringField(data, "url"),
			Name:      stringField(data, "name"),
			UUID:      stringField(data, "uuid"),
		},
	}

	if err := skill.Start(ctx, match); err != nil {
		logger.Error("Playback start failed", zap.Error(err))
	}
}

func stringField(data map[string]any, key string) string {
	value, ok := data[key].(string)
	if !ok {
		return ""
	}
	return value
}
