// Package bus implements the websocket JSON message bus connecting the
// skill to the host assistant runtime.
package bus

// Host message types the skill consumes or emits.
const (
	// MsgPlayQuery asks all common-play skills whether they can satisfy a
	// phrase.
	MsgPlayQuery = "play:query"
	// MsgPlayQueryResponse carries a skill's proposed answer to a query.
	MsgPlayQueryResponse = "play:query.response"
	// MsgPlayStart tells the winning skill to begin playback.
	MsgPlayStart = "play:start"
	// MsgStop is the host-wide stop event.
	MsgStop = "mycroft.stop"
	// MsgAudioPlay starts the host audio service on a track list.
	MsgAudioPlay = "mycroft.audio.service.play"
	// MsgAudioStop halts the host audio service.
	MsgAudioStop = "mycroft.audio.service.stop"
	// MsgStationIntent carries a resolved station-name slot.
	MsgStationIntent = "radio.station.intent"
	// MsgGenreIntent carries a resolved genre slot.
	MsgGenreIntent = "radio.genre.intent"
)

// Message is the bus envelope: a type tag plus free-form data and context.
type Message struct {
	Type    string         `json:"type"`
	Data    map[string]any `json:"data,omitempty"`
	Context map[string]any `json:"context,omitempty"`
}

// NewMessage creates a message of the given type with the given data.
func NewMessage(msgType string, data map[string]any) *Message {
	return &Message{
		Type: msgType,
		Data: data,
	}
}

// DataString returns a string field from the message data, or "" when the
// field is missing or not a string.
func (m *Message) DataString(key string) string {
	if m.Data == nil {
		return ""
	}
	value, ok := m.Data[key].(string)
	if !ok {
		return ""
	}
	return value
}

// DataMap returns a nested object field from the message data, or nil.
func (m *Message) DataMap(key string) map[string]any {
	if m.Data == nil {
		return nil
	}
	value, ok := m.Data[key].(map[string]any)
	if !ok {
		return nil
	}
	return value
}
