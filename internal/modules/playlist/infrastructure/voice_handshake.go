package infrastructure

import (
	"sync"

	"github.com/disgoorg/snowflake/v2"
)

// voicePair is a complete voice handshake ready to be forwarded to Lavalink.
type voicePair struct {
	channelID snowflake.ID
	sessionID string
	token     string
	endpoint  string
}

// voiceHandshake pairs a guild's VoiceStateUpdate with its VoiceServerUpdate.
// Discord sends them in either order and Lavalink rejects a partial voice state.
type voiceHandshake struct {
	mu sync.Mutex

	hasState  bool
	channelID snowflake.ID
	sessionID string

	hasServer bool
	token     string
	endpoint  string

	waiters []chan struct{}
}

// withState records the state half. Returns the pair once both halves are present.
func (h *voiceHandshake) withState(channelID snowflake.ID, sessionID string) (voicePair, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.hasState = true
	h.channelID = channelID
	h.sessionID = sessionID
	return h.complete()
}

// withServer records the server half. Returns the pair once both halves are present.
func (h *voiceHandshake) withServer(token, endpoint string) (voicePair, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.hasServer = true
	h.token = token
	h.endpoint = endpoint
	return h.complete()
}

// complete must be called with mu held.
func (h *voiceHandshake) complete() (voicePair, bool) {
	if !h.hasState || !h.hasServer {
		return voicePair{}, false
	}

	pair := voicePair{
		channelID: h.channelID,
		sessionID: h.sessionID,
		token:     h.token,
		endpoint:  h.endpoint,
	}
	h.clear()

	for _, w := range h.waiters {
		close(w)
	}
	h.waiters = nil

	return pair, true
}

// wait returns a channel closed by the next completed handshake.
func (h *voiceHandshake) wait() <-chan struct{} {
	h.mu.Lock()
	defer h.mu.Unlock()

	done := make(chan struct{})
	h.waiters = append(h.waiters, done)
	return done
}

// reset drops any half received so far. Waiters keep waiting.
func (h *voiceHandshake) reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clear()
}

func (h *voiceHandshake) clear() {
	h.hasState, h.hasServer = false, false
	h.channelID = 0
	h.sessionID, h.token, h.endpoint = "", "", ""
}

// voiceHandshakes holds one handshake per guild.
type voiceHandshakes struct {
	mu     sync.Mutex
	guilds map[snowflake.ID]*voiceHandshake
}

func newVoiceHandshakes() *voiceHandshakes {
	return &voiceHandshakes{guilds: make(map[snowflake.ID]*voiceHandshake)}
}

func (v *voiceHandshakes) get(guildID snowflake.ID) *voiceHandshake {
	v.mu.Lock()
	defer v.mu.Unlock()

	h, ok := v.guilds[guildID]
	if !ok {
		h = &voiceHandshake{}
		v.guilds[guildID] = h
	}
	return h
}
