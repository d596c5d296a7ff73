// Package sim implements the rumor propagation model: per-tick belief
// spreading gated by trust and judgment, periodic trust learning from
// accumulated message logs, and a one-shot ground-truth verification event.
// All state for a run lives in an explicit Run value; there are no package
// globals, so independent runs can execute concurrently.
package sim

// Message records one accepted exchange: who sent the rumor and what they
// believed at send time. Messages accumulate between trust learning passes
// and are cleared after each pass.
type Message struct {
	SenderID     int     `json:"sender_id"`
	SenderBelief float64 `json:"sender_belief"`
}

// Agent is one simulated individual. Belief, AcceptanceThreshold,
// JudgmentQuality and all trust values stay inside their closed intervals
// at all times; every update clamps rather than rejects. Informed is
// monotone: once true it never reverts.
type Agent struct {
	ID int `json:"id"`

	// Belief is the agent's credence in the rumor, in [0,1]. Zero until
	// first acceptance.
	Belief float64 `json:"belief"`

	// Informed becomes true permanently once the rumor is accepted.
	Informed bool `json:"informed"`

	// TimesHeard counts exposure attempts that reached this agent, whether
	// or not they were accepted.
	TimesHeard int `json:"times_heard"`

	// SourcesSeen is the set of neighbors that have ever sent this agent
	// the rumor. Deduplication only; no equation reads it.
	SourcesSeen map[int]bool `json:"sources_seen"`

	// AcceptanceThreshold is the personal skepticism gate, fixed at
	// creation. Range [0.1, 0.9].
	AcceptanceThreshold float64 `json:"acceptance_threshold"`

	// JudgmentQuality is the ability to discount unreliable influence,
	// fixed at creation. Range [0, 1].
	JudgmentQuality float64 `json:"judgment_quality"`

	// MessageLog holds exchanges accepted since the last trust learning
	// pass, in arrival order.
	MessageLog []Message `json:"message_log"`
}

// hear records an exposure attempt from sender reaching this agent.
func (a *Agent) hear(senderID int) {
	a.TimesHeard++
	if a.SourcesSeen == nil {
		a.SourcesSeen = make(map[int]bool)
	}
	a.SourcesSeen[senderID] = true
}
