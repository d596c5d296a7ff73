package sim

import "github.com/nvandessel/rumornet/internal/randx"

// propagate executes one exposure pass. The sender set (informed agents
// with positive belief) is fixed at the start of the pass, but belief and
// trust reads within the pass see updates applied earlier in the same pass;
// updates are immediate, not double-buffered.
func (r *Run) propagate() {
	senders := make([]*Agent, 0, len(r.agents))
	for _, a := range r.agents {
		if a.Informed && a.Belief > 0 {
			senders = append(senders, a)
		}
	}

	for _, sender := range senders {
		neighbors := r.graph.Neighbors(sender.ID)
		if len(neighbors) == 0 {
			continue
		}

		// One outgoing attempt per informed agent per tick. This is the
		// model's throughput limiter.
		recipient := r.agents[neighbors[r.rng.IntN(len(neighbors))]]

		// Transmission gate: higher conviction spreads faster.
		if r.rng.Float64() >= sender.Belief {
			continue
		}

		r.expose(sender, recipient)
	}
}

// expose delivers one transmission attempt from sender to recipient and
// applies the acceptance rule.
func (r *Run) expose(sender, recipient *Agent) {
	recipient.hear(sender.ID)

	trustInSender := r.trust.Get(recipient.ID, sender.ID)
	influence := trustInSender * sender.Belief

	// Higher judgment quality lowers the effective bar, making
	// better-judging agents more persuadable. Counterintuitive but
	// deliberate; see the acceptance tests before touching this.
	combinedThreshold := recipient.AcceptanceThreshold * (1 - recipient.JudgmentQuality)

	// Repeated exposure alone can force acceptance regardless of trust.
	if influence <= combinedThreshold && recipient.TimesHeard <= r.cfg.HearingThreshold {
		return
	}

	recipient.Informed = true
	recipient.Belief = randx.Clamp01(recipient.Belief + trustInSender*(sender.Belief-recipient.Belief))
	recipient.MessageLog = append(recipient.MessageLog, Message{
		SenderID:     sender.ID,
		SenderBelief: sender.Belief,
	})
}
