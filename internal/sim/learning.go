package sim

import "github.com/nvandessel/rumornet/internal/randx"

// learnTrust replays every agent's accumulated message log against a
// reinforcement signal and applies one exponential-moving-average step per
// logged message. Multiple messages from the same sender nudge trust
// sequentially. Logs are cleared after the pass.
func (r *Run) learnTrust() {
	updates := 0
	for _, a := range r.agents {
		for _, msg := range a.MessageLog {
			reinforcement := r.reinforcement(a, msg)
			current := r.trust.Get(a.ID, msg.SenderID)
			r.trust.Set(a.ID, msg.SenderID, current+r.cfg.LearningRate*(reinforcement-current))
			updates++
		}
		a.MessageLog = a.MessageLog[:0]
	}

	r.logger.Debug("trust learning pass",
		"run_id", r.id,
		"tick", r.tick,
		"updates", updates,
		"verified", r.verified)
}

// reinforcement computes the target value trust is nudged toward for one
// logged exchange.
//
// Once the rumor is verified, agreement with reality is rewarded directly:
// the sender's transmitted belief if the rumor is true, its complement if
// false. Before verification the agent falls back to a self-consistency
// estimate blending its own belief with the default-trust prior by judgment
// quality; senders on the same side of the prior earn a fixed agreement
// reward, all others earn nothing.
func (r *Run) reinforcement(a *Agent, msg Message) float64 {
	if r.verified {
		if r.cfg.RumorIsTrue {
			return msg.SenderBelief
		}
		return 1 - msg.SenderBelief
	}

	dt := r.trust.Default()
	estimatedTruth := a.Belief*a.JudgmentQuality + (1-a.JudgmentQuality)*dt
	sameSide := (msg.SenderBelief > dt && estimatedTruth > dt) ||
		(msg.SenderBelief < dt && estimatedTruth < dt)
	if sameSide {
		return r.cfg.AgreementReinforcement
	}
	return 0
}

// verify fires the one-shot global truth reveal. Every currently informed
// agent's belief moves toward 1 by a fixed fraction of the remaining gap if
// the rumor is true, or is scaled toward 0 if false. Agents informed later
// are unaffected by this shift but use verified reinforcement from then on.
func (r *Run) verify() {
	r.verified = true
	r.verifiedTick = r.tick

	adj := r.cfg.AdjustmentFactor
	for _, a := range r.agents {
		if !a.Informed {
			continue
		}
		if r.cfg.RumorIsTrue {
			a.Belief = randx.Clamp01(a.Belief + (1-a.Belief)*adj)
		} else {
			a.Belief = randx.Clamp01(a.Belief * adj)
		}
	}

	r.logger.Info("rumor verified",
		"run_id", r.id,
		"tick", r.tick,
		"rumor_is_true", r.cfg.RumorIsTrue)
}
