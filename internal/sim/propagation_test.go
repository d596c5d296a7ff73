package sim

import (
	"testing"

	"github.com/nvandessel/rumornet/internal/config"
	"github.com/nvandessel/rumornet/internal/topology"
)

// A lone agent has no neighbors: seeded or not, nothing changes over any
// number of ticks.
func TestSingletonPopulationIsInert(t *testing.T) {
	cfg := config.Default()
	g := topology.NewGraph(1)
	a := newAgent(0)
	a.Informed = true
	a.Belief = 1.0
	r := newBareRun(t, cfg, g, []*Agent{a})

	for i := 0; i < 50; i++ {
		r.Step()
	}

	if a.Belief != 1.0 || !a.Informed || a.TimesHeard != 0 {
		t.Errorf("isolated agent mutated: %+v", a)
	}
	if len(a.MessageLog) != 0 {
		t.Errorf("isolated agent accumulated %d messages", len(a.MessageLog))
	}
}

// The two-agent acceptance scenario: full conviction, full trust, a low
// threshold and zero judgment make the first successful receipt land the
// recipient at belief 1.0.
func TestTwoAgentFirstContactAcceptance(t *testing.T) {
	cfg := config.Default()
	g := topology.NewGraph(2)
	g.AddEdge(0, 1)

	sender := newAgent(0)
	sender.Informed = true
	sender.Belief = 1.0

	recipient := newAgent(1)
	recipient.AcceptanceThreshold = 0.1
	recipient.JudgmentQuality = 0

	r := newBareRun(t, cfg, g, []*Agent{sender, recipient})
	r.trust.Set(1, 0, 1.0)

	// Transmission probability is 1.0 and the only neighbor is the
	// recipient, so acceptance happens on the very first tick.
	r.Step()

	if !recipient.Informed {
		t.Fatal("recipient not informed after first contact")
	}
	if recipient.Belief != 1.0 {
		t.Errorf("recipient belief = %v, want 1.0", recipient.Belief)
	}
	if recipient.TimesHeard != 1 {
		t.Errorf("timesHeard = %d, want 1", recipient.TimesHeard)
	}
	if !recipient.SourcesSeen[0] {
		t.Error("sender not recorded in sourcesSeen")
	}
	if len(recipient.MessageLog) != 1 || recipient.MessageLog[0].SenderID != 0 {
		t.Errorf("message log = %+v, want one entry from sender 0", recipient.MessageLog)
	}
}

// influence <= combinedThreshold and timesHeard <= hearingThreshold:
// exposure is counted but not accepted.
func TestExposureBelowThresholdIsNotAccepted(t *testing.T) {
	cfg := config.Default()
	cfg.HearingThreshold = 10
	g := topology.NewGraph(2)
	g.AddEdge(0, 1)

	sender := newAgent(0)
	sender.Informed = true
	sender.Belief = 1.0

	recipient := newAgent(1)
	recipient.AcceptanceThreshold = 0.9
	recipient.JudgmentQuality = 0 // combined threshold 0.9

	r := newBareRun(t, cfg, g, []*Agent{sender, recipient})
	r.trust.Set(1, 0, 0.2) // influence 0.2

	r.expose(sender, recipient)

	if recipient.Informed {
		t.Error("recipient accepted below-threshold influence")
	}
	if recipient.TimesHeard != 1 {
		t.Errorf("timesHeard = %d, want 1 (exposure counted regardless)", recipient.TimesHeard)
	}
	if len(recipient.MessageLog) != 0 {
		t.Errorf("message log populated on rejection: %+v", recipient.MessageLog)
	}
}

// Repeated exposure alone forces acceptance once timesHeard exceeds the
// hearing threshold, regardless of trust.
func TestRepeatedExposureForcesAcceptance(t *testing.T) {
	cfg := config.Default()
	cfg.HearingThreshold = 3
	g := topology.NewGraph(2)
	g.AddEdge(0, 1)

	sender := newAgent(0)
	sender.Informed = true
	sender.Belief = 1.0

	recipient := newAgent(1)
	recipient.AcceptanceThreshold = 0.9
	recipient.JudgmentQuality = 0

	r := newBareRun(t, cfg, g, []*Agent{sender, recipient})
	r.trust.Set(1, 0, 0.1) // influence 0.1, never beats the 0.9 bar

	for i := 0; i < 3; i++ {
		r.expose(sender, recipient)
		if recipient.Informed {
			t.Fatalf("accepted after %d exposures, hearing threshold is 3", i+1)
		}
	}
	r.expose(sender, recipient) // timesHeard now 4 > 3
	if !recipient.Informed {
		t.Fatal("not accepted after exceeding hearing threshold")
	}
	// Belief still moves by the trust-weighted gap: 0 + 0.1*(1-0).
	if recipient.Belief != 0.1 {
		t.Errorf("belief = %v, want 0.1", recipient.Belief)
	}
}

// Higher judgment quality lowers the combined threshold, so the
// better-judging agent accepts influence the worse-judging one rejects.
// This polarity is deliberate; do not invert it.
func TestJudgmentQualityLowersAcceptanceBar(t *testing.T) {
	cfg := config.Default()
	g := topology.NewGraph(3)
	g.AddEdge(0, 1)
	g.AddEdge(0, 2)

	sender := newAgent(0)
	sender.Informed = true
	sender.Belief = 1.0

	sharp := newAgent(1)
	sharp.AcceptanceThreshold = 0.5
	sharp.JudgmentQuality = 0.9 // combined threshold 0.05

	dull := newAgent(2)
	dull.AcceptanceThreshold = 0.5
	dull.JudgmentQuality = 0.1 // combined threshold 0.45

	r := newBareRun(t, cfg, g, []*Agent{sender, sharp, dull})
	r.trust.Set(1, 0, 0.2)
	r.trust.Set(2, 0, 0.2) // influence 0.2 for both

	r.expose(sender, sharp)
	r.expose(sender, dull)

	if !sharp.Informed {
		t.Error("high-judgment agent rejected influence above its combined threshold")
	}
	if dull.Informed {
		t.Error("low-judgment agent accepted influence below its combined threshold")
	}
}

// An uninformed agent never transmits, and informed agents with zero belief
// are excluded from the sender set.
func TestZeroBeliefSendersAreSkipped(t *testing.T) {
	cfg := config.Default()
	g := topology.NewGraph(2)
	g.AddEdge(0, 1)

	sender := newAgent(0)
	sender.Informed = true
	sender.Belief = 0

	recipient := newAgent(1)
	r := newBareRun(t, cfg, g, []*Agent{sender, recipient})

	for i := 0; i < 20; i++ {
		r.Step()
	}
	if recipient.TimesHeard != 0 {
		t.Errorf("zero-belief sender transmitted %d times", recipient.TimesHeard)
	}
}

// Agents informed during a pass do not transmit in that same pass; the
// sender set is fixed when the pass starts.
func TestNewlyInformedDoNotSendSameTick(t *testing.T) {
	cfg := config.Default()
	g := topology.NewGraph(3)
	g.AddEdge(0, 1)
	g.AddEdge(1, 2)

	a := newAgent(0)
	a.Informed = true
	a.Belief = 1.0
	b := newAgent(1)
	b.AcceptanceThreshold = 0.1
	b.JudgmentQuality = 0
	c := newAgent(2)

	r := newBareRun(t, cfg, g, []*Agent{a, b, c})
	r.trust.Set(1, 0, 1.0)

	r.Step()

	if b.Informed && c.TimesHeard != 0 {
		t.Error("agent informed mid-pass transmitted in the same tick")
	}
}
