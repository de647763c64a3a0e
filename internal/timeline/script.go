package timeline

import (
	"time"

	"github.com/yildizm/nexus/internal/common"
)

// Narration lines of the agent feed
const (
	MsgScrapeStart    = "Initiating Antigravity Browser scrape..."
	MsgScrapeComplete = "Signal extraction complete. Sentiment artifact created."
	MsgTwinStart      = "Initializing Digital Twin. Ingesting psychographics..."
	MsgTwinComplete   = "Digital Twin constructed. State locked."
	MsgStressStart    = "Running 10,000 Monte Carlo iterations..."
	MsgStressComplete = "Stress tests complete. 3 Black Swan scenarios modeled."
	MsgAuditStart     = "Generating Risk Tornado & Financial Audit..."
	MsgAuditComplete  = "Audit complete. Risk Artifacts generated."
	MsgCriticalError  = "CRITICAL ERROR during intelligence gathering."
	ErrorAgent        = common.AgentAlpha
)

// StageEvents is the number of events a successful run emits
const StageEvents = 8

// Delays paces the narrative. Zero values skip the pause.
type Delays struct {
	Extraction time.Duration `yaml:"extraction" json:"extraction"`
	StressTest time.Duration `yaml:"stress_test" json:"stress_test"`
	Audit      time.Duration `yaml:"audit" json:"audit"`
}

// DefaultDelays returns the standard pacing
func DefaultDelays() Delays {
	return Delays{
		Extraction: 800 * time.Millisecond,
		StressTest: 1200 * time.Millisecond,
		Audit:      600 * time.Millisecond,
	}
}

// Total is the artificial time a successful run spends pausing
func (d Delays) Total() time.Duration {
	return d.Extraction + d.StressTest + d.Audit
}

// StepKind distinguishes script steps
type StepKind int

const (
	// StepEmit appends one event to the feed
	StepEmit StepKind = iota
	// StepPause waits for Delay
	StepPause
	// StepAnalyze performs the real analysis call
	StepAnalyze
	// StepCommit publishes the analysis result
	StepCommit
)

func (k StepKind) String() string {
	switch k {
	case StepEmit:
		return "emit"
	case StepPause:
		return "pause"
	case StepAnalyze:
		return "analyze"
	case StepCommit:
		return "commit"
	default:
		return "unknown"
	}
}

// Step is one instruction of the narrative
type Step struct {
	Kind   StepKind
	Agent  common.Agent
	Action string
	Status common.Status
	Delay  time.Duration
}

func emit(agent common.Agent, action string, status common.Status) Step {
	return Step{Kind: StepEmit, Agent: agent, Action: action, Status: status}
}

func pause(d time.Duration) Step {
	return Step{Kind: StepPause, Delay: d}
}

// Script returns the fixed narrative. The result is committed immediately
// before the final event so observers never see "Audit complete" without it.
func Script(d Delays) []Step {
	return []Step{
		emit(common.AgentAlpha, MsgScrapeStart, common.StatusPending),
		pause(d.Extraction),
		emit(common.AgentAlpha, MsgScrapeComplete, common.StatusComplete),
		emit(common.AgentBeta, MsgTwinStart, common.StatusPending),
		{Kind: StepAnalyze},
		emit(common.AgentBeta, MsgTwinComplete, common.StatusComplete),
		emit(common.AgentGamma, MsgStressStart, common.StatusPending),
		pause(d.StressTest),
		emit(common.AgentGamma, MsgStressComplete, common.StatusComplete),
		emit(common.AgentDelta, MsgAuditStart, common.StatusPending),
		pause(d.Audit),
		{Kind: StepCommit},
		emit(common.AgentDelta, MsgAuditComplete, common.StatusComplete),
	}
}
