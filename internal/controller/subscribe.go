package controller

import (
	"github.com/yildizm/nexus/internal/common"
	"github.com/yildizm/nexus/internal/logger"
)

// UpdateKind identifies what changed
type UpdateKind string

const (
	UpdateInput       UpdateKind = "input"
	UpdateRunStarted  UpdateKind = "run_started"
	UpdateLog         UpdateKind = "log"
	UpdateResult      UpdateKind = "result"
	UpdateRunFinished UpdateKind = "run_finished"
)

// Update is pushed to subscribers as state changes, in order
type Update struct {
	Kind   UpdateKind             `json:"type"`
	RunID  string                 `json:"runId,omitempty"`
	Log    *common.LogEvent       `json:"log,omitempty"`
	Result *common.AnalysisResult `json:"result,omitempty"`
	Busy   bool                   `json:"busy"`
	Error  string                 `json:"error,omitempty"`
}

// subscriberBuffer holds more than one full run of updates
const subscriberBuffer = 64

// Subscribe returns a channel of updates and a function that closes it.
// A subscriber that falls a full buffer behind misses updates.
func (c *Controller) Subscribe() (<-chan Update, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextSubscriber
	c.nextSubscriber++
	ch := make(chan Update, subscriberBuffer)
	c.subscribers[id] = ch

	return ch, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if sub, ok := c.subscribers[id]; ok {
			delete(c.subscribers, id)
			close(sub)
		}
	}
}

func (c *Controller) publishLocked(u Update) {
	u.Busy = c.busy
	if u.RunID == "" {
		u.RunID = c.runID
	}
	for id, ch := range c.subscribers {
		select {
		case ch <- u:
		default:
			c.logger.WarnWithFields("subscriber is behind, dropping update", []logger.Field{
				logger.F("subscriber", id),
				logger.F("update", string(u.Kind)),
			})
		}
	}
}
