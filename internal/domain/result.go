package domain

import "time"

// Outcome is what a single probe observed. Only Reachable feeds the status;
// the other fields are for logs.
type Outcome struct {
	Reachable  bool
	StatusCode int           // 0 when no response arrived
	Latency    time.Duration
	Reason     string
}

// NextState applies a probe outcome to a record. It never fails and touches
// nothing but Status and LastUpdated.
func NextState(s Service, o Outcome, now time.Time) Service {
	if o.Reachable {
		s.Status = StatusOK
	} else {
		s.Status = StatusFail
	}
	now = now.UTC()
	// lastUpdated may never precede created, even with a skewed clock
	if now.Before(s.Created) {
		now = s.Created
	}
	s.LastUpdated = now
	return s
}
