package schedule

import "time"

// SessionKind classifies a live session for join-window purposes. Group
// sessions belong to batches and may carry a batch-level access window
// override.
type SessionKind string

const (
	SessionDemo    SessionKind = "demo"
	SessionRegular SessionKind = "regular"
	SessionGroup   SessionKind = "group"
)

// SessionDuration returns the assumed session length per kind: 15 minutes for
// demos, 60 for regular 1:1 and group sessions.
func (k SessionKind) SessionDuration() time.Duration {
	if k == SessionDemo {
		return 15 * time.Minute
	}
	return time.Hour
}

// AccessWindow holds the tolerances around a session's scheduled interval
// during which joining is still permitted.
type AccessWindow struct {
	JoinBefore  time.Duration
	ExpireAfter time.Duration
}

// DefaultAccessWindow is applied when no batch-level override is configured.
var DefaultAccessWindow = AccessWindow{
	JoinBefore:  5 * time.Minute,
	ExpireAfter: 5 * time.Minute,
}

// JoinState is the outcome of evaluating a session's join window at a point
// in time. CanJoin and Expired are mutually exclusive; both are false in the
// gap before the window opens.
type JoinState struct {
	CanJoin bool `json:"canJoin"`
	Expired bool `json:"isExpired"`
}

// EvaluateJoinWindow decides whether now falls inside the joinable window
// [start-joinBefore, start+duration+expireAfter]. Both boundaries are
// inclusive; an off-by-one here directly gates the join button, so equality
// at either edge counts as joinable. The function is pure: callers poll it
// with a fresh now as wall-clock time advances.
func EvaluateJoinWindow(start time.Time, duration time.Duration, window AccessWindow, now time.Time) JoinState {
	opensAt := start.Add(-window.JoinBefore)
	closesAt := start.Add(duration + window.ExpireAfter)

	if now.After(closesAt) {
		return JoinState{Expired: true}
	}
	if now.Before(opensAt) {
		return JoinState{}
	}
	return JoinState{CanJoin: true}
}
