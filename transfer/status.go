package transfer

// Kind says which pipeline carries a transfer: a native value send or an
// ERC20 contract call. Exactly one pipeline is active per handle; the other
// stays idle for the handle's whole life.
type Kind int

const (
	KindNative Kind = iota
	KindToken
)

func (k Kind) String() string {
	if k == KindNative {
		return "native"
	}
	return "token"
}

// Status is the lifecycle position of a transfer. Transitions are monotonic:
// a handle never moves backwards, and terminal states are final.
type Status int

const (
	StatusIdle Status = iota
	StatusValidating
	StatusRejected
	StatusDispatched
	StatusPending
	StatusConfirming
	StatusSucceeded
	StatusFailed
)

var statusNames = map[Status]string{
	StatusIdle:       "idle",
	StatusValidating: "validating",
	StatusRejected:   "rejected",
	StatusDispatched: "dispatched",
	StatusPending:    "pending",
	StatusConfirming: "confirming",
	StatusSucceeded:  "succeeded",
	StatusFailed:     "failed",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unknown"
}

// Terminal reports whether the status ends the handle's life. Rejected,
// succeeded and failed never transition again.
func (s Status) Terminal() bool {
	return s == StatusRejected || s == StatusSucceeded || s == StatusFailed
}

// rank orders statuses along the legal forward path. Failed is reachable
// from any non-terminal dispatch state, so it ranks above everything
// non-terminal.
func (s Status) rank() int {
	switch s {
	case StatusIdle:
		return 0
	case StatusValidating:
		return 1
	case StatusDispatched:
		return 2
	case StatusPending:
		return 3
	case StatusConfirming:
		return 4
	case StatusRejected, StatusSucceeded, StatusFailed:
		return 5
	}
	return -1
}

// mergeStatus collapses the two pipeline statuses into the single observable
// status: the first non-idle one wins. At most one pipeline is ever non-idle
// for a given handle, so the precedence order between them never matters in
// practice.
func mergeStatus(native, token Status) Status {
	if native != StatusIdle {
		return native
	}
	return token
}
