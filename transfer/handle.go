package transfer

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// Handle tracks one submitted transfer from validation through confirmation.
// A handle is created fresh per submission and never reused; resubmitting
// always produces a new one.
type Handle struct {
	mu sync.RWMutex

	kind    Kind
	native  Status
	token   Status
	history []Status

	txHash  common.Hash
	hasHash bool

	rejectReason RejectReason
	errKind      ErrorKind
	errDetail    string

	done chan struct{}
}

func newHandle(kind Kind) *Handle {
	return &Handle{
		kind: kind,
		done: make(chan struct{}),
	}
}

// Kind returns which pipeline carries this transfer.
func (h *Handle) Kind() Kind {
	return h.kind
}

// Status returns the merged observable status of the handle.
func (h *Handle) Status() Status {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return mergeStatus(h.native, h.token)
}

// Pipelines returns the raw per-pipeline statuses. At most one is non-idle.
func (h *Handle) Pipelines() (native, token Status) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.native, h.token
}

// History returns every status the handle has passed through, in order.
func (h *Handle) History() []Status {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]Status, len(h.history))
	copy(out, h.history)
	return out
}

// TxHash returns the submitted transaction identifier, once the underlying
// client has reported one.
func (h *Handle) TxHash() (common.Hash, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.txHash, h.hasHash
}

// RejectReason returns the validation rejection, if the handle was rejected.
func (h *Handle) RejectReason() RejectReason {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.rejectReason
}

// Failure returns the classified error kind and the transport's own message
// for a failed handle.
func (h *Handle) Failure() (ErrorKind, string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.errKind, h.errDetail
}

// Wait blocks until the handle reaches a terminal state or the context is
// cancelled.
func (h *Handle) Wait(ctx context.Context) (Status, error) {
	select {
	case <-h.done:
		return h.Status(), nil
	case <-ctx.Done():
		return h.Status(), ctx.Err()
	}
}

// advance moves the handle's active pipeline forward. Regressions and
// transitions out of terminal states are refused; the return value says
// whether the transition took effect.
func (h *Handle) advance(next Status) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	current := h.pipeline()
	if current.Terminal() || next.rank() <= current.rank() {
		return false
	}

	h.setPipeline(next)
	h.history = append(h.history, next)
	if next.Terminal() {
		close(h.done)
	}
	return true
}

func (h *Handle) pipeline() Status {
	if h.kind == KindNative {
		return h.native
	}
	return h.token
}

func (h *Handle) setPipeline(s Status) {
	if h.kind == KindNative {
		h.native = s
	} else {
		h.token = s
	}
}

func (h *Handle) setTxHash(hash common.Hash) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.txHash = hash
	h.hasHash = true
}

func (h *Handle) reject(reason RejectReason) {
	h.mu.Lock()
	h.rejectReason = reason
	h.mu.Unlock()
	h.advance(StatusRejected)
}

func (h *Handle) fail(kind ErrorKind, detail string) {
	h.mu.Lock()
	h.errKind = kind
	h.errDetail = detail
	h.mu.Unlock()
	h.advance(StatusFailed)
}
