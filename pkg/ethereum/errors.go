package ethereum

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"syscall"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
)

// ErrorKind classifies chain interaction failures.
type ErrorKind int

const (
	// KindUnknown is an RPC-level failure that carries no structured cause.
	// It is treated as retryable.
	KindUnknown ErrorKind = iota
	// KindUnreachable means the node could not be reached or answered with a
	// transport-level failure.
	KindUnreachable
	// KindTimeout means the call or the confirmation wait ran out of time.
	KindTimeout
	// KindReverted is a contract-level rejection.
	KindReverted
	// KindReplay is a mint ledger rejection because the id is already processed.
	KindReplay
)

// ReplayRevertReason is the revert string the mint ledger uses when an id has
// already been minted.
const ReplayRevertReason = "Receiver: replay"

// jsonrpc error code for execution reverted
const revertErrorCode = 3

func (k ErrorKind) String() string {
	switch k {
	case KindUnreachable:
		return "unreachable"
	case KindTimeout:
		return "timeout"
	case KindReverted:
		return "reverted"
	case KindReplay:
		return "replay"
	default:
		return "unknown"
	}
}

// ChainError is returned by every Client operation that touches the network.
type ChainError struct {
	Kind   ErrorKind
	Op     string
	Reason string // decoded revert reason, if any
	Err    error
}

func (e *ChainError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Op, e.Kind)
	if e.Reason != "" {
		msg += fmt.Sprintf(" (%s)", e.Reason)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ChainError) Unwrap() error {
	return e.Err
}

// Retryable reports whether resubmitting the same payload may succeed.
func (e *ChainError) Retryable() bool {
	return e.Kind != KindReverted && e.Kind != KindReplay
}

// KindOf returns the kind of a ChainError in err's chain, or KindUnknown.
func KindOf(err error) ErrorKind {
	var ce *ChainError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindUnknown
}

// IsRetryable reports whether err is a retryable chain failure. Errors that
// are not ChainErrors are not retryable.
func IsRetryable(err error) bool {
	var ce *ChainError
	return errors.As(err, &ce) && ce.Retryable()
}

// classify wraps err in a ChainError, inspecting only typed error values.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var ce *ChainError
	if errors.As(err, &ce) {
		return err
	}

	out := &ChainError{Kind: KindUnknown, Op: op, Err: err}

	var dataErr rpc.DataError
	var rpcErr rpc.Error
	var httpErr rpc.HTTPError
	var netErr net.Error
	var opErr *net.OpError

	switch {
	case errors.As(err, &dataErr) && isRevert(err):
		out.Kind = KindReverted
		out.Reason = revertReason(dataErr.ErrorData())
	case errors.As(err, &rpcErr) && rpcErr.ErrorCode() == revertErrorCode:
		out.Kind = KindReverted
	case errors.Is(err, context.DeadlineExceeded):
		out.Kind = KindTimeout
	case errors.As(err, &httpErr):
		if httpErr.StatusCode >= http.StatusInternalServerError || httpErr.StatusCode == http.StatusTooManyRequests {
			out.Kind = KindUnreachable
		}
	case errors.As(err, &netErr) && netErr.Timeout():
		out.Kind = KindTimeout
	case errors.As(err, &opErr),
		errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, rpc.ErrClientQuit):
		out.Kind = KindUnreachable
	}
	return out
}

// isRevert reports whether a data-carrying rpc error is an execution revert.
// Nodes disagree on the code (3 on geth, -32603/-32000 on some dev chains) but
// all of them attach the revert payload as hex data.
func isRevert(err error) bool {
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) && rpcErr.ErrorCode() == revertErrorCode {
		return true
	}
	var dataErr rpc.DataError
	if !errors.As(err, &dataErr) {
		return false
	}
	s, ok := dataErr.ErrorData().(string)
	return ok && len(s) >= 10 && s[:2] == "0x"
}

// revertReason decodes Error(string) revert data. Custom errors are returned
// as their raw hex.
func revertReason(data any) string {
	s, ok := data.(string)
	if !ok {
		return ""
	}
	raw, err := hexutil.Decode(s)
	if err != nil {
		return ""
	}
	reason, err := abi.UnpackRevert(raw)
	if err != nil {
		return s
	}
	return reason
}

// asReplay converts a revert carrying the mint ledger's replay reason into
// KindReplay.
func asReplay(err error) error {
	var ce *ChainError
	if errors.As(err, &ce) && ce.Kind == KindReverted && ce.Reason == ReplayRevertReason {
		ce.Kind = KindReplay
	}
	return err
}
