// Package poller runs asynchronous panel operations against the backend: a
// submit call starts the operation and returns a reference id, then status
// polls with an increasing counter track it until the backend settles on a
// final answer.
package poller

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrOperationFailed is returned when the backend rejected the operation.
	ErrOperationFailed = errors.New("operation failed")
	// ErrOperationTimedOut is returned when polling exhausted its attempts
	// without the backend settling.
	ErrOperationTimedOut = errors.New("operation timed out")
)

// Backend tri-state answers. Anything else is treated as a failure.
const (
	ResOK   = "OK"
	ResKO   = "KO"
	ResWait = "WAIT"
)

// Outcome is the final state of an asynchronous operation.
type Outcome int

const (
	Pending Outcome = iota
	Succeeded
	Failed
	TimedOut
)

func (o Outcome) String() string {
	switch o {
	case Pending:
		return "pending"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	case TimedOut:
		return "timed_out"
	default:
		return "unknown"
	}
}

// SubmitResult is the answer to the initial submit call.
type SubmitResult struct {
	Res         string
	Msg         string
	ReferenceID string
}

// PollResult is the answer to one status poll.
type PollResult struct {
	Res    string
	Msg    string
	Status string
}

// SubmitFunc starts the operation and returns its reference id.
type SubmitFunc func(ctx context.Context) (SubmitResult, error)

// PollFunc checks the operation identified by referenceID. counter starts at
// 1 and increases by one per attempt; the backend uses it to dedupe polls.
type PollFunc func(ctx context.Context, referenceID string, counter int) (PollResult, error)

// Result describes how an operation ended.
type Result struct {
	Outcome     Outcome
	Message     string
	Status      string
	ReferenceID string
	Attempts    int
}

// Poller drives one class of asynchronous operation to completion.
type Poller struct {
	// Operation names the operation class for logs and metrics.
	Operation string
	// MaxAttempts bounds status polls per run.
	MaxAttempts int
	// Interval is the pause between polls while the backend answers WAIT.
	Interval time.Duration
	// RetrySubmit, when set, is consulted on a failed submit. Returning true
	// retries the submit after Interval, bounded by MaxAttempts.
	RetrySubmit func(err error) bool

	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a poller with the given bounds.
func New(operation string, maxAttempts int, interval time.Duration) *Poller {
	return &Poller{
		Operation:   operation,
		MaxAttempts: maxAttempts,
		Interval:    interval,
		sleep:       sleepCtx,
	}
}

// Run submits the operation and polls it until the backend settles, attempts
// run out, or ctx is cancelled. The returned error is nil only when the
// outcome is Succeeded.
func (p *Poller) Run(ctx context.Context, submit SubmitFunc, poll PollFunc) (Result, error) {
	if p.sleep == nil {
		p.sleep = sleepCtx
	}

	sub, err := p.submit(ctx, submit)
	if err != nil {
		return Result{Outcome: Failed}, err
	}

	result := Result{ReferenceID: sub.ReferenceID}

	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			result.Outcome = Failed
			result.Attempts = attempt - 1
			return result, err
		}

		res, err := poll(ctx, sub.ReferenceID, attempt)
		pollsTotal.WithLabelValues(p.Operation).Inc()
		result.Attempts = attempt

		if err != nil {
			result.Outcome = Failed
			return result, fmt.Errorf("%w: %v", ErrOperationFailed, err)
		}

		switch res.Res {
		case ResOK:
			result.Outcome = Succeeded
			result.Message = res.Msg
			result.Status = res.Status
			return result, nil
		case ResKO:
			result.Outcome = Failed
			result.Message = res.Msg
			return result, fmt.Errorf("%w: %s", ErrOperationFailed, res.Msg)
		case ResWait:
			if attempt == p.MaxAttempts {
				break
			}
			if err := p.sleep(ctx, p.Interval); err != nil {
				result.Outcome = Failed
				return result, err
			}
		default:
			result.Outcome = Failed
			result.Message = res.Msg
			return result, fmt.Errorf("%w: unexpected response %q", ErrOperationFailed, res.Res)
		}
	}

	timeoutsTotal.WithLabelValues(p.Operation).Inc()
	result.Outcome = TimedOut
	return result, ErrOperationTimedOut
}

// submit starts the operation, retrying when RetrySubmit allows it.
func (p *Poller) submit(ctx context.Context, submit SubmitFunc) (SubmitResult, error) {
	var lastErr error

	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return SubmitResult{}, err
		}

		sub, err := submit(ctx)
		submitsTotal.WithLabelValues(p.Operation).Inc()
		if err == nil {
			switch {
			case sub.Res != ResOK:
				err = fmt.Errorf("%w: %s", ErrOperationFailed, sub.Msg)
			case sub.ReferenceID == "":
				err = fmt.Errorf("%w: no reference id in submit response", ErrOperationFailed)
			default:
				return sub, nil
			}
		}

		lastErr = err
		if p.RetrySubmit == nil || !p.RetrySubmit(err) {
			return SubmitResult{}, err
		}
		if err := p.sleep(ctx, p.Interval); err != nil {
			return SubmitResult{}, err
		}
	}

	return SubmitResult{}, lastErr
}

// sleepCtx pauses for d, waking early when ctx ends.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
