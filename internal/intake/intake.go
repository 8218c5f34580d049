// Package intake validates submitted complaints and appends them to the
// record store.
package intake

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"reclamos/internal/complaint"
	"reclamos/internal/metrics"
)

// NotifyTimeout bounds a single background notification.
const NotifyTimeout = 30 * time.Second

// Acknowledgement texts returned on success.
const (
	StatusOK        = "ok"
	ReceivedMessage = "complaint received"
)

// Ack is the payload returned for an accepted complaint.
type Ack struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ErrorKind tells the transport how to answer a failed intake.
type ErrorKind int

const (
	// Invalid means the submission failed validation (client error).
	Invalid ErrorKind = iota + 1
	// StorageFailure means the record store could not persist it (server error).
	StorageFailure
)

// Error is the result of a failed intake.
//
// Reason is safe to show to the submitter for Invalid errors.
type Error struct {
	Kind   ErrorKind
	Reason string
	Err    error
}

func (e *Error) Error() string {
	switch e.Kind {
	case Invalid:
		return fmt.Sprintf("invalid complaint: %s", e.Reason)
	default:
		return fmt.Sprintf("storage failure: %v", e.Err)
	}
}

// Unwrap returns the wrapped error for error chain inspection
func (e *Error) Unwrap() error {
	return e.Err
}

// Appender is the part of the record store intake needs.
type Appender interface {
	Append(ctx context.Context, record complaint.Record) error
}

// Notifier is told about every accepted complaint.
type Notifier interface {
	Notify(ctx context.Context, record complaint.Record) error
}

// StatusRecorder receives the outcome of every intake (see health.Monitor).
type StatusRecorder interface {
	UpdateIntakeStatus(status string)
}

// Service runs the intake operation.
type Service struct {
	store    Appender
	notifier Notifier
	status   StatusRecorder

	notifyTimeout time.Duration
	pending       sync.WaitGroup
}

// NewService creates an intake service. notifier and status may be nil.
func NewService(store Appender, notifier Notifier, status StatusRecorder) *Service {
	return &Service{
		store:         store,
		notifier:      notifier,
		status:        status,
		notifyTimeout: NotifyTimeout,
	}
}

// Intake validates candidate and appends it to the store.
//
// Flow:
//  1. Validate; failure → *Error{Kind: Invalid}
//  2. Append; failure → *Error{Kind: StorageFailure}
//  3. Notify in the background (best effort, failures are only logged)
//
// The acknowledgement never waits on the notifier. No retries happen here.
func (s *Service) Intake(ctx context.Context, candidate map[string]interface{}) (Ack, error) {
	record, err := complaint.Validate(candidate)
	if err != nil {
		s.record("invalid")
		return Ack{}, &Error{Kind: Invalid, Reason: err.Error(), Err: err}
	}

	if err := s.store.Append(ctx, record); err != nil {
		log.Printf("❌ Failed to store complaint %s: %v", record.Reference, err)
		s.record("storage_failure")
		return Ack{}, &Error{Kind: StorageFailure, Err: err}
	}

	log.Printf("✓ Complaint %s stored (account %s, %s)", record.Reference, record.AccountNumber, record.Type)
	s.record("accepted")

	if s.notifier != nil {
		s.notify(context.WithoutCancel(ctx), record)
	}

	return Ack{Status: StatusOK, Message: ReceivedMessage}, nil
}

// notify runs the notifier on its own goroutine, detached from the request
// and bounded by notifyTimeout.
func (s *Service) notify(ctx context.Context, record complaint.Record) {
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()

		ctx, cancel := context.WithTimeout(ctx, s.notifyTimeout)
		defer cancel()

		if err := s.notifier.Notify(ctx, record); err != nil {
			log.Printf("⚠️  Failed to notify about complaint %s: %v", record.Reference, err)
		}
	}()
}

// Wait blocks until every background notification has finished.
func (s *Service) Wait() {
	s.pending.Wait()
}

func (s *Service) record(result string) {
	metrics.IntakeTotal.WithLabelValues(result).Inc()
	if s.status != nil {
		s.status.UpdateIntakeStatus(result)
	}
}
