package session

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"leavebot/internal/ai"
	"leavebot/internal/model"
)

// HRClient is the slice of the HR backend the session cache needs.
// *hrapi.Client satisfies it; tests substitute fakes.
type HRClient interface {
	FetchEmployee(ctx context.Context, empID int64) (*model.Employee, error)
	FetchLeaveTypes(ctx context.Context, empID, cgmID int64) ([]model.LeaveType, error)
	FetchLeaveHistory(ctx context.Context, empID int64, types []model.LeaveType) ([]model.LeaveRecord, error)
	FetchLeaveBalance(ctx context.Context, empID, policyID int64, fromDate, toDate string) (*model.LeaveBalance, error)
}

// Session owns the cached employee/leave aggregates for one conversation.
// The aggregates are populated once by Preload and read-only afterwards;
// the transcript grows turn by turn and is guarded for concurrent API
// access, though a single conversation is never driven concurrently.
type Session struct {
	ID         string
	EmployeeID int64
	FromDate   string
	ToDate     string
	CreatedAt  time.Time

	Employee      *model.Employee
	LeaveTypes    []model.LeaveType
	LeaveHistory  []model.LeaveRecord
	LeaveBalances map[int64]*model.LeaveBalance
	Manager       *model.Employee

	mu         sync.Mutex
	transcript []ai.ChatMessage
}

func New(id string, employeeID int64, fromDate, toDate string) *Session {
	return &Session{
		ID:         id,
		EmployeeID: employeeID,
		FromDate:   fromDate,
		ToDate:     toDate,
		CreatedAt:  time.Now(),
	}
}

// Preload fetches the five aggregates: employee, leave types, enriched
// leave history, one balance per leave type, and the reporting manager.
// Employee, leave-type and leave-history failures abort the preload; the
// session cannot answer anything without them. A failed or empty balance
// fetch leaves a nil record for that leave type. A missing or unresolvable
// manager yields a nil manager, not an error.
func (s *Session) Preload(ctx context.Context, hr HRClient, cgmID int64) error {
	employee, err := hr.FetchEmployee(ctx, s.EmployeeID)
	if err != nil {
		return fmt.Errorf("preload employee failed: %w", err)
	}

	types, err := hr.FetchLeaveTypes(ctx, s.EmployeeID, cgmID)
	if err != nil {
		return fmt.Errorf("preload leave types failed: %w", err)
	}

	history, err := hr.FetchLeaveHistory(ctx, s.EmployeeID, types)
	if err != nil {
		return fmt.Errorf("preload leave history failed: %w", err)
	}

	balances := make(map[int64]*model.LeaveBalance, len(types))
	for _, lt := range types {
		policyID, ok := lt.PolicyDetailID.Int64()
		if !ok {
			continue
		}
		balance, err := hr.FetchLeaveBalance(ctx, s.EmployeeID, policyID, s.FromDate, s.ToDate)
		if err != nil {
			log.Printf("leave balance fetch failed for policy %d: %v", policyID, err)
			balance = nil
		}
		balances[policyID] = balance
	}

	var manager *model.Employee
	if managerID, ok := employee.ReportingToID.Int64(); ok && managerID > 0 {
		manager, err = hr.FetchEmployee(ctx, managerID)
		if err != nil {
			log.Printf("manager fetch failed for employee %d: %v", managerID, err)
			manager = nil
		}
	}

	s.Employee = employee
	s.LeaveTypes = types
	s.LeaveHistory = history
	s.LeaveBalances = balances
	s.Manager = manager
	return nil
}

// Transcript returns a copy of the current message sequence.
func (s *Session) Transcript() []ai.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ai.ChatMessage, len(s.transcript))
	copy(out, s.transcript)
	return out
}

// Append adds messages to the end of the transcript.
func (s *Session) Append(msgs ...ai.ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript = append(s.transcript, msgs...)
}

// Len returns the current transcript length.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.transcript)
}

// TruncateTo cuts the transcript back to n messages. Used to restore a
// clean transcript when a turn fails mid-way.
func (s *Session) TruncateTo(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n < 0 {
		n = 0
	}
	if n < len(s.transcript) {
		s.transcript = s.transcript[:n]
	}
}

// Trim bounds transcript growth: the system message at position zero is
// always preserved, followed by the most recent window messages. A
// non-positive window disables trimming.
func (s *Session) Trim(window int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if window <= 0 || len(s.transcript) <= window+1 {
		return
	}
	trimmed := make([]ai.ChatMessage, 0, window+1)
	trimmed = append(trimmed, s.transcript[0])
	trimmed = append(trimmed, s.transcript[len(s.transcript)-window:]...)
	s.transcript = trimmed
}

// Visible returns the user-facing part of the transcript: user and
// assistant messages that carry text, skipping the system prompt and the
// tool-call plumbing.
func (s *Session) Visible() []ai.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	visible := make([]ai.ChatMessage, 0, len(s.transcript))
	for _, msg := range s.transcript {
		if msg.Role != ai.RoleUser && msg.Role != ai.RoleAssistant {
			continue
		}
		if msg.Content == "" {
			continue
		}
		visible = append(visible, ai.ChatMessage{Role: msg.Role, Content: msg.Content})
	}
	return visible
}
