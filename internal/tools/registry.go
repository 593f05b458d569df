package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"leavebot/internal/leave"
	"leavebot/internal/model"
	"leavebot/internal/search"
	"leavebot/internal/session"
)

// Name identifies a registered tool. The set is closed; anything else
// dispatches to the not-implemented sentinel.
type Name string

const (
	TotalLeaveTaken     Name = "total_leave_taken"
	LeavesByType        Name = "leaves_by_type"
	AvailableLeaveTypes Name = "available_leave_types"
	LeaveTypeBalance    Name = "leave_type_balance"
	YearsOfService      Name = "years_of_service"
	EmployeeContact     Name = "employee_contact"
	ManagerContact      Name = "manager_contact"
	IsOnLeaveToday      Name = "is_on_leave_today"
	RecentLeaves        Name = "recent_leaves"
	AirTicketInfo       Name = "air_ticket_info"
	SearchPolicy        Name = "search_policy"
	UnapprovedLeaves    Name = "unapproved_leaves"
)

// NotImplementedResult is the literal result returned for an unknown tool
// name. The model receives it as the tool's output and reformulates.
const NotImplementedResult = "Tool not implemented."

// NoPolicyResult is returned when the policy search finds nothing.
const NoPolicyResult = "No relevant policy or HR information found."

const (
	defaultRecentCount = 5
	policySearchTopK   = 2
)

// PolicySearcher is the slice of the semantic search engine the
// search_policy tool needs.
type PolicySearcher interface {
	Search(ctx context.Context, query string, topK int) []search.Result
}

// Args carries every argument any registered tool accepts. The model sends
// arguments as a JSON object; unknown keys are ignored and a malformed
// payload decodes to the zero value, so every tool applies its own
// defaults.
type Args struct {
	LeaveCode string        `json:"leave_code"`
	Count     model.Numeric `json:"count"`
	Question  string        `json:"question"`
	Status    string        `json:"status"`
}

// Handler executes one tool against the session's cached data and returns
// the string fed back to the model.
type Handler func(ctx context.Context, sess *session.Session, args Args) string

// Registry maps tool names to handlers. The table is built once at startup
// and read-only afterwards.
type Registry struct {
	searcher PolicySearcher
	now      func() time.Time
	handlers map[Name]Handler
}

func NewRegistry(searcher PolicySearcher) *Registry {
	r := &Registry{
		searcher: searcher,
		now:      time.Now,
	}
	r.handlers = map[Name]Handler{
		TotalLeaveTaken:     r.totalLeaveTaken,
		LeavesByType:        r.leavesByType,
		AvailableLeaveTypes: r.availableLeaveTypes,
		LeaveTypeBalance:    r.leaveTypeBalance,
		YearsOfService:      r.yearsOfService,
		EmployeeContact:     r.employeeContact,
		ManagerContact:      r.managerContact,
		IsOnLeaveToday:      r.isOnLeaveToday,
		RecentLeaves:        r.recentLeaves,
		AirTicketInfo:       r.airTicketInfo,
		SearchPolicy:        r.searchPolicy,
		UnapprovedLeaves:    r.unapprovedLeaves,
	}
	return r
}

// Dispatch routes a model-issued call by name. Unknown names return the
// not-implemented sentinel rather than failing the turn; a malformed
// argument payload is treated as empty arguments.
func (r *Registry) Dispatch(ctx context.Context, sess *session.Session, name, rawArgs string) string {
	handler, ok := r.handlers[Name(name)]
	if !ok {
		return NotImplementedResult
	}
	var args Args
	if rawArgs != "" {
		if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
			args = Args{}
		}
	}
	return handler(ctx, sess, args)
}

func (r *Registry) totalLeaveTaken(_ context.Context, sess *session.Session, args Args) string {
	total := leave.TotalLeaveTaken(sess.LeaveHistory, sess.LeaveTypes, args.LeaveCode)
	return strconv.FormatFloat(total, 'f', -1, 64)
}

func (r *Registry) leavesByType(_ context.Context, sess *session.Session, _ Args) string {
	return marshalResult(leave.LeavesByType(sess.LeaveHistory, sess.LeaveTypes))
}

func (r *Registry) availableLeaveTypes(_ context.Context, sess *session.Session, _ Args) string {
	return marshalResult(leave.AvailableTypes(sess.LeaveTypes))
}

func (r *Registry) leaveTypeBalance(_ context.Context, sess *session.Session, args Args) string {
	if args.LeaveCode == "" {
		return "No leave code provided."
	}
	balance, ok := leave.TypeBalance(sess.LeaveBalances, sess.LeaveTypes, args.LeaveCode)
	if !ok {
		return fmt.Sprintf("No balance found for %q.", args.LeaveCode)
	}
	return strconv.FormatFloat(balance, 'f', -1, 64)
}

func (r *Registry) yearsOfService(_ context.Context, sess *session.Session, _ Args) string {
	return strconv.Itoa(leave.YearsOfService(sess.Employee, r.now()))
}

func (r *Registry) employeeContact(_ context.Context, sess *session.Session, _ Args) string {
	return marshalResult(leave.ContactSummary(sess.Employee))
}

func (r *Registry) managerContact(_ context.Context, sess *session.Session, _ Args) string {
	var fallbackName string
	if sess.Employee != nil {
		fallbackName = sess.Employee.ReportingToName
	}
	return marshalResult(leave.ManagerContact(sess.Manager, fallbackName))
}

func (r *Registry) isOnLeaveToday(_ context.Context, sess *session.Session, _ Args) string {
	return strconv.FormatBool(leave.OnLeave(sess.LeaveHistory, r.now()))
}

func (r *Registry) recentLeaves(_ context.Context, sess *session.Session, args Args) string {
	count := defaultRecentCount
	if n, ok := args.Count.Int64(); ok && n > 0 {
		count = int(n)
	}
	return marshalResult(leave.Recent(sess.LeaveHistory, count))
}

func (r *Registry) airTicketInfo(_ context.Context, sess *session.Session, _ Args) string {
	return marshalResult(leave.AirTicketEligibility(sess.LeaveBalances, sess.LeaveHistory))
}

func (r *Registry) searchPolicy(ctx context.Context, _ *session.Session, args Args) string {
	if args.Question == "" || r.searcher == nil {
		return NoPolicyResult
	}
	results := r.searcher.Search(ctx, args.Question, policySearchTopK)
	if len(results) == 0 {
		return NoPolicyResult
	}
	answer := ""
	for i, res := range results {
		answer += fmt.Sprintf("%d. %s\n\n", i+1, res.Text)
	}
	return trimTrailing(answer)
}

func (r *Registry) unapprovedLeaves(_ context.Context, sess *session.Session, args Args) string {
	return marshalResult(leave.Unapproved(sess.LeaveHistory, args.Status))
}

func marshalResult(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("tool result encoding failed: %v", err)
	}
	return string(b)
}

func trimTrailing(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == ' ') {
		s = s[:len(s)-1]
	}
	return s
}
