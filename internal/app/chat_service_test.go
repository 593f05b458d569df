package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leavebot/internal/ai"
	"leavebot/internal/model"
	"leavebot/internal/search"
	"leavebot/internal/session"
	"leavebot/internal/tools"
)

// scriptedModel returns its responses in order, recording every request it
// receives.
type scriptedModel struct {
	tb        testing.TB
	responses []ai.ChatMessage
	errs      []error
	calls     int
	requests  [][]ai.ChatMessage
	choices   []string
}

func (m *scriptedModel) Complete(_ context.Context, _ ai.ChatConfig, messages []ai.ChatMessage, _ []ai.ToolDefinition, toolChoice string) (ai.ChatMessage, error) {
	snapshot := make([]ai.ChatMessage, len(messages))
	copy(snapshot, messages)
	m.requests = append(m.requests, snapshot)
	m.choices = append(m.choices, toolChoice)

	i := m.calls
	m.calls++
	if i < len(m.errs) && m.errs[i] != nil {
		return ai.ChatMessage{}, m.errs[i]
	}
	require.Less(m.tb, i, len(m.responses), "model called more times than scripted")
	return m.responses[i], nil
}

func (m *scriptedModel) StreamComplete(ctx context.Context, cfg ai.ChatConfig, messages []ai.ChatMessage, tools []ai.ToolDefinition, onChunk func(string) error) (string, error) {
	msg, err := m.Complete(ctx, cfg, messages, tools, "")
	if err != nil {
		return "", err
	}
	if onChunk != nil {
		if err := onChunk(msg.Content); err != nil {
			return "", err
		}
	}
	return msg.Content, nil
}

type fakeHR struct {
	employees map[int64]*model.Employee
}

func (f *fakeHR) FetchEmployee(_ context.Context, empID int64) (*model.Employee, error) {
	emp, ok := f.employees[empID]
	if !ok {
		return nil, errors.New("employee not found")
	}
	return emp, nil
}

func (f *fakeHR) FetchLeaveTypes(_ context.Context, _, _ int64) ([]model.LeaveType, error) {
	return []model.LeaveType{
		{ID: "1", Code: "SL", Description: "Sick Leave", PolicyDetailID: "11"},
	}, nil
}

func (f *fakeHR) FetchLeaveHistory(_ context.Context, _ int64, _ []model.LeaveType) ([]model.LeaveRecord, error) {
	return []model.LeaveRecord{
		{Code: "SL", Status: "Approved", TotalDays: "2",
			FromDate: "2026-03-02T00:00:00", ToDate: "2026-03-03T00:00:00"},
	}, nil
}

func (f *fakeHR) FetchLeaveBalance(_ context.Context, _, _ int64, _, _ string) (*model.LeaveBalance, error) {
	return &model.LeaveBalance{Balance: "12.5"}, nil
}

type fixedSearcher struct {
	results []search.Result
}

func (s fixedSearcher) Search(_ context.Context, _ string, topK int) []search.Result {
	if topK > len(s.results) {
		topK = len(s.results)
	}
	return s.results[:topK]
}

func newTestService(t *testing.T, m *scriptedModel, opts ...func(*Config)) (*ChatService, string) {
	t.Helper()
	m.tb = t

	cfg := Config{
		Store:  session.NewStore(),
		HR:     &fakeHR{employees: map[int64]*model.Employee{42: {FullName: "Jordan Smith"}}},
		Model:  m,
		Router: tools.NewRegistry(nil),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	svc := NewChatService(cfg)

	sess, err := svc.CreateSession(context.Background(), CreateSessionInput{EmployeeID: 42})
	require.NoError(t, err)
	return svc, sess.ID
}

func toolCallMsg(id, name, args string) ai.ChatMessage {
	return ai.ChatMessage{
		Role: ai.RoleAssistant,
		ToolCalls: []ai.ToolCall{{
			ID:   id,
			Type: "function",
			Function: ai.FunctionCall{Name: name, Arguments: args},
		}},
	}
}

func TestCreateSessionValidation(t *testing.T) {
	svc := NewChatService(Config{Store: session.NewStore(), HR: &fakeHR{}})
	_, err := svc.CreateSession(context.Background(), CreateSessionInput{EmployeeID: 0})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSendMessagePlainAnswer(t *testing.T) {
	m := &scriptedModel{responses: []ai.ChatMessage{
		{Role: ai.RoleAssistant, Content: "You have taken 2 days of sick leave."},
	}}
	svc, id := newTestService(t, m)

	result, err := svc.SendMessage(context.Background(), id, "How much sick leave have I taken?")
	require.NoError(t, err)
	assert.Equal(t, "You have taken 2 days of sick leave.", result.Answer)
	assert.Empty(t, result.PolicyReference)

	assert.Equal(t, []string{"auto"}, m.choices)

	history, err := svc.History(id)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, ai.RoleUser, history[0].Role)
	assert.Equal(t, ai.RoleAssistant, history[1].Role)
}

func TestSendMessageToolRound(t *testing.T) {
	m := &scriptedModel{responses: []ai.ChatMessage{
		toolCallMsg("call_1", "total_leave_taken", `{"leave_code":"SL"}`),
		{Role: ai.RoleAssistant, Content: "2 days."},
	}}
	svc, id := newTestService(t, m)

	result, err := svc.SendMessage(context.Background(), id, "sick leave total?")
	require.NoError(t, err)
	assert.Equal(t, "2 days.", result.Answer)

	// The second model call must carry the assistant's tool request and
	// exactly one tool result correlated by call ID.
	require.Len(t, m.requests, 2)
	second := m.requests[1]
	var toolMsgs []ai.ChatMessage
	for _, msg := range second {
		if msg.Role == ai.RoleTool {
			toolMsgs = append(toolMsgs, msg)
		}
	}
	require.Len(t, toolMsgs, 1)
	assert.Equal(t, "call_1", toolMsgs[0].ToolCallID)
	assert.Equal(t, "total_leave_taken", toolMsgs[0].Name)
	assert.Equal(t, "2", toolMsgs[0].Content)

	assert.Equal(t, []string{"auto", ""}, m.choices)
}

func TestSendMessageMultipleCallsInOneRound(t *testing.T) {
	first := ai.ChatMessage{
		Role: ai.RoleAssistant,
		ToolCalls: []ai.ToolCall{
			{ID: "call_1", Type: "function", Function: ai.FunctionCall{Name: "total_leave_taken", Arguments: `{}`}},
			{ID: "call_2", Type: "function", Function: ai.FunctionCall{Name: "years_of_service", Arguments: `{}`}},
		},
	}
	m := &scriptedModel{responses: []ai.ChatMessage{
		first,
		{Role: ai.RoleAssistant, Content: "done"},
	}}
	svc, id := newTestService(t, m)

	_, err := svc.SendMessage(context.Background(), id, "overview please")
	require.NoError(t, err)

	second := m.requests[1]
	var ids []string
	for _, msg := range second {
		if msg.Role == ai.RoleTool {
			ids = append(ids, msg.ToolCallID)
		}
	}
	assert.Equal(t, []string{"call_1", "call_2"}, ids, "every call answered once, in order")
}

func TestSendMessageUnknownToolContinuesLoop(t *testing.T) {
	m := &scriptedModel{responses: []ai.ChatMessage{
		toolCallMsg("call_1", "book_flight", `{}`),
		{Role: ai.RoleAssistant, Content: "I cannot book flights."},
	}}
	svc, id := newTestService(t, m)

	result, err := svc.SendMessage(context.Background(), id, "book me a flight")
	require.NoError(t, err)
	assert.Equal(t, "I cannot book flights.", result.Answer)

	second := m.requests[1]
	found := false
	for _, msg := range second {
		if msg.Role == ai.RoleTool && msg.ToolCallID == "call_1" {
			found = true
			assert.Equal(t, tools.NotImplementedResult, msg.Content)
		}
	}
	assert.True(t, found)
}

func TestSendMessageAuthFailureRestoresTranscript(t *testing.T) {
	m := &scriptedModel{errs: []error{ai.ErrAuthentication}}
	svc, id := newTestService(t, m)

	_, err := svc.SendMessage(context.Background(), id, "hello")
	require.ErrorIs(t, err, ai.ErrAuthentication)

	history, err := svc.History(id)
	require.NoError(t, err)
	assert.Empty(t, history, "failed turn leaves no trace")
}

func TestSendMessageEmptyContent(t *testing.T) {
	svc, id := newTestService(t, &scriptedModel{})
	_, err := svc.SendMessage(context.Background(), id, "   ")
	assert.ErrorIs(t, err, ErrMessageEmpty)
}

func TestSendMessageUnknownSession(t *testing.T) {
	svc, _ := newTestService(t, &scriptedModel{})
	_, err := svc.SendMessage(context.Background(), "missing", "hello")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSendMessageEmptyAnswerFallback(t *testing.T) {
	m := &scriptedModel{responses: []ai.ChatMessage{
		{Role: ai.RoleAssistant, Content: "   "},
	}}
	svc, id := newTestService(t, m)

	result, err := svc.SendMessage(context.Background(), id, "hello")
	require.NoError(t, err)
	assert.Equal(t, emptyAnswerFallback, result.Answer)
}

func TestPolicyFallbackThreshold(t *testing.T) {
	answer := ai.ChatMessage{Role: ai.RoleAssistant, Content: "See the handbook."}

	m := &scriptedModel{responses: []ai.ChatMessage{answer}}
	svc, id := newTestService(t, m, func(cfg *Config) {
		cfg.Searcher = fixedSearcher{results: []search.Result{
			{Similarity: 0.9, Text: "Sick leave requires a certificate."},
		}}
		cfg.FallbackEnabled = true
		cfg.FallbackThreshold = 0.72
	})

	result, err := svc.SendMessage(context.Background(), id, "certificate rules?")
	require.NoError(t, err)
	assert.Equal(t, "Sick leave requires a certificate.", result.PolicyReference)
}

func TestPolicyFallbackBelowThreshold(t *testing.T) {
	m := &scriptedModel{responses: []ai.ChatMessage{
		{Role: ai.RoleAssistant, Content: "See the handbook."},
	}}
	svc, id := newTestService(t, m, func(cfg *Config) {
		cfg.Searcher = fixedSearcher{results: []search.Result{
			{Similarity: 0.3, Text: "Unrelated clause."},
		}}
		cfg.FallbackEnabled = true
		cfg.FallbackThreshold = 0.72
	})

	result, err := svc.SendMessage(context.Background(), id, "certificate rules?")
	require.NoError(t, err)
	assert.Empty(t, result.PolicyReference)
}

func TestPolicyFallbackDisabled(t *testing.T) {
	m := &scriptedModel{responses: []ai.ChatMessage{
		{Role: ai.RoleAssistant, Content: "See the handbook."},
	}}
	svc, id := newTestService(t, m, func(cfg *Config) {
		cfg.Searcher = fixedSearcher{results: []search.Result{
			{Similarity: 0.99, Text: "Very relevant."},
		}}
		cfg.FallbackEnabled = false
	})

	result, err := svc.SendMessage(context.Background(), id, "anything")
	require.NoError(t, err)
	assert.Empty(t, result.PolicyReference)
}

func TestHistoryTrimming(t *testing.T) {
	responses := make([]ai.ChatMessage, 0, 6)
	for i := 0; i < 6; i++ {
		responses = append(responses, ai.ChatMessage{Role: ai.RoleAssistant, Content: "answer"})
	}
	m := &scriptedModel{responses: responses}
	svc, id := newTestService(t, m, func(cfg *Config) {
		cfg.HistoryWindow = 4
	})

	for i := 0; i < 6; i++ {
		_, err := svc.SendMessage(context.Background(), id, "question")
		require.NoError(t, err)
	}

	// Window of 4 keeps the last two exchanges; the system prompt always
	// survives, so every later request still opens with it.
	last := m.requests[len(m.requests)-1]
	require.NotEmpty(t, last)
	assert.Equal(t, ai.RoleSystem, last[0].Role)
	assert.LessOrEqual(t, len(last), 6)
}

func TestStreamMessage(t *testing.T) {
	m := &scriptedModel{responses: []ai.ChatMessage{
		toolCallMsg("call_1", "total_leave_taken", `{}`),
		{Role: ai.RoleAssistant, Content: "2 days."},
		{Role: ai.RoleAssistant, Content: "2 days."},
	}}
	svc, id := newTestService(t, m)

	var streamed string
	result, err := svc.StreamMessage(context.Background(), id, "total?", func(chunk string) error {
		streamed += chunk
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "2 days.", result.Answer)
	assert.Equal(t, "2 days.", streamed)
}

func TestEndSession(t *testing.T) {
	svc, id := newTestService(t, &scriptedModel{})
	require.NoError(t, svc.EndSession(id))
	assert.ErrorIs(t, svc.EndSession(id), ErrSessionNotFound)
	_, err := svc.History(id)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
