package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"leavebot/internal/ai"
	"leavebot/internal/search"
	"leavebot/internal/session"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrSessionNotFound = errors.New("session not found")
	ErrMessageEmpty    = errors.New("message content is empty")
)

// systemPrompt opens every transcript at position zero. It establishes the
// assistant persona and the policy that unresolvable questions must go
// through the search_policy tool.
const systemPrompt = "You are LeaveBot, a helpful HR and policy assistant. " +
	"If a user asks a question not directly answerable by API or calculations, use the search_policy tool."

const emptyAnswerFallback = "The model returned an empty response."

// ModelClient is the slice of the LLM client the loop needs.
// *ai.OpenAICompatibleClient satisfies it; tests substitute fakes.
type ModelClient interface {
	Complete(ctx context.Context, cfg ai.ChatConfig, messages []ai.ChatMessage, tools []ai.ToolDefinition, toolChoice string) (ai.ChatMessage, error)
	StreamComplete(ctx context.Context, cfg ai.ChatConfig, messages []ai.ChatMessage, tools []ai.ToolDefinition, onChunk func(string) error) (string, error)
}

// ToolRouter dispatches model-issued tool calls and exposes the catalog
// sent with every request. *tools.Registry satisfies it.
type ToolRouter interface {
	Catalog() []ai.ToolDefinition
	Dispatch(ctx context.Context, sess *session.Session, name, rawArgs string) string
}

// PolicySearcher backs the post-answer policy-reference fallback.
type PolicySearcher interface {
	Search(ctx context.Context, query string, topK int) []search.Result
}

// Config wires the chat service's collaborators.
type Config struct {
	Store  *session.Store
	HR     session.HRClient
	Model  ModelClient
	Router ToolRouter

	// Searcher drives the optional policy-reference fallback; nil or
	// FallbackEnabled=false disables the stage.
	Searcher          PolicySearcher
	FallbackEnabled   bool
	FallbackThreshold float32

	LLM            ai.ChatConfig
	HistoryWindow  int
	CompanyGroupID int64
}

// ChatService drives conversations: one session cache per conversation and
// one tool-calling turn per user message.
type ChatService struct {
	store             *session.Store
	hr                session.HRClient
	model             ModelClient
	router            ToolRouter
	searcher          PolicySearcher
	fallbackEnabled   bool
	fallbackThreshold float32
	llm               ai.ChatConfig
	historyWindow     int
	companyGroupID    int64
}

func NewChatService(cfg Config) *ChatService {
	if cfg.HistoryWindow <= 0 {
		cfg.HistoryWindow = 20
	}
	if cfg.CompanyGroupID <= 0 {
		cfg.CompanyGroupID = 1
	}
	return &ChatService{
		store:             cfg.Store,
		hr:                cfg.HR,
		model:             cfg.Model,
		router:            cfg.Router,
		searcher:          cfg.Searcher,
		fallbackEnabled:   cfg.FallbackEnabled,
		fallbackThreshold: cfg.FallbackThreshold,
		llm:               cfg.LLM,
		historyWindow:     cfg.HistoryWindow,
		companyGroupID:    cfg.CompanyGroupID,
	}
}

type CreateSessionInput struct {
	EmployeeID int64
	FromDate   string
	ToDate     string
}

// CreateSession preloads the employee's data and opens a conversation.
// The date range defaults to the current calendar year.
func (s *ChatService) CreateSession(ctx context.Context, input CreateSessionInput) (*session.Session, error) {
	if input.EmployeeID <= 0 {
		return nil, ErrInvalidInput
	}
	now := time.Now()
	if strings.TrimSpace(input.FromDate) == "" {
		input.FromDate = fmt.Sprintf("%d-01-01", now.Year())
	}
	if strings.TrimSpace(input.ToDate) == "" {
		input.ToDate = fmt.Sprintf("%d-12-31", now.Year())
	}

	sess := session.New(uuid.NewString(), input.EmployeeID, input.FromDate, input.ToDate)
	if err := sess.Preload(ctx, s.hr, s.companyGroupID); err != nil {
		return nil, err
	}
	sess.Append(ai.ChatMessage{Role: ai.RoleSystem, Content: systemPrompt})
	s.store.Put(sess)
	return sess, nil
}

// TurnResult is the outcome of one conversational turn.
type TurnResult struct {
	Answer          string `json:"answer"`
	PolicyReference string `json:"policy_reference,omitempty"`
}

// SendMessage runs one turn of the orchestration loop: append the user
// message, let the model request tool calls until it produces a plain
// answer, then optionally attach a policy reference. A model authentication
// failure aborts the turn and restores the transcript.
func (s *ChatService) SendMessage(ctx context.Context, sessionID, content string) (*TurnResult, error) {
	sess, content, err := s.beginTurn(sessionID, content)
	if err != nil {
		return nil, err
	}

	base := sess.Len()
	sess.Append(ai.ChatMessage{Role: ai.RoleUser, Content: content})

	final, err := s.completeToolRounds(ctx, sess)
	if err != nil {
		sess.TruncateTo(base)
		return nil, err
	}

	answer := strings.TrimSpace(final.Content)
	if answer == "" {
		answer = emptyAnswerFallback
	}
	sess.Append(ai.ChatMessage{Role: ai.RoleAssistant, Content: answer})
	sess.Trim(s.historyWindow)

	return &TurnResult{
		Answer:          answer,
		PolicyReference: s.policyFallback(ctx, content),
	}, nil
}

// StreamMessage runs the same turn but streams the final answer through
// onChunk. Tool rounds always use plain completions; only the closing
// answer is re-requested as a stream, so the sink sees text the moment the
// model produces it.
func (s *ChatService) StreamMessage(ctx context.Context, sessionID, content string, onChunk func(string) error) (*TurnResult, error) {
	sess, content, err := s.beginTurn(sessionID, content)
	if err != nil {
		return nil, err
	}

	base := sess.Len()
	sess.Append(ai.ChatMessage{Role: ai.RoleUser, Content: content})

	if _, err := s.completeToolRounds(ctx, sess); err != nil {
		sess.TruncateTo(base)
		return nil, err
	}

	answer, err := s.model.StreamComplete(ctx, s.llm, sess.Transcript(), s.router.Catalog(), onChunk)
	if err != nil {
		sess.TruncateTo(base)
		return nil, fmt.Errorf("stream final answer failed: %w", err)
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		answer = emptyAnswerFallback
	}
	sess.Append(ai.ChatMessage{Role: ai.RoleAssistant, Content: answer})
	sess.Trim(s.historyWindow)

	result := &TurnResult{
		Answer:          answer,
		PolicyReference: s.policyFallback(ctx, content),
	}
	if result.PolicyReference != "" && onChunk != nil {
		_ = onChunk("\n\nPolicy reference:\n" + result.PolicyReference)
	}
	return result, nil
}

// History returns the user-visible transcript of a conversation.
func (s *ChatService) History(sessionID string) ([]ai.ChatMessage, error) {
	sess, err := s.store.Get(sessionID)
	if err != nil {
		return nil, ErrSessionNotFound
	}
	return sess.Visible(), nil
}

// EndSession drops the conversation and its cached data.
func (s *ChatService) EndSession(sessionID string) error {
	if err := s.store.Delete(sessionID); err != nil {
		return ErrSessionNotFound
	}
	return nil
}

func (s *ChatService) beginTurn(sessionID, content string) (*session.Session, string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, "", ErrMessageEmpty
	}
	sess, err := s.store.Get(sessionID)
	if err != nil {
		return nil, "", ErrSessionNotFound
	}
	return sess, content, nil
}

// completeToolRounds drives the tool-calling state machine: invoke the
// model, execute every requested call, append one result message per call,
// and repeat until the response carries no tool calls. Tool selection is
// the model's ("auto" on the first call of the turn); the loop never forces
// a tool. Every request is answered exactly once before the next model
// invocation.
func (s *ChatService) completeToolRounds(ctx context.Context, sess *session.Session) (ai.ChatMessage, error) {
	catalog := s.router.Catalog()

	msg, err := s.model.Complete(ctx, s.llm, sess.Transcript(), catalog, "auto")
	if err != nil {
		return ai.ChatMessage{}, fmt.Errorf("model call failed: %w", err)
	}

	for len(msg.ToolCalls) > 0 {
		sess.Append(ai.ChatMessage{
			Role:      ai.RoleAssistant,
			Content:   msg.Content,
			ToolCalls: msg.ToolCalls,
		})
		for _, call := range msg.ToolCalls {
			result := s.router.Dispatch(ctx, sess, call.Function.Name, call.Function.Arguments)
			sess.Append(ai.ChatMessage{
				Role:       ai.RoleTool,
				ToolCallID: call.ID,
				Name:       call.Function.Name,
				Content:    result,
			})
		}
		msg, err = s.model.Complete(ctx, s.llm, sess.Transcript(), catalog, "")
		if err != nil {
			return ai.ChatMessage{}, fmt.Errorf("model call failed: %w", err)
		}
	}
	return msg, nil
}

// policyFallback re-runs the semantic search against the raw user question
// and returns the top chunk when it clears the similarity threshold. An
// empty string means no addendum.
func (s *ChatService) policyFallback(ctx context.Context, question string) string {
	if !s.fallbackEnabled || s.searcher == nil {
		return ""
	}
	results := s.searcher.Search(ctx, question, 1)
	if len(results) == 0 {
		return ""
	}
	top := results[0]
	if strings.TrimSpace(top.Text) == "" {
		return ""
	}
	if s.fallbackThreshold > 0 && top.Similarity < s.fallbackThreshold {
		return ""
	}
	return strings.TrimSpace(top.Text)
}
