package domain

type TurnRole string

const (
	RoleSystem    TurnRole = "system"
	RoleUser      TurnRole = "user"
	RoleAssistant TurnRole = "assistant"
)

type ConversationTurn struct {
	Role    TurnRole `json:"role"`
	Content string   `json:"content"`
}

// ConversationSession holds the ordered turn sequence for exactly one chat
// request. It is constructed fresh per request and discarded with it; sharing
// a session between requests is forbidden.
type ConversationSession struct {
	turns []ConversationTurn
}

// NewConversationSession seeds the session with a single system turn.
func NewConversationSession(systemPrompt string) *ConversationSession {
	return &ConversationSession{
		turns: []ConversationTurn{{Role: RoleSystem, Content: systemPrompt}},
	}
}

func (s *ConversationSession) Append(turn ConversationTurn) {
	s.turns = append(s.turns, turn)
}

// Turns returns a copy of the ordered turn sequence.
func (s *ConversationSession) Turns() []ConversationTurn {
	out := make([]ConversationTurn, len(s.turns))
	copy(out, s.turns)
	return out
}

// Query is one incoming chat question. Immutable once received.
type Query struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	BotID    string `json:"bot_id,omitempty"`
}

type SourceCitation struct {
	FileName  string  `json:"file_name"`
	PageCount int     `json:"page_count"`
	Score     float64 `json:"score"`
}

// AnswerOutcome labels which pipeline path produced the answer.
type AnswerOutcome string

const (
	OutcomeAnswered        AnswerOutcome = "answered"
	OutcomeFallback        AnswerOutcome = "fallback"
	OutcomeRetrievalError  AnswerOutcome = "retrieval_error"
	OutcomeGenerationError AnswerOutcome = "generation_error"
)

// ChatAnswer is the final result of the answer pipeline. It is always
// well-formed: failures surface as apology text, never as an error.
type ChatAnswer struct {
	Text    string           `json:"answer"`
	Sources []SourceCitation `json:"sources"`
	Outcome AnswerOutcome    `json:"-"`

	// DegradedTranslations lists the pipeline stages ("query", "answer")
	// where translation fell back to the original text.
	DegradedTranslations []string `json:"-"`
}
