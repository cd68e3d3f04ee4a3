package model

import "time"

// ================ Config ================
type ConversationConfig struct {
	// Store selects the state backend: "memory" or "redis".
	Store string        `envconfig:"CONVERSATION_STORE" default:"memory"`
	TTL   time.Duration `envconfig:"CONVERSATION_TTL" default:"0s"` // 0 keeps state for the process lifetime
}

type FallbackModelConfig struct {
	Model          string        `envconfig:"FALLBACK_MODEL" default:"gemini-2.5-flash"`
	MaxTokens      int           `envconfig:"FALLBACK_MAX_TOKENS" default:"512"`
	Temperature    float32       `envconfig:"FALLBACK_TEMPERATURE" default:"0.5"`
	ThinkingBudget int32         `envconfig:"FALLBACK_THINKING_BUDGET" default:"0"`
	Timeout        time.Duration `envconfig:"FALLBACK_TIMEOUT" default:"15s"`
}

type EmbeddingModelConfig struct {
	Model    string `envconfig:"EMBEDDING_MODEL" default:"gemini-embedding-001"`
	TaskType string `envconfig:"EMBEDDING_TASK_TYPE" default:"SEMANTIC_SIMILARITY"`
}

type BusinessConfig struct {
	Name       string `envconfig:"BUSINESS_NAME" default:"Bytecode Technologies"`
	BookingURL string `envconfig:"BUSINESS_BOOKING_URL" default:"https://bytecodetechnologies.in/book-demo"`
}

type MatchingConfig struct {
	KnowledgeThreshold float64 `envconfig:"MATCH_KNOWLEDGE_THRESHOLD" default:"0.7"`
	TopicThreshold     float64 `envconfig:"MATCH_TOPIC_THRESHOLD" default:"0.6"`
	// KnowledgePath overrides the built-in FAQ file.
	KnowledgePath string `envconfig:"KNOWLEDGE_PATH"`
}

type SinkConfig struct {
	// Backend selects where leads and unanswered questions go: "file" or "redis".
	Backend          string `envconfig:"SINK_BACKEND" default:"file"`
	LeadsPath        string `envconfig:"SINK_LEADS_PATH" default:"leads.txt"`
	UnansweredPath   string `envconfig:"SINK_UNANSWERED_PATH" default:"unanswered_questions.txt"`
	MaxSizeMB        int    `envconfig:"SINK_MAX_SIZE_MB" default:"0"`
	LeadsKey         string `envconfig:"SINK_LEADS_KEY" default:"faqbot:leads"`
	UnansweredKey    string `envconfig:"SINK_UNANSWERED_KEY" default:"faqbot:unanswered"`
	EscalationBuffer int    `envconfig:"SINK_ESCALATION_BUFFER" default:"256"`
}
