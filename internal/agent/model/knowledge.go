package model

// Topic groups knowledge base entries. Only TopicServices drives behaviour today.
type Topic string

const (
	TopicNone     Topic = ""
	TopicServices Topic = "services"
)

// KBEntry is one immutable question/answer pair with its precomputed embedding.
type KBEntry struct {
	Index     int
	Question  string
	Answer    string
	Topic     Topic
	Embedding []float64
}

// FAQ is the on-disk shape of a knowledge base entry before embedding.
type FAQ struct {
	Question string `yaml:"question"`
	Answer   string `yaml:"answer"`
	Topic    Topic  `yaml:"topic,omitempty"`
}

// MatchResult is the outcome of ranking a query against a candidate set.
// Index is relative to the candidate slice and is -1 when nothing was ranked.
type MatchResult struct {
	Matched bool
	Answer  string
	Score   float64
	Index   int
}
