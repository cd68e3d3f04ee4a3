package model

// Inbound is one message received from the transport.
type Inbound struct {
	SenderID string `json:"sender_id" validate:"required"`
	Body     string `json:"body"`
}

// Reply is the text sent back to the conversant.
type Reply struct {
	Text string `json:"text"`
}

// Source tells which stage of the resolution pipeline produced the answer.
type Source string

const (
	SourceTopic     Source = "topic"
	SourceKnowledge Source = "knowledge"
	SourceFallback  Source = "fallback"
)

// Resolution flows through the free-text resolution graph. Nodes fill it in
// as they run; Answer is final once Source is set.
type Resolution struct {
	TurnID   string
	SenderID string
	Query    string
	Topic    Topic

	Normalized string
	Vector     []float64

	Answer string
	Source Source
	Score  float64
	Index  int

	// FallbackErr is set when the generative model failed and Answer holds the apology.
	FallbackErr error
}

// Answered reports whether a node has already produced the final answer.
func (r *Resolution) Answered() bool {
	return r.Source != ""
}
