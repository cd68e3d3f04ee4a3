package model

import (
	"context"
	"encoding/json"
	"fmt"
)

// StateRepository stores one ConversationState per sender.
// Implementations must be safe for concurrent use; per-sender serialization of
// read-modify-write is the caller's job.
type StateRepository interface {
	// Get returns the sender's state and whether one existed.
	Get(ctx context.Context, senderID string) (ConversationState, bool, error)

	// Put replaces the sender's state.
	Put(ctx context.Context, senderID string, state ConversationState) error

	// Touch restarts the sender's expiry without changing the state.
	// Touching an unknown sender is a no-op.
	Touch(ctx context.Context, senderID string) error
}

// Step names the position of a conversant in the guided flow.
type Step int

const (
	StepMenu Step = iota
	StepCollectName
	StepCollectEmail
	StepCollectProject
	StepOfferCall
)

var stepNames = map[Step]string{
	StepMenu:           "MENU",
	StepCollectName:    "COLLECT_NAME",
	StepCollectEmail:   "COLLECT_EMAIL",
	StepCollectProject: "COLLECT_PROJECT",
	StepOfferCall:      "OFFER_CALL",
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Step(%d)", int(s))
}

// ParseStep is the inverse of Step.String.
func ParseStep(name string) (Step, error) {
	for step, n := range stepNames {
		if n == name {
			return step, nil
		}
	}
	return 0, fmt.Errorf("unknown step %q", name)
}

// Stage is the closed set of flow positions. Lead fields only exist on the
// stages that have collected them.
type Stage interface {
	Step() Step
	stage()
}

type Menu struct{}

type CollectingName struct{}

type CollectingEmail struct {
	Name string
}

type CollectingProject struct {
	Name  string
	Email string
}

// OfferingCall is reached once the lead has been written.
type OfferingCall struct {
	Lead Lead
}

func (Menu) Step() Step              { return StepMenu }
func (CollectingName) Step() Step    { return StepCollectName }
func (CollectingEmail) Step() Step   { return StepCollectEmail }
func (CollectingProject) Step() Step { return StepCollectProject }
func (OfferingCall) Step() Step      { return StepOfferCall }

func (Menu) stage()              {}
func (CollectingName) stage()    {}
func (CollectingEmail) stage()   {}
func (CollectingProject) stage() {}
func (OfferingCall) stage()      {}

// ConversationState is the per-sender dialogue state.
type ConversationState struct {
	Stage     Stage
	LastTopic Topic
}

// NewConversationState returns the state of a fresh or reset conversant.
func NewConversationState() ConversationState {
	return ConversationState{Stage: Menu{}}
}

// Step reports the current step, treating a zero state as MENU.
func (s ConversationState) Step() Step {
	if s.Stage == nil {
		return StepMenu
	}
	return s.Stage.Step()
}

// Lead is a completed lead-capture record.
type Lead struct {
	Name           string
	Email          string
	ProjectDetails string
}

// stateRecord is the flat wire form used by persistent stores.
type stateRecord struct {
	Step           string `json:"step"`
	LastTopic      Topic  `json:"last_topic,omitempty"`
	Name           string `json:"name,omitempty"`
	Email          string `json:"email,omitempty"`
	ProjectDetails string `json:"project_details,omitempty"`
}

func (s ConversationState) MarshalJSON() ([]byte, error) {
	rec := stateRecord{Step: s.Step().String(), LastTopic: s.LastTopic}
	switch st := s.Stage.(type) {
	case CollectingEmail:
		rec.Name = st.Name
	case CollectingProject:
		rec.Name, rec.Email = st.Name, st.Email
	case OfferingCall:
		rec.Name, rec.Email, rec.ProjectDetails = st.Lead.Name, st.Lead.Email, st.Lead.ProjectDetails
	}
	return json.Marshal(rec)
}

func (s *ConversationState) UnmarshalJSON(data []byte) error {
	var rec stateRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	step, err := ParseStep(rec.Step)
	if err != nil {
		return err
	}

	s.LastTopic = rec.LastTopic
	switch step {
	case StepCollectName:
		s.Stage = CollectingName{}
	case StepCollectEmail:
		s.Stage = CollectingEmail{Name: rec.Name}
	case StepCollectProject:
		s.Stage = CollectingProject{Name: rec.Name, Email: rec.Email}
	case StepOfferCall:
		s.Stage = OfferingCall{Lead: Lead{Name: rec.Name, Email: rec.Email, ProjectDetails: rec.ProjectDetails}}
	default:
		s.Stage = Menu{}
	}
	return nil
}
