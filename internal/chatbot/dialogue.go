package chatbot

import (
	"fmt"

	"FoodAdvisor_V0.1/internal/utility"
)

// State is the position of a conversation in the slot-filling flow.
type State int

const (
	StateEmpty State = iota
	StateFoodOnly
	StateConditionOnly
	StateComplete
)

func (s State) String() string {
	switch s {
	case StateFoodOnly:
		return "FOOD_ONLY"
	case StateConditionOnly:
		return "CONDITION_ONLY"
	case StateComplete:
		return "COMPLETE"
	default:
		return "EMPTY"
	}
}

// MarshalText renders the state by name in JSON payloads.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText accepts the names produced by MarshalText.
func (s *State) UnmarshalText(text []byte) error {
	switch string(text) {
	case "EMPTY":
		*s = StateEmpty
	case "FOOD_ONLY":
		*s = StateFoodOnly
	case "CONDITION_ONLY":
		*s = StateConditionOnly
	case "COMPLETE":
		*s = StateComplete
	default:
		return fmt.Errorf("unknown dialogue state %q", text)
	}
	return nil
}

const greetingPrompt = "Hello! I can help you with food recommendations for your health condition. What food are you thinking of?"

// Turn is the controller's answer to one utterance.
type Turn struct {
	Response string
	State    State

	// Completed is set only when this turn reached StateComplete.
	Completed *Pair
}

// ProcessTurn merges what the utterance mentions into mem and decides what to say next.
//
// It never fails: an utterance with no known entity leaves mem unchanged and repeats the
// prompt of the current state. Reaching StateComplete does not reset mem; the caller does
// that once the hand-off has succeeded.
//
// A pair is completed only by a turn that mentions a food or a condition. Memory still
// complete from a failed hand-off waits for the user to name either slot again.
func ProcessTurn(mem *Memory, utterance string, v *Vocabulary) Turn {
	prev := mem.State()
	extraction := Extract(utterance, v)
	mem.Merge(extraction)

	if prev == StateComplete && extraction.Empty() {
		return Turn{
			State: StateComplete,
			Response: fmt.Sprintf("I still have **%s** and **%s** noted, but couldn't check them yet. Mention the food or the condition again to retry.",
				utility.Capitalize(mem.Food), utility.Capitalize(mem.Condition)),
		}
	}
	return respond(*mem)
}

func respond(mem Memory) Turn {
	state := mem.State()
	turn := Turn{State: state}

	switch state {
	case StateComplete:
		turn.Response = fmt.Sprintf("Okay, I'm checking if **%s** is suitable for **%s**.",
			utility.Capitalize(mem.Food), utility.Capitalize(mem.Condition))
		pair := mem.Snapshot()
		turn.Completed = &pair
	case StateFoodOnly:
		turn.Response = fmt.Sprintf("Got it, you're asking about **%s**. To give you the best advice, could you please tell me your health condition?",
			utility.Capitalize(mem.Food))
	case StateConditionOnly:
		turn.Response = fmt.Sprintf("Okay, for your condition (**%s**), what food are you curious about?",
			utility.Capitalize(mem.Condition))
	default:
		turn.Response = greetingPrompt
	}

	return turn
}
