package chatbot

// Pair is a completed query ready for the classifier.
type Pair struct {
	Food      string `json:"food"`
	Condition string `json:"condition"`
}

// Memory is what one conversation has learned so far.
type Memory struct {
	Food      string `json:"food,omitempty"`
	Condition string `json:"condition,omitempty"`
}

// Merge copies the found slots of e into m. Slots e did not find are left untouched.
func (m *Memory) Merge(e Extraction) {
	if e.Food != "" {
		m.Food = e.Food
	}
	if e.Condition != "" {
		m.Condition = e.Condition
	}
}

// Reset forgets both slots.
func (m *Memory) Reset() {
	*m = Memory{}
}

// Snapshot returns a detached copy of the slots.
func (m Memory) Snapshot() Pair {
	return Pair{Food: m.Food, Condition: m.Condition}
}

// State classifies the memory by which slots are filled.
func (m Memory) State() State {
	switch {
	case m.Food != "" && m.Condition != "":
		return StateComplete
	case m.Food != "":
		return StateFoodOnly
	case m.Condition != "":
		return StateConditionOnly
	default:
		return StateEmpty
	}
}
