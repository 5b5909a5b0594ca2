package enums

import "fmt"

// OrderStage identifies the phase of a staged order. Orders created through
// the staged flow walk the fixed sequence starters -> main_course -> desserts
// and end in the terminal finalized stage.
type OrderStage string

const (
	StageStarters   OrderStage = "starters"
	StageMainCourse OrderStage = "main_course"
	StageDesserts   OrderStage = "desserts"
	StageFinalized  OrderStage = "finalized"
)

// stageSequence is the composition order; finalized is terminal and never
// part of the sequence.
var stageSequence = []OrderStage{
	StageStarters,
	StageMainCourse,
	StageDesserts,
}

var validOrderStages = []OrderStage{
	StageStarters,
	StageMainCourse,
	StageDesserts,
	StageFinalized,
}

// String implements fmt.Stringer.
func (s OrderStage) String() string {
	return string(s)
}

// IsValid reports whether the value is a known OrderStage.
func (s OrderStage) IsValid() bool {
	for _, candidate := range validOrderStages {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsActive reports whether the stage is part of the composition sequence.
func (s OrderStage) IsActive() bool {
	for _, candidate := range stageSequence {
		if candidate == s {
			return true
		}
	}
	return false
}

// Position returns the zero-based index of the stage within the composition
// sequence, or -1 for finalized/unknown stages.
func (s OrderStage) Position() int {
	for i, candidate := range stageSequence {
		if candidate == s {
			return i
		}
	}
	return -1
}

// Next returns the following stage in the sequence. Advancing from the last
// stage is not a stage move; callers must finalize instead.
func (s OrderStage) Next() (OrderStage, bool) {
	pos := s.Position()
	if pos < 0 || pos >= len(stageSequence)-1 {
		return "", false
	}
	return stageSequence[pos+1], true
}

// Previous returns the preceding stage in the sequence.
func (s OrderStage) Previous() (OrderStage, bool) {
	pos := s.Position()
	if pos <= 0 {
		return "", false
	}
	return stageSequence[pos-1], true
}

// ActiveStages returns the composition sequence in order.
func ActiveStages() []OrderStage {
	stages := make([]OrderStage, len(stageSequence))
	copy(stages, stageSequence)
	return stages
}

// ParseOrderStage converts raw input into an OrderStage.
func ParseOrderStage(value string) (OrderStage, error) {
	for _, candidate := range validOrderStages {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order stage %q", value)
}
