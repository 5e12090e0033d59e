package domain

// Stage is what presenter and participants currently see for the active
// question. The cycle is question -> answer -> results -> next, where next
// is a transient hop to the following question (or the end of the quiz).
type Stage string

const (
	StageQuestion Stage = "question"
	StageAnswer   Stage = "answer"
	StageResults  Stage = "results"
	StageNext     Stage = "next"
)

// Next returns the stage that follows s in the cycle.
func (s Stage) Next() Stage {
	switch s {
	case StageQuestion:
		return StageAnswer
	case StageAnswer:
		return StageResults
	case StageResults:
		return StageNext
	default:
		return StageQuestion
	}
}

// ShowsResults reports whether the correct option is revealed at this stage.
func (s Stage) ShowsResults() bool {
	return s == StageAnswer || s == StageResults
}

// Valid reports whether s is one of the four known stages.
func (s Stage) Valid() bool {
	switch s {
	case StageQuestion, StageAnswer, StageResults, StageNext:
		return true
	}
	return false
}
