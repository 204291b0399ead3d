package model

import "fmt"

// RecordStatus is the review lifecycle position of an assessment record.
type RecordStatus string

const (
	StatusDraft       RecordStatus = "draft"
	StatusSubmitted   RecordStatus = "submitted"
	StatusUnderReview RecordStatus = "under_review"
	StatusReturned    RecordStatus = "returned"
	StatusApproved    RecordStatus = "approved" // terminal
)

// ReviewAction is one of the fixed verbs that move a record through review.
type ReviewAction string

const (
	ActionSubmit  ReviewAction = "submit"
	ActionClaim   ReviewAction = "claim"
	ActionReturn  ReviewAction = "return"
	ActionApprove ReviewAction = "approve"
)

// TransitionError reports an action attempted from a status it is not legal in.
type TransitionError struct {
	Action  ReviewAction
	Current RecordStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s a record in status '%s'", e.Action, e.Current)
}

// transitionTable is the single source of truth for legal status moves.
// Every review entry point goes through Transition; no handler compares
// statuses on its own.
var transitionTable = map[ReviewAction]struct {
	from []RecordStatus
	to   RecordStatus
}{
	ActionSubmit:  {from: []RecordStatus{StatusDraft, StatusReturned}, to: StatusSubmitted},
	ActionClaim:   {from: []RecordStatus{StatusSubmitted}, to: StatusUnderReview},
	ActionReturn:  {from: []RecordStatus{StatusUnderReview}, to: StatusReturned},
	ActionApprove: {from: []RecordStatus{StatusUnderReview}, to: StatusApproved},
}

// Transition validates an action against the current status and returns the
// resulting status. It is pure: no I/O, no side effects.
func Transition(action ReviewAction, current RecordStatus) (RecordStatus, error) {
	entry, ok := transitionTable[action]
	if !ok {
		return "", &TransitionError{Action: action, Current: current}
	}
	for _, from := range entry.from {
		if from == current {
			return entry.to, nil
		}
	}
	return "", &TransitionError{Action: action, Current: current}
}

// ParseReviewAction validates a wire string against the closed action set.
func ParseReviewAction(s string) (ReviewAction, bool) {
	switch ReviewAction(s) {
	case ActionSubmit, ActionClaim, ActionReturn, ActionApprove:
		return ReviewAction(s), true
	}
	return "", false
}

// ParseRecordStatus validates a wire string against the closed status set.
func ParseRecordStatus(s string) (RecordStatus, bool) {
	switch RecordStatus(s) {
	case StatusDraft, StatusSubmitted, StatusUnderReview, StatusReturned, StatusApproved:
		return RecordStatus(s), true
	}
	return "", false
}
