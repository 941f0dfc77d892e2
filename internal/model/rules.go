package model

import (
	"errors"
	"fmt"
)

// ErrInvalidSubmission is the root of every validation failure. Handlers
// match on it to surface the message to the operator; nothing wrapping it
// is ever persisted.
var ErrInvalidSubmission = errors.New("invalid submission")

// Validation errors surfaced to the operator before anything is persisted
var (
	ErrMissingSignature = fmt.Errorf("%w: a signature is required before submitting", ErrInvalidSubmission)
	ErrIncompleteForm   = fmt.Errorf("%w: every item must be answered before submitting", ErrInvalidSubmission)
)

// ChecklistInput is a candidate answer for one catalog item
type ChecklistInput struct {
	Result      ResultCode
	Observation string
}

// ValidateChecklist checks a candidate submission against the fixed catalog:
// every item answered with a valid code, no unknown items, and every defect
// carrying an observation. It is a pure check; callers must block
// persistence on error.
func ValidateChecklist(answers map[ItemID]ChecklistInput) error {
	for item := range answers {
		if !KnownItem(item) {
			return fmt.Errorf("%w: unknown checklist item %q", ErrInvalidSubmission, item)
		}
	}

	for _, item := range CatalogItems() {
		answer, ok := answers[item]
		if !ok {
			return ErrIncompleteForm
		}
		if !answer.Result.Valid() {
			return fmt.Errorf("%w: item %q has invalid result %q", ErrInvalidSubmission, item, answer.Result)
		}
		if answer.Result == ResultDefect && answer.Observation == "" {
			return fmt.Errorf("%w: item %q is marked defect but has no observation", ErrInvalidSubmission, item)
		}
	}

	return nil
}

// Adjudicate decides the initial status of a validated checklist. A defect
// on any critical item rejects the submission at creation time and records
// the auto-reject sentinel as reviewer; otherwise the record enters the
// pending queue with no reviewer.
func Adjudicate(answers map[ItemID]ChecklistInput) (Status, *string) {
	for item, answer := range answers {
		if item.Critical() && answer.Result == ResultDefect {
			reviewer := ReviewerAutoReject
			return StatusRejected, &reviewer
		}
	}
	return StatusPending, nil
}

// FatigueQuestionCount is the fixed number of fatigue questionnaire entries
const FatigueQuestionCount = 9

// FatigueQuestions is the fixed questionnaire, indexed 0..8
var FatigueQuestions = [FatigueQuestionCount]string{
	"Have you slept enough to confirm you are fit for duty and free of tiredness?",
	"Are you free of physical health problems that would impair your work?",
	"Are you emotionally well enough to perform your work properly?",
	"Are you in optimal condition, without alcohol consumption or influence?",
	"Are you in condition without consumption or influence of illicit drugs?",
	"Am I taking medication that prevents me from operating or alters my concentration? Did I declare it?",
	"Are you free of medication that could affect your mental or physical driving capacity?",
	"Have you visited a health facility for an ailment that makes driving difficult?",
	"Do I feel sick or fatigued?",
}

// fatigueExpectNo marks the question indices whose safe answer is "no";
// every other question expects "yes".
var fatigueExpectNo = map[int]bool{5: true, 7: true, 8: true}

// FatigueInput is the candidate answer for one fatigue question
type FatigueInput struct {
	Answer FatigueAnswer
	Remark string
}

// ValidateFatigue checks that all nine questions carry a yes/no answer
func ValidateFatigue(answers map[int]FatigueInput) error {
	for index := range answers {
		if index < 0 || index >= FatigueQuestionCount {
			return fmt.Errorf("%w: unknown fatigue question index %d", ErrInvalidSubmission, index)
		}
	}
	for index := 0; index < FatigueQuestionCount; index++ {
		answer, ok := answers[index]
		if !ok {
			return ErrIncompleteForm
		}
		if !answer.Answer.Valid() {
			return fmt.Errorf("%w: question %d has invalid answer %q", ErrInvalidSubmission, index, answer.Answer)
		}
	}
	return nil
}

// CountFatigueErrors derives the number of answers deviating from the
// expected safe answer. Questions 5, 7 and 8 expect "no"; the rest "yes".
func CountFatigueErrors(answers map[int]FatigueInput) int {
	errorCount := 0
	for index, answer := range answers {
		if fatigueExpectNo[index] {
			if answer.Answer != AnswerNo {
				errorCount++
			}
		} else if answer.Answer != AnswerYes {
			errorCount++
		}
	}
	return errorCount
}
