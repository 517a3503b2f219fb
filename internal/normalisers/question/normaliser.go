// Package question normalises written-question payloads into the flat
// question archive schemas and derives the cleaned, comparable question
// text.
package question

import (
	"fmt"

	"github.com/westminster-data/parlsync/internal/core/domain"
	"github.com/westminster-data/parlsync/internal/core/ports/driven"
	"github.com/westminster-data/parlsync/internal/normalisers/flatten"
)

// Ensure Normaliser implements the port.
var _ driven.RecordNormaliser = (*Normaliser)(nil)

// answeredSchema is the column set of the answered-questions archive.
var answeredSchema = domain.Schema{
	"id",
	"askingMemberId",
	"house",
	"memberHasInterest",
	"dateTabled",
	"dateAnswered",
	"answeringBodyId",
	"answeringBodyName",
	"uin",
	"heading",
	"questionText",
	"cleanedQuestionText",
	"answerText",
	"isWithdrawn",
	"isNamedDay",
}

// tabledSchema is the column set of the tabled-questions archive. It carries
// no answer columns: questions enter it before they are answered, and a row
// that later grew answer fields would never dedupe against its earlier self.
var tabledSchema = domain.Schema{
	"id",
	"askingMemberId",
	"house",
	"memberHasInterest",
	"dateTabled",
	"answeringBodyId",
	"answeringBodyName",
	"uin",
	"heading",
	"questionText",
	"cleanedQuestionText",
}

// volatileColumns are dropped from every question record before persisting.
// The flattener already skips the list-valued ones; the explicit list keeps
// the contract visible and covers scalar stragglers.
var volatileColumns = []string{
	"attachments",
	"groupedQuestions",
	"groupedQuestionsDates",
	"attachmentCount",
}

// Normaliser flattens question payloads for one of the two question
// archives.
type Normaliser struct {
	kind domain.ArchiveKind
}

// NewAnswered creates the normaliser for the answered-questions archive.
func NewAnswered() *Normaliser {
	return &Normaliser{kind: domain.QuestionsAnswered}
}

// NewTabled creates the normaliser for the tabled-questions archive.
func NewTabled() *Normaliser {
	return &Normaliser{kind: domain.QuestionsTabled}
}

// Schema returns the column set for the normaliser's archive.
func (n *Normaliser) Schema() domain.Schema {
	if n.kind == domain.QuestionsTabled {
		return tabledSchema
	}
	return answeredSchema
}

// Normalise maps one raw question payload to a flat record and fills the
// cleanedQuestionText column.
func (n *Normaliser) Normalise(raw domain.RawRecord) (domain.Record, error) {
	flat := flatten.Map(raw, "")

	for _, col := range volatileColumns {
		delete(flat, col)
	}

	if flat["id"] == "" {
		return nil, fmt.Errorf("%w: question record missing id", domain.ErrSchema)
	}
	watermark := n.kind.WatermarkField()
	if flat[watermark] == "" {
		return nil, fmt.Errorf("%w: question %s missing %s", domain.ErrSchema, flat["id"], watermark)
	}

	flat["cleanedQuestionText"] = CleanText(flat["questionText"])

	return domain.Project(flat, n.Schema()), nil
}
