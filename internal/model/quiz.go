package model

import (
	"fmt"
	"time"
)

// Quiz is a teacher-authored template. A live session carries a frozen copy of it.
type Quiz struct {
	Key        string    `json:"key" bson:"_id"`
	Login      string    `json:"login" bson:"login"` // owner teacher
	Code       string    `json:"code" bson:"code"`
	Name       string    `json:"name" bson:"name"`
	Categories []string  `json:"categories" bson:"categories"`
	Items      QuizItems `json:"quizes" bson:"quizes"`
	CreatedAt  time.Time `json:"-" bson:"createdAt"`
	UpdatedAt  time.Time `json:"-" bson:"updatedAt"`
}

// ItemAt returns the item whose position equals position.
func (q Quiz) ItemAt(position int) (QuizItem, bool) {
	for _, item := range q.Items {
		if item.ItemPosition() == position {
			return item, true
		}
	}
	return nil, false
}

// WithItem returns a copy of q where item replaces the item at its position,
// or is appended when its position is one past the last. Positions run 1..N
// without gaps so a live can walk every item.
func (q Quiz) WithItem(item QuizItem) (Quiz, error) {
	position := item.ItemPosition()
	items := append(QuizItems(nil), q.Items...)
	for i, existing := range items {
		if existing.ItemPosition() == position {
			items[i] = item
			q.Items = items
			return q, nil
		}
	}
	if position != len(items)+1 {
		return q, InvalidField("position", fmt.Sprintf("must be between 1 and %d", len(items)+1))
	}
	q.Items = append(items, item)
	return q, nil
}

// WithoutItem returns a copy of q with the item at position removed and the
// items after it moved up by one.
func (q Quiz) WithoutItem(position int) (Quiz, bool) {
	items := make(QuizItems, 0, len(q.Items))
	found := false
	for _, existing := range q.Items {
		if existing.ItemPosition() == position {
			found = true
			continue
		}
		items = append(items, existing)
	}
	for i, item := range items {
		if item.ItemPosition() != i+1 {
			items[i] = atPosition(item, i+1)
		}
	}
	q.Items = items
	return q, found
}

// checkPositions fails unless items sit at positions 1..N in order
func (q Quiz) checkPositions() error {
	for i, item := range q.Items {
		if item.ItemPosition() != i+1 {
			return InvalidField("quiz", fmt.Sprintf("item %d is at position %d, want %d", i, item.ItemPosition(), i+1))
		}
	}
	return nil
}

func atPosition(item QuizItem, position int) QuizItem {
	doc := ToDoc(item)
	doc.Position = position
	moved, err := doc.Item()
	if err != nil {
		// unreachable: doc.Type comes from a known variant
		return item
	}
	return moved
}

// Clone deep-copies the quiz so a snapshot never shares slices or maps with its source.
func (q Quiz) Clone() Quiz {
	q.Categories = append([]string(nil), q.Categories...)
	items := make(QuizItems, len(q.Items))
	for i, item := range q.Items {
		doc := ToDoc(item)
		doc.Options = append([]string(nil), doc.Options...)
		doc.ExpectedAnswers = append([]string(nil), doc.ExpectedAnswers...)
		if doc.LiveAnswers != nil {
			answers := make(map[string][]string, len(doc.LiveAnswers))
			for k, v := range doc.LiveAnswers {
				answers[k] = append([]string(nil), v...)
			}
			doc.LiveAnswers = answers
		}
		// doc came from a valid item, so its type is always known
		items[i], _ = doc.Item()
	}
	q.Items = items
	return q
}

// CreateQuizRequest is the body of POST /v1/quizzes
type CreateQuizRequest struct {
	Name       string   `json:"name"`
	Categories []string `json:"categories"`
}
