package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	mc := MultipleChoice{Scored: Scored{Position: 1, ExpectedAnswers: []string{"A", "B"}}, Options: []string{"A", "B", "C"}}
	tests := []struct {
		name   string
		item   QuizItem
		values []string
		want   bool
	}{
		{name: "multiple choice exact", item: mc, values: []string{"A", "B"}, want: true},
		{name: "multiple choice superset", item: mc, values: []string{"A", "B", "C"}, want: true},
		{name: "multiple choice subset", item: mc, values: []string{"A"}, want: false},
		{name: "multiple choice order ignored", item: mc, values: []string{"B", "A"}, want: true},
		{name: "fill space", item: FillSpace{Scored: Scored{ExpectedAnswers: []string{"Paris"}}}, values: []string{"Paris"}, want: true},
		{name: "fill space miss", item: FillSpace{Scored: Scored{ExpectedAnswers: []string{"Paris"}}}, values: []string{"Rome"}, want: false},
		{name: "true false", item: TrueFalse{Scored: Scored{ExpectedAnswers: []string{AnswerTrue}}}, values: []string{AnswerTrue}, want: true},
		{name: "true false miss", item: TrueFalse{Scored: Scored{ExpectedAnswers: []string{AnswerTrue}}}, values: []string{AnswerFalse}, want: false},
		{name: "word cloud any value", item: WordCloud{}, values: []string{"whatever"}, want: true},
		{name: "word cloud sentinel", item: WordCloud{}, values: []string{NotAnswered}, want: false},
		{name: "open text ignores expected", item: OpenText{Scored: Scored{ExpectedAnswers: []string{"x"}}}, values: []string{"y"}, want: true},
		{name: "open text empty", item: OpenText{}, values: []string{}, want: false},
		{name: "poll answered", item: Poll{Options: []string{"a", "b"}}, values: []string{"a"}, want: true},
		{name: "poll sentinel", item: Poll{}, values: []string{NotAnswered}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(tt.item, tt.values)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluateRejectsSlides(t *testing.T) {
	for _, item := range []QuizItem{TitleSlide{Position: 1}, TextSlide{Position: 2}, MediaSlide{Position: 3}} {
		_, err := Evaluate(item, []string{"A"})
		assert.True(t, errors.Is(err, ErrInternalState), "%s", item.Type())
	}
}

func TestEveryItemTypeDecodesAndEvaluates(t *testing.T) {
	for _, typ := range AllQuizItemTypes {
		item, err := QuizItemDoc{Type: typ, Position: 1, ExpectedAnswers: []string{"A"}}.Item()
		require.NoError(t, err, typ)
		assert.Equal(t, typ, item.Type())

		_, err = Evaluate(item, []string{"A"})
		if _, scored := item.(ScoredItem); scored {
			assert.NoError(t, err, typ)
		} else {
			assert.ErrorIs(t, err, ErrInternalState, typ)
		}
	}
}
