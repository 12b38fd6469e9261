package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestQuizItemValidate(t *testing.T) {
	scored := Scored{Position: 1, ExpectedAnswers: []string{"A"}, TimerSeconds: 20, Reward: 5}
	tests := []struct {
		name  string
		item  QuizItem
		field string
	}{
		{name: "valid multiple choice", item: MultipleChoice{Scored: scored, Question: "q", Options: []string{"A", "B"}}},
		{name: "multiple choice without question", item: MultipleChoice{Scored: scored, Options: []string{"A", "B"}}, field: "question"},
		{name: "multiple choice one option", item: MultipleChoice{Scored: scored, Question: "q", Options: []string{"A"}}, field: "options"},
		{name: "multiple choice expected not an option", item: MultipleChoice{Scored: scored, Question: "q", Options: []string{"B", "C"}}, field: "expectedAnswers"},
		{name: "multiple choice without timer", item: MultipleChoice{Scored: Scored{Position: 1, ExpectedAnswers: []string{"A"}, Reward: 5}, Question: "q", Options: []string{"A", "B"}}, field: "timer"},
		{name: "multiple choice without reward", item: MultipleChoice{Scored: Scored{Position: 1, ExpectedAnswers: []string{"A"}, TimerSeconds: 5}, Question: "q", Options: []string{"A", "B"}}, field: "reward"},
		{name: "fill space without sentence", item: FillSpace{Scored: scored}, field: "sentence"},
		{name: "fill space without expected", item: FillSpace{Scored: Scored{Position: 1, TimerSeconds: 5, Reward: 5}, Sentence: "___ is red"}, field: "expectedAnswers"},
		{name: "true false bad expected", item: TrueFalse{Scored: scored, Statement: "s"}, field: "expectedAnswers"},
		{name: "valid true false", item: TrueFalse{Scored: Scored{Position: 1, ExpectedAnswers: []string{AnswerFalse}, TimerSeconds: 5, Reward: 5}, Statement: "s"}},
		{name: "open text without position", item: OpenText{Scored: Scored{TimerSeconds: 5, Reward: 5}, Question: "q"}, field: "position"},
		{name: "valid poll without reward", item: Poll{Scored: Scored{Position: 2, TimerSeconds: 5}, Question: "q", Options: []string{"x", "y"}}},
		{name: "word cloud without timer", item: WordCloud{Scored: Scored{Position: 2}, Question: "q"}, field: "timer"},
		{name: "title slide without title", item: TitleSlide{Position: 1}, field: "title"},
		{name: "text slide without text", item: TextSlide{Position: 1, Title: "t"}, field: "text"},
		{name: "media slide without url", item: MediaSlide{Position: 1}, field: "url"},
		{name: "valid media slide", item: MediaSlide{Position: 1, URL: "https://example.com/a.png"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.item.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var domainErr *Error
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, KindValidation, domainErr.Kind)
			assert.Equal(t, tt.field, domainErr.Field)
		})
	}
}

func TestQuizItemsJSONDiscriminator(t *testing.T) {
	quiz := twoItemQuiz()
	quiz.Items = append(quiz.Items, TitleSlide{Position: 3, Title: "Bye"})

	raw, err := json.Marshal(quiz)
	require.NoError(t, err)

	var shape struct {
		Quizes []map[string]any `json:"quizes"`
	}
	require.NoError(t, json.Unmarshal(raw, &shape))
	require.Len(t, shape.Quizes, 3)
	assert.Equal(t, "MULTIPLE_CHOICE", shape.Quizes[0]["type"])
	assert.Equal(t, "WORD_CLOUD", shape.Quizes[1]["type"])
	assert.Equal(t, "TITLE_SLIDE", shape.Quizes[2]["type"])

	var decoded Quiz
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, quiz.Items, decoded.Items)
}

func TestQuizItemsBSON(t *testing.T) {
	quiz := twoItemQuiz()
	raw, err := bson.Marshal(quiz)
	require.NoError(t, err)

	var decoded Quiz
	require.NoError(t, bson.Unmarshal(raw, &decoded))
	assert.Equal(t, quiz.Items, decoded.Items)
}

func TestQuizItemsRejectUnknownType(t *testing.T) {
	var items QuizItems
	err := json.Unmarshal([]byte(`[{"type":"CROSSWORD","position":1}]`), &items)
	assert.ErrorIs(t, err, ErrValidation)

	err = json.Unmarshal([]byte(`[{"position":1}]`), &items)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestQuizWithItemKeepsPositionsContiguous(t *testing.T) {
	quiz := Quiz{Items: QuizItems{}}
	quiz, err := quiz.WithItem(TitleSlide{Position: 1, Title: "a"})
	require.NoError(t, err)
	quiz, err = quiz.WithItem(TextSlide{Position: 2, Title: "b", Text: "b"})
	require.NoError(t, err)
	quiz, err = quiz.WithItem(TitleSlide{Position: 1, Title: "a2"})
	require.NoError(t, err)
	require.Len(t, quiz.Items, 2)
	assert.Equal(t, "a2", quiz.Items[0].(TitleSlide).Title)

	_, err = quiz.WithItem(TitleSlide{Position: 4, Title: "gap"})
	var domainErr *Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "position", domainErr.Field)
	assert.Len(t, quiz.Items, 2, "rejected item leaves the quiz untouched")
}

func TestQuizWithoutItemRenumbers(t *testing.T) {
	quiz := Quiz{Items: QuizItems{
		TitleSlide{Position: 1, Title: "a"},
		TextSlide{Position: 2, Title: "b", Text: "b"},
		MultipleChoice{Scored: Scored{Position: 3, ExpectedAnswers: []string{"A"}}, Question: "q", Options: []string{"A", "B"}},
	}}

	updated, found := quiz.WithoutItem(2)
	require.True(t, found)
	require.Len(t, updated.Items, 2)
	assert.Equal(t, 2, updated.Items[1].ItemPosition())
	assert.Equal(t, ItemMultipleChoice, updated.Items[1].Type())
	assert.Equal(t, 3, quiz.Items[2].ItemPosition(), "source quiz is untouched")

	// every remaining item is reachable by a live
	live, err := NewLive("Live-1-marie#1234", "marie", "1234", updated, t0)
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		live, err = live.NextPosition(t0)
		require.NoError(t, err)
	}
	assert.Equal(t, LiveProgress, live.Status)
	live, err = live.SubmitAnswer("alice", "11", []string{"A"}, t0)
	require.NoError(t, err)
	assert.True(t, live.Evaluation["alice#11"][0].Hit)

	_, found = updated.WithoutItem(9)
	assert.False(t, found)
}

func TestNewLiveRejectsPositionGaps(t *testing.T) {
	quiz := Quiz{Items: QuizItems{TitleSlide{Position: 1, Title: "a"}, TitleSlide{Position: 3, Title: "c"}}}
	_, err := NewLive("Live-1-marie#1234", "marie", "1234", quiz, t0)
	var domainErr *Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "quiz", domainErr.Field)
}
