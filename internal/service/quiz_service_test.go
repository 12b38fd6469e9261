package service

import (
	"context"
	"testing"
	"time"

	"quizlive/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuizAuthoring(t *testing.T) {
	ctx := context.Background()
	repo := newFakeQuizRepo()
	svc := NewQuizService(repo, time.Minute)
	teacher := &model.Claims{Login: "marie", Code: "1234", Role: model.RoleTeacher}

	quiz, err := svc.Create(ctx, teacher, model.CreateQuizRequest{Name: " Capitals ", Categories: []string{"geo"}})
	require.NoError(t, err)
	assert.Equal(t, "Capitals", quiz.Name)
	assert.NotEmpty(t, quiz.Key)

	_, err = svc.PutItem(ctx, teacher, quiz.Key, model.TitleSlide{Position: 2, Title: "End"})
	assert.ErrorIs(t, err, model.ErrValidation, "positions start at 1 without gaps")

	_, err = svc.PutItem(ctx, teacher, quiz.Key, model.TitleSlide{Position: 1, Title: "Start"})
	require.NoError(t, err)
	_, err = svc.PutItem(ctx, teacher, quiz.Key, model.TitleSlide{Position: 2, Title: "End"})
	require.NoError(t, err)
	quiz, err = svc.PutItem(ctx, teacher, quiz.Key, model.TrueFalse{
		Scored:    model.Scored{Position: 1, ExpectedAnswers: []string{model.AnswerTrue}, TimerSeconds: 10, Reward: 5},
		Statement: "Paris is in France",
	})
	require.NoError(t, err)
	require.Len(t, quiz.Items, 2)
	assert.Equal(t, model.ItemTrueFalse, quiz.Items[0].Type())

	_, err = svc.PutItem(ctx, teacher, quiz.Key, model.TrueFalse{Scored: model.Scored{Position: 3}})
	var domainErr *model.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "statement", domainErr.Field)

	quiz, err = svc.RemoveItem(ctx, teacher, quiz.Key, 1)
	require.NoError(t, err)
	require.Len(t, quiz.Items, 1)
	assert.Equal(t, model.ItemTitleSlide, quiz.Items[0].Type())
	assert.Equal(t, 1, quiz.Items[0].ItemPosition(), "later items move up")
	_, err = svc.RemoveItem(ctx, teacher, quiz.Key, 2)
	assert.ErrorIs(t, err, model.ErrNotFound)

	other := &model.Claims{Login: "paul", Code: "1", Role: model.RoleTeacher}
	_, err = svc.Get(ctx, other, quiz.Key)
	assert.ErrorIs(t, err, model.ErrUnauthorized)
	pupil := &model.Claims{Login: "alice", Code: "11", Role: model.RolePupil}
	_, err = svc.Create(ctx, pupil, model.CreateQuizRequest{Name: "x"})
	assert.ErrorIs(t, err, model.ErrUnauthorized)

	list, err := svc.ListByTeacher(ctx, teacher)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestFetchQuizSnapshotIsCachedCopy(t *testing.T) {
	ctx := context.Background()
	repo := newFakeQuizRepo()
	quiz := quizFixture()
	require.NoError(t, repo.Create(ctx, &quiz))
	svc := NewQuizService(repo, time.Minute)

	first, err := svc.FetchQuizSnapshot(ctx, "quiz-1")
	require.NoError(t, err)
	first.Categories = append(first.Categories, "mutated")
	first.Items[0] = model.TitleSlide{Position: 1, Title: "mutated"}

	second, err := svc.FetchQuizSnapshot(ctx, "quiz-1")
	require.NoError(t, err)
	assert.Equal(t, model.ItemMultipleChoice, second.Items[0].Type())
	assert.Empty(t, second.Categories)
	assert.Equal(t, 1, repo.reads, "second fetch served from cache")

	teacher := &model.Claims{Login: "marie", Code: "1234", Role: model.RoleTeacher}
	_, err = svc.PutItem(ctx, teacher, "quiz-1", model.TitleSlide{Position: 3, Title: "Bye"})
	require.NoError(t, err)
	third, err := svc.FetchQuizSnapshot(ctx, "quiz-1")
	require.NoError(t, err)
	assert.Len(t, third.Items, 3, "writes invalidate the cache")

	_, err = svc.FetchQuizSnapshot(ctx, "missing")
	assert.ErrorIs(t, err, model.ErrNotFound)
}
