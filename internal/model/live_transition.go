package model

import "time"

// Transition is a pure step from one live snapshot to the next.
type Transition func(Live) (Live, error)

// NewLive opens a live for the teacher login#code on a frozen copy of quiz.
func NewLive(key, login, code string, quiz Quiz, now time.Time) (Live, error) {
	if key == "" {
		return Live{}, MissingField("key")
	}
	if len(quiz.Items) == 0 {
		return Live{}, InvalidField("quiz", "has no items")
	}
	if err := quiz.checkPositions(); err != nil {
		return Live{}, err
	}
	return Live{
		Key:        key,
		StartedOn:  now,
		UpdateOn:   now,
		Status:     LivePending,
		Evaluation: Evaluation{},
		Lobby:      Lobby{},
		Quiz:       quiz.Clone(),
		Teacher:    LiveTeacher{Login: login, Code: code},
	}, nil
}

func (l Live) open() error {
	if l.IsCompleted() {
		return InvalidField("status", "live "+l.Key+" is already completed")
	}
	return nil
}

// NextPosition moves to the next item and completes the live once the
// position runs past the last item.
func (l Live) NextPosition(now time.Time) (Live, error) {
	if err := l.open(); err != nil {
		return l, err
	}
	l.Teacher.Control.CurrentPosition++
	l.Status = LiveProgress
	l.UpdateOn = now
	if l.Teacher.Control.CurrentPosition > len(l.Quiz.Items) {
		l.complete(now)
	}
	return l, nil
}

// PreviousPosition moves back one item. There is no lower bound: a position
// below zero has no item, so answers there are ignored.
func (l Live) PreviousPosition(now time.Time) (Live, error) {
	if err := l.open(); err != nil {
		return l, err
	}
	l.Teacher.Control.CurrentPosition--
	l.UpdateOn = now
	return l, nil
}

func (l Live) AddPupilToLobby(login, code string, now time.Time) (Live, error) {
	if err := l.open(); err != nil {
		return l, err
	}
	l.Lobby = l.Lobby.with(ParticipantKey(login, code))
	l.Engagement.ParticipantCount = len(l.Lobby)
	l.UpdateOn = now
	return l, nil
}

func (l Live) RemovePupilFromLobby(login, code string, now time.Time) (Live, error) {
	if err := l.open(); err != nil {
		return l, err
	}
	l.Lobby = l.Lobby.without(ParticipantKey(login, code))
	l.Engagement.ParticipantCount = len(l.Lobby)
	l.UpdateOn = now
	return l, nil
}

// SubmitAnswer scores values against the item at the current position. Each
// call appends to the pupil's history, so repeated submissions all count.
// When nothing answerable sits at the position the receiver is returned
// together with an InternalStateError.
func (l Live) SubmitAnswer(login, code string, values []string, now time.Time) (Live, error) {
	if err := l.open(); err != nil {
		return l, err
	}
	position := l.Teacher.Control.CurrentPosition
	idx := -1
	for i, item := range l.Quiz.Items {
		if item.ItemPosition() == position {
			idx = i
			break
		}
	}
	if idx < 0 {
		return l, InternalState("live %s has no item at position %d", l.Key, position)
	}
	item := l.Quiz.Items[idx]
	hit, err := Evaluate(item, values)
	if err != nil {
		return l, err
	}
	scored := item.(ScoredItem)

	pupil := ParticipantKey(login, code)
	submitted := append([]string(nil), values...)
	if submitted == nil {
		submitted = []string{}
	}

	items := make(QuizItems, len(l.Quiz.Items))
	copy(items, l.Quiz.Items)
	items[idx] = scored.withScoring(scored.Scoring().withLiveAnswer(pupil, submitted))
	l.Quiz.Items = items

	l.Evaluation = l.Evaluation.with(pupil, Answer{Position: position, Answer: submitted, Hit: hit})
	l.Engagement = ComputeEngagement(l.Lobby, l.Evaluation)
	l.UpdateOn = now
	return l, nil
}

// EndLive closes the live whatever its position.
func (l Live) EndLive(now time.Time) (Live, error) {
	if err := l.open(); err != nil {
		return l, err
	}
	l.UpdateOn = now
	l.complete(now)
	return l, nil
}

func (l *Live) complete(now time.Time) {
	completed := now
	l.Status = LiveCompleted
	l.CompletedOn = &completed
}
