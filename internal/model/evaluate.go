package model

// Evaluate scores one pupil submission against item. It returns whether the
// submission is a hit; unscored slides yield an InternalStateError.
func Evaluate(item QuizItem, values []string) (bool, error) {
	switch it := item.(type) {
	case MultipleChoice:
		return containsAll(values, it.ExpectedAnswers), nil
	case FillSpace:
		return containsAll(values, it.ExpectedAnswers), nil
	case TrueFalse:
		return containsAll(values, it.ExpectedAnswers), nil
	case OpenText:
		return answered(values), nil
	case WordCloud:
		return answered(values), nil
	case Poll:
		return answered(values), nil
	case TitleSlide, TextSlide, MediaSlide:
		return false, InternalState("item at position %d is a %s and takes no answers", item.ItemPosition(), item.Type())
	default:
		return false, InternalState("unknown quiz item %T", item)
	}
}

// IsUnanswered reports whether values is empty or only the NOT_ANSWERED sentinel.
func IsUnanswered(values []string) bool {
	return len(values) == 0 || (len(values) == 1 && values[0] == NotAnswered)
}

func answered(values []string) bool {
	return !IsUnanswered(values)
}

// containsAll reports submitted ⊇ expected. Extra submitted values do not
// cancel a hit.
func containsAll(submitted, expected []string) bool {
	set := make(map[string]struct{}, len(submitted))
	for _, v := range submitted {
		set[v] = struct{}{}
	}
	for _, e := range expected {
		if _, ok := set[e]; !ok {
			return false
		}
	}
	return true
}
