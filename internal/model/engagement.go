package model

import "math"

// Engagement summarizes every answer recorded in a live.
type Engagement struct {
	ParticipantCount     int `json:"participantCount" bson:"participantCount"`
	AnswersCorrect       int `json:"answersCorrect" bson:"answersCorrect"`
	AnswersIncorrect     int `json:"answersIncorrect" bson:"answersIncorrect"`
	AnswersUnanswered    int `json:"answersUnanswered" bson:"answersUnanswered"`
	CorrectPercentual    int `json:"correctPercentual" bson:"correctPercentual"`
	IncorrectPercentual  int `json:"incorrectPercentual" bson:"incorrectPercentual"`
	UnansweredPercentual int `json:"unansweredPercentual" bson:"unansweredPercentual"`
}

// ComputeEngagement derives the summary from the full evaluation history.
// participantCount is the lobby size.
func ComputeEngagement(lobby Lobby, evaluation Evaluation) Engagement {
	e := Engagement{ParticipantCount: len(lobby)}
	for _, answers := range evaluation {
		for _, a := range answers {
			switch {
			case IsUnanswered(a.Answer):
				e.AnswersUnanswered++
			case a.Hit:
				e.AnswersCorrect++
			default:
				e.AnswersIncorrect++
			}
		}
	}
	total := e.AnswersCorrect + e.AnswersIncorrect + e.AnswersUnanswered
	e.CorrectPercentual = percent(e.AnswersCorrect, total)
	e.IncorrectPercentual = percent(e.AnswersIncorrect, total)
	e.UnansweredPercentual = percent(e.AnswersUnanswered, total)
	return e
}

func percent(n, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(n) * 100 / float64(total)))
}
