package model

// Commands accepted by the live engine. Token is the caller's bearer token;
// the HTTP layer fills it in from the Authorization header.

type CreateLiveCommand struct {
	Token        string `json:"-"`
	TeacherLogin string `json:"teacherLogin"`
	TeacherCode  string `json:"teacherCode"`
	QuizKey      string `json:"quizKey"`
}

// TeacherLiveCommand covers NEXT_POSITION, PREVIOUS_POSITION and END_LIVE.
type TeacherLiveCommand struct {
	Token        string `json:"-"`
	TeacherLogin string `json:"teacherLogin"`
	TeacherCode  string `json:"teacherCode"`
	LiveKey      string `json:"liveKey"`
}

type AddPupilCommand struct {
	Token      string `json:"-"`
	LiveKey    string `json:"liveKey"`
	PupilLogin string `json:"pupilLogin"`
	PupilCode  string `json:"pupilCode"`
}

type RemovePupilCommand struct {
	Token        string `json:"-"`
	TeacherLogin string `json:"teacherLogin"`
	TeacherCode  string `json:"teacherCode"`
	LiveKey      string `json:"liveKey"`
	PupilLogin   string `json:"pupilLogin"`
	PupilCode    string `json:"pupilCode"`
}

type SubmitAnswerCommand struct {
	Token        string   `json:"-"`
	LiveKey      string   `json:"liveKey"`
	PupilLogin   string   `json:"pupilLogin"`
	PupilCode    string   `json:"pupilCode"`
	AnswerValues []string `json:"answerValues"`
}

func (c CreateLiveCommand) Validate() error {
	return requireFields(
		field{"token", c.Token},
		field{"teacherLogin", c.TeacherLogin},
		field{"teacherCode", c.TeacherCode},
		field{"quizKey", c.QuizKey},
	)
}

func (c TeacherLiveCommand) Validate() error {
	return requireFields(
		field{"token", c.Token},
		field{"teacherLogin", c.TeacherLogin},
		field{"teacherCode", c.TeacherCode},
		field{"liveKey", c.LiveKey},
	)
}

func (c AddPupilCommand) Validate() error {
	return requireFields(
		field{"token", c.Token},
		field{"liveKey", c.LiveKey},
		field{"pupilLogin", c.PupilLogin},
		field{"pupilCode", c.PupilCode},
	)
}

func (c RemovePupilCommand) Validate() error {
	return requireFields(
		field{"token", c.Token},
		field{"teacherLogin", c.TeacherLogin},
		field{"teacherCode", c.TeacherCode},
		field{"liveKey", c.LiveKey},
		field{"pupilLogin", c.PupilLogin},
		field{"pupilCode", c.PupilCode},
	)
}

func (c SubmitAnswerCommand) Validate() error {
	if err := requireFields(
		field{"token", c.Token},
		field{"liveKey", c.LiveKey},
		field{"pupilLogin", c.PupilLogin},
		field{"pupilCode", c.PupilCode},
	); err != nil {
		return err
	}
	if c.AnswerValues == nil {
		return MissingField("answerValues")
	}
	return nil
}

type field struct {
	name  string
	value string
}

func requireFields(fields ...field) error {
	for _, f := range fields {
		if err := requireText(f.name, f.value); err != nil {
			return err
		}
	}
	return nil
}
