package model

import "strings"

// QuizItemType is the discriminator of a quiz item variant
type QuizItemType string

const (
	ItemMultipleChoice QuizItemType = "MULTIPLE_CHOICE"
	ItemFillSpace      QuizItemType = "FILL_SPACE"
	ItemTrueFalse      QuizItemType = "TRUE_FALSE"
	ItemOpenText       QuizItemType = "OPEN_TEXT"
	ItemPoll           QuizItemType = "POLL"
	ItemWordCloud      QuizItemType = "WORD_CLOUD"
	ItemTitleSlide     QuizItemType = "TITLE_SLIDE"
	ItemTextSlide      QuizItemType = "TEXT_SLIDE"
	ItemMediaSlide     QuizItemType = "MEDIA_SLIDE"
)

// AllQuizItemTypes lists every variant in authoring order.
var AllQuizItemTypes = []QuizItemType{
	ItemMultipleChoice, ItemFillSpace, ItemTrueFalse, ItemOpenText, ItemPoll, ItemWordCloud,
	ItemTitleSlide, ItemTextSlide, ItemMediaSlide,
}

// NotAnswered is the sentinel a client submits when a pupil let the timer run out.
const NotAnswered = "NOT_ANSWERED"

// Accepted values of a true/false expected answer.
const (
	AnswerTrue  = "TRUE"
	AnswerFalse = "FALSE"
)

// QuizItem is one question or slide. The set of implementations is closed:
// only types in this package satisfy it.
type QuizItem interface {
	Type() QuizItemType
	ItemPosition() int
	Validate() error
	isQuizItem()
}

// ScoredItem is a quiz item pupils answer.
type ScoredItem interface {
	QuizItem
	Scoring() Scored
	withScoring(Scored) ScoredItem
}

// Scored holds the fields shared by every answerable variant.
// TimerSeconds and Reward are shown by clients and never enforced here.
type Scored struct {
	Position        int
	ExpectedAnswers []string
	TimerSeconds    int
	Reward          int
	// LiveAnswers is the latest submission per pupil key, last write wins.
	LiveAnswers map[string][]string
}

func (s Scored) withLiveAnswer(pupil string, values []string) Scored {
	answers := make(map[string][]string, len(s.LiveAnswers)+1)
	for k, v := range s.LiveAnswers {
		answers[k] = v
	}
	answers[pupil] = append([]string(nil), values...)
	s.LiveAnswers = answers
	return s
}

type MultipleChoice struct {
	Scored
	Question string
	Options  []string
}

type FillSpace struct {
	Scored
	// Sentence marks blanks with "___".
	Sentence string
	Options  []string
}

type TrueFalse struct {
	Scored
	Statement string
}

type OpenText struct {
	Scored
	Question string
}

type Poll struct {
	Scored
	Question string
	Options  []string
}

type WordCloud struct {
	Scored
	Question string
}

type TitleSlide struct {
	Position int
	Title    string
	Subtitle string
}

type TextSlide struct {
	Position int
	Title    string
	Text     string
}

type MediaSlide struct {
	Position int
	Title    string
	URL      string
}

func (MultipleChoice) Type() QuizItemType { return ItemMultipleChoice }
func (FillSpace) Type() QuizItemType      { return ItemFillSpace }
func (TrueFalse) Type() QuizItemType      { return ItemTrueFalse }
func (OpenText) Type() QuizItemType       { return ItemOpenText }
func (Poll) Type() QuizItemType           { return ItemPoll }
func (WordCloud) Type() QuizItemType      { return ItemWordCloud }
func (TitleSlide) Type() QuizItemType     { return ItemTitleSlide }
func (TextSlide) Type() QuizItemType      { return ItemTextSlide }
func (MediaSlide) Type() QuizItemType     { return ItemMediaSlide }

func (i MultipleChoice) ItemPosition() int { return i.Position }
func (i FillSpace) ItemPosition() int      { return i.Position }
func (i TrueFalse) ItemPosition() int      { return i.Position }
func (i OpenText) ItemPosition() int       { return i.Position }
func (i Poll) ItemPosition() int           { return i.Position }
func (i WordCloud) ItemPosition() int      { return i.Position }
func (i TitleSlide) ItemPosition() int     { return i.Position }
func (i TextSlide) ItemPosition() int      { return i.Position }
func (i MediaSlide) ItemPosition() int     { return i.Position }

func (MultipleChoice) isQuizItem() {}
func (FillSpace) isQuizItem()      {}
func (TrueFalse) isQuizItem()      {}
func (OpenText) isQuizItem()       {}
func (Poll) isQuizItem()           {}
func (WordCloud) isQuizItem()      {}
func (TitleSlide) isQuizItem()     {}
func (TextSlide) isQuizItem()      {}
func (MediaSlide) isQuizItem()     {}

func (i MultipleChoice) Scoring() Scored { return i.Scored }
func (i FillSpace) Scoring() Scored      { return i.Scored }
func (i TrueFalse) Scoring() Scored      { return i.Scored }
func (i OpenText) Scoring() Scored       { return i.Scored }
func (i Poll) Scoring() Scored           { return i.Scored }
func (i WordCloud) Scoring() Scored      { return i.Scored }

func (i MultipleChoice) withScoring(s Scored) ScoredItem { i.Scored = s; return i }
func (i FillSpace) withScoring(s Scored) ScoredItem      { i.Scored = s; return i }
func (i TrueFalse) withScoring(s Scored) ScoredItem      { i.Scored = s; return i }
func (i OpenText) withScoring(s Scored) ScoredItem       { i.Scored = s; return i }
func (i Poll) withScoring(s Scored) ScoredItem           { i.Scored = s; return i }
func (i WordCloud) withScoring(s Scored) ScoredItem      { i.Scored = s; return i }

// Validate checks the fields required to author a multiple-choice item.
func (i MultipleChoice) Validate() error {
	if err := requireText("question", i.Question); err != nil {
		return err
	}
	if len(i.Options) < 2 {
		return InvalidField("options", "needs at least two entries")
	}
	if err := i.Scored.validate(true, true); err != nil {
		return err
	}
	return requireSubset("expectedAnswers", i.ExpectedAnswers, i.Options)
}

func (i FillSpace) Validate() error {
	if err := requireText("sentence", i.Sentence); err != nil {
		return err
	}
	return i.Scored.validate(true, true)
}

func (i TrueFalse) Validate() error {
	if err := requireText("statement", i.Statement); err != nil {
		return err
	}
	if err := i.Scored.validate(true, true); err != nil {
		return err
	}
	if len(i.ExpectedAnswers) != 1 {
		return InvalidField("expectedAnswers", "must hold exactly one of TRUE or FALSE")
	}
	return requireSubset("expectedAnswers", i.ExpectedAnswers, []string{AnswerTrue, AnswerFalse})
}

func (i OpenText) Validate() error {
	if err := requireText("question", i.Question); err != nil {
		return err
	}
	return i.Scored.validate(false, true)
}

func (i Poll) Validate() error {
	if err := requireText("question", i.Question); err != nil {
		return err
	}
	if len(i.Options) < 2 {
		return InvalidField("options", "needs at least two entries")
	}
	return i.Scored.validate(false, false)
}

func (i WordCloud) Validate() error {
	if err := requireText("question", i.Question); err != nil {
		return err
	}
	return i.Scored.validate(false, false)
}

func (i TitleSlide) Validate() error {
	if err := requirePosition(i.Position); err != nil {
		return err
	}
	return requireText("title", i.Title)
}

func (i TextSlide) Validate() error {
	if err := requirePosition(i.Position); err != nil {
		return err
	}
	if err := requireText("title", i.Title); err != nil {
		return err
	}
	return requireText("text", i.Text)
}

func (i MediaSlide) Validate() error {
	if err := requirePosition(i.Position); err != nil {
		return err
	}
	return requireText("url", i.URL)
}

func (s Scored) validate(needExpected, needReward bool) error {
	if err := requirePosition(s.Position); err != nil {
		return err
	}
	if needExpected && len(s.ExpectedAnswers) == 0 {
		return MissingField("expectedAnswers")
	}
	if s.TimerSeconds <= 0 {
		return MissingField("timer")
	}
	if needReward && s.Reward <= 0 {
		return MissingField("reward")
	}
	return nil
}

func requirePosition(position int) error {
	if position <= 0 {
		return MissingField("position")
	}
	return nil
}

func requireText(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return MissingField(field)
	}
	return nil
}

func requireSubset(field string, values, allowed []string) error {
	set := make(map[string]struct{}, len(allowed))
	for _, a := range allowed {
		set[a] = struct{}{}
	}
	for _, v := range values {
		if _, ok := set[v]; !ok {
			return InvalidField(field, "contains "+v+" which is not an option")
		}
	}
	return nil
}
