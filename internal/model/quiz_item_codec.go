package model

import (
	"encoding/json"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// QuizItems is an ordered list of quiz items. It encodes every item as a flat
// document tagged with its "type" for both JSON (Redis, HTTP) and BSON (MongoDB).
type QuizItems []QuizItem

// QuizItemDoc is the wire form of any quiz item variant.
type QuizItemDoc struct {
	Type            QuizItemType        `json:"type" bson:"type"`
	Position        int                 `json:"position" bson:"position"`
	Question        string              `json:"question,omitempty" bson:"question,omitempty"`
	Sentence        string              `json:"sentence,omitempty" bson:"sentence,omitempty"`
	Statement       string              `json:"statement,omitempty" bson:"statement,omitempty"`
	Title           string              `json:"title,omitempty" bson:"title,omitempty"`
	Subtitle        string              `json:"subtitle,omitempty" bson:"subtitle,omitempty"`
	Text            string              `json:"text,omitempty" bson:"text,omitempty"`
	URL             string              `json:"url,omitempty" bson:"url,omitempty"`
	Options         []string            `json:"options,omitempty" bson:"options,omitempty"`
	ExpectedAnswers []string            `json:"expectedAnswers,omitempty" bson:"expectedAnswers,omitempty"`
	TimerSeconds    int                 `json:"timer,omitempty" bson:"timer,omitempty"`
	Reward          int                 `json:"reward,omitempty" bson:"reward,omitempty"`
	LiveAnswers     map[string][]string `json:"liveAnswers,omitempty" bson:"liveAnswers,omitempty"`
}

// ToDoc flattens an item into its wire form.
func ToDoc(item QuizItem) QuizItemDoc {
	doc := QuizItemDoc{Type: item.Type(), Position: item.ItemPosition()}
	if scored, ok := item.(ScoredItem); ok {
		s := scored.Scoring()
		doc.ExpectedAnswers = s.ExpectedAnswers
		doc.TimerSeconds = s.TimerSeconds
		doc.Reward = s.Reward
		doc.LiveAnswers = s.LiveAnswers
	}
	switch it := item.(type) {
	case MultipleChoice:
		doc.Question, doc.Options = it.Question, it.Options
	case FillSpace:
		doc.Sentence, doc.Options = it.Sentence, it.Options
	case TrueFalse:
		doc.Statement = it.Statement
	case OpenText:
		doc.Question = it.Question
	case Poll:
		doc.Question, doc.Options = it.Question, it.Options
	case WordCloud:
		doc.Question = it.Question
	case TitleSlide:
		doc.Title, doc.Subtitle = it.Title, it.Subtitle
	case TextSlide:
		doc.Title, doc.Text = it.Title, it.Text
	case MediaSlide:
		doc.Title, doc.URL = it.Title, it.URL
	}
	return doc
}

// Item rebuilds the variant named by doc.Type.
func (doc QuizItemDoc) Item() (QuizItem, error) {
	scored := Scored{
		Position:        doc.Position,
		ExpectedAnswers: doc.ExpectedAnswers,
		TimerSeconds:    doc.TimerSeconds,
		Reward:          doc.Reward,
		LiveAnswers:     doc.LiveAnswers,
	}
	switch doc.Type {
	case ItemMultipleChoice:
		return MultipleChoice{Scored: scored, Question: doc.Question, Options: doc.Options}, nil
	case ItemFillSpace:
		return FillSpace{Scored: scored, Sentence: doc.Sentence, Options: doc.Options}, nil
	case ItemTrueFalse:
		return TrueFalse{Scored: scored, Statement: doc.Statement}, nil
	case ItemOpenText:
		return OpenText{Scored: scored, Question: doc.Question}, nil
	case ItemPoll:
		return Poll{Scored: scored, Question: doc.Question, Options: doc.Options}, nil
	case ItemWordCloud:
		return WordCloud{Scored: scored, Question: doc.Question}, nil
	case ItemTitleSlide:
		return TitleSlide{Position: doc.Position, Title: doc.Title, Subtitle: doc.Subtitle}, nil
	case ItemTextSlide:
		return TextSlide{Position: doc.Position, Title: doc.Title, Text: doc.Text}, nil
	case ItemMediaSlide:
		return MediaSlide{Position: doc.Position, Title: doc.Title, URL: doc.URL}, nil
	case "":
		return nil, MissingField("type")
	default:
		return nil, InvalidField("type", fmt.Sprintf("%q is not a quiz item type", doc.Type))
	}
}

func (items QuizItems) docs() []QuizItemDoc {
	docs := make([]QuizItemDoc, len(items))
	for i, item := range items {
		docs[i] = ToDoc(item)
	}
	return docs
}

func fromDocs(docs []QuizItemDoc) (QuizItems, error) {
	items := make(QuizItems, 0, len(docs))
	for _, doc := range docs {
		item, err := doc.Item()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (items QuizItems) MarshalJSON() ([]byte, error) {
	return json.Marshal(items.docs())
}

func (items *QuizItems) UnmarshalJSON(data []byte) error {
	var docs []QuizItemDoc
	if err := json.Unmarshal(data, &docs); err != nil {
		return err
	}
	decoded, err := fromDocs(docs)
	if err != nil {
		return err
	}
	*items = decoded
	return nil
}

func (items QuizItems) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(items.docs())
}

func (items *QuizItems) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	var docs []QuizItemDoc
	if err := (bson.RawValue{Type: t, Value: data}).Unmarshal(&docs); err != nil {
		return err
	}
	decoded, err := fromDocs(docs)
	if err != nil {
		return err
	}
	*items = decoded
	return nil
}
