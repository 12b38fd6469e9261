package model

import (
	"sort"
	"strings"
	"time"
)

type LiveStatus string

const (
	LivePending   LiveStatus = "PENDING"
	LiveProgress  LiveStatus = "PROGRESS"
	LiveCompleted LiveStatus = "COMPLETED"
)

// Live is one run of a quiz in front of pupils. Values are snapshots: every
// transition returns a new Live and leaves its receiver untouched.
type Live struct {
	Key         string      `json:"key" bson:"_id"`
	StartedOn   time.Time   `json:"startedOn" bson:"startedOn"`
	UpdateOn    time.Time   `json:"updateOn" bson:"updateOn"`
	CompletedOn *time.Time  `json:"completedOn" bson:"completedOn,omitempty"`
	Status      LiveStatus  `json:"status" bson:"status"`
	Engagement  Engagement  `json:"engagement" bson:"engagement"`
	Evaluation  Evaluation  `json:"evaluation" bson:"evaluation"`
	Quiz        Quiz        `json:"quiz" bson:"quiz"`
	Teacher     LiveTeacher `json:"teacher" bson:"teacher"`
	Lobby       Lobby       `json:"lobby" bson:"lobby"`
	// Version is the compare-and-set stamp of the cached snapshot.
	Version int64 `json:"-" bson:"version"`
}

type LiveTeacher struct {
	Login   string  `json:"login" bson:"login"`
	Code    string  `json:"code" bson:"code"`
	Control Control `json:"control" bson:"control"`
}

type Control struct {
	CurrentPosition int `json:"currentPosition" bson:"currentPosition"`
}

// Answer is one submission of a pupil.
type Answer struct {
	Position int      `json:"position" bson:"position"`
	Answer   []string `json:"answer" bson:"answer"`
	Hit      bool     `json:"hit" bson:"hit"`
}

// Evaluation is the append-only answer history per pupil key.
type Evaluation map[string][]Answer

// Lobby is the sorted set of joined pupil keys.
type Lobby []string

// ParticipantKey joins a login and code the way lobby, evaluation and live keys do.
func ParticipantKey(login, code string) string {
	return login + "#" + code
}

// IsCompleted reports whether the live reached its terminal status.
func (l Live) IsCompleted() bool {
	return l.Status == LiveCompleted
}

// OwnedBy reports whether key was minted for the teacher login#code.
func OwnedBy(key, login, code string) bool {
	return strings.HasSuffix(key, "-"+ParticipantKey(login, code))
}

func (lb Lobby) Contains(pupil string) bool {
	i := sort.SearchStrings(lb, pupil)
	return i < len(lb) && lb[i] == pupil
}

func (lb Lobby) with(pupil string) Lobby {
	if lb.Contains(pupil) {
		return lb
	}
	out := make(Lobby, 0, len(lb)+1)
	out = append(out, lb...)
	out = append(out, pupil)
	sort.Strings(out)
	return out
}

func (lb Lobby) without(pupil string) Lobby {
	if !lb.Contains(pupil) {
		return lb
	}
	out := make(Lobby, 0, len(lb))
	for _, p := range lb {
		if p != pupil {
			out = append(out, p)
		}
	}
	return out
}

func (e Evaluation) with(pupil string, answer Answer) Evaluation {
	out := make(Evaluation, len(e)+1)
	for k, v := range e {
		out[k] = v
	}
	history := make([]Answer, 0, len(e[pupil])+1)
	history = append(history, e[pupil]...)
	out[pupil] = append(history, answer)
	return out
}
