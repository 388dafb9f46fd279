package pack

import (
	"encoding/json"
	"fmt"
)

// Direction selects which side of an item is prompted and which is answered.
type Direction string

const (
	SrcToDst Direction = "src-to-dst"
	DstToSrc Direction = "dst-to-src"
)

// Valid reports whether d is one of the two drill directions.
func (d Direction) Valid() bool {
	return d == SrcToDst || d == DstToSrc
}

// AnswerSpec is the normalized always-list representation of an accepted
// answer. The first entry is the display form; any entry matches.
type AnswerSpec []string

// Display returns the canonical form shown to the learner.
func (a AnswerSpec) Display() string {
	if len(a) == 0 {
		return ""
	}
	return a[0]
}

// UnmarshalJSON accepts either a single string or a non-empty string array.
func (a *AnswerSpec) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*a = AnswerSpec{single}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("answer must be a string or an array of strings")
	}
	if len(list) == 0 {
		return fmt.Errorf("answer alternatives must not be empty")
	}
	*a = AnswerSpec(list)
	return nil
}

// MarshalJSON writes a bare string when there is a single alternative.
func (a AnswerSpec) MarshalJSON() ([]byte, error) {
	if len(a) == 1 {
		return json.Marshal(a[0])
	}
	return json.Marshal([]string(a))
}

// Person is a grammatical person in the present-tense conjugation table.
type Person string

const (
	PersonIo     Person = "io"
	PersonTu     Person = "tu"
	PersonLuiLei Person = "luiLei"
	PersonNoi    Person = "noi"
	PersonVoi    Person = "voi"
	PersonLoro   Person = "loro"
)

// Persons is the fixed drill order of the six grammatical persons.
var Persons = []Person{PersonIo, PersonTu, PersonLuiLei, PersonNoi, PersonVoi, PersonLoro}

// VocabExample is an optional usage sentence attached to a vocabulary item.
type VocabExample struct {
	Src string `json:"src"`
	Dst string `json:"dst,omitempty"`
}

// VocabItem is a single prompt/answer pair in a vocabulary pack.
type VocabItem struct {
	ID       string         `json:"id"`
	Src      string         `json:"src"`
	Dst      string         `json:"dst"`
	IPA      string         `json:"ipa,omitempty"`
	Examples []VocabExample `json:"examples,omitempty"`
}

// VocabPack is an immutable collection of vocabulary items.
type VocabPack struct {
	Type  string      `json:"type"` // always "vocab"
	ID    string      `json:"id"`
	Title string      `json:"title"`
	Src   string      `json:"src"`
	Dst   string      `json:"dst"`
	Items []VocabItem `json:"items"`
}

// ItemIDs returns the item ids in pack order.
func (p *VocabPack) ItemIDs() []string {
	ids := make([]string, len(p.Items))
	for i, item := range p.Items {
		ids[i] = item.ID
	}
	return ids
}

// Conjugations holds the present-tense table of a verb item.
type Conjugations struct {
	Present map[Person]AnswerSpec `json:"present"`
}

// VerbItem is a verb with its infinitive and present-tense conjugations.
type VerbItem struct {
	ID           string       `json:"id"`
	Src          AnswerSpec   `json:"src"` // infinitive
	Dst          string       `json:"dst"` // gloss in the learner's language
	Conjugations Conjugations `json:"conjugations"`
}

// VerbPack is an immutable collection of verb items.
type VerbPack struct {
	Type  string     `json:"type"` // always "verbs"
	ID    string     `json:"id"`
	Title string     `json:"title"`
	Src   string     `json:"src"`
	Dst   string     `json:"dst"`
	Items []VerbItem `json:"items"`
}

// ItemIDs returns the item ids in pack order.
func (p *VerbPack) ItemIDs() []string {
	ids := make([]string, len(p.Items))
	for i, item := range p.Items {
		ids[i] = item.ID
	}
	return ids
}

// Kind tags a pack listing entry as vocabulary or verbs.
type Kind string

const (
	KindVocab Kind = "vocab"
	KindVerbs Kind = "verbs"
)
