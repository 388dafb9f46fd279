package pack

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const vocabJSON = `{
	"type": "vocab",
	"id": "demo-vocab",
	"title": "Demo vocabulary",
	"src": "it",
	"dst": "fi",
	"items": [
		{"id": "hello", "src": "ciao", "dst": "hei", "ipa": "ˈtʃaːo"},
		{"id": "city", "src": "città", "dst": "kaupunki",
		 "examples": [{"src": "Una bella città.", "dst": "Kaunis kaupunki."}]}
	]
}`

const verbJSON = `{
	"type": "verbs",
	"id": "demo-verbs",
	"title": "Demo verbs",
	"src": "it",
	"dst": "fi",
	"items": [
		{
			"id": "potere",
			"src": "potere",
			"dst": "voida",
			"conjugations": {"present": {
				"io": "posso",
				"tu": "puoi",
				"luiLei": ["può", "puo'"],
				"noi": "possiamo",
				"voi": "potete",
				"loro": "possono"
			}}
		}
	]
}`

func TestAnswerSpec_UnmarshalJSON(t *testing.T) {
	var single AnswerSpec
	if err := json.Unmarshal([]byte(`"ciao"`), &single); err != nil {
		t.Fatal(err)
	}
	if len(single) != 1 || single[0] != "ciao" {
		t.Errorf("single = %v", single)
	}

	var list AnswerSpec
	if err := json.Unmarshal([]byte(`["può", "puo'"]`), &list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list.Display() != "può" {
		t.Errorf("list = %v", list)
	}

	var empty AnswerSpec
	if err := json.Unmarshal([]byte(`[]`), &empty); err == nil {
		t.Error("empty alternatives accepted")
	}
	var wrong AnswerSpec
	if err := json.Unmarshal([]byte(`42`), &wrong); err == nil {
		t.Error("number accepted as answer")
	}
}

func TestAnswerSpec_MarshalJSON(t *testing.T) {
	raw, err := json.Marshal(AnswerSpec{"ciao"})
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) != `"ciao"` {
		t.Errorf("single form = %s, want bare string", raw)
	}

	raw, err = json.Marshal(AnswerSpec{"può", "puo'"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(raw), "[") {
		t.Errorf("multi form = %s, want array", raw)
	}
}

func TestParseVocabPack(t *testing.T) {
	p, err := ParseVocabPack([]byte(vocabJSON))
	if err != nil {
		t.Fatal(err)
	}
	if p.ID != "demo-vocab" || len(p.Items) != 2 {
		t.Fatalf("pack = %+v", p)
	}
	if p.Items[1].Src != "città" || len(p.Items[1].Examples) != 1 {
		t.Errorf("item = %+v", p.Items[1])
	}
	ids := p.ItemIDs()
	if len(ids) != 2 || ids[0] != "hello" || ids[1] != "city" {
		t.Errorf("ids = %v", ids)
	}
}

func TestParseVocabPack_Rejects(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"not json", `{broken`},
		{"wrong type tag", strings.Replace(vocabJSON, `"vocab"`, `"verbs"`, 1)},
		{"missing title", strings.Replace(vocabJSON, `"title": "Demo vocabulary",`, ``, 1)},
		{"empty item src", strings.Replace(vocabJSON, `"src": "ciao"`, `"src": ""`, 1)},
		{"duplicate ids", strings.Replace(vocabJSON, `"id": "city"`, `"id": "hello"`, 1)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseVocabPack([]byte(tc.raw)); err == nil {
				t.Error("invalid pack accepted")
			}
		})
	}
}

func TestParseVerbPack(t *testing.T) {
	p, err := ParseVerbPack([]byte(verbJSON))
	if err != nil {
		t.Fatal(err)
	}
	if p.ID != "demo-verbs" || len(p.Items) != 1 {
		t.Fatalf("pack = %+v", p)
	}
	item := p.Items[0]
	if item.Src.Display() != "potere" {
		t.Errorf("infinitive = %v", item.Src)
	}
	luiLei := item.Conjugations.Present[PersonLuiLei]
	if len(luiLei) != 2 || luiLei.Display() != "può" {
		t.Errorf("luiLei = %v", luiLei)
	}
	for _, person := range Persons {
		if len(item.Conjugations.Present[person]) == 0 {
			t.Errorf("missing %s conjugation", person)
		}
	}
}

func TestParseVerbPack_MissingPerson(t *testing.T) {
	raw := strings.Replace(verbJSON, `"loro": "possono"`, `"loro": []`, 1)
	if _, err := ParseVerbPack([]byte(raw)); err == nil {
		t.Error("empty person conjugation accepted")
	}

	raw = strings.Replace(verbJSON, `"dst": "voida",`, `"dst": "voida", "note": "irregular",`, 1)
	if _, err := ParseVerbPack([]byte(raw)); err != nil {
		t.Errorf("unknown item key should be tolerated: %v", err)
	}
}

func TestAvailable_Builtins(t *testing.T) {
	metas, err := Available("")
	if err != nil {
		t.Fatal(err)
	}
	if len(metas) < 2 {
		t.Fatalf("expected built-in packs, got %v", metas)
	}

	byID := make(map[string]Meta)
	for _, m := range metas {
		byID[m.ID] = m
	}
	vocab, ok := byID["core-it-fi-vocab"]
	if !ok || vocab.Kind != KindVocab {
		t.Fatalf("built-in vocab pack missing: %v", metas)
	}
	verbs, ok := byID["core-it-fi-verbs"]
	if !ok || verbs.Kind != KindVerbs {
		t.Fatalf("built-in verb pack missing: %v", metas)
	}

	p, err := vocab.LoadVocab()
	if err != nil {
		t.Fatalf("LoadVocab: %v", err)
	}
	if len(p.Items) == 0 {
		t.Error("built-in vocab pack has no items")
	}
	v, err := verbs.LoadVerbs()
	if err != nil {
		t.Fatalf("LoadVerbs: %v", err)
	}
	if len(v.Items) == 0 {
		t.Error("built-in verb pack has no items")
	}

	if _, err := vocab.LoadVerbs(); err == nil {
		t.Error("LoadVerbs on a vocab pack should fail")
	}
}

func TestAvailable_UserOverridesBuiltin(t *testing.T) {
	dir := t.TempDir()
	override := strings.Replace(vocabJSON, `"demo-vocab"`, `"core-it-fi-vocab"`, 1)
	override = strings.Replace(override, `"Demo vocabulary"`, `"My override"`, 1)
	if err := os.WriteFile(filepath.Join(dir, "override.json"), []byte(override), 0o644); err != nil {
		t.Fatal(err)
	}

	metas, err := Available(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, m := range metas {
		if m.ID == "core-it-fi-vocab" {
			if m.Title != "My override" {
				t.Errorf("user pack did not replace built-in: %+v", m)
			}
			return
		}
	}
	t.Fatal("overridden pack not listed")
}

func TestAvailable_BadUserPackFails(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad.json"), []byte(`{"type": "mystery"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Available(dir); err == nil {
		t.Error("unparseable user pack should surface an error")
	}
}

func TestUserPackDir_EnvOverride(t *testing.T) {
	t.Setenv("RIPASSO_PACKS", "/tmp/my-packs")
	dir, err := UserPackDir()
	if err != nil {
		t.Fatal(err)
	}
	if dir != "/tmp/my-packs" {
		t.Errorf("dir = %q", dir)
	}

	t.Setenv("RIPASSO_PACKS", "")
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg")
	dir, err = UserPackDir()
	if err != nil {
		t.Fatal(err)
	}
	if dir != filepath.Join("/tmp/xdg", "ripasso", "packs") {
		t.Errorf("dir = %q", dir)
	}
}
