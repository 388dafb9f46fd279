package pack

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

//go:embed packs/*.json
var builtinFS embed.FS

// Meta describes an available pack without loading its items.
type Meta struct {
	ID    string
	Title string
	Kind  Kind
	Path  string

	fsys fs.FS
}

// packHeader is the minimal envelope read during directory scans.
type packHeader struct {
	Type  string `json:"type"`
	ID    string `json:"id"`
	Title string `json:"title"`
}

// UserPackDir returns the directory scanned for user-provided packs:
// $RIPASSO_PACKS if set, otherwise $XDG_DATA_HOME/ripasso/packs.
func UserPackDir() (string, error) {
	if p := os.Getenv("RIPASSO_PACKS"); p != "" {
		return p, nil
	}
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "ripasso", "packs"), nil
}

// Available lists the built-in packs merged with packs from userDir.
// A user pack with the same id as a built-in one replaces it. Packs that
// fail to parse are reported as errors, not skipped silently.
func Available(userDir string) ([]Meta, error) {
	byID := make(map[string]Meta)

	builtin, err := scan(builtinFS, "packs")
	if err != nil {
		return nil, fmt.Errorf("scan built-in packs: %w", err)
	}
	for _, m := range builtin {
		byID[m.ID] = m
	}

	if userDir != "" {
		if _, err := os.Stat(userDir); err == nil {
			user, err := scan(os.DirFS(userDir), ".")
			if err != nil {
				return nil, fmt.Errorf("scan pack dir %s: %w", userDir, err)
			}
			for _, m := range user {
				byID[m.ID] = m
			}
		}
	}

	metas := make([]Meta, 0, len(byID))
	for _, m := range byID {
		metas = append(metas, m)
	}
	sort.Slice(metas, func(i, j int) bool {
		if metas[i].Kind != metas[j].Kind {
			return metas[i].Kind < metas[j].Kind
		}
		return metas[i].ID < metas[j].ID
	})
	return metas, nil
}

func scan(fsys fs.FS, dir string) ([]Meta, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, err
	}

	var metas []Meta
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := entry.Name()
		if dir != "." {
			path = dir + "/" + entry.Name()
		}
		raw, err := fs.ReadFile(fsys, path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		var header packHeader
		if err := json.Unmarshal(raw, &header); err != nil {
			return nil, fmt.Errorf("pack %s: invalid JSON: %w", path, err)
		}
		kind, err := kindOf(header.Type)
		if err != nil {
			return nil, fmt.Errorf("pack %s: %w", path, err)
		}
		if header.ID == "" || header.Title == "" {
			return nil, fmt.Errorf("pack %s is missing id or title", path)
		}
		metas = append(metas, Meta{
			ID:    header.ID,
			Title: header.Title,
			Kind:  kind,
			Path:  path,
			fsys:  fsys,
		})
	}
	return metas, nil
}

func kindOf(packType string) (Kind, error) {
	switch packType {
	case "vocab":
		return KindVocab, nil
	case "verbs":
		return KindVerbs, nil
	default:
		return "", fmt.Errorf("unknown pack type %q", packType)
	}
}

// LoadVocab loads and validates the vocabulary pack described by m.
func (m Meta) LoadVocab() (*VocabPack, error) {
	if m.Kind != KindVocab {
		return nil, fmt.Errorf("pack %s is not a vocabulary pack", m.ID)
	}
	raw, err := fs.ReadFile(m.fsys, m.Path)
	if err != nil {
		return nil, fmt.Errorf("read pack %s: %w", m.ID, err)
	}
	return ParseVocabPack(raw)
}

// LoadVerbs loads and validates the verb pack described by m.
func (m Meta) LoadVerbs() (*VerbPack, error) {
	if m.Kind != KindVerbs {
		return nil, fmt.Errorf("pack %s is not a verb pack", m.ID)
	}
	raw, err := fs.ReadFile(m.fsys, m.Path)
	if err != nil {
		return nil, fmt.Errorf("read pack %s: %w", m.ID, err)
	}
	return ParseVerbPack(raw)
}

// ParseVocabPack validates raw JSON against the vocabulary schema and
// decodes it. No partial pack is ever returned.
func ParseVocabPack(raw []byte) (*VocabPack, error) {
	if err := validateSchema("vocab-pack", vocabPackSchema, raw); err != nil {
		return nil, fmt.Errorf("invalid vocabulary pack: %w", err)
	}
	var p VocabPack
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode vocabulary pack: %w", err)
	}
	if err := checkUniqueIDs(p.Title, p.ItemIDs()); err != nil {
		return nil, err
	}
	return &p, nil
}

// ParseVerbPack validates raw JSON against the verb schema and decodes it.
func ParseVerbPack(raw []byte) (*VerbPack, error) {
	if err := validateSchema("verb-pack", verbPackSchema, raw); err != nil {
		return nil, fmt.Errorf("invalid verb pack: %w", err)
	}
	var p VerbPack
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode verb pack: %w", err)
	}
	if err := checkUniqueIDs(p.Title, p.ItemIDs()); err != nil {
		return nil, err
	}
	for _, item := range p.Items {
		for _, person := range Persons {
			if len(item.Conjugations.Present[person]) == 0 {
				return nil, fmt.Errorf("verb entry %s is missing %s conjugation in %s", item.ID, person, p.Title)
			}
		}
	}
	return &p, nil
}

func checkUniqueIDs(title string, ids []string) error {
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return fmt.Errorf("duplicate item id %q in %s", id, title)
		}
		seen[id] = true
	}
	return nil
}
