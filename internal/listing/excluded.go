package listing

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"time"
)

type ExcludedPostings struct {
	Items []*ExcludedPosting `json:"items"`
}

type ExcludedPosting struct {
	Title      string    `json:"title"`
	Company    string    `json:"company"`
	URL        string    `json:"url"`
	ExcludedAt time.Time `json:"excluded_at"`
}

// Key returns the (title, company) identity of the excluded posting.
func (e *ExcludedPosting) Key() Key {
	return Key{Title: e.Title, Company: e.Company}
}

// ReadExcludedFile loads an exclude file. A missing or empty file yields an empty set.
func ReadExcludedFile(path string) (*ExcludedPostings, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &ExcludedPostings{}, nil
		}
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}

	if stat.Size() == 0 {
		return &ExcludedPostings{}, nil
	}

	var excluded ExcludedPostings
	if err := json.NewDecoder(file).Decode(&excluded); err != nil {
		return nil, err
	}
	return &excluded, nil
}

func (e *ExcludedPostings) Append(s *ExcludedPostings) {
	e.Items = append(e.Items, s.Items...)
}

// Keys returns the set of excluded posting keys.
func (e *ExcludedPostings) Keys() map[Key]struct{} {
	keys := make(map[Key]struct{}, len(e.Items))
	for _, item := range e.Items {
		keys[item.Key()] = struct{}{}
	}
	return keys
}

func (e *ExcludedPostings) ToFile(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(e)
}
