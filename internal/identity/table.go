package identity

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/antzucaro/matchr"
)

// DefaultFiles are the reference tables shipped with the bot.
var DefaultFiles = []string{
	"Character ID.csv",
	"Weapon ID.csv",
	"Soul ID.csv",
	"Idomag ID.csv",
}

const (
	NoneName    = "-"
	UnknownName = "Unknown"
)

// Table maps numeric id prefixes to display names. It is immutable once built.
type Table struct {
	names map[string]string
	// sorted ascending, used for the prefix search
	keys []string
}

func NewTable(entries map[string]string) *Table {
	t := &Table{
		names: make(map[string]string, len(entries)),
		keys:  make([]string, 0, len(entries)),
	}
	for k, v := range entries {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		t.names[k] = v
		t.keys = append(t.keys, k)
	}
	sort.Strings(t.keys)
	return t
}

// ReadCSV parses "<id prefix>,<name>" rows, rows with another shape are skipped.
// Later rows overwrite earlier ones.
func ReadCSV(r io.Reader, out map[string]string) error {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if len(row) != 2 {
			continue
		}
		out[row[0]] = row[1]
	}
}

// LoadDir builds a Table from the named csv files inside dir.
func LoadDir(dir string, files []string) (*Table, error) {
	entries := map[string]string{}
	for _, name := range files {
		f, err := os.Open(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		err = ReadCSV(f, entries)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	}
	return NewTable(entries), nil
}

func (t *Table) Len() int {
	return len(t.keys)
}

func (t *Table) has(key string) bool {
	i := sort.SearchStrings(t.keys, key)
	return i < len(t.keys) && t.keys[i] == key
}

// Lookup returns the name registered under the longest key that prefixes id.
func (t *Table) Lookup(id string) (string, bool) {
	for l := len(id); l > 0; l-- {
		prefix := id[:l]
		if t.has(prefix) {
			return t.names[prefix], true
		}
	}
	return "", false
}

// Name resolves a numeric id for display: "-" for an empty slot, "Unknown"
// when nothing matches.
func (t *Table) Name(id int64) string {
	if id == 0 {
		return NoneName
	}
	name, ok := t.Lookup(strconv.FormatInt(id, 10))
	if !ok {
		return UnknownName
	}
	return name
}

// Exact reports whether id is itself a key of the table.
func (t *Table) Exact(id int64) bool {
	return t.has(strconv.FormatInt(id, 10))
}

type Match struct {
	Key        string
	Name       string
	Similarity float64
}

// Search ranks every entry by Jaro-Winkler similarity to query and returns
// the best limit matches.
func (t *Table) Search(query string, limit int) []Match {
	query = strings.ToLower(query)
	matches := make([]Match, 0, len(t.keys))
	for _, key := range t.keys {
		name := t.names[key]
		matches = append(matches, Match{
			Key:        key,
			Name:       name,
			Similarity: matchr.JaroWinkler(query, strings.ToLower(name), false),
		})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}
