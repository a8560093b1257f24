// Package labels - Loads class index to name tables from label.json
// resources placed next to compiled model artifacts.
package labels

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// ErrParse is returned for any schema violation in a label resource.
var ErrParse = errors.New("label file parse failed")

// Label maps one class index to its names.
type Label struct {
	Index       int
	Name        string
	DisplayName string
}

// Table is an index-addressed label table. Entries are keyed by their
// declared index, so sparse numbering stays bounded by the declared count.
type Table struct {
	// ModelName is the optional model name declared in the resource.
	ModelName string

	count   int
	entries map[int]Label
}

// Len returns the declared label count.
func (t *Table) Len() int {
	return t.count
}

// At returns the label placed at index.
func (t *Table) At(index int) (Label, bool) {
	l, ok := t.entries[index]
	return l, ok
}

// Load reads and parses a label resource from disk. Read failures come
// back as the underlying os error; ErrParse is reserved for schema
// violations.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	return Parse(data)
}

type rawEntry struct {
	Label       *int    `json:"label"`
	Name        *string `json:"name"`
	DisplayName *string `json:"display_name"`
}

// Parse validates a label resource against the schema:
//
//	{ "model-name"?: string, "num-labels": int,
//	  "labels": [ {"label": int, "name": string, "display_name": string} ] }
//
// The entries array length must equal num-labels, every entry must carry an
// integer index inside [0, num-labels) and non-empty name and display_name.
// Duplicate indices silently overwrite. Any violation fails with ErrParse
// and no partial table.
func Parse(data []byte) (*Table, error) {
	var raw struct {
		ModelName string          `json:"model-name"`
		NumLabels *int            `json:"num-labels"`
		Labels    json.RawMessage `json:"labels"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrapf(ErrParse, "%v", err)
	}

	if raw.NumLabels == nil {
		return nil, errors.Wrap(ErrParse, "num-labels not found")
	}
	count := *raw.NumLabels
	if count < 0 {
		return nil, errors.Wrapf(ErrParse, "num-labels %d is negative", count)
	}

	if len(raw.Labels) == 0 {
		return nil, errors.Wrap(ErrParse, "labels key not found")
	}
	var entries []rawEntry
	if err := json.Unmarshal(raw.Labels, &entries); err != nil {
		return nil, errors.Wrapf(ErrParse, "labels key is not an array of label objects: %v", err)
	}
	if len(entries) != count {
		return nil, errors.Wrapf(ErrParse, "number of labels (%d) != num-labels (%d)", len(entries), count)
	}

	tbl := &Table{
		ModelName: raw.ModelName,
		count:     count,
		entries:   make(map[int]Label, count),
	}
	for i, e := range entries {
		if e.Label == nil {
			return nil, errors.Wrapf(ErrParse, "label index not found for entry %d", i)
		}
		if e.Name == nil || *e.Name == "" {
			return nil, errors.Wrapf(ErrParse, "name not found for entry %d", i)
		}
		if e.DisplayName == nil || *e.DisplayName == "" {
			return nil, errors.Wrapf(ErrParse, "display name not found for entry %d", i)
		}
		idx := *e.Label
		if idx < 0 || idx >= count {
			return nil, errors.Wrapf(ErrParse, "label index %d outside declared range [0,%d)", idx, count)
		}
		tbl.entries[idx] = Label{
			Index:       idx,
			Name:        *e.Name,
			DisplayName: *e.DisplayName,
		}
	}
	return tbl, nil
}
