// Package registry persists the resource name -> path alias table that the
// generated PathsHelper reads at boot, and that generation consults to
// resolve belongs-to path segments.
//
// The document is TOML:
//
//	[[resources]]
//	name = "comments"
//	as = "notes"
//	belongs_to = "posts"
//
// Unknown keys, at the top level and inside records, survive a load/save
// round trip, and record order is never changed.
package registry

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/tomrplummer/blue-eyes/internal/inflect"
	"github.com/tomrplummer/blue-eyes/internal/utils"
)

// ErrParse is returned when the registry document is malformed.
var ErrParse = errors.New("malformed relation registry")

const (
	resourcesKey = "resources"
	nameKey      = "name"
	aliasKey     = "as"
	belongsToKey = "belongs_to"
)

// Entry is one resource record.
type Entry struct {
	Name      string
	Alias     string
	BelongsTo string
}

// EffectiveAlias returns the alias, or the name when no alias is set.
func (e Entry) EffectiveAlias() string {
	if e.Alias != "" {
		return e.Alias
	}
	return e.Name
}

// Change describes what an Upsert did.
type Change int

const (
	Unchanged Change = iota
	Added
	Updated
)

func (c Change) String() string {
	switch c {
	case Added:
		return "added"
	case Updated:
		return "updated"
	default:
		return "unchanged"
	}
}

// Registry is the in-memory view of the document.
type Registry struct {
	doc     map[string]any
	records []map[string]any
	index   map[string]int
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		doc:   make(map[string]any),
		index: make(map[string]int),
	}
}

// Load reads the registry at path. A missing file is an empty registry; a
// file that cannot be decoded is ErrParse.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return New(), nil
		}
		return nil, fmt.Errorf("failed to read relation registry: %w", err)
	}
	return Parse(data)
}

// Parse decodes a registry document.
func Parse(data []byte) (*Registry, error) {
	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	r := New()
	raw, ok := doc[resourcesKey]
	delete(doc, resourcesKey)
	if doc != nil {
		r.doc = doc
	}
	if !ok {
		return r, nil
	}

	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %q must be an array of tables", ErrParse, resourcesKey)
	}

	for i, item := range items {
		record, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: %s[%d] must be a table", ErrParse, resourcesKey, i)
		}
		name, ok := record[nameKey].(string)
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: %s[%d] has no name", ErrParse, resourcesKey, i)
		}
		for _, key := range []string{aliasKey, belongsToKey} {
			if v, present := record[key]; present {
				if _, isString := v.(string); !isString {
					return nil, fmt.Errorf("%w: %s[%d].%s must be a string", ErrParse, resourcesKey, i, key)
				}
			}
		}

		r.records = append(r.records, record)
		// Older registries may repeat a name; the last record wins, which is
		// what PathsHelper does when it builds its lookup.
		r.index[key(name)] = len(r.records) - 1
	}

	return r, nil
}

// key normalizes a name so singular, plural and cased spellings of the same
// resource address the same record.
func key(name string) string {
	return inflect.Derive(name, inflect.PathSegment)
}

// Len returns the number of records.
func (r *Registry) Len() int {
	return len(r.records)
}

// Lookup returns the effective alias of name.
func (r *Registry) Lookup(name string) (string, bool) {
	i, ok := r.index[key(name)]
	if !ok {
		return "", false
	}
	return entryOf(r.records[i]).EffectiveAlias(), true
}

// Resolve returns the effective alias of name, or name itself when it is not
// registered.
func (r *Registry) Resolve(name string) string {
	if alias, ok := r.Lookup(name); ok {
		return alias
	}
	return name
}

// Get returns the record for name.
func (r *Registry) Get(name string) (Entry, bool) {
	i, ok := r.index[key(name)]
	if !ok {
		return Entry{}, false
	}
	return entryOf(r.records[i]), true
}

// Entries returns all records in document order.
func (r *Registry) Entries() []Entry {
	entries := make([]Entry, len(r.records))
	for i, record := range r.records {
		entries[i] = entryOf(record)
	}
	return entries
}

// Upsert inserts e, or updates the existing record with the same name in
// place. Earlier duplicates of that name are dropped so the document ends up
// with at most one record per name.
func (r *Registry) Upsert(e Entry) (Change, error) {
	k := key(e.Name)
	if k == "" {
		return Unchanged, fmt.Errorf("registry entry has no usable name: %q", e.Name)
	}

	i, exists := r.index[k]
	if !exists {
		record := map[string]any{}
		setEntry(record, e)
		r.records = append(r.records, record)
		r.index[k] = len(r.records) - 1
		return Added, nil
	}

	change := Unchanged
	if entryOf(r.records[i]) != e {
		setEntry(r.records[i], e)
		change = Updated
	}

	if r.dropDuplicates(k, i) {
		change = Updated
	}
	return change, nil
}

// dropDuplicates removes records with key k other than the one at keep.
func (r *Registry) dropDuplicates(k string, keep int) bool {
	kept := r.records[:0]
	dropped := false
	for i, record := range r.records {
		name, _ := record[nameKey].(string)
		if i != keep && key(name) == k {
			dropped = true
			continue
		}
		kept = append(kept, record)
	}
	if !dropped {
		return false
	}

	r.records = kept
	r.index = make(map[string]int, len(kept))
	for i, record := range kept {
		name, _ := record[nameKey].(string)
		r.index[key(name)] = i
	}
	return true
}

// Marshal encodes the registry document.
func (r *Registry) Marshal() ([]byte, error) {
	doc := make(map[string]any, len(r.doc)+1)
	for k, v := range r.doc {
		doc[k] = v
	}
	records := r.records
	if records == nil {
		records = []map[string]any{}
	}
	doc[resourcesKey] = records

	data, err := toml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode relation registry: %w", err)
	}
	return data, nil
}

// Save writes the registry to path atomically.
func (r *Registry) Save(path string) error {
	data, err := r.Marshal()
	if err != nil {
		return err
	}
	return utils.WriteFileAtomic(path, data, 0644)
}

func entryOf(record map[string]any) Entry {
	var e Entry
	e.Name, _ = record[nameKey].(string)
	e.Alias, _ = record[aliasKey].(string)
	e.BelongsTo, _ = record[belongsToKey].(string)
	return e
}

func setEntry(record map[string]any, e Entry) {
	record[nameKey] = e.Name
	setOptional(record, aliasKey, e.Alias)
	setOptional(record, belongsToKey, e.BelongsTo)
}

func setOptional(record map[string]any, k, v string) {
	if v == "" {
		delete(record, k)
		return
	}
	record[k] = v
}
