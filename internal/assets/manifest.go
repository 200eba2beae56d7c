package assets

import (
	"encoding/json"
	"os"
	"sort"
	"strings"

	"github.com/streamssr/streamssr/internal/errors"
	"github.com/streamssr/streamssr/internal/render"
)

// DevEntry is the unbundled client entry referenced when no manifest exists.
const DevEntry = "/src/client/entry-client.tsx"

// Entry is one record of the bundler manifest.
type Entry struct {
	File    string   `json:"file"`
	Src     string   `json:"src,omitempty"`
	IsEntry bool     `json:"isEntry,omitempty"`
	CSS     []string `json:"css,omitempty"`
	Imports []string `json:"imports,omitempty"`
}

// Manifest maps manifest keys to entries. It is immutable after Parse.
type Manifest struct {
	entries map[string]Entry
}

// Parse decodes manifest JSON.
func Parse(data []byte) (*Manifest, error) {
	var entries map[string]Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, errors.New("E101").Wrap(err)
	}
	if entries == nil {
		entries = map[string]Entry{}
	}
	return &Manifest{entries: entries}, nil
}

// Load reads and parses the manifest at path. A missing file is reported
// with an error satisfying errors.Is(err, os.ErrNotExist).
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("E100").WithDetail(path).Wrap(err)
	}
	return Parse(data)
}

// Len returns the number of entries.
func (m *Manifest) Len() int {
	return len(m.entries)
}

// Entry returns the first entry point in key order.
func (m *Manifest) Entry() (Entry, bool) {
	keys := make([]string, 0, len(m.entries))
	for k := range m.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if e := m.entries[k]; e.IsEntry {
			return e, true
		}
	}
	return Entry{}, false
}

// Tags are the head elements referencing the client bundle.
type Tags struct {
	Links   []render.LinkTag
	Scripts []render.ScriptTag
}

// TagsFor builds head tags for m. Stylesheets come first, then module
// preloads for the entry's imports, then the entry module itself, marked
// async so it runs while sections are still streaming. A nil
// manifest yields the development entry; a manifest without an entry point
// yields no tags.
func TagsFor(m *Manifest, prefix string) Tags {
	if m == nil {
		return Tags{Scripts: []render.ScriptTag{{Src: DevEntry, Module: true, Async: true}}}
	}

	entry, ok := m.Entry()
	if !ok {
		return Tags{}
	}

	var tags Tags
	for _, css := range entry.CSS {
		tags.Links = append(tags.Links, render.LinkTag{Rel: "stylesheet", Href: URL(prefix, css)})
	}
	for _, imp := range entry.Imports {
		if dep, ok := m.entries[imp]; ok {
			tags.Links = append(tags.Links, render.LinkTag{Rel: "modulepreload", Href: URL(prefix, dep.File)})
		}
	}
	tags.Scripts = append(tags.Scripts, render.ScriptTag{Src: URL(prefix, entry.File), Module: true, Async: true})
	return tags
}

// URL joins the public asset prefix with a manifest file path. Bundlers
// emit files under "assets/", so that segment is not repeated when the
// prefix already ends in it.
func URL(prefix, file string) string {
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	file = strings.TrimPrefix(file, "/")
	if strings.HasSuffix(prefix, "/assets/") {
		file = strings.TrimPrefix(file, "assets/")
	}
	return prefix + file
}
