package project

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// ManifestName is the dependency manifest filename recognized at the root.
const ManifestName = "package.json"

// Manifest holds the parsed package.json. The three well-known sections are
// decoded into maps; every other top-level key is kept verbatim in Extra so
// writes round-trip without touching unrelated configuration.
type Manifest struct {
	Dependencies    map[string]string
	DevDependencies map[string]string
	Scripts         map[string]string

	Extra map[string]json.RawMessage

	// keyOrder remembers the original top-level key sequence so a rewrite
	// preserves the author's layout.
	keyOrder []string
}

// ParseManifest decodes package.json content.
func ParseManifest(data []byte) (*Manifest, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", ManifestName, err)
	}

	m := &Manifest{
		Dependencies:    map[string]string{},
		DevDependencies: map[string]string{},
		Scripts:         map[string]string{},
		Extra:           map[string]json.RawMessage{},
		keyOrder:        topLevelKeys(data),
	}

	for key, val := range raw {
		switch key {
		case "dependencies", "devDependencies", "scripts":
			section := map[string]string{}
			if err := json.Unmarshal(val, &section); err != nil {
				return nil, fmt.Errorf("parsing %s.%s: %w", ManifestName, key, err)
			}
			switch key {
			case "dependencies":
				m.Dependencies = section
			case "devDependencies":
				m.DevDependencies = section
			case "scripts":
				m.Scripts = section
			}
		default:
			m.Extra[key] = val
		}
	}
	return m, nil
}

// Clone returns a deep copy, so Apply-style functions can stay pure.
func (m *Manifest) Clone() *Manifest {
	out := &Manifest{
		Dependencies:    copyStringMap(m.Dependencies),
		DevDependencies: copyStringMap(m.DevDependencies),
		Scripts:         copyStringMap(m.Scripts),
		Extra:           map[string]json.RawMessage{},
		keyOrder:        append([]string(nil), m.keyOrder...),
	}
	for k, v := range m.Extra {
		out.Extra[k] = append(json.RawMessage(nil), v...)
	}
	return out
}

// Encode serializes the manifest with two-space indentation. Top-level keys
// keep their original order; sections added during migration are appended.
func (m *Manifest) Encode() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("{\n")

	keys := m.orderedKeys()
	for i, key := range keys {
		val, err := m.sectionJSON(key)
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(&buf, "  %s: %s", mustJSON(key), indentRaw(val, "  "))
		if i < len(keys)-1 {
			buf.WriteString(",")
		}
		buf.WriteString("\n")
	}

	buf.WriteString("}\n")
	return buf.Bytes(), nil
}

// WriteManifest serializes and writes the manifest atomically: content lands
// in a temp file first and is renamed over package.json, so a crash mid-write
// never truncates the original.
func WriteManifest(root string, m *Manifest) error {
	data, err := m.Encode()
	if err != nil {
		return err
	}

	target := filepath.Join(root, ManifestName)
	tmp, err := os.CreateTemp(root, ManifestName+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp manifest: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing temp manifest: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing %s: %w", ManifestName, err)
	}
	return nil
}

func (m *Manifest) orderedKeys() []string {
	seen := map[string]bool{}
	var keys []string
	for _, k := range m.keyOrder {
		if m.hasSection(k) && !seen[k] {
			keys = append(keys, k)
			seen[k] = true
		}
	}
	// Sections introduced after parse (or on a fresh manifest).
	var added []string
	for _, k := range []string{"dependencies", "devDependencies", "scripts"} {
		if !seen[k] && m.hasSection(k) {
			added = append(added, k)
		}
	}
	var extra []string
	for k := range m.Extra {
		if !seen[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	return append(keys, append(added, extra...)...)
}

func (m *Manifest) hasSection(key string) bool {
	switch key {
	case "dependencies":
		return len(m.Dependencies) > 0
	case "devDependencies":
		return len(m.DevDependencies) > 0
	case "scripts":
		return len(m.Scripts) > 0
	default:
		_, ok := m.Extra[key]
		return ok
	}
}

func (m *Manifest) sectionJSON(key string) ([]byte, error) {
	switch key {
	case "dependencies":
		return sortedObjectJSON(m.Dependencies), nil
	case "devDependencies":
		return sortedObjectJSON(m.DevDependencies), nil
	case "scripts":
		return sortedObjectJSON(m.Scripts), nil
	default:
		var pretty bytes.Buffer
		if err := json.Indent(&pretty, m.Extra[key], "", "  "); err != nil {
			return nil, err
		}
		return pretty.Bytes(), nil
	}
}

// sortedObjectJSON renders a string map as a pretty JSON object with sorted
// keys, which keeps manifest rewrites deterministic.
func sortedObjectJSON(section map[string]string) []byte {
	keys := make([]string, 0, len(section))
	for k := range section {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.WriteString("{\n")
	for i, k := range keys {
		fmt.Fprintf(&buf, "  %s: %s", mustJSON(k), mustJSON(section[k]))
		if i < len(keys)-1 {
			buf.WriteString(",")
		}
		buf.WriteString("\n")
	}
	buf.WriteString("}")
	return buf.Bytes()
}

// topLevelKeys walks the token stream to record top-level object keys in
// their original order. Returns nil on any irregularity; order then falls
// back to sorted.
func topLevelKeys(data []byte) []string {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil
	}

	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil
		}
		key, ok := tok.(string)
		if !ok {
			return nil
		}
		keys = append(keys, key)

		// Skip the value.
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil
		}
	}
	return keys
}

// indentRaw re-indents pretty-printed JSON so nested sections line up under
// their key.
func indentRaw(val []byte, prefix string) string {
	lines := bytes.Split(val, []byte("\n"))
	for i := 1; i < len(lines); i++ {
		lines[i] = append([]byte(prefix), lines[i]...)
	}
	return string(bytes.Join(lines, []byte("\n")))
}

func mustJSON(v any) string {
	b, _ := json.Marshal(v)
	return string(b)
}

func copyStringMap(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
