package msgcat

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	yaml "gopkg.in/yaml.v3"
)

//go:embed messages.*.yaml
var defaultFiles embed.FS

// Fallback is the locale every lookup falls back to.
const Fallback = "en"

// Pair is one %{name} substitution.
type Pair struct {
	Name  string
	Value string
}

// P is shorthand for Pair{Name: name, Value: value}.
func P(name, value string) Pair { return Pair{Name: name, Value: value} }

// Catalog holds flattened dot-key messages per locale. Lookups try the active
// locale, then English, then return the key itself.
type Catalog struct {
	mu     sync.RWMutex
	locale string
	data   map[string]map[string]string // locale -> dot-key -> text
}

// New loads the embedded catalogs and then applies overrides from dir if provided.
// locale may be any BCP 47 or POSIX locale string; unsupported ones resolve to English.
func New(locale, overrideDir string) (*Catalog, error) {
	c := &Catalog{locale: ResolveLocale(locale), data: make(map[string]map[string]string)}
	if err := c.loadEmbedded(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(overrideDir) != "" {
		if err := c.applyDir(overrideDir); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Locale returns the active locale code.
func (c *Catalog) Locale() string { return c.locale }

func (c *Catalog) loadEmbedded() error {
	for _, loc := range Supported() {
		raw, err := fs.ReadFile(defaultFiles, "messages."+loc+".yaml")
		if err != nil {
			return fmt.Errorf("read embedded messages %s: %w", loc, err)
		}
		if err := c.applyYAML(loc, raw); err != nil {
			return fmt.Errorf("parse embedded messages %s: %w", loc, err)
		}
	}
	return nil
}

// applyDir reads *.yaml overrides. messages.<locale>.yaml targets that locale,
// any other file targets the active locale.
func (c *Catalog) applyDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read messages dir: %w", err)
	}
	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		n := e.Name()
		ext := strings.ToLower(filepath.Ext(n))
		if ext == ".yaml" || ext == ".yml" {
			files = append(files, n)
		}
	}
	sort.Strings(files)
	seen := make(map[string]string) // locale/key -> filename
	for _, name := range files {
		b, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		flat, err := parseYAMLToFlat(b)
		if err != nil {
			return fmt.Errorf("parse %s: %w", name, err)
		}
		loc := localeOfFile(name, c.locale)
		for k := range flat {
			id := loc + "/" + k
			if prev, ok := seen[id]; ok {
				return fmt.Errorf("duplicate override key %q in %s and %s", k, prev, name)
			}
			seen[id] = name
		}
		c.merge(loc, flat)
	}
	return nil
}

func localeOfFile(name, active string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	if rest, ok := strings.CutPrefix(base, "messages."); ok {
		return ResolveLocale(rest)
	}
	return active
}

func (c *Catalog) applyYAML(locale string, b []byte) error {
	flat, err := parseYAMLToFlat(b)
	if err != nil {
		return err
	}
	c.merge(locale, flat)
	return nil
}

func (c *Catalog) merge(locale string, flat map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	dst, ok := c.data[locale]
	if !ok {
		dst = make(map[string]string, len(flat))
		c.data[locale] = dst
	}
	for k, v := range flat {
		dst[k] = v
	}
}

func parseYAMLToFlat(b []byte) (map[string]string, error) {
	var m map[string]any
	if err := yaml.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	flat := make(map[string]string)
	if err := flattenStrings(m, "", flat); err != nil {
		return nil, err
	}
	return flat, nil
}

func flattenStrings(src any, prefix string, out map[string]string) error {
	switch v := src.(type) {
	case map[string]any:
		for k, vv := range v {
			key := k
			if prefix != "" {
				key = prefix + "." + k
			}
			if err := flattenStrings(vv, key, out); err != nil {
				return err
			}
		}
		return nil
	case string:
		if prefix == "" {
			return errors.New("string value without key prefix")
		}
		out[prefix] = v
		return nil
	case nil:
		return nil
	default:
		return fmt.Errorf("unsupported value at %s: %T", prefix, v)
	}
}

// Lookup returns the raw message for key and whether any locale defines it.
func (c *Catalog) Lookup(key string) (string, bool) {
	key = strings.TrimSpace(key)
	c.mu.RLock()
	defer c.mu.RUnlock()
	if s, ok := c.data[c.locale][key]; ok {
		return s, true
	}
	s, ok := c.data[Fallback][key]
	return s, ok
}

// Translate renders key with %{name} placeholders replaced by pairs.
// Unknown keys come back unchanged. Unmatched placeholders are left as is.
func (c *Catalog) Translate(key string, pairs ...Pair) string {
	text, ok := c.Lookup(key)
	if !ok {
		return key
	}
	return Substitute(text, pairs...)
}

// Substitute replaces every %{name} in text with the matching pair value.
func Substitute(text string, pairs ...Pair) string {
	if len(pairs) == 0 || !strings.Contains(text, "%{") {
		return text
	}
	args := make([]string, 0, len(pairs)*2)
	for _, p := range pairs {
		args = append(args, "%{"+p.Name+"}", p.Value)
	}
	return strings.NewReplacer(args...).Replace(text)
}
