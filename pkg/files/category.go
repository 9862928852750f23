package files

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// OthersCategory is the category of every extension without a rule.
const OthersCategory = "Others"

// defaultRules is the fixed rule table. It can be extended through
// NewCategorizer but never remapped.
var defaultRules = []struct {
	category   string
	extensions []string
}{
	{"Documents", []string{".pdf", ".doc", ".docx", ".txt"}},
	{"Images", []string{".jpg", ".jpeg", ".png", ".gif"}},
	{"Music", []string{".mp3", ".wav"}},
	{"Videos", []string{".mp4", ".avi", ".mkv"}},
}

// Categorizer maps file extensions to category names. It is immutable
// after construction and safe for concurrent use.
type Categorizer struct {
	byExt *orderedmap.OrderedMap[string, string]
	rules *orderedmap.OrderedMap[string, []string]
}

// NormalizeExtension lowercases ext and makes sure it starts with a dot.
// An empty input stays empty.
func NormalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" || ext == "." {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// NewCategorizer builds the rule table from the fixed rules followed by
// extra, which maps extensions to categories. Extra rules may introduce new
// categories, but remapping an extension which already has a rule is an
// error.
func NewCategorizer(extra map[string]string) (*Categorizer, error) {
	c := &Categorizer{
		byExt: orderedmap.New[string, string](),
		rules: orderedmap.New[string, []string](),
	}
	for _, r := range defaultRules {
		for _, ext := range r.extensions {
			if err := c.add(ext, r.category); err != nil {
				return nil, err
			}
		}
	}
	for _, ext := range slices.Sorted(maps.Keys(extra)) {
		if err := c.add(ext, extra[ext]); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// MustNewCategorizer is NewCategorizer without extra rules.
func MustNewCategorizer() *Categorizer {
	c, err := NewCategorizer(nil)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Categorizer) add(ext, category string) error {
	norm := NormalizeExtension(ext)
	category = strings.TrimSpace(category)
	if norm == "" {
		return fmt.Errorf("empty extension for category %q", category)
	}
	if category == "" {
		return fmt.Errorf("empty category for extension %s", norm)
	}
	if category == OthersCategory {
		return fmt.Errorf("extension %s cannot be mapped to %s explicitly", norm, OthersCategory)
	}
	if existing, ok := c.byExt.Get(norm); ok {
		if existing == category {
			return nil
		}
		return fmt.Errorf("extension %s is already mapped to %s", norm, existing)
	}
	c.byExt.Set(norm, category)
	exts, _ := c.rules.Get(category)
	c.rules.Set(category, append(exts, norm))
	return nil
}

// Category returns the category for ext. The lookup is case-insensitive,
// accepts the extension with or without its leading dot, and never fails.
func (c *Categorizer) Category(ext string) string {
	if category, ok := c.byExt.Get(NormalizeExtension(ext)); ok {
		return category
	}
	return OthersCategory
}

// Categories returns every category name in rule order, Others last.
func (c *Categorizer) Categories() []string {
	names := make([]string, 0, c.rules.Len()+1)
	for pair := c.rules.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return append(names, OthersCategory)
}

// Rules returns a copy of the category to extensions table in rule order.
func (c *Categorizer) Rules() *orderedmap.OrderedMap[string, []string] {
	out := orderedmap.New[string, []string]()
	for pair := c.rules.Oldest(); pair != nil; pair = pair.Next() {
		out.Set(pair.Key, append([]string(nil), pair.Value...))
	}
	return out
}

// IsCategory reports whether name is one of the category folder names.
func (c *Categorizer) IsCategory(name string) bool {
	if name == OthersCategory {
		return true
	}
	_, ok := c.rules.Get(name)
	return ok
}
