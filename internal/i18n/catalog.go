// Package i18n loads the embedded message catalogs and hands out per-locale
// dictionaries. Missing keys fall back to the base locale, then to the key.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
	"gopkg.in/yaml.v3"

	"github.com/jask/voltalert/internal/logging"
)

// BaseLocale is the source locale every catalog falls back to.
const BaseLocale = "en-US"

//go:embed locales/*.yaml
var embeddedFS embed.FS

type catalogFile struct {
	Locale   string            `yaml:"locale"`
	Messages map[string]string `yaml:"messages"`
}

// Bundle holds every loaded locale.
type Bundle struct {
	locales map[string]map[string]string
	tags    []language.Tag
	names   []string // parallel to tags
	matcher language.Matcher
	builder *catalog.Builder
	log     *logging.Logger
}

// LoadEmbedded loads the catalogs compiled into the binary.
func LoadEmbedded() (*Bundle, error) {
	return LoadFromFS(embeddedFS)
}

// LoadFromFS loads every locales/*.yaml file from fsys.
func LoadFromFS(fsys fs.FS) (*Bundle, error) {
	paths, err := fs.Glob(fsys, "locales/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob catalogs: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no catalog files found")
	}
	sort.Strings(paths)

	b := &Bundle{locales: map[string]map[string]string{}}
	for _, p := range paths {
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", p, err)
		}
		var file catalogFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parse catalog %s: %w", p, err)
		}
		if err := b.add(p, file); err != nil {
			return nil, err
		}
	}
	base, ok := b.locales[BaseLocale]
	if !ok {
		return nil, fmt.Errorf("base locale %s is not defined in catalogs", BaseLocale)
	}

	// base first so the matcher falls back to it
	b.names = append(b.names, BaseLocale)
	for name := range b.locales {
		if name != BaseLocale {
			b.names = append(b.names, name)
		}
	}
	sort.Strings(b.names[1:])

	b.builder = catalog.NewBuilder(catalog.Fallback(language.MustParse(BaseLocale)))
	for _, name := range b.names {
		tag, err := language.Parse(name)
		if err != nil {
			return nil, fmt.Errorf("parse locale tag %q: %w", name, err)
		}
		b.tags = append(b.tags, tag)
		for key, value := range base {
			if _, ok := b.locales[name][key]; ok {
				continue
			}
			if err := b.builder.SetString(tag, key, value); err != nil {
				return nil, fmt.Errorf("register %s/%s: %w", name, key, err)
			}
		}
		for key, value := range b.locales[name] {
			if err := b.builder.SetString(tag, key, value); err != nil {
				return nil, fmt.Errorf("register %s/%s: %w", name, key, err)
			}
		}
	}
	b.matcher = language.NewMatcher(b.tags)
	return b, nil
}

func (b *Bundle) add(p string, file catalogFile) error {
	fromPath := strings.TrimSuffix(path.Base(p), path.Ext(p))
	locale := strings.TrimSpace(file.Locale)
	if locale == "" {
		return fmt.Errorf("catalog %s: locale is required", p)
	}
	if locale != fromPath {
		return fmt.Errorf("catalog %s: locale %q must match file name %q", p, locale, fromPath)
	}
	if _, exists := b.locales[locale]; exists {
		return fmt.Errorf("catalog %s: locale %q already defined", p, locale)
	}
	if len(file.Messages) == 0 {
		return fmt.Errorf("catalog %s: messages are required", p)
	}
	messages := make(map[string]string, len(file.Messages))
	for key, value := range file.Messages {
		k := strings.TrimSpace(key)
		if k == "" {
			return fmt.Errorf("catalog %s: message key cannot be blank", p)
		}
		messages[k] = value
	}
	b.locales[locale] = messages
	return nil
}

// SetLogger sets where missing-key warnings go.
func (b *Bundle) SetLogger(l *logging.Logger) {
	b.log = l.With("i18n")
}

// Locales returns the loaded locale names, base first.
func (b *Bundle) Locales() []string {
	return append([]string(nil), b.names...)
}

// Match resolves a requested locale (for example "de", "nb_NO" or
// "en-GB") to a loaded one. Unparseable or unmatched input yields BaseLocale.
func (b *Bundle) Match(requested string) string {
	requested = strings.ReplaceAll(strings.TrimSpace(requested), "_", "-")
	if requested == "" {
		return BaseLocale
	}
	tag, err := language.Parse(requested)
	if err != nil {
		return BaseLocale
	}
	_, idx, conf := b.matcher.Match(tag)
	if conf == language.No || idx < 0 || idx >= len(b.names) {
		return BaseLocale
	}
	return b.names[idx]
}

// Dictionary returns the dictionary for the best match of requested.
func (b *Bundle) Dictionary(requested string) *Dictionary {
	name := b.Match(requested)
	tag := b.tags[0]
	for i, n := range b.names {
		if n == name {
			tag = b.tags[i]
			break
		}
	}
	keys := make([]string, 0, len(b.locales[BaseLocale]))
	for key := range b.locales[BaseLocale] {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return &Dictionary{
		locale:   name,
		messages: b.locales[name],
		base:     b.locales[BaseLocale],
		keys:     keys,
		printer:  message.NewPrinter(tag, message.Catalog(b.builder)),
		log:      b.log,
	}
}
