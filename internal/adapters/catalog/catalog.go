package catalog

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/nicksnyder/go-i18n/v2/i18n/template"
	"github.com/tidwall/gjson"
	"golang.org/x/text/language"

	"github.com/3-lines-studio/prerender/internal/core"
)

const DefaultStringsFile = "strings.json"

type FileReader interface {
	ReadFile(path string) ([]byte, error)
}

// Catalog is a LocalizationContext backed by per-locale string tables under
// a resources directory. Child locales inherit their parents' strings.
//
// A locale with no string tables at all renders source strings as-is. A
// locale that has tables but lacks a key reports it unavailable, so the
// lookup is deferred to the client.
type Catalog struct {
	files    FileReader
	root     string
	filename string
	logger   *slog.Logger

	locale  string
	current *entry
	entries map[string]*entry
}

type entry struct {
	tag       language.Tag
	localizer *i18n.Localizer
	messages  int
}

func New(files FileReader, root string, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	return &Catalog{
		files:    files,
		root:     root,
		filename: DefaultStringsFile,
		logger:   logger,
		entries:  make(map[string]*entry),
	}
}

func (c *Catalog) SetLocale(locale string) error {
	if e, ok := c.entries[locale]; ok {
		c.locale, c.current = locale, e
		return nil
	}

	e, err := c.load(locale)
	if err != nil {
		return err
	}
	c.entries[locale] = e
	c.locale, c.current = locale, e
	return nil
}

func (c *Catalog) Locale() string {
	return c.locale
}

func (c *Catalog) Lookup(key string) (string, bool) {
	if c.current == nil || c.current.messages == 0 {
		return key, true
	}

	// String tables hold literal text; braces must survive untouched.
	value, err := c.current.localizer.Localize(&i18n.LocalizeConfig{
		MessageID:      key,
		TemplateParser: template.IdentityParser{},
	})
	if err != nil {
		return "", false
	}
	return value, true
}

// Tag reports the BCP 47 tag of the active locale.
func (c *Catalog) Tag() language.Tag {
	if c.current == nil {
		return language.Und
	}
	return c.current.tag
}

func (c *Catalog) load(locale string) (*entry, error) {
	chain := core.ParentLocales(locale)
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	chain = append(chain, locale)

	strings := make(map[string]string)
	for _, level := range chain {
		path := filepath.Join(c.root, filepath.FromSlash(level), c.filename)
		data, err := c.files.ReadFile(path)
		if err != nil {
			continue
		}

		table := gjson.ParseBytes(data)
		if !gjson.ValidBytes(data) || !table.IsObject() {
			c.logger.Warn("Skipping malformed string table", "path", path)
			continue
		}
		table.ForEach(func(key, value gjson.Result) bool {
			if value.Type == gjson.String {
				strings[key.String()] = value.String()
			}
			return true
		})
	}

	tag := language.Make(core.LocaleTag(locale))
	bundle := i18n.NewBundle(tag)

	messages := make([]*i18n.Message, 0, len(strings))
	for id, other := range strings {
		messages = append(messages, &i18n.Message{ID: id, Other: other})
	}
	if err := bundle.AddMessages(tag, messages...); err != nil {
		return nil, fmt.Errorf("failed to load strings for %s: %w", locale, err)
	}

	return &entry{
		tag:       tag,
		localizer: i18n.NewLocalizer(bundle, tag.String()),
		messages:  len(messages),
	}, nil
}
