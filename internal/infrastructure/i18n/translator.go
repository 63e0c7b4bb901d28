// Package i18n localizes desk labels using x/text message catalogs loaded
// from per-language YAML files.
package i18n

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
	"gopkg.in/yaml.v3"

	"github.com/teciza/desk/internal/application/port"
)

// Bundle holds the translations of every loaded language
type Bundle struct {
	mu       sync.RWMutex
	fallback language.Tag
	builder  *catalog.Builder
	keys     map[language.Tag]map[string]bool
	matcher  language.Matcher
	logger   *zap.Logger
}

// NewBundle creates an empty bundle. Sources are written in fallback.
func NewBundle(fallback string, logger *zap.Logger) (*Bundle, error) {
	tag, err := language.Parse(fallback)
	if err != nil {
		return nil, fmt.Errorf("invalid fallback language %q: %w", fallback, err)
	}

	b := &Bundle{
		fallback: tag,
		builder:  catalog.NewBuilder(catalog.Fallback(tag)),
		keys:     make(map[language.Tag]map[string]bool),
		logger:   logger,
	}
	b.matcher = language.NewMatcher([]language.Tag{tag})
	return b, nil
}

// Add registers translations for lang
func (b *Bundle) Add(lang string, entries map[string]string) error {
	tag, err := language.Parse(lang)
	if err != nil {
		return fmt.Errorf("invalid language %q: %w", lang, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.keys[tag] == nil {
		b.keys[tag] = make(map[string]bool)
	}
	for src, dst := range entries {
		if err := b.builder.SetString(tag, src, escapePercent(dst)); err != nil {
			return fmt.Errorf("set %s translation for %q: %w", tag, src, err)
		}
		b.keys[tag][src] = true
	}

	b.matcher = language.NewMatcher(b.supportedLocked())
	return nil
}

// LoadFS adds every <lang>.yaml file at the root of fsys
func (b *Bundle) LoadFS(fsys fs.FS) error {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("read translations: %w", err)
	}

	for _, e := range entries {
		ext := path.Ext(e.Name())
		if e.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}

		data, err := fs.ReadFile(fsys, e.Name())
		if err != nil {
			return fmt.Errorf("read %s: %w", e.Name(), err)
		}

		var messages map[string]string
		if err := yaml.Unmarshal(data, &messages); err != nil {
			return fmt.Errorf("parse %s: %w", e.Name(), err)
		}

		lang := strings.TrimSuffix(e.Name(), ext)
		if err := b.Add(lang, messages); err != nil {
			return err
		}

		b.logger.Info("Loaded translations",
			zap.String("language", lang),
			zap.Int("messages", len(messages)))
	}
	return nil
}

// Languages lists the fallback followed by every loaded language
func (b *Bundle) Languages() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	tags := b.supportedLocked()
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = t.String()
	}
	return out
}

// For returns a translator for an Accept-Language style preference list.
// Unknown or empty preferences resolve to the fallback language.
func (b *Bundle) For(lang string) port.Translator {
	b.mu.RLock()
	defer b.mu.RUnlock()

	tag := b.fallback
	if lang != "" {
		prefs, _, err := language.ParseAcceptLanguage(lang)
		if err == nil && len(prefs) > 0 {
			supported := b.supportedLocked()
			_, idx, conf := b.matcher.Match(prefs...)
			if conf != language.No && idx < len(supported) {
				tag = supported[idx]
			}
		}
	}

	// snapshot the key set; Add keeps writing to the live map
	keys := make(map[string]bool, len(b.keys[tag]))
	for k := range b.keys[tag] {
		keys[k] = true
	}

	return &translator{
		printer: message.NewPrinter(tag, message.Catalog(b.builder)),
		keys:    keys,
	}
}

func (b *Bundle) supportedLocked() []language.Tag {
	tags := []language.Tag{b.fallback}
	for t := range b.keys {
		if t != b.fallback {
			tags = append(tags, t)
		}
	}
	// map order is random; keep the matcher deterministic
	rest := tags[1:]
	sort.Slice(rest, func(i, j int) bool { return rest[i].String() < rest[j].String() })
	return tags
}

func escapePercent(s string) string {
	return strings.ReplaceAll(s, "%", "%%")
}

type translator struct {
	printer *message.Printer
	keys    map[string]bool
}

// Translate returns the catalog entry for msg, or msg itself
func (t *translator) Translate(msg string) string {
	if !t.keys[msg] {
		return msg
	}
	return t.printer.Sprintf(msg)
}

var _ port.Translations = (*Bundle)(nil)
