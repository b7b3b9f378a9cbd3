package vault

import (
	"github.com/logjamd/logjamd/pkg/document"
	"github.com/logjamd/logjamd/pkg/index"
)

// IndexSpec declares one configured secondary index.
type IndexSpec struct {
	Name       string
	Kind       index.Kind
	Path       string
	Comparator index.Comparator
}

// Config is a vault's configuration: its declared indexes, plus any
// sub-field declarations and event handlers the registry has loaded
// from the vault's configuration document. Event
// handlers and sub-field declarations are stored opaquely as strings
// here; only the index declarations affect core storage behavior.
type Config struct {
	Indexes        []IndexSpec
	SubFields      []string
	EventHandlers  map[string]string // event name -> script body
}

// kindName/kindFromName and comparatorName/comparatorFromName translate
// between the index package's enums and the string values stored in a
// configuration document, so a vault's configuration can round-trip
// through the same binary document format the store persists.
func kindName(k index.Kind) string {
	switch k {
	case index.Ordered:
		return "ordered"
	case index.UniqueHashed:
		return "unique-hashed"
	default:
		return "hashed"
	}
}

func kindFromName(s string) index.Kind {
	switch s {
	case "ordered":
		return index.Ordered
	case "unique-hashed":
		return index.UniqueHashed
	default:
		return index.Hashed
	}
}

func comparatorName(c index.Comparator) string {
	switch c {
	case index.Int32:
		return "int32"
	case index.Int64:
		return "int64"
	default:
		return "lexical"
	}
}

func comparatorFromName(s string) index.Comparator {
	switch s {
	case "int32":
		return index.Int32
	case "int64":
		return index.Int64
	default:
		return index.Lexical
	}
}

// ConfigFromDocument decodes a vault Config from its document
// representation: `indexes` is an array of {name, kind, path,
// comparator}, `sub_fields` is an array of path strings, and
// `event_handlers` is a sub-document mapping event name to script body.
func ConfigFromDocument(d *document.Document) Config {
	var cfg Config
	idxArr := d.Get("indexes").AsDocument()
	for _, k := range idxArr.Keys() {
		entry := idxArr.Get(k).AsDocument()
		cfg.Indexes = append(cfg.Indexes, IndexSpec{
			Name:       entry.Get("name").AsString(),
			Kind:       kindFromName(entry.Get("kind").AsString()),
			Path:       entry.Get("path").AsString(),
			Comparator: comparatorFromName(entry.Get("comparator").AsString()),
		})
	}
	for _, k := range d.Get("sub_fields").AsDocument().Keys() {
		cfg.SubFields = append(cfg.SubFields, d.Get("sub_fields").AsDocument().Get(k).AsString())
	}
	handlers := d.Get("event_handlers").AsDocument()
	if handlers.Len() > 0 {
		cfg.EventHandlers = make(map[string]string, handlers.Len())
		for _, k := range handlers.Keys() {
			cfg.EventHandlers[k] = handlers.Get(k).AsString()
		}
	}
	return cfg
}

// ToDocument encodes cfg back to its document representation.
func (cfg Config) ToDocument() *document.Document {
	d := document.New()
	for i, spec := range cfg.Indexes {
		entry := document.New()
		entry.Set("name", document.NewString(spec.Name))
		entry.Set("kind", document.NewString(kindName(spec.Kind)))
		entry.Set("path", document.NewString(spec.Path))
		entry.Set("comparator", document.NewString(comparatorName(spec.Comparator)))
		d.Push("indexes", document.NewDocumentNode(entry))
		_ = i
	}
	for _, f := range cfg.SubFields {
		d.Push("sub_fields", document.NewString(f))
	}
	if len(cfg.EventHandlers) > 0 {
		for name, body := range cfg.EventHandlers {
			d.Set("event_handlers/"+name, document.NewString(body))
		}
	}
	return d
}
