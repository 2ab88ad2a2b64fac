// Package emit renders emission requests into binding source text.
// Backends are pluggable, one per target language; nothing outside a
// backend branches on target identity.
package emit

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/johnstonskj/tsbind/pkg/bindgen"
)

// DefaultDirectory is the conventional root of generated bindings.
const DefaultDirectory = "bindings"

// ErrUnknownLanguage is returned by Lookup for an unregistered target.
var ErrUnknownLanguage = errors.New("unknown target language")

// Backend renders an emission request into source text for one target
// language.
type Backend interface {
	// Language is the registry key, e.g. "rust".
	Language() string
	// FileExtension is the generated file's extension, without dot.
	FileExtension() string
	// Render produces the source text for the request, or a rendering
	// error.
	Render(req *bindgen.Request) ([]byte, error)
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Backend)
)

// Register adds a backend to the registry. Registering two backends
// for the same language is a programming error.
func Register(b Backend) {
	registryMu.Lock()
	defer registryMu.Unlock()

	lang := b.Language()
	if _, dup := registry[lang]; dup {
		panic(fmt.Sprintf("emit: backend for %q registered twice", lang))
	}

	registry[lang] = b
}

// Lookup returns the backend for a target language.
func Lookup(language string) (Backend, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	b, ok := registry[language]
	if !ok {
		return nil, fmt.Errorf("%w: %q (have %s)", ErrUnknownLanguage, language, strings.Join(languages(), ", "))
	}

	return b, nil
}

// Languages returns the registered target languages, sorted.
func Languages() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	return languages()
}

func languages() []string {
	langs := make([]string, 0, len(registry))

	for lang := range registry {
		langs = append(langs, lang)
	}

	sort.Strings(langs)

	return langs
}

// FilePath returns the conventional output path for a backend and
// artifact: <dir>/<language>/<artifact>.<ext>. An empty dir uses the
// default bindings directory.
func FilePath(b Backend, dir string, artifact bindgen.Artifact) string {
	if dir == "" {
		dir = DefaultDirectory
	}

	name := fmt.Sprintf("%s.%s", artifact, b.FileExtension())

	return filepath.Join(dir, b.Language(), name)
}

// pascalCase converts a binding name to PascalCase for targets with
// exported-type conventions.
func pascalCase(name string) string {
	var b strings.Builder

	upper := true

	for _, r := range name {
		if r == '_' {
			upper = true

			continue
		}

		if upper && r >= 'a' && r <= 'z' {
			r -= 'a' - 'A'
		}

		upper = false

		b.WriteRune(r)
	}

	return b.String()
}
