package yaml

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fwojciec/knowcore"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var _ knowcore.AdapterLoader = (*AdapterLoader)(nil)

// selectorSpec decodes either a single selector string or a list of
// fallback selectors.
type selectorSpec knowcore.SelectorSpec

func (s *selectorSpec) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var one string
		if err := value.Decode(&one); err != nil {
			return err
		}
		*s = selectorSpec{one}
		return nil
	case yaml.SequenceNode:
		var many []string
		if err := value.Decode(&many); err != nil {
			return err
		}
		*s = selectorSpec(many)
		return nil
	}
	return errors.New("selector must be a string or a list of strings")
}

type adapterFile struct {
	Name    string                  `yaml:"name"`
	Meta    map[string]selectorSpec `yaml:"meta"`
	Content struct {
		Root   string `yaml:"root"`
		Blocks []struct {
			Selector string            `yaml:"selector"`
			Type     string            `yaml:"type"`
			Attrs    map[string]string `yaml:"attrs"`
		} `yaml:"blocks"`
		Ignore []string `yaml:"ignore"`
	} `yaml:"content"`
}

func (f *adapterFile) adapter(defaultName string) *knowcore.Adapter {
	a := &knowcore.Adapter{
		Name: f.Name,
		Meta: make(map[string]knowcore.SelectorSpec, len(f.Meta)),
		Content: knowcore.ContentConfig{
			Root:   f.Content.Root,
			Ignore: f.Content.Ignore,
		},
	}
	if a.Name == "" {
		a.Name = defaultName
	}
	for field, spec := range f.Meta {
		a.Meta[field] = knowcore.SelectorSpec(spec)
	}
	for _, b := range f.Content.Blocks {
		typ := knowcore.BlockType(strings.TrimSpace(b.Type))
		if typ == "" {
			typ = knowcore.BlockParagraph
		}
		a.Content.Blocks = append(a.Content.Blocks, knowcore.BlockRule{
			Selector: b.Selector,
			Type:     typ,
			Attrs:    b.Attrs,
		})
	}
	return a
}

// ParseAdapter decodes and validates an adapter definition. A block
// without a type is a paragraph rule.
func ParseAdapter(data []byte, defaultName string) (*knowcore.Adapter, error) {
	var f adapterFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, knowcore.Errorf(knowcore.EINVALID, "adapter %s: %v", defaultName, err)
	}
	a := f.adapter(defaultName)
	if err := validate.Struct(a); err != nil {
		return nil, knowcore.Errorf(knowcore.EINVALID, "adapter %s: %v", a.Name, err)
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// AdapterLoader loads adapter YAML files relative to a root directory.
// Loaded adapters are cached by reference and safe for concurrent use.
type AdapterLoader struct {
	root string

	mu    sync.Mutex
	cache map[string]*knowcore.Adapter
}

// NewAdapterLoader creates an AdapterLoader resolving references against root.
func NewAdapterLoader(root string) *AdapterLoader {
	return &AdapterLoader{
		root:  root,
		cache: make(map[string]*knowcore.Adapter),
	}
}

// LoadAdapter loads the adapter file named by ref. A reference without an
// extension is tried with .yaml and .yml.
// Returns ENOTFOUND if no file exists and EINVALID if it does not parse.
func (l *AdapterLoader) LoadAdapter(ref string) (*knowcore.Adapter, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, knowcore.Errorf(knowcore.EINVALID, "adapter reference required")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if a, ok := l.cache[ref]; ok {
		return a, nil
	}

	path, err := l.resolve(ref)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	a, err := ParseAdapter(data, name)
	if err != nil {
		return nil, err
	}
	l.cache[ref] = a
	return a, nil
}

func (l *AdapterLoader) resolve(ref string) (string, error) {
	path := ref
	if !filepath.IsAbs(path) {
		path = filepath.Join(l.root, path)
	}
	candidates := []string{path}
	if filepath.Ext(path) == "" {
		candidates = append(candidates, path+".yaml", path+".yml")
	}
	for _, c := range candidates {
		info, err := os.Stat(c)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		} else if err != nil {
			return "", err
		}
		if !info.IsDir() {
			return c, nil
		}
	}
	return "", knowcore.Errorf(knowcore.ENOTFOUND, "adapter %q not found", ref)
}
