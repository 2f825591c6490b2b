package payload

import (
	"errors"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

// ErrNotFound is returned when a store has no image under the requested name.
var ErrNotFound = errors.New("payload not found")

// Store resolves stub names, as referenced by chip descriptors, to the
// machine code uploaded to the device.
type Store interface {
	Load(name string) ([]byte, error)
}

// Dir serves <root>/<name>.bin files from fs.
type Dir struct {
	fs   afero.Fs
	root string
}

// NewDir returns a Store reading images from root on fs.
func NewDir(fs afero.Fs, root string) *Dir {
	return &Dir{fs: fs, root: root}
}

// Load reads the image for name.
func (d *Dir) Load(name string) ([]byte, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return nil, fmt.Errorf("payload %q: invalid name", name)
	}
	file := path.Join(d.root, name+".bin")
	data, err := afero.ReadFile(d.fs, file)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("payload %q in %s: %w", name, d.root, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("payload %q: %w", name, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("payload %q: %s is empty", name, file)
	}
	return data, nil
}

// Names lists the images available in the directory, sorted.
func (d *Dir) Names() ([]string, error) {
	infos, err := afero.ReadDir(d.fs, d.root)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, fi := range infos {
		if fi.IsDir() || !strings.HasSuffix(fi.Name(), ".bin") {
			continue
		}
		names = append(names, strings.TrimSuffix(fi.Name(), ".bin"))
	}
	sort.Strings(names)
	return names, nil
}

// Map is an in-memory Store.
type Map map[string][]byte

// Load returns a copy of the image for name.
func (m Map) Load(name string) ([]byte, error) {
	data, ok := m[name]
	if !ok {
		return nil, fmt.Errorf("payload %q: %w", name, ErrNotFound)
	}
	return append([]byte(nil), data...), nil
}
