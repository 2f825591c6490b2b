package transport

import (
	"go/parser"
	"go/token"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

// The simulated stack must build without cgo; only transport/usb may link
// libusb.
func TestCoreImportsNoCgo(t *testing.T) {
	dirs := []string{".", "../protocol", "../chip", "../payload", "../fel", "../felsim", "../spiflash", "../logging"}

	for _, dir := range dirs {
		files, err := filepath.Glob(filepath.Join(dir, "*.go"))
		if err != nil {
			t.Fatal(err)
		}
		if len(files) == 0 {
			t.Fatalf("%s: no Go files", dir)
		}
		for _, name := range files {
			f, err := parser.ParseFile(token.NewFileSet(), name, nil, parser.ImportsOnly)
			if err != nil {
				t.Fatalf("%s: %v", name, err)
			}
			for _, imp := range f.Imports {
				path, _ := strconv.Unquote(imp.Path.Value)
				if path == "C" || strings.Contains(path, "gousb") || strings.HasSuffix(path, "/transport/usb") {
					t.Errorf("%s imports %q", name, path)
				}
			}
		}
	}
}
