package manuf

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/klauspost/compress/gzip"
	"golang.org/x/text/encoding/charmap"

	"oui/mac"
)

// DataDir is the relative directory registries live in by default. Paths
// below it are also tried one level up, so the tools keep working when run
// from a nested working directory.
const DataDir = "data"

// ErrNotFound is returned when none of the candidate registry paths exist.
var ErrNotFound = errors.New("registry not found")

// maxLine bounds a single registry line, longer lines are skipped.
const maxLine = 1024 * 1024

var gzipMagic = []byte{0x1f, 0x8b}

// Open resolves path, loads the registry it names and returns the built
// index. On failure the returned index is empty but usable, every lookup
// on it misses.
func Open(path string) (*Index, error) {
	idx, _, err := open(path)
	return idx, err
}

func open(path string) (*Index, string, error) {
	resolved, err := Resolve(path)
	if err != nil {
		return Empty(), "", err
	}

	f, err := os.Open(resolved)
	if err != nil {
		return Empty(), resolved, fmt.Errorf("open registry: %w", err)
	}
	defer f.Close()

	idx, err := Read(f)
	if err != nil {
		return Empty(), resolved, fmt.Errorf("read registry %s: %w", resolved, err)
	}
	return idx, resolved, nil
}

// Resolve returns the first existing candidate for path. The path is tried
// as given and with a ".gz" suffix toggled; relative paths within DataDir
// are additionally tried from the parent directory.
func Resolve(path string) (string, error) {
	cs := candidates(path)
	for _, c := range cs {
		if st, err := os.Stat(c); err == nil && st.Mode().IsRegular() {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %s (tried %s)", ErrNotFound, path, strings.Join(cs, ", "))
}

func candidates(path string) []string {
	toggled := path + ".gz"
	if strings.HasSuffix(path, ".gz") {
		toggled = strings.TrimSuffix(path, ".gz")
	}
	cs := []string{path, toggled}

	if !filepath.IsAbs(path) && strings.HasPrefix(filepath.ToSlash(path), DataDir+"/") {
		cs = append(cs, filepath.Join("..", path), filepath.Join("..", toggled))
	}
	return cs
}

// Read parses a registry from r. Gzip compressed input is detected by its
// magic bytes. Malformed lines are skipped, only failures of the stream
// itself are returned.
func Read(r io.Reader) (*Index, error) {
	br := bufio.NewReader(r)

	var src io.Reader = br
	magic, err := br.Peek(len(gzipMagic))
	if err != nil && !errors.Is(err, io.EOF) {
		return Empty(), err
	}
	if len(magic) == len(gzipMagic) && magic[0] == gzipMagic[0] && magic[1] == gzipMagic[1] {
		zr, err := gzip.NewReader(br)
		if err != nil {
			return Empty(), corrupt(err)
		}
		defer zr.Close()
		src = zr
	}

	idx := newIndex()
	lr := bufio.NewReaderSize(src, 64*1024)
	line := make([]byte, 0, 256)
	skip := false
	for {
		frag, more, err := lr.ReadLine()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if src != br {
				return Empty(), corrupt(err)
			}
			return Empty(), err
		}

		// Lines longer than maxLine are dropped whole
		if !skip {
			line = append(line, frag...)
			if len(line) > maxLine {
				skip = true
			}
		}
		if more {
			continue
		}
		if !skip {
			if e, ok := decodeLine(line); ok {
				idx.put(e)
			}
		}
		line, skip = line[:0], false
	}

	idx.finalize()
	return idx, nil
}

func decodeLine(raw []byte) (Entry, bool) {
	line := string(raw)
	if !utf8.ValidString(line) {
		// Older registries were published in Windows-1252
		data, err := charmap.Windows1252.NewDecoder().Bytes(raw)
		if err != nil {
			return Entry{}, false
		}
		line = string(data)
	}
	return parseLine(line)
}

func corrupt(err error) error {
	return fmt.Errorf("corrupt registry stream: %w", err)
}

// parseLine decodes a single registry line of the form
//
//	<prefix-hex>[/<bits>]  <vendor>  [# <comment>]
func parseLine(line string) (Entry, bool) {
	line = strings.TrimSpace(line)
	if line == "" || line[0] == '#' {
		return Entry{}, false
	}

	var comment string
	if i := strings.IndexByte(line, '#'); i >= 0 {
		comment = strings.TrimSpace(line[i+1:])
		line = strings.TrimSpace(line[:i])
	}

	token, vendor := line, ""
	if i := strings.IndexFunc(line, unicode.IsSpace); i >= 0 {
		token, vendor = line[:i], strings.TrimSpace(line[i:])
	}
	if token == "" || vendor == "" {
		return Entry{}, false
	}

	bits, explicit := 0, false
	if i := strings.IndexByte(token, '/'); i >= 0 {
		n, err := strconv.Atoi(token[i+1:])
		if err != nil {
			return Entry{}, false
		}
		token, bits, explicit = token[:i], n, true
	}

	v, hint, ok := mac.Parse(token)
	if !ok {
		return Entry{}, false
	}
	if !explicit {
		bits = hint
	}
	if bits < 0 || bits > mac.Bits {
		return Entry{}, false
	}

	return Entry{
		Prefix:  v & mac.Mask(bits),
		Bits:    bits,
		Vendor:  vendor,
		Comment: comment,
	}, true
}
