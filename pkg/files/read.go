package files

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

const (
	// DefaultMaxChars is the default number of characters returned by Read.
	DefaultMaxChars = 5000

	EncodingUTF8   = "utf-8"
	EncodingLatin1 = "latin-1"
)

// DefaultTextExtensions are the extensions Read accepts by default.
var DefaultTextExtensions = []string{".txt", ".md", ".py", ".json", ".csv"}

// ReadResult is the decoded, possibly truncated, content of a text file.
type ReadResult struct {
	Path      string
	Name      string
	Content   string
	Truncated bool
	Encoding  string
	Size      int64
}

// decoder converts raw bytes to text. ok is false when the bytes are not
// valid in the decoder's encoding.
type decoder struct {
	name   string
	decode func([]byte) (text string, ok bool)
}

// decoders are tried in order. The last one accepts any input so reading
// never fails on encoding grounds.
var decoders = []decoder{
	{name: EncodingUTF8, decode: decodeUTF8},
	{name: EncodingLatin1, decode: decodeLatin1},
}

func decodeUTF8(data []byte) (string, bool) {
	if !utf8.Valid(data) {
		return "", false
	}
	return string(data), true
}

func decodeLatin1(data []byte) (string, bool) {
	text, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return "", false
	}
	return string(text), true
}

// Reader reads text files whose extension is allow-listed.
type Reader struct {
	maxChars   int
	extensions map[string]struct{}
}

// NewReader returns a reader truncating content to maxChars characters
// and accepting the given extensions. Non-positive maxChars selects
// DefaultMaxChars and empty extensions select DefaultTextExtensions.
func NewReader(maxChars int, extensions []string) *Reader {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	if len(extensions) == 0 {
		extensions = DefaultTextExtensions
	}
	r := &Reader{
		maxChars:   maxChars,
		extensions: make(map[string]struct{}, len(extensions)),
	}
	for _, ext := range extensions {
		if norm := NormalizeExtension(ext); norm != "" {
			r.extensions[norm] = struct{}{}
		}
	}
	return r
}

// MaxChars returns the truncation limit.
func (r *Reader) MaxChars() int {
	return r.maxChars
}

// Extensions returns the accepted extensions in sorted order.
func (r *Reader) Extensions() []string {
	return slices.Sorted(maps.Keys(r.extensions))
}

// Read validates path and returns its decoded content. The path must name
// an existing regular file (ErrNotFound) whose extension is allow-listed
// (ErrUnsupportedType). Only as many bytes as truncation can use are read.
func (r *Reader) Read(ctx context.Context, path string) (*ReadResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, notFound(path, err)
		}
		return nil, err
	}
	if !info.Mode().IsRegular() {
		return nil, notFound(path, nil)
	}
	ext := Extension(path)
	if _, ok := r.extensions[ext]; !ok {
		if ext == "" {
			ext = "(none)"
		}
		return nil, fmt.Errorf("%w: %s; supported types: %s",
			ErrUnsupportedType, ext, strings.Join(r.Extensions(), ", "))
	}
	data, err := r.readHead(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, notFound(path, err)
		}
		return nil, err
	}

	result := &ReadResult{
		Path: path,
		Name: filepath.Base(path),
		Size: info.Size(),
	}
	for _, d := range decoders {
		if text, ok := d.decode(data); ok {
			result.Content = text
			result.Encoding = d.name
			break
		}
	}
	result.Content, result.Truncated = truncate(result.Content, r.maxChars)
	return result, nil
}

// readHead reads enough of path to hold maxChars+1 characters in any
// supported encoding. A multi-byte sequence cut by the limit is dropped.
func (r *Reader) readHead(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	limit := int64(r.maxChars+1) * utf8.UTFMax
	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) <= limit {
		return data, nil
	}
	return trimPartialRune(data[:limit]), nil
}

// trimPartialRune drops an incomplete UTF-8 sequence at the end of data.
func trimPartialRune(data []byte) []byte {
	for i := 1; i <= utf8.UTFMax && i <= len(data); i++ {
		start := len(data) - i
		if !utf8.RuneStart(data[start]) {
			continue
		}
		if !utf8.FullRune(data[start:]) {
			return data[:start]
		}
		return data
	}
	return data
}

// truncate cuts s to at most n characters.
func truncate(s string, n int) (string, bool) {
	if utf8.RuneCountInString(s) <= n {
		return s, false
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos], true
		}
		i++
	}
	return s, false
}
