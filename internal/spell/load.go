package spell

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kailas-cloud/jdih-search/internal/domain"
)

const maxLineSize = 1 << 20

// LoadDictionary reads "term count" lines. Lines with fewer than two columns
// or a non-numeric count are skipped. An empty result is an error.
func LoadDictionary(r io.Reader, opts Options) (*Dictionary, error) {
	dict, err := NewDictionary(opts)
	if err != nil {
		return nil, err
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}
		count, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			continue
		}
		dict.Add(fields[0], count)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read dictionary: %w: %w", domain.ErrDictionaryUnavailable, err)
	}
	if dict.Len() == 0 {
		return nil, fmt.Errorf("dictionary has no usable entries: %w", domain.ErrDictionaryUnavailable)
	}
	return dict, nil
}

// LoadDictionaryFile loads a dictionary from path.
func LoadDictionaryFile(path string, opts Options) (*Dictionary, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open dictionary %s: %w: %w", path, domain.ErrDictionaryUnavailable, err)
	}
	defer func() { _ = f.Close() }()

	dict, err := LoadDictionary(f, opts)
	if err != nil {
		return nil, fmt.Errorf("load dictionary %s: %w", path, err)
	}
	return dict, nil
}
