// Package metafile parses the two metadata formats written by the
// instrument control software: the legacy line-oriented tag file used by
// the alpha generation and the INI-style experiment config used by every
// generation since.
package metafile

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"
)

var whitespace = regexp.MustCompile(`\s+`)

// ParseTagFile parses a legacy tag file (one "key = value" pair per line)
// into a map. All whitespace is stripped, keys are lower-cased, and values
// are parsed as floats with a trailing "s" removed (exposure values carry
// units of seconds). Values that cannot be parsed as numbers, such as the
// literal "BLANK", map to NaN.
func ParseTagFile(path string) (map[string]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening tag file: %w", err)
	}
	defer f.Close()

	metadata := make(map[string]float64)
	scanner := bufio.NewScanner(f)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := whitespace.ReplaceAllString(scanner.Text(), "")
		if line == "" {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			return nil, fmt.Errorf("tag file %s line %d: no '=' separator", path, lineno)
		}
		num, err := strconv.ParseFloat(strings.Trim(value, "s"), 64)
		if err != nil {
			num = math.NaN()
		}
		metadata[strings.ToLower(key)] = num
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading tag file %s: %w", path, err)
	}
	return metadata, nil
}
