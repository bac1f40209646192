package vars

import (
	"bufio"
	"fmt"
	"os"
	"regexp"

	"github.com/vk/devmaker/internal/job"
)

// SourceCommandLine names pairs given directly to the invocation.
const SourceCommandLine = "command line"

var pairPattern = regexp.MustCompile(`^\s*([A-Z0-9][A-Z0-9_]+)\s*=\s*(.+?)\s*$`)

// ParseError reports a NAME=value entry that does not match the expected form.
type ParseError struct {
	Source string
	Line   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unparseable line found in %s: %s", e.Source, e.Line)
}

// ParsePairs parses NAME=value entries. Later duplicates overwrite earlier ones.
func ParsePairs(lines []string, source string) (job.EnvMap, error) {
	pairs := make(job.EnvMap, len(lines))
	for _, line := range lines {
		m := pairPattern.FindStringSubmatch(line)
		if m == nil {
			return nil, &ParseError{Source: source, Line: line}
		}
		pairs[m[1]] = m[2]
	}
	return pairs, nil
}

// ParseFile reads a NAME=value formatted file. Every line must be a pair.
func ParseFile(path string) (job.EnvMap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening ask file: %w", err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading ask file %s: %w", path, err)
	}

	return ParsePairs(lines, path)
}
