package phrase

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/verte-zerg/signquiz/internal/alphabet"
)

// LoadFile reads one phrase per line. Blank lines, lines starting with '#' and
// phrases with no alphabet letters are skipped.
func LoadFile(path string, alpha alphabet.Alphabet) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open phrase file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only phrase file.
			_ = cerr
		}
	}()

	var phrases []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if filtered := alpha.FilterPhrase(line); filtered != "" {
			phrases = append(phrases, filtered)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read phrase file: %w", err)
	}
	if len(phrases) == 0 {
		return nil, fmt.Errorf("phrase file %s has no usable phrases", path)
	}
	return phrases, nil
}
