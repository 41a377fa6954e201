// internal/deck/deck.go
//
// Card image list management.
//
// Responsibilities:
//   - Load the list of card face images (one per pair) from a file, or fall
//     back to the embedded default list.
//   - Normalise and validate entries: trimmed, no blanks or comments, no
//     duplicates, image extensions only.
//   - Pick a random subset when a game asks for fewer pairs than available.
//
// File format: one image name per line; blank lines and lines starting with
// '#' are skipped.

package deck

import (
	"bufio"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path"
	"strings"
)

//go:embed default_images.txt
var embeddedImages string

var allowedExt = map[string]struct{}{
	".svg":  {},
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".gif":  {},
	".webp": {},
}

// ErrEmpty is returned when a list contains no usable image names.
var ErrEmpty = errors.New("deck: image list is empty")

// Default returns the embedded image list.
func Default() []string {
	list, err := parse(strings.NewReader(embeddedImages))
	if err != nil {
		panic(fmt.Sprintf("deck: embedded list invalid: %v", err))
	}
	return list
}

// Load reads the image list at path, or returns Default when path is empty.
func Load(path string) ([]string, error) {
	if path == "" {
		return Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image list: %w", err)
	}
	defer f.Close()
	list, err := parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return list, nil
}

func parse(r io.Reader) ([]string, error) {
	var out []string
	seen := make(map[string]struct{})
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		if strings.ContainsAny(s, `/\`) {
			return nil, fmt.Errorf("line %d: %q must be a bare file name", line, s)
		}
		if _, ok := allowedExt[strings.ToLower(path.Ext(s))]; !ok {
			return nil, fmt.Errorf("line %d: %q is not an image", line, s)
		}
		if _, dup := seen[s]; dup {
			return nil, fmt.Errorf("line %d: duplicate image %q", line, s)
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrEmpty
	}
	return out, nil
}

// Pick returns n images for a game. n outside [1, len(images)] selects all
// of them; when fewer are needed a random subset is drawn with rng.
func Pick(images []string, n int, rng *rand.Rand) []string {
	if n <= 0 || n > len(images) {
		n = len(images)
	}
	out := make([]string, len(images))
	copy(out, images)
	if n == len(images) {
		return out
	}
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out[:n]
}
