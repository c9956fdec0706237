package dispatch

import (
	"strconv"
	"strings"

	"github.com/angelmondragon/importops-backend/pkg/types"
)

// ParseBoxes turns a free-text box number list into box records. Tokens may be
// separated by commas, semicolons or whitespace; tokens that are not positive
// integers are dropped. An empty list yields boxes numbered 1..totalBoxes.
func ParseBoxes(raw string, totalBoxes int) []types.Box {
	tokens := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	boxes := make([]types.Box, 0, len(tokens))
	for _, token := range tokens {
		n, err := strconv.Atoi(strings.TrimSpace(token))
		if err != nil || n <= 0 {
			continue
		}
		boxes = append(boxes, types.Box{BoxNumber: n})
	}
	if len(boxes) == 0 && strings.TrimSpace(raw) == "" {
		for i := 1; i <= totalBoxes; i++ {
			boxes = append(boxes, types.Box{BoxNumber: i})
		}
	}
	return boxes
}
