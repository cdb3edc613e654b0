// Package sequence generates prefixed, zero-padded record identifiers
// such as C001, P014 or O107.
package sequence

import (
	"fmt"
	"strconv"
	"strings"
)

// Next returns the identifier following the highest numeric suffix among
// existing. Identifiers that do not carry the prefix are parsed by their
// full numeric value; unparseable ones count as zero. An empty collection
// starts the sequence at 1.
func Next(prefix string, existing []string) string {
	max := 0
	for _, id := range existing {
		n, err := strconv.Atoi(strings.TrimPrefix(id, prefix))
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	return fmt.Sprintf("%s%03d", prefix, max+1)
}
