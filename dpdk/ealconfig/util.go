package ealconfig

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kballard/go-shellquote"
)

func shellSplit(field, flags string) (args []string, e error) {
	args, e = shellquote.Split(flags)
	if e != nil {
		return nil, fmt.Errorf("%s: %w", field, e)
	}
	return args, nil
}

// parseCoreList parses a core list such as "0-3,8,10-11".
func parseCoreList(s string) (list []int, e error) {
	seen := map[int]bool{}
	for _, token := range strings.Split(s, ",") {
		first, last, isRange := strings.Cut(token, "-")
		lo, e := strconv.Atoi(strings.TrimSpace(first))
		if e != nil {
			return nil, fmt.Errorf("bad core list %q", s)
		}
		hi := lo
		if isRange {
			if hi, e = strconv.Atoi(strings.TrimSpace(last)); e != nil || hi < lo {
				return nil, fmt.Errorf("bad core range %q", token)
			}
		}
		for id := lo; id <= hi; id++ {
			if !seen[id] {
				seen[id] = true
				list = append(list, id)
			}
		}
	}
	return list, nil
}
