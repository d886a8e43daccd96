package symbol

import (
	"errors"
	"strconv"
	"strings"
)

var errLoc = errors.New("wrong loc should be like filename:lineno")

// ParseLoc parse location `loc` to file:lineno, the file part may itself
// contain ':' as in windows paths.
func ParseLoc(loc string) (string, uint32, error) {
	idx := strings.LastIndexByte(loc, ':')
	if idx <= 0 || idx == len(loc)-1 {
		return "", 0, errLoc
	}
	filename, linenostr := loc[:idx], loc[idx+1:]
	lineno, err := strconv.ParseUint(linenostr, 10, 32)
	if err != nil {
		return "", 0, errLoc
	}
	return filename, uint32(lineno), nil
}
