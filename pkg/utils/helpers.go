package utils

import (
	"strconv"
	"strings"
)

//InSlice returns true if given string appears in given slice
func InSlice(lookingFor string, slice []string) bool {
	for _, s := range slice {
		if s == lookingFor {
			return true
		}
	}

	return false
}

//ParseSource converts a capture source from configuration into what the capture device expects:
//a device index if given source is a non negative integer ("0" is the default webcam), the trimmed string otherwise (file path or stream URL)
func ParseSource(source string) interface{} {
	source = strings.TrimSpace(source)
	if id, err := strconv.Atoi(source); err == nil && id >= 0 {
		return id
	}

	return source
}
