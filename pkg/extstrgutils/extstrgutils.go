package extstrgutils

import "strings"

// SplitMultiValueParam splits a string into multiple values using space, comma or semicolon as separator
func SplitMultiValueParam(value string) []string {
	return strings.FieldsFunc(value, isSeparator)
}

// SplitUniqueValues like SplitMultiValueParam, repeated values are dropped, the first occurrence keeps its place
func SplitUniqueValues(value string) []string {
	vals := SplitMultiValueParam(value)
	seen := make(map[string]struct{}, len(vals))
	res := vals[:0]
	for _, v := range vals {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		res = append(res, v)
	}
	return res
}

func isSeparator(r rune) bool {
	return r == ' ' || r == ',' || r == ';'
}
