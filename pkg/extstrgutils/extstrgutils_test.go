package extstrgutils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitMultiValueParam(t *testing.T) {
	tt := []struct {
		name string
		line string
		exp  []string
	}{
		{"empty", "", []string{}},
		{"single", "sectional", []string{"sectional"}},
		{"comma", "sectional,ifrlow", []string{"sectional", "ifrlow"}},
		{"mixed", "sectional, ifrlow;tac  heli", []string{"sectional", "ifrlow", "tac", "heli"}},
		{"repeated", "tac,tac", []string{"tac", "tac"}},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			ast := assert.New(t)
			ast.ElementsMatch(tc.exp, SplitMultiValueParam(tc.line))
		})
	}
}

func TestSplitUniqueValues(t *testing.T) {
	ast := assert.New(t)
	ast.Equal([]string{"sectional", "ifrlow", "tac"}, SplitUniqueValues("sectional,ifrlow sectional;tac,ifrlow"))
	ast.Empty(SplitUniqueValues(" ,; "))
}
