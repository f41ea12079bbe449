package fileutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFiles(t *testing.T) {
	ast := assert.New(t)
	dir := t.TempDir()
	fn := filepath.Join(dir, "201.png")
	ast.NoError(os.WriteFile(fn, []byte("png"), 0o644))

	ast.True(FileExists(fn))
	ast.False(FileExists(filepath.Join(dir, "202.png")))
	ast.False(FileExists(""))
	ast.True(IsDir(dir))
	ast.False(IsDir(fn))
}
