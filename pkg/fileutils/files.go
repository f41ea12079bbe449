package fileutils

import "os"

// FileExists checks if a file exsists
func FileExists(filename string) bool {
	if filename == "" {
		return false
	}
	_, err := os.Stat(filename)
	return err == nil
}

// IsDir checks if the path is a directory
func IsDir(filename string) bool {
	f, err := os.Stat(filename)
	return err == nil && f.IsDir()
}
