package config

import "fmt"

var (
	// set by the build with -ldflags "-X ..."
	version = "0.1.0"
	commit  = "dev"
	date    = ""
)

type Version struct {
	Version string
	Commit  string
	Date    string
}

func NewVersion() *Version {
	return &Version{
		Version: version,
		Commit:  commit,
		Date:    date,
	}
}

func (v *Version) String() string {
	return fmt.Sprintf("go_charttiles %s (%s) %s", v.Version, v.Commit, v.Date)
}
