package config

import "context"

// Info is the metadata a job may declare next to its scripts. Every field is
// optional and defaults to empty.
type Info struct {
	// Depends lists the jobs that must run before this one.
	Depends []string `json:"depends"`
	// Env is passed to the job's processes after key encoding.
	Env map[string]string `json:"env"`
	// Ask lists the variables that must be resolved before the job runs.
	Ask []string `json:"ask"`
}

// Loader reads job metadata in one specific format.
type Loader interface {
	// FileName is the metadata file this loader reads inside a job directory.
	FileName() string
	// Load reads the metadata file from dir. found is false, with a zero Info,
	// when the file does not exist.
	Load(ctx context.Context, dir string) (info *Info, found bool, err error)
}
