// Package config defines the format-agnostic job metadata model, along with
// the Loader interface for reading it from a job directory.
//
// The `config.Info` is what the discovery stage turns into a job.Spec. A JSON
// loader lives here; the HCL loader is provided by the hcl package.
package config
