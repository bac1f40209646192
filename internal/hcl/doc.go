// Package hcl provides the HCL implementation of the config.Loader
// interface. It reads a job's info.hcl file, translates it into the
// format-agnostic config.Info model, and converts env values from CTY
// primitives into strings.
package hcl
