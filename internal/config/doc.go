// Package config provides configuration loading, merging, and validation
// facilities for the survey-console gateway.
//
// Configuration is assembled from multiple sources in the following priority
// order (later sources override earlier non-zero fields, documented defaults
// fill whatever remains):
//  1. Environment variables
//  2. Command-line flags
//  3. JSON config file
//
// The main entry point is [GetStructuredConfig].
package config
