// Package utils provides common utility functions for the datadiff application.
// It includes helpers for type conversion and flag parsing that are shared by the
// dataset loaders and the command line, and don't fit into a domain package.
package utils
