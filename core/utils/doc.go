// Package utils provides common utility functions for the geo-manager
// application. It includes tolerant type conversion helpers used when
// decoding loosely typed dataset payloads.
package utils
