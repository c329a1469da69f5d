package confkit

import "os"

// fileExists treats stat errors, including permission failures, as absent.
func fileExists(p string) bool {
	if p == "" {
		return false
	}
	if _, err := os.Stat(p); err == nil {
		return true
	}
	return false
}
