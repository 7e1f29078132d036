package ui

import twmerge "github.com/Oudwins/tailwind-merge-go"

// Class merges Tailwind class lists, later classes winning over conflicting earlier ones.
func Class(classes ...string) string {
	return twmerge.Merge(classes...)
}
