package importer

import "github.com/google/uuid"

// resolveListName returns proposed unchanged when it is free among the
// existing list names, otherwise proposed with a random suffix
// appended. The suffix space makes a collision all but impossible, but
// the loop still re-rolls until the candidate is genuinely absent so
// the uniqueness guarantee is hard, not probabilistic.
func resolveListName(proposed string, existing map[string]bool) string {
	if !existing[proposed] {
		return proposed
	}
	for {
		candidate := proposed + "_" + uuid.NewString()
		if !existing[candidate] {
			return candidate
		}
	}
}
