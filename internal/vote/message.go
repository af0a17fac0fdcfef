package vote

import "fmt"

// BuildMessage returns the statement the wallet signs for a vote.
func BuildMessage(address, candidateSlug, categorySlug string) string {
	return fmt.Sprintf("Voting with my address %s for %s in category %s", address, candidateSlug, categorySlug)
}
