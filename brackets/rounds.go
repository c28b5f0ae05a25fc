package brackets

// TotalRounds counts the halvings (rounding up) needed to reduce n
// participants to one.
func TotalRounds(n int) int {
	rounds := 0
	for n > 1 {
		n = (n + 1) / 2
		rounds++
	}
	return rounds
}

// TotalRequirements estimates how many requirement labels a full tournament
// starting with n participants consumes, one per group across all rounds.
func TotalRequirements(n int) int {
	requirements := 0
	for n > 1 {
		size := groupSize(n)
		groups := (n + size - 1) / size
		requirements += groups
		n = groups
	}
	return requirements
}

// RoundIndex is the display index of the round played by remaining
// participants out of a roster of rosterSize.
func RoundIndex(rosterSize, remaining int) int {
	return TotalRounds(rosterSize) - TotalRounds(remaining) + 1
}
