package brackets

// groupSize returns the size of the next group to cut from remaining
// participants: 3 when the count is odd, 2 otherwise.
func groupSize(remaining int) int {
	if remaining%2 != 0 {
		return 3
	}
	return 2
}

// FormGroups partitions list into contiguous groups. While more than three
// entries remain a group of groupSize(remaining) is cut from the front; the
// final three or fewer entries form the last group as-is.
//
// The returned groups never alias list.
func FormGroups(list []string) [][]string {
	if len(list) == 0 {
		return [][]string{}
	}

	groups := make([][]string, 0, GroupCount(len(list)))
	rest := list
	for len(rest) > 3 {
		size := groupSize(len(rest))
		group := make([]string, size)
		copy(group, rest[:size])
		groups = append(groups, group)
		rest = rest[size:]
	}

	last := make([]string, len(rest))
	copy(last, rest)
	return append(groups, last)
}

// GroupCount is the number of groups FormGroups yields for n entries.
func GroupCount(n int) int {
	if n <= 0 {
		return 0
	}
	count := 0
	for n > 3 {
		n -= groupSize(n)
		count++
	}
	return count + 1
}
