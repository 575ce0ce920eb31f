package gratitude

// Milestone is a cumulative thank count that earns a title.
type Milestone struct {
	Threshold int64
	Title     string
}

// Milestones lists every milestone in ascending threshold order.
var Milestones = []Milestone{
	{Threshold: 15, Title: "The Pathfinder 🗺️"},
	{Threshold: 50, Title: "Haven's Guardian 🛡️"},
	{Threshold: 100, Title: "The Apex Hunter 🏹"},
}

// CrossedMilestone returns the lowest milestone t with before < t <= after.
// A single append moves the count by one, so at most one milestone can lie
// in the interval; wider intervals still report only the lowest.
func CrossedMilestone(before, after int64) (Milestone, bool) {
	for _, m := range Milestones {
		if before < m.Threshold && m.Threshold <= after {
			return m, true
		}
	}

	return Milestone{}, false
}
