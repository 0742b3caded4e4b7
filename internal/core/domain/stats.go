package domain

type Stats struct {
	TotalLists       int        `json:"totalLists"`
	TotalEntries     int        `json:"totalEntries"`
	CollectedEntries int        `json:"collectedEntries"`
	CatalogSize      int        `json:"catalogSize"`
	OverallRate      float64    `json:"overallCompletionRate"`
	Lists            []ListStat `json:"lists"`
}

type ListStat struct {
	ListID         string  `json:"listId"`
	ListName       string  `json:"listName"`
	Total          int     `json:"total"`
	Collected      int     `json:"collected"`
	CompletionRate float64 `json:"completionRate"`
}

// StatFor summarises the collection progress of one list.
func StatFor(l *ShoppingList) ListStat {
	stat := ListStat{ListID: l.ID, ListName: l.Name, Total: len(l.Items)}
	for _, e := range l.Items {
		if e.Collected {
			stat.Collected++
		}
	}
	stat.CompletionRate = rate(stat.Collected, stat.Total)
	return stat
}

func rate(done, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(done) / float64(total) * 100
}

// Summarize builds the overall statistics for lists and a catalog of
// catalogSize items.
func Summarize(lists []*ShoppingList, catalogSize int) *Stats {
	stats := &Stats{
		TotalLists:  len(lists),
		CatalogSize: catalogSize,
		Lists:       make([]ListStat, 0, len(lists)),
	}

	for _, l := range lists {
		stat := StatFor(l)
		stats.TotalEntries += stat.Total
		stats.CollectedEntries += stat.Collected
		stats.Lists = append(stats.Lists, stat)
	}
	stats.OverallRate = rate(stats.CollectedEntries, stats.TotalEntries)

	return stats
}
