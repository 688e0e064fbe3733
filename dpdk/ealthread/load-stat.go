package ealthread

// LoadStat contains statistics of a polling thread.
type LoadStat struct {
	// EmptyPolls is the number of polls that processed zero items.
	EmptyPolls uint64 `json:"emptyPolls" gqldesc:"Polls that processed zero items."`

	// ValidPolls is the number of polls that processed at least one item.
	ValidPolls uint64 `json:"validPolls" gqldesc:"Polls that processed at least one item."`

	// Items is the number of processed items.
	Items uint64 `json:"items" gqldesc:"Processed items."`

	// ItemsPerPoll is the average number of processed items per valid poll.
	ItemsPerPoll float64 `json:"itemsPerPoll" gqldesc:"Average items per valid poll."`
}

// Sub computes the difference.
func (s LoadStat) Sub(prev LoadStat) (diff LoadStat) {
	diff.EmptyPolls = s.EmptyPolls - prev.EmptyPolls
	diff.ValidPolls = s.ValidPolls - prev.ValidPolls
	diff.Items = s.Items - prev.Items
	if diff.ValidPolls > 0 {
		diff.ItemsPerPoll = float64(diff.Items) / float64(diff.ValidPolls)
	}
	return diff
}

// ThreadWithLoadStat is an object that tracks thread load statistics.
type ThreadWithLoadStat interface {
	Thread
	ThreadLoadStat() LoadStat
}
