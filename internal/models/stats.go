package models

// QueueCounts is a point-in-time snapshot of one queue's job counters.
type QueueCounts struct {
	Waiting   int `json:"waiting"`
	Active    int `json:"active"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
	Delayed   int `json:"delayed"`
}

// Add accumulates another snapshot into this one.
func (c *QueueCounts) Add(other QueueCounts) {
	c.Waiting += other.Waiting
	c.Active += other.Active
	c.Completed += other.Completed
	c.Failed += other.Failed
	c.Delayed += other.Delayed
}

// QueueStats holds per-tier counters plus a cross-tier total.
// Derived on demand, never persisted.
type QueueStats struct {
	Tiers map[CheckFrequency]QueueCounts `json:"tiers"`
	Total QueueCounts                    `json:"total"`
}
