package entity

import "time"

// ViewerStats 观众的累计过滤统计
type ViewerStats struct {
	ViewerID      string           `json:"viewer_id"`
	BlockedTotal  int64            `json:"blocked_total"`
	SearchesTotal int64            `json:"searches_total"`
	ByReason      map[string]int64 `json:"by_reason"`
	LastSearchAt  *time.Time       `json:"last_search_at,omitempty"`
}

// ViewerStatsDelta 一次过滤带来的统计增量
type ViewerStatsDelta struct {
	ViewerID   string
	Blocked    int64
	ByReason   map[string]int64
	OccurredAt time.Time
}
