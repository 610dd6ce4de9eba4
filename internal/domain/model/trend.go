package model

// TrendPoint is the fitness/fatigue state for one calendar day.
// TSB uses the previous day's CTL and ATL.
type TrendPoint struct {
	Date Date    `json:"date"`
	TSS  float64 `json:"tss"`
	CTL  float64 `json:"ctl"`
	ATL  float64 `json:"atl"`
	TSB  float64 `json:"tsb"`
	// Sessions whose TSS could not be computed and so added nothing.
	UnavailableSessions int `json:"unavailable_sessions,omitempty"`
}
