package domain

type ReputationProfile struct {
	Rating             float64 `json:"rating"`
	TotalReviews       int     `json:"total_reviews"`
	CampaignsCreated   int     `json:"campaigns_created"`
	TotalRaised        float64 `json:"total_raised"`
	ResponseTimeHours  int     `json:"response_time_hours"`
	SuccessRatePercent int     `json:"success_rate_percent"`
	Verified           bool    `json:"verified"`
}
