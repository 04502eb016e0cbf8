package model

// ErrorResponse is the standard envelope for error responses.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains the structured error information returned by the API.
type ErrorDetail struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Stats is the aggregate snapshot shown on the console dashboard.
// Reports counts pending reports only; ActiveDevices counts distinct
// submitting devices across all bars.
type Stats struct {
	TotalBars     int `json:"totalBars"`
	BarsThisWeek  int `json:"barsThisWeek"`
	ActiveDevices int `json:"activeDevices"`
	Pending       int `json:"pending"`
	Approved      int `json:"approved"`
	Rejected      int `json:"rejected"`
	Reports       int `json:"reports"`
	BannedIPs     int `json:"bannedIPs"`
}
