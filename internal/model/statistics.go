package model

// DailyUsage 每日兑换统计
type DailyUsage struct {
	Date        string `json:"date"`
	Redemptions int64  `json:"redemptions"`
	Seconds     int64  `json:"seconds"`
}

// CreditStatistics 许可证与信用使用的汇总统计
type CreditStatistics struct {
	TotalUsers       int64        `json:"total_users"`
	TotalLicenses    int64        `json:"total_licenses"`
	ActiveLicenses   int64        `json:"active_licenses"`
	ExpiredLicenses  int64        `json:"expired_licenses"`
	TotalOrders      int64        `json:"total_orders"`
	TotalRevenue     float64      `json:"total_revenue"`
	TotalRedemptions int64        `json:"total_redemptions"`
	TotalUsageTime   int64        `json:"total_usage_time"`
	RemainingCredit  int64        `json:"remaining_credit"`
	DailyUsage       []DailyUsage `json:"daily_usage"`
}

// GetAverageRedemption 计算单次兑换的平均秒数
func (cs *CreditStatistics) GetAverageRedemption() float64 {
	if cs.TotalRedemptions == 0 {
		return 0
	}
	return float64(cs.TotalUsageTime) / float64(cs.TotalRedemptions)
}

// GetExpiredRatio 计算过期许可证占比
func (cs *CreditStatistics) GetExpiredRatio() float64 {
	if cs.TotalLicenses == 0 {
		return 0
	}
	return float64(cs.ExpiredLicenses) / float64(cs.TotalLicenses)
}
