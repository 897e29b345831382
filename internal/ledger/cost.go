package ledger

// DefaultRedemptionCost 原型阶段单次兑换固定扣除的秒数
const DefaultRedemptionCost int64 = 60

// CostEstimator 根据上传文件推导一次兑换需要扣除的信用秒数
type CostEstimator interface {
	Estimate(artifactSize int64) int64
}

// FixedCost 不论文件大小固定扣除 Seconds 秒。
// 真实系统应替换为按媒体时长计费的实现。
type FixedCost struct {
	Seconds int64
}

func (f FixedCost) Estimate(int64) int64 {
	return f.Seconds
}
