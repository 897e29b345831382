package ledger

import (
	"math"
	"sync"
	"testing"
	"time"

	"license-credit-system/internal/database"
	"license-credit-system/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestLedger(t *testing.T) (*Ledger, *gorm.DB) {
	db := database.InitTestDB()
	t.Cleanup(func() { database.CleanTestDB(db) })

	l := New(db, FixedCost{Seconds: DefaultRedemptionCost}, DefaultCreditSecondsPerUnit)
	return l, db
}

func seedLicense(t *testing.T, l *Ledger, db *gorm.DB, email string, amount float64) model.License {
	require.NoError(t, l.ProcessOrder(email, "seed-"+email, amount))

	var lic model.License
	require.NoError(t, db.Joins("JOIN users ON users.id = licenses.user_id").
		Where("users.email = ?", email).
		First(&lic).Error)
	return lic
}

func TestProcessOrderNewUser(t *testing.T) {
	l, db := newTestLedger(t)

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	require.NoError(t, l.ProcessOrder("alice@example.com", "ORD-1", 2.5))

	var user model.User
	require.NoError(t, db.Where("email = ?", "alice@example.com").First(&user).Error)

	var lic model.License
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&lic).Error)
	assert.NotEmpty(t, lic.LicenseCode)
	assert.EqualValues(t, 150, lic.RemainingUsage) // floor(2.5 * 60)
	assert.EqualValues(t, 0, lic.UsageCount)
	assert.EqualValues(t, 0, lic.UsageTime)
	assert.WithinDuration(t, now, lic.ValidFrom, time.Second)
	assert.WithinDuration(t, now.AddDate(0, 0, 30), lic.ValidUntil, time.Second)

	var order model.Order
	require.NoError(t, db.Where("order_code = ?", "ORD-1").First(&order).Error)
	assert.Equal(t, user.ID, order.UserID)
	assert.Equal(t, model.PaymentStatusCompleted, order.PaymentStatus)
	require.NotNil(t, order.LicenseID)
	assert.Equal(t, lic.ID, *order.LicenseID)
}

func TestProcessOrderFloorsCredit(t *testing.T) {
	l, db := newTestLedger(t)

	lic := seedLicense(t, l, db, "floor@example.com", 1.99)
	assert.EqualValues(t, 119, lic.RemainingUsage) // floor(1.99 * 60) = floor(119.4)
}

func TestProcessOrderExtendsExistingLicense(t *testing.T) {
	l, db := newTestLedger(t)

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	require.NoError(t, l.ProcessOrder("bob@example.com", "ORD-1", 1))

	var before model.License
	require.NoError(t, db.First(&before).Error)

	require.NoError(t, l.ProcessOrder("bob@example.com", "ORD-2", 2))

	var after model.License
	require.NoError(t, db.First(&after).Error)
	assert.Equal(t, before.ID, after.ID) // 同一用户不新建许可证
	assert.Equal(t, before.LicenseCode, after.LicenseCode)
	assert.EqualValues(t, 60+120, after.RemainingUsage)
	assert.WithinDuration(t, before.ValidUntil.AddDate(0, 0, 30), after.ValidUntil, time.Second)
}

func TestProcessOrderExpiredLicenseResumesFromNow(t *testing.T) {
	l, db := newTestLedger(t)

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return start }
	require.NoError(t, l.ProcessOrder("carol@example.com", "ORD-1", 1))

	// 40 天后许可证已过期，延长应从当前时间起算
	later := start.AddDate(0, 0, 40)
	l.now = func() time.Time { return later }
	require.NoError(t, l.ProcessOrder("carol@example.com", "ORD-2", 1))

	var lic model.License
	require.NoError(t, db.First(&lic).Error)
	assert.WithinDuration(t, later.AddDate(0, 0, 30), lic.ValidUntil, time.Second)
}

func TestProcessOrderIdempotent(t *testing.T) {
	l, db := newTestLedger(t)

	require.NoError(t, l.ProcessOrder("dave@example.com", "ORD-DUP", 2))

	var before model.License
	require.NoError(t, db.First(&before).Error)

	// 同一订单号重复提交不改变任何状态
	require.NoError(t, l.ProcessOrder("dave@example.com", "ORD-DUP", 2))

	var after model.License
	require.NoError(t, db.First(&after).Error)
	assert.Equal(t, before.RemainingUsage, after.RemainingUsage)
	assert.WithinDuration(t, before.ValidUntil, after.ValidUntil, time.Second)

	var orderCount int64
	require.NoError(t, db.Model(&model.Order{}).Count(&orderCount).Error)
	assert.EqualValues(t, 1, orderCount)
}

func TestProcessOrderRejectsInvalidAmount(t *testing.T) {
	l, db := newTestLedger(t)

	for _, amount := range []float64{-1, math.Inf(-1), math.Inf(1), math.NaN()} {
		err := l.ProcessOrder("eve@example.com", "ORD-BAD", amount)
		assert.ErrorIs(t, err, ErrInvalidAmount)
	}

	var userCount int64
	require.NoError(t, db.Model(&model.User{}).Count(&userCount).Error)
	assert.EqualValues(t, 0, userCount)
}

func TestProcessOrderRejectsOverflowingAmount(t *testing.T) {
	l, db := newTestLedger(t)

	// 换算后超出 int64 的金额必须被拒绝，不能溢出成负余额
	for _, amount := range []float64{1e18, math.MaxInt64, math.MaxFloat64} {
		err := l.ProcessOrder("big@example.com", "ORD-BIG", amount)
		assert.ErrorIs(t, err, ErrInvalidAmount)
	}

	var licCount int64
	require.NoError(t, db.Model(&model.License{}).Count(&licCount).Error)
	assert.EqualValues(t, 0, licCount)

	// 边界内的大额订单仍然正常入账
	require.NoError(t, l.ProcessOrder("big@example.com", "ORD-BIG", 1e14))

	var lic model.License
	require.NoError(t, db.First(&lic).Error)
	assert.EqualValues(t, int64(6e15), lic.RemainingUsage)
	assert.GreaterOrEqual(t, lic.RemainingUsage, int64(0))
}

func TestRedeemDeductsAndLogs(t *testing.T) {
	l, db := newTestLedger(t)

	lic := seedLicense(t, l, db, "frank@example.com", 2.5)

	result, err := l.Redeem(lic.LicenseCode, 1024)
	require.NoError(t, err)
	assert.EqualValues(t, 60, result.DeductedSeconds)
	assert.EqualValues(t, 90, result.RemainingCredit)

	var after model.License
	require.NoError(t, db.First(&after, lic.ID).Error)
	assert.EqualValues(t, 90, after.RemainingUsage)
	assert.EqualValues(t, 1, after.UsageCount)
	assert.EqualValues(t, 60, after.UsageTime)

	var usage model.UsageLog
	require.NoError(t, db.Where("license_id = ?", lic.ID).First(&usage).Error)
	assert.EqualValues(t, 60, usage.Duration)
	assert.WithinDuration(t, usage.SessionStart.Add(60*time.Second), usage.SessionEnd, time.Second)
}

func TestRedeemUnknownLicense(t *testing.T) {
	l, _ := newTestLedger(t)

	_, err := l.Redeem("no-such-code", 10)
	assert.ErrorIs(t, err, ErrInvalidLicense)
}

func TestRedeemExpiredLicense(t *testing.T) {
	l, db := newTestLedger(t)

	lic := seedLicense(t, l, db, "grace@example.com", 2)

	l.now = func() time.Time { return time.Now().AddDate(0, 0, 31) }

	_, err := l.Redeem(lic.LicenseCode, 10)
	assert.ErrorIs(t, err, ErrLicenseExpired)
}

func TestRedeemInsufficientCreditKeepsBalance(t *testing.T) {
	l, db := newTestLedger(t)

	// 0.5 货币单位 = 30 秒信用，低于单次成本 60 秒
	lic := seedLicense(t, l, db, "heidi@example.com", 0.5)

	_, err := l.Redeem(lic.LicenseCode, 10)
	assert.ErrorIs(t, err, ErrInsufficientCredit)

	var after model.License
	require.NoError(t, db.First(&after, lic.ID).Error)
	assert.EqualValues(t, 30, after.RemainingUsage)
	assert.EqualValues(t, 0, after.UsageCount)

	var logCount int64
	require.NoError(t, db.Model(&model.UsageLog{}).Count(&logCount).Error)
	assert.EqualValues(t, 0, logCount)
}

func TestRedeemSequenceUntilExhausted(t *testing.T) {
	l, db := newTestLedger(t)

	// 150 秒信用，固定成本 60：两次成功后第三次失败，余额停在 30
	lic := seedLicense(t, l, db, "ivan@example.com", 2.5)

	first, err := l.Redeem(lic.LicenseCode, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 90, first.RemainingCredit)

	second, err := l.Redeem(lic.LicenseCode, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 30, second.RemainingCredit)

	_, err = l.Redeem(lic.LicenseCode, 10)
	assert.ErrorIs(t, err, ErrInsufficientCredit)

	var after model.License
	require.NoError(t, db.First(&after, lic.ID).Error)
	assert.EqualValues(t, 30, after.RemainingUsage)
}

func TestRedeemConcurrentNoOverDeduction(t *testing.T) {
	l, db := newTestLedger(t)

	// 300 秒信用恰好够 5 次兑换，10 个并发请求必须正好成功 5 次
	lic := seedLicense(t, l, db, "judy@example.com", 5)

	const workers = 10
	var wg sync.WaitGroup
	errs := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.Redeem(lic.LicenseCode, 10)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var ok, insufficient int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		default:
			require.ErrorIs(t, err, ErrInsufficientCredit)
			insufficient++
		}
	}
	assert.Equal(t, 5, ok)
	assert.Equal(t, 5, insufficient)

	var after model.License
	require.NoError(t, db.First(&after, lic.ID).Error)
	assert.EqualValues(t, 0, after.RemainingUsage)
	assert.EqualValues(t, 5, after.UsageCount)
	assert.EqualValues(t, 300, after.UsageTime)

	var logCount int64
	require.NoError(t, db.Model(&model.UsageLog{}).Count(&logCount).Error)
	assert.EqualValues(t, 5, logCount)
}

func TestFixedCostIgnoresSize(t *testing.T) {
	cost := FixedCost{Seconds: 60}
	assert.EqualValues(t, 60, cost.Estimate(0))
	assert.EqualValues(t, 60, cost.Estimate(1<<30))
}
