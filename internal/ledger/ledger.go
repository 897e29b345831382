package ledger

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"license-credit-system/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	// DefaultCreditSecondsPerUnit 每货币单位兑换的信用秒数
	DefaultCreditSecondsPerUnit int64 = 60
	// ValidityDays 每笔订单延长的有效期天数
	ValidityDays = 30
)

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidLicense     = errors.New("invalid license key")
	ErrLicenseExpired     = errors.New("license expired")
	ErrInsufficientCredit = errors.New("insufficient credit")
)

// 重复订单号在事务内部用它触发回滚，对调用方表现为幂等成功
var errDuplicateOrder = errors.New("duplicate order code")

// Ledger 许可证账务核心：处理订单、扣减信用并记录使用
type Ledger struct {
	db     *gorm.DB
	cost   CostEstimator
	credit int64

	// 串行化读取-检查-写入序列，避免并发兑换/下单超扣或重复建证
	mu  sync.Mutex
	now func() time.Time
}

func New(db *gorm.DB, cost CostEstimator, creditSecondsPerUnit int64) *Ledger {
	if creditSecondsPerUnit <= 0 {
		creditSecondsPerUnit = DefaultCreditSecondsPerUnit
	}
	return &Ledger{
		db:     db,
		cost:   cost,
		credit: creditSecondsPerUnit,
		now:    time.Now,
	}
}

// ProcessOrder 处理一笔订单：
// - 按邮箱查找用户，不存在则创建
// - 没有许可证则新建（有效期 30 天，信用为 floor(amount*每单位秒数)）
// - 已有许可证则在 max(now, valid_until) 基础上延长 30 天并追加信用
// - 订单号重复时整体回滚，对外表现为已处理
func (l *Ledger) ProcessOrder(email, orderCode string, amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
		return ErrInvalidAmount
	}
	// 换算结果超出 int64 时直接拒绝，避免溢出写入负余额
	credit := math.Floor(amount * float64(l.credit))
	if credit >= math.MaxInt64 {
		return ErrInvalidAmount
	}
	added := int64(credit)

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	err := l.db.Transaction(func(tx *gorm.DB) error {
		var user model.User
		err := tx.Where("email = ?", email).First(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			user = model.User{Email: email}
			if err := tx.Create(&user).Error; err != nil {
				return fmt.Errorf("创建用户失败: %w", err)
			}
		} else if err != nil {
			return err
		}

		var lic model.License
		err = tx.Where("user_id = ?", user.ID).First(&lic).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			lic = model.License{
				UserID:         user.ID,
				LicenseCode:    uuid.NewString(),
				ValidFrom:      now,
				ValidUntil:     now.AddDate(0, 0, ValidityDays),
				RemainingUsage: added,
			}
			if err := tx.Create(&lic).Error; err != nil {
				return fmt.Errorf("创建许可证失败: %w", err)
			}
		case err != nil:
			return err
		default:
			// 已过期的许可证从当前时间重新起算，有效期只增不减
			base := lic.ValidUntil
			if base.Before(now) {
				base = now
			}
			err := tx.Model(&lic).Updates(map[string]interface{}{
				"valid_until":     base.AddDate(0, 0, ValidityDays),
				"remaining_usage": gorm.Expr("remaining_usage + ?", added),
			}).Error
			if err != nil {
				return fmt.Errorf("更新许可证失败: %w", err)
			}
		}

		order := model.Order{
			UserID:        user.ID,
			LicenseID:     &lic.ID,
			OrderCode:     orderCode,
			Amount:        amount,
			OrderDate:     now,
			PaymentStatus: model.PaymentStatusCompleted,
		}
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "order_code"}},
			DoNothing: true,
		}).Create(&order)
		if res.Error != nil {
			return fmt.Errorf("记录订单失败: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return errDuplicateOrder
		}
		return nil
	})
	if errors.Is(err, errDuplicateOrder) {
		return nil
	}
	return err
}

// RedeemResult 一次成功兑换的结果
type RedeemResult struct {
	DeductedSeconds int64
	RemainingCredit int64
}

// Redeem 校验许可证并扣减一次兑换的信用，同时写入使用记录
func (l *Ledger) Redeem(licenseCode string, artifactSize int64) (*RedeemResult, error) {
	var lic model.License
	err := l.db.Where("license_code = ?", licenseCode).First(&lic).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidLicense
	}
	if err != nil {
		return nil, err
	}

	now := l.now()
	if lic.Expired(now) {
		return nil, ErrLicenseExpired
	}

	cost := l.cost.Estimate(artifactSize)

	l.mu.Lock()
	defer l.mu.Unlock()

	var remaining int64
	err = l.db.Transaction(func(tx *gorm.DB) error {
		// 条件更新：余额不足时不影响任何行，余额不可能为负
		res := tx.Model(&model.License{}).
			Where("id = ? AND remaining_usage >= ?", lic.ID, cost).
			Updates(map[string]interface{}{
				"remaining_usage": gorm.Expr("remaining_usage - ?", cost),
				"usage_count":     gorm.Expr("usage_count + 1"),
				"usage_time":      gorm.Expr("usage_time + ?", cost),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInsufficientCredit
		}

		usage := model.UsageLog{
			LicenseID:    lic.ID,
			SessionStart: now,
			SessionEnd:   now.Add(time.Duration(cost) * time.Second),
			Duration:     cost,
		}
		if err := tx.Create(&usage).Error; err != nil {
			return err
		}

		return tx.Model(&model.License{}).
			Select("remaining_usage").
			Where("id = ?", lic.ID).
			Scan(&remaining).Error
	})
	if err != nil {
		return nil, err
	}

	return &RedeemResult{DeductedSeconds: cost, RemainingCredit: remaining}, nil
}
