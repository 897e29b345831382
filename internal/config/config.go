package config

import "github.com/kelseyhightower/envconfig"

// Config 服务启动配置，全部来自环境变量
type Config struct {
	ListenAddr string `envconfig:"LISTEN_ADDR" default:":8000"`
	DBPath     string `envconfig:"DB_PATH" default:"data/license.db"`

	// 信用策略：每货币单位兑换的信用秒数，单次兑换的固定成本（秒）
	CreditSecondsPerUnit int64 `envconfig:"CREDIT_SECONDS_PER_UNIT" default:"60"`
	RedemptionCost       int64 `envconfig:"REDEMPTION_COST" default:"60"`

	// Google Sheets 同步（默认关闭）
	SheetSyncEnabled    bool   `envconfig:"SHEET_SYNC_ENABLED" default:"false"`
	SheetCredentialPath string `envconfig:"SHEET_CREDENTIAL_PATH"`
	SpreadsheetID       string `envconfig:"SPREADSHEET_ID"`
	SheetName           string `envconfig:"SHEET_NAME" default:"licenses"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
