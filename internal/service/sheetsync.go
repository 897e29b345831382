package service

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"license-credit-system/internal/model"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
	"gorm.io/gorm"
)

// SheetSyncService 将许可证状态导出到 Google Sheet，按 license_code 逐行更新。
// 只做导出，数据库写入全部由账务核心负责。
type SheetSyncService struct {
	service       *sheets.Service
	spreadsheetID string
	sheetName     string
}

func NewSheetSyncService(enableSync bool, credentialPath, spreadsheetID, sheetName string) (*SheetSyncService, error) {
	if !enableSync {
		return nil, nil
	}

	ctx := context.Background()

	// 读取服务账号凭证
	b, err := os.ReadFile(credentialPath)
	if err != nil {
		return nil, err
	}

	creds, err := google.CredentialsFromJSON(ctx, b, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("无法加载凭证: %v", err)
	}

	srv, err := sheets.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, err
	}

	return &SheetSyncService{
		service:       srv,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

// SyncLicense 同步单个许可证：已存在则更新对应行，否则追加新行
func (s *SheetSyncService) SyncLicense(license *model.License) error {
	if s == nil {
		return nil
	}

	// 在 A 列查找 license_code 对应的行
	rangeToSearch := fmt.Sprintf("%s!A2:A", s.sheetName)
	keyResp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, rangeToSearch).Do()
	if err != nil {
		log.Printf("查询Sheet数据失败: %v", err)
		return fmt.Errorf("查询Sheet数据失败: %v", err)
	}

	var rowIndex int
	found := false
	for i, row := range keyResp.Values {
		if len(row) > 0 && row[0] == license.LicenseCode {
			found = true
			rowIndex = i + 2 // +2因为A2开始且数组从0开始
			break
		}
	}

	values := [][]interface{}{{
		license.LicenseCode,
		license.UserID,
		license.ValidFrom.Format(time.RFC3339),
		license.ValidUntil.Format(time.RFC3339),
		license.RemainingUsage,
		license.UsageTime,
		license.UsageCount,
		license.CreatedAt.Format(time.RFC3339),
		license.UpdatedAt.Format(time.RFC3339),
	}}

	if found {
		rangeData := fmt.Sprintf("%s!A%d:I%d", s.sheetName, rowIndex, rowIndex)
		_, err = s.service.Spreadsheets.Values.Update(
			s.spreadsheetID,
			rangeData,
			&sheets.ValueRange{Values: values},
		).ValueInputOption("USER_ENTERED").Do()
	} else {
		_, err = s.service.Spreadsheets.Values.Append(
			s.spreadsheetID,
			s.sheetName+"!A2:I",
			&sheets.ValueRange{Values: values},
		).ValueInputOption("USER_ENTERED").Do()
	}

	if err != nil {
		log.Printf("同步到Google Sheet失败: %v", err)
		return fmt.Errorf("同步到Google Sheet失败: %v", err)
	}

	return nil
}

// ExportAll 把数据库中的全部许可证整体导出到 Sheet，用于启动时补齐历史数据
func (s *SheetSyncService) ExportAll(db *gorm.DB) error {
	if s == nil {
		return nil
	}

	var licenses []*model.License
	if err := db.Find(&licenses).Error; err != nil {
		return fmt.Errorf("读取许可证失败: %v", err)
	}
	if len(licenses) == 0 {
		return nil
	}

	return s.BatchSyncLicenses(licenses)
}

// BatchSyncLicenses 批量追加许可证数据
func (s *SheetSyncService) BatchSyncLicenses(licenses []*model.License) error {
	if s == nil {
		return nil
	}

	var values [][]interface{}
	for _, license := range licenses {
		values = append(values, []interface{}{
			license.LicenseCode,
			license.UserID,
			license.ValidFrom.Format(time.RFC3339),
			license.ValidUntil.Format(time.RFC3339),
			license.RemainingUsage,
			license.UsageTime,
			license.UsageCount,
			license.CreatedAt.Format(time.RFC3339),
			license.UpdatedAt.Format(time.RFC3339),
		})
	}

	valueRange := &sheets.ValueRange{
		Values: values,
	}

	_, err := s.service.Spreadsheets.Values.Append(
		s.spreadsheetID,
		s.sheetName+"!A2:I",
		valueRange,
	).ValueInputOption("USER_ENTERED").Do()

	if err != nil {
		log.Printf("Failed to batch sync licenses: %v", err)
		return err
	}

	return nil
}
