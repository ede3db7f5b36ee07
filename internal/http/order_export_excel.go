package httpapi

import (
	"bytes"
	"fmt"

	"banmaytinh/internal/buildconfig"
	"banmaytinh/internal/domain"

	"github.com/xuri/excelize/v2"
)

const orderSheetName = "Orders"

// OrderExportHeader 订单导出表头
var OrderExportHeader = []string{
	"Order ID",
	"Customer",
	"Status",
	"Total Price",
	"Created At",
}

// GenerateOrderExport 生成订单导出 Excel 文件
func GenerateOrderExport(orders []domain.Order) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if _, err := f.NewSheet(orderSheetName); err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	// 删除默认的 Sheet1
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to delete default sheet: %w", err)
	}
	index, err := f.GetSheetIndex(orderSheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to get sheet index: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	// 写入表头
	for col, header := range OrderExportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(orderSheetName, cell, header); err != nil {
			return nil, fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(orderSheetName, cell, cell, headerStyle); err != nil {
			return nil, fmt.Errorf("failed to set header style: %w", err)
		}
	}
	for i, width := range []float64{12, 24, 14, 16, 20} {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, fmt.Errorf("failed to convert column number: %w", err)
		}
		if err := f.SetColWidth(orderSheetName, col, col, width); err != nil {
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	// 写入数据（第1行是表头）
	for i, o := range orders {
		row := []any{o.OrderID, o.UserName, string(o.Status), o.TotalPrice, o.CreatedAt.Format("2006-01-02 15:04")}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetSheetRow(orderSheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write order row %d: %w", o.OrderID, err)
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write excel: %w", err)
	}
	return buf.Bytes(), nil
}

// orderLineName 订单行显示名：配置整机使用配置名
func orderLineName(l domain.OrderLine) string {
	if l.ConfigData != nil {
		if cfg, err := buildconfig.Unmarshal(*l.ConfigData); err == nil && cfg.ConfigName != "" {
			return cfg.ConfigName
		}
	}
	return l.ProductName
}
