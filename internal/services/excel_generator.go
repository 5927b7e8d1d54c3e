package services

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/RoyerReyes/Microservicio-reportes-analisis/internal/models"
)

// ExcelGenerator produce los reportes en XLSX con encabezados con estilo,
// filas alternadas y anchos de columna ajustados.
type ExcelGenerator struct {
	companyName string
	now         func() time.Time
}

func NewExcelGenerator(companyName string) *ExcelGenerator {
	if companyName == "" {
		companyName = "SOA Minimarket"
	}
	return &ExcelGenerator{companyName: companyName, now: time.Now}
}

type excelStyles struct {
	title  int
	header int
	zebra  int
}

func (g *ExcelGenerator) makeStyles(f *excelize.File) (excelStyles, error) {
	title, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 16, Color: "1E40AF"},
	})
	if err != nil {
		return excelStyles{}, err
	}

	header, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"2563EB"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorder(),
	})
	if err != nil {
		return excelStyles{}, err
	}

	zebra, err := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"EFF6FF"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorder(),
	})
	if err != nil {
		return excelStyles{}, err
	}

	return excelStyles{title: title, header: header, zebra: zebra}, nil
}

func thinBorder() []excelize.Border {
	return []excelize.Border{
		{Type: "left", Style: 1},
		{Type: "right", Style: 1},
		{Type: "top", Style: 1},
		{Type: "bottom", Style: 1},
	}
}

// writeSheet escribe metadata, encabezados y filas en la hoja dada,
// retornando el buffer XLSX final.
func (g *ExcelGenerator) writeSheet(sheet, title, period string, headers []string, rows [][]interface{}, summary [][2]interface{}) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	defaultSheet := f.GetSheetName(0)
	if err := f.SetSheetName(defaultSheet, sheet); err != nil {
		return nil, err
	}

	styles, err := g.makeStyles(f)
	if err != nil {
		return nil, err
	}

	// Metadata del reporte
	_ = f.SetCellValue(sheet, "A1", g.companyName)
	_ = f.SetCellStyle(sheet, "A1", "A1", styles.title)
	_ = f.SetCellValue(sheet, "A2", title)
	_ = f.SetCellValue(sheet, "A3", fmt.Sprintf("Periodo: %s", period))
	_ = f.SetCellValue(sheet, "A4", fmt.Sprintf("Generado: %s", g.now().Format("02/01/2006 15:04")))

	row := 6

	// Resumen de métricas
	if len(summary) > 0 {
		cell, _ := excelize.CoordinatesToCellName(1, row)
		_ = f.SetCellValue(sheet, cell, "Métrica")
		cell2, _ := excelize.CoordinatesToCellName(2, row)
		_ = f.SetCellValue(sheet, cell2, "Valor")
		_ = f.SetCellStyle(sheet, cell, cell2, styles.header)
		row++

		for _, m := range summary {
			kCell, _ := excelize.CoordinatesToCellName(1, row)
			vCell, _ := excelize.CoordinatesToCellName(2, row)
			_ = f.SetCellValue(sheet, kCell, m[0])
			_ = f.SetCellValue(sheet, vCell, m[1])
			row++
		}
		row++
	}

	// Encabezado de la tabla de datos
	headerRow := row
	for col, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, headerRow)
		_ = f.SetCellValue(sheet, cell, h)
	}
	first, _ := excelize.CoordinatesToCellName(1, headerRow)
	last, _ := excelize.CoordinatesToCellName(len(headers), headerRow)
	_ = f.SetCellStyle(sheet, first, last, styles.header)
	row++

	// Filas de datos con fondo alternado
	for n, dataRow := range rows {
		for col, value := range dataRow {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(sheet, cell, value)
		}
		if n%2 == 1 {
			rFirst, _ := excelize.CoordinatesToCellName(1, row)
			rLast, _ := excelize.CoordinatesToCellName(len(headers), row)
			_ = f.SetCellStyle(sheet, rFirst, rLast, styles.zebra)
		}
		row++
	}

	g.autoAdjustColumns(f, sheet, headers, rows)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("error generando Excel: %w", err)
	}
	return buf, nil
}

// autoAdjustColumns ajusta el ancho de cada columna al contenido (máx. 50).
func (g *ExcelGenerator) autoAdjustColumns(f *excelize.File, sheet string, headers []string, rows [][]interface{}) {
	for col := range headers {
		maxLen := len(headers[col])
		for _, dataRow := range rows {
			if col < len(dataRow) {
				if l := len(fmt.Sprintf("%v", dataRow[col])); l > maxLen {
					maxLen = l
				}
			}
		}

		width := float64(maxLen + 2)
		if width > 50 {
			width = 50
		}

		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			continue
		}
		_ = f.SetColWidth(sheet, name, name, width)
	}
}

// GenerateSalesReport produce el XLSX del reporte de ventas.
func (g *ExcelGenerator) GenerateSalesReport(report *models.SalesReport, period string) (*bytes.Buffer, error) {
	rows := make([][]interface{}, 0, len(report.Data))
	for _, item := range report.Data {
		rows = append(rows, []interface{}{
			item.Periodo,
			item.TotalVentas,
			item.NumeroPedidos,
			item.TicketPromedio,
		})
	}

	return g.writeSheet(
		"Ventas",
		"Reporte de Ventas",
		period,
		[]string{"Fecha", "Total (S/)", "Pedidos", "Ticket Promedio"},
		rows,
		[][2]interface{}{
			{"Revenue Total", report.TotalRevenue},
			{"Total de Pedidos", report.TotalOrders},
			{"Ticket Promedio", report.AverageTicket},
		},
	)
}

// GenerateProductsReport produce el XLSX del top de productos.
func (g *ExcelGenerator) GenerateProductsReport(report *models.ProductsReport, period string) (*bytes.Buffer, error) {
	rows := make([][]interface{}, 0, len(report.Data))
	for _, item := range report.Data {
		rows = append(rows, []interface{}{
			item.Nombre,
			item.Categoria,
			item.TotalVendido,
			item.Revenue,
			item.PorcentajeVentas,
		})
	}

	return g.writeSheet(
		"Productos",
		"Reporte de Productos",
		period,
		[]string{"Producto", "Categoría", "Unidades", "Revenue", "% Ventas"},
		rows,
		[][2]interface{}{
			{"Productos Únicos", report.TotalProducts},
			{"Unidades Vendidas", report.TotalUnitsSold},
		},
	)
}

// GenerateCustomersReport produce el XLSX del top de clientes.
func (g *ExcelGenerator) GenerateCustomersReport(report *models.CustomersReport, period string) (*bytes.Buffer, error) {
	rows := make([][]interface{}, 0, len(report.Data))
	for _, item := range report.Data {
		rows = append(rows, []interface{}{
			item.NombreCompleto,
			item.Username,
			item.CantidadPedidos,
			item.TotalGastado,
			item.TicketPromedio,
			item.UltimoPedido,
		})
	}

	return g.writeSheet(
		"Clientes",
		"Reporte de Clientes",
		period,
		[]string{"Cliente", "Username", "Pedidos", "Total Gastado", "Ticket Promedio", "Último Pedido"},
		rows,
		[][2]interface{}{
			{"Clientes Únicos", report.TotalCustomers},
		},
	)
}
