package services

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/RoyerReyes/Microservicio-reportes-analisis/internal/models"
)

// PDFGenerator produce los reportes en PDF con encabezado corporativo,
// tabla de resumen y tablas de datos.
type PDFGenerator struct {
	companyName string
	now         func() time.Time
}

func NewPDFGenerator(companyName string) *PDFGenerator {
	if companyName == "" {
		companyName = "SOA Minimarket"
	}
	return &PDFGenerator{companyName: companyName, now: time.Now}
}

func (g *PDFGenerator) newDocument(title, period string) (*gofpdf.Fpdf, func(string) string) {
	pdf := gofpdf.New("P", "mm", "Letter", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	// Título corporativo
	pdf.SetFont("Helvetica", "B", 22)
	pdf.SetTextColor(37, 99, 235)
	pdf.CellFormat(0, 10, tr(g.companyName), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 9, tr(title), "", 1, "C", false, 0, "")
	pdf.Ln(2)

	// Metadata
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(0, 0, 0)
	meta := fmt.Sprintf("Periodo: %s | Generado: %s", period, g.now().Format("02/01/2006 15:04"))
	pdf.CellFormat(0, 6, tr(meta), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	return pdf, tr
}

func (g *PDFGenerator) sectionHeading(pdf *gofpdf.Fpdf, tr func(string) string, text string) {
	pdf.SetFont("Helvetica", "B", 13)
	pdf.SetTextColor(30, 64, 175)
	pdf.CellFormat(0, 8, tr(text), "", 1, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(1)
}

func (g *PDFGenerator) table(pdf *gofpdf.Fpdf, tr func(string) string, headers []string, widths []float64, rows [][]string) {
	// Encabezado de tabla
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(30, 64, 175)
	pdf.SetTextColor(255, 255, 255)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 8, tr(h), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	// Filas con fondo alternado
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(0, 0, 0)
	for n, row := range rows {
		fill := n%2 == 1
		pdf.SetFillColor(239, 246, 255)
		for i, cell := range row {
			pdf.CellFormat(widths[i], 7, tr(cell), "1", 0, "C", fill, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(6)
}

func (g *PDFGenerator) summaryTable(pdf *gofpdf.Fpdf, tr func(string) string, metrics [][2]string) {
	g.sectionHeading(pdf, tr, "Resumen")

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(30, 64, 175)
	pdf.SetTextColor(255, 255, 255)
	pdf.CellFormat(80, 8, tr("Métrica"), "1", 0, "C", true, 0, "")
	pdf.CellFormat(50, 8, "Valor", "1", 1, "C", true, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(0, 0, 0)
	for _, m := range metrics {
		pdf.CellFormat(80, 7, tr(m[0]), "1", 0, "L", false, 0, "")
		pdf.CellFormat(50, 7, tr(m[1]), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(6)
}

func (g *PDFGenerator) output(pdf *gofpdf.Fpdf) (*bytes.Buffer, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("error generando PDF: %w", err)
	}
	return &buf, nil
}

// GenerateSalesReport produce el PDF del reporte de ventas.
func (g *PDFGenerator) GenerateSalesReport(report *models.SalesReport, period string) (*bytes.Buffer, error) {
	pdf, tr := g.newDocument("Reporte de Ventas", period)

	g.summaryTable(pdf, tr, [][2]string{
		{"Revenue Total", fmt.Sprintf("S/ %.2f", report.TotalRevenue)},
		{"Total de Pedidos", fmt.Sprintf("%d", report.TotalOrders)},
		{"Ticket Promedio", fmt.Sprintf("S/ %.2f", report.AverageTicket)},
	})

	g.sectionHeading(pdf, tr, "Ventas por Día")

	if len(report.Data) == 0 {
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 7, tr("No hay ventas registradas."), "", 1, "L", false, 0, "")
	} else {
		rows := make([][]string, 0, len(report.Data))
		for _, item := range report.Data {
			rows = append(rows, []string{
				item.Periodo,
				fmt.Sprintf("%.2f", item.TotalVentas),
				fmt.Sprintf("%d", item.NumeroPedidos),
				fmt.Sprintf("%.2f", item.TicketPromedio),
			})
		}
		g.table(pdf, tr,
			[]string{"Fecha", "Total (S/)", "Pedidos", "Ticket Promedio"},
			[]float64{45, 45, 40, 45},
			rows,
		)
	}

	return g.output(pdf)
}

// GenerateProductsReport produce el PDF del top de productos.
func (g *PDFGenerator) GenerateProductsReport(report *models.ProductsReport, period string) (*bytes.Buffer, error) {
	pdf, tr := g.newDocument("Reporte de Productos", period)

	g.summaryTable(pdf, tr, [][2]string{
		{"Productos Únicos", fmt.Sprintf("%d", report.TotalProducts)},
		{"Unidades Vendidas", fmt.Sprintf("%d", report.TotalUnitsSold)},
	})

	g.sectionHeading(pdf, tr, "Top Productos")

	rows := make([][]string, 0, len(report.Data))
	for _, item := range report.Data {
		rows = append(rows, []string{
			item.Nombre,
			item.Categoria,
			fmt.Sprintf("%d", item.TotalVendido),
			fmt.Sprintf("S/ %.2f", item.Revenue),
			fmt.Sprintf("%.2f%%", item.PorcentajeVentas),
		})
	}
	g.table(pdf, tr,
		[]string{"Producto", "Categoría", "Unidades", "Revenue", "% Ventas"},
		[]float64{55, 35, 25, 35, 25},
		rows,
	)

	return g.output(pdf)
}

// GenerateCustomersReport produce el PDF del top de clientes.
func (g *PDFGenerator) GenerateCustomersReport(report *models.CustomersReport, period string) (*bytes.Buffer, error) {
	pdf, tr := g.newDocument("Reporte de Clientes", period)

	g.summaryTable(pdf, tr, [][2]string{
		{"Clientes Únicos", fmt.Sprintf("%d", report.TotalCustomers)},
	})

	g.sectionHeading(pdf, tr, "Top Clientes")

	rows := make([][]string, 0, len(report.Data))
	for _, item := range report.Data {
		rows = append(rows, []string{
			item.NombreCompleto,
			fmt.Sprintf("%d", item.CantidadPedidos),
			fmt.Sprintf("S/ %.2f", item.TotalGastado),
			fmt.Sprintf("S/ %.2f", item.TicketPromedio),
			item.UltimoPedido,
		})
	}
	g.table(pdf, tr,
		[]string{"Cliente", "Pedidos", "Total Gastado", "Ticket Promedio", "Último Pedido"},
		[]float64{55, 25, 35, 35, 30},
		rows,
	)

	return g.output(pdf)
}

// GenerateGenericReport produce un PDF tabular para los demás tipos de reporte.
func (g *PDFGenerator) GenerateGenericReport(result *models.ReportResult, title, period string) (*bytes.Buffer, error) {
	pdf, tr := g.newDocument(title, period)

	switch data := result.Data.(type) {
	case *models.RevenueByCategoryReport:
		g.summaryTable(pdf, tr, [][2]string{
			{"Revenue Total", fmt.Sprintf("S/ %.2f", data.TotalRevenue)},
		})
		g.sectionHeading(pdf, tr, "Revenue por Categoría")

		rows := make([][]string, 0, len(data.Data))
		for _, item := range data.Data {
			rows = append(rows, []string{
				item.Categoria,
				fmt.Sprintf("S/ %.2f", item.Revenue),
				fmt.Sprintf("%.2f%%", item.Porcentaje),
				fmt.Sprintf("%d", item.UnidadesVendidas),
			})
		}
		g.table(pdf, tr,
			[]string{"Categoría", "Revenue", "%", "Unidades"},
			[]float64{60, 40, 30, 40},
			rows,
		)

	case *models.HourlySalesReport:
		g.summaryTable(pdf, tr, [][2]string{
			{"Hora Pico", fmt.Sprintf("%02d:00", data.PeakHour)},
			{"Revenue Hora Pico", fmt.Sprintf("S/ %.2f", data.PeakRevenue)},
		})
		g.sectionHeading(pdf, tr, "Ventas por Hora")

		rows := make([][]string, 0, len(data.Data))
		for _, item := range data.Data {
			rows = append(rows, []string{
				fmt.Sprintf("%02d:00", item.Hora),
				fmt.Sprintf("S/ %.2f", item.TotalVentas),
				fmt.Sprintf("%d", item.NumeroPedidos),
			})
		}
		g.table(pdf, tr,
			[]string{"Hora", "Total Ventas", "Pedidos"},
			[]float64{40, 60, 50},
			rows,
		)

	case *models.SummaryMetrics:
		g.summaryTable(pdf, tr, [][2]string{
			{"Revenue Hoy", fmt.Sprintf("S/ %.2f", data.TotalRevenueToday)},
			{"Pedidos Hoy", fmt.Sprintf("%d", data.TotalOrdersToday)},
			{"Ticket Promedio Hoy", fmt.Sprintf("S/ %.2f", data.AverageTicketToday)},
			{"Clientes Activos", fmt.Sprintf("%d", data.TotalCustomers)},
			{"Producto Top Hoy", data.TopProductToday},
			{"Crecimiento vs Ayer", fmt.Sprintf("%.2f%%", data.RevenueGrowthVsYesterday)},
		})

	default:
		return nil, fmt.Errorf("tipo de reporte no soportado para PDF: %s", result.ReportType)
	}

	return g.output(pdf)
}
