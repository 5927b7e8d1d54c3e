package handlers

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/RoyerReyes/Microservicio-reportes-analisis/internal/models"
)

const dateLayout = "2006-01-02"

// parseReportRequest construye y valida el ReportRequest desde los query params.
func parseReportRequest(c *gin.Context, format models.ReportFormat) (*models.ReportRequest, error) {
	req := &models.ReportRequest{
		ReportType:    models.ReportType(c.DefaultQuery("report_type", string(models.ReportSales))),
		Period:        models.ReportPeriod(c.DefaultQuery("period", string(models.PeriodWeek))),
		Format:        format,
		IncludeCharts: c.DefaultQuery("include_charts", "true") == "true",
	}

	if req.Period == models.PeriodCustom {
		startStr := c.Query("start_date")
		endStr := c.Query("end_date")
		if startStr == "" || endStr == "" {
			return nil, fmt.Errorf("start_date y end_date son requeridos para periodo 'personalizado'")
		}

		start, err := time.Parse(dateLayout, startStr)
		if err != nil {
			return nil, fmt.Errorf("start_date inválida: %s", startStr)
		}
		end, err := time.Parse(dateLayout, endStr)
		if err != nil {
			return nil, fmt.Errorf("end_date inválida: %s", endStr)
		}

		req.DateRange = &models.DateRangeFilter{StartDate: start, EndDate: end}
	}

	if filters, err := parseFilters(c); err != nil {
		return nil, err
	} else if filters != nil {
		req.Filters = filters
	}

	if pagination, err := parsePagination(c); err != nil {
		return nil, err
	} else if pagination != nil {
		req.Pagination = pagination
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	return req, nil
}

func parseFilters(c *gin.Context) (*models.ReportFilters, error) {
	filters := &models.ReportFilters{}
	found := false

	for param, target := range map[string]**int{
		"customer_id": &filters.CustomerID,
		"product_id":  &filters.ProductID,
		"category_id": &filters.CategoryID,
	} {
		if raw := c.Query(param); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				return nil, fmt.Errorf("%s inválido: %s", param, raw)
			}
			*target = &n
			found = true
		}
	}

	for param, target := range map[string]**float64{
		"min_amount": &filters.MinAmount,
		"max_amount": &filters.MaxAmount,
	} {
		if raw := c.Query(param); raw != "" {
			f, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("%s inválido: %s", param, raw)
			}
			*target = &f
			found = true
		}
	}

	if raw := c.Query("status"); raw != "" {
		status := models.OrderStatus(raw)
		filters.Status = &status
		found = true
	}

	if !found {
		return nil, nil
	}
	return filters, nil
}

func parsePagination(c *gin.Context) (*models.PaginationParams, error) {
	pageRaw := c.Query("page")
	sizeRaw := c.Query("page_size")
	if pageRaw == "" && sizeRaw == "" {
		return nil, nil
	}

	p := &models.PaginationParams{Page: 1, PageSize: 50, Order: "desc"}

	if pageRaw != "" {
		n, err := strconv.Atoi(pageRaw)
		if err != nil {
			return nil, fmt.Errorf("page inválida: %s", pageRaw)
		}
		p.Page = n
	}

	if sizeRaw != "" {
		n, err := strconv.Atoi(sizeRaw)
		if err != nil {
			return nil, fmt.Errorf("page_size inválido: %s", sizeRaw)
		}
		p.PageSize = n
	}

	p.SortBy = c.Query("sort_by")
	if order := c.Query("order"); order != "" {
		p.Order = order
	}

	return p, nil
}

// GET /api/reportes
func (s *Server) GetReports(c *gin.Context) {
	req, err := parseReportRequest(c, models.FormatJSON)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Parámetros inválidos",
			"details": err.Error(),
		})
		return
	}

	result, err := s.reports.GenerateReport(c.Request.Context(), req)
	if err != nil {
		slog.Error("Report generation failed", "report_type", req.ReportType, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":           true,
		"report_type":       result.ReportType,
		"period":            result.Period,
		"generated_at":      result.GeneratedAt,
		"data":              result.Data,
		"cached":            result.Cached,
		"execution_time_ms": result.ExecutionTimeMS,
	})
}

// GET /api/reportes/export/pdf
func (s *Server) ExportPDF(c *gin.Context) {
	req, err := parseReportRequest(c, models.FormatPDF)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Parámetros inválidos",
			"details": err.Error(),
		})
		return
	}

	result, err := s.reports.GenerateReport(c.Request.Context(), req)
	if err != nil {
		slog.Error("Report generation failed", "report_type", req.ReportType, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Error generando PDF",
		})
		return
	}

	var buf *bytes.Buffer

	switch data := result.Data.(type) {
	case *models.SalesReport:
		buf, err = s.pdf.GenerateSalesReport(data, string(req.Period))
	case *models.ProductsReport:
		buf, err = s.pdf.GenerateProductsReport(data, string(req.Period))
	case *models.CustomersReport:
		buf, err = s.pdf.GenerateCustomersReport(data, string(req.Period))
	default:
		buf, err = s.pdf.GenerateGenericReport(result, fmt.Sprintf("Reporte de %s", req.ReportType), string(req.Period))
	}

	if err != nil {
		slog.Error("PDF generation failed", "report_type", req.ReportType, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Error generando PDF",
		})
		return
	}

	filename := fmt.Sprintf("reporte_%s_%s.pdf", req.ReportType, req.Period)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// GET /api/reportes/export/excel
func (s *Server) ExportExcel(c *gin.Context) {
	req, err := parseReportRequest(c, models.FormatExcel)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Parámetros inválidos",
			"details": err.Error(),
		})
		return
	}

	result, err := s.reports.GenerateReport(c.Request.Context(), req)
	if err != nil {
		slog.Error("Report generation failed", "report_type", req.ReportType, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Error generando Excel",
		})
		return
	}

	var buf *bytes.Buffer

	switch data := result.Data.(type) {
	case *models.SalesReport:
		buf, err = s.excel.GenerateSalesReport(data, string(req.Period))
	case *models.ProductsReport:
		buf, err = s.excel.GenerateProductsReport(data, string(req.Period))
	case *models.CustomersReport:
		buf, err = s.excel.GenerateCustomersReport(data, string(req.Period))
	default:
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   fmt.Sprintf("Tipo de reporte no soportado para Excel: %s", req.ReportType),
		})
		return
	}

	if err != nil {
		slog.Error("Excel generation failed", "report_type", req.ReportType, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Error generando Excel",
		})
		return
	}

	filename := fmt.Sprintf("reporte_%s_%s.xlsx", req.ReportType, req.Period)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
