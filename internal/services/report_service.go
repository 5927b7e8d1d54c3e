// Package services contiene la lógica de negocio del servicio de reportes:
// generación de reportes sobre el esquema de HubPedidos y exportadores PDF/Excel.
package services

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/RoyerReyes/Microservicio-reportes-analisis/internal/cache"
	"github.com/RoyerReyes/Microservicio-reportes-analisis/internal/config"
	"github.com/RoyerReyes/Microservicio-reportes-analisis/internal/database"
	"github.com/RoyerReyes/Microservicio-reportes-analisis/internal/metrics"
	"github.com/RoyerReyes/Microservicio-reportes-analisis/internal/models"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04:05"
)

// ReportService genera los reportes coordinando base de datos y caché.
type ReportService struct {
	db    *database.Manager
	cache *cache.Manager
	cfg   config.ReportsConfig
	ttl   time.Duration
	now   func() time.Time
}

func NewReportService(db *database.Manager, cacheManager *cache.Manager, cfg config.ReportsConfig, reportTTL time.Duration) *ReportService {
	return &ReportService{
		db:    db,
		cache: cacheManager,
		cfg:   cfg,
		ttl:   reportTTL,
		now:   time.Now,
	}
}

// DateRange resuelve el rango de fechas de un periodo. Para 'personalizado'
// usa el rango explícito del request.
func DateRange(period models.ReportPeriod, custom *models.DateRangeFilter, now time.Time) (time.Time, time.Time, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch period {
	case models.PeriodCustom:
		if custom == nil {
			return time.Time{}, time.Time{}, fmt.Errorf("date_range es requerido para periodo 'personalizado'")
		}
		return custom.StartDate, custom.EndDate, nil
	case models.PeriodDay:
		return today, today, nil
	case models.PeriodMonth:
		return today.AddDate(0, 0, -30), today, nil
	case models.PeriodQuarter:
		return today.AddDate(0, 0, -90), today, nil
	case models.PeriodYear:
		return today.AddDate(0, 0, -365), today, nil
	default: // semana
		return today.AddDate(0, 0, -7), today, nil
	}
}

// GenerateReport despacha según el tipo de reporte y arma el payload común.
func (s *ReportService) GenerateReport(ctx context.Context, req *models.ReportRequest) (*models.ReportResult, error) {
	start := time.Now()

	var (
		data   interface{}
		cached bool
		err    error
	)

	switch req.ReportType {
	case models.ReportSales:
		data, cached, err = s.SalesReport(ctx, req)
	case models.ReportProducts:
		data, err = s.ProductsReport(ctx, req)
	case models.ReportCustomers:
		data, err = s.CustomersReport(ctx, req)
	case models.ReportRevenueByCategory:
		data, err = s.RevenueByCategory(ctx, req)
	case models.ReportHourlySales:
		data, err = s.HourlySales(ctx, req)
	case models.ReportSummary:
		data, err = s.Summary(ctx)
	default:
		return nil, fmt.Errorf("tipo de reporte no soportado: %s", req.ReportType)
	}

	if err != nil {
		return nil, err
	}

	elapsed := time.Since(start)
	metrics.ReportGenerationTime.WithLabelValues(string(req.ReportType), string(req.Format)).Observe(elapsed.Seconds())

	return &models.ReportResult{
		ReportType:      req.ReportType,
		Period:          req.Period,
		GeneratedAt:     s.now(),
		Data:            data,
		Cached:          cached,
		ExecutionTimeMS: float64(elapsed.Microseconds()) / 1000.0,
	}, nil
}

type salesRow struct {
	Periodo        string
	TotalVentas    float64
	NumeroPedidos  int
	TicketPromedio float64
}

// SalesReport genera el reporte de ventas por día. Es el único reporte
// que pasa por el caché.
func (s *ReportService) SalesReport(ctx context.Context, req *models.ReportRequest) (*models.SalesReport, bool, error) {
	params := map[string]string{"period": string(req.Period)}
	if req.DateRange != nil {
		params["start"] = req.DateRange.StartDate.Format(dateLayout)
		params["end"] = req.DateRange.EndDate.Format(dateLayout)
	}
	if f := req.Filters; f != nil {
		if f.CustomerID != nil {
			params["customer_id"] = strconv.Itoa(*f.CustomerID)
		}
		if f.MinAmount != nil {
			params["min_amount"] = strconv.FormatFloat(*f.MinAmount, 'f', -1, 64)
		}
		if f.MaxAmount != nil {
			params["max_amount"] = strconv.FormatFloat(*f.MaxAmount, 'f', -1, 64)
		}
	}
	cacheKey := cache.Key("report:sales", params)

	var cachedReport models.SalesReport
	if s.cache.Get(ctx, cacheKey, &cachedReport) {
		slog.Info("Sales report served from cache", "key", cacheKey)
		return &cachedReport, true, nil
	}

	startDate, endDate, err := DateRange(req.Period, req.DateRange, s.now())
	if err != nil {
		return nil, false, err
	}

	query := `
		SELECT
			DATE(fecha_pedido) AS periodo,
			SUM(total) AS total_ventas,
			COUNT(*) AS numero_pedidos,
			AVG(total) AS ticket_promedio
		FROM pedidos_pedido
		WHERE estado = 'COMPLETADO'
			AND fecha_pedido >= ?
			AND fecha_pedido <= ?`
	args := []interface{}{startDate.Format(dateLayout), endOfDay(endDate)}

	query, args = appendSalesFilters(query, args, req.Filters)
	query += `
		GROUP BY DATE(fecha_pedido)
		ORDER BY periodo`

	var rows []salesRow
	if err := s.db.Query(ctx, &rows, query, args...); err != nil {
		return nil, false, err
	}

	items := make([]models.SalesReportItem, 0, len(rows))
	totalRevenue := 0.0
	totalOrders := 0

	for _, row := range rows {
		items = append(items, models.SalesReportItem{
			Periodo:        row.Periodo,
			TotalVentas:    row.TotalVentas,
			NumeroPedidos:  row.NumeroPedidos,
			TicketPromedio: row.TicketPromedio,
		})
		totalRevenue += row.TotalVentas
		totalOrders += row.NumeroPedidos
	}

	averageTicket := 0.0
	if totalOrders > 0 {
		averageTicket = totalRevenue / float64(totalOrders)
	}

	report := &models.SalesReport{
		Data:          items,
		TotalRevenue:  totalRevenue,
		TotalOrders:   totalOrders,
		AverageTicket: averageTicket,
	}

	s.cache.Set(ctx, cacheKey, report, s.ttl)

	return report, false, nil
}

type productRow struct {
	ProductoID   int
	Nombre       string
	Categoria    string
	TotalVendido int
	Revenue      float64
}

// ProductsReport genera el top de productos más vendidos del periodo.
func (s *ReportService) ProductsReport(ctx context.Context, req *models.ReportRequest) (*models.ProductsReport, error) {
	startDate, endDate, err := DateRange(req.Period, req.DateRange, s.now())
	if err != nil {
		return nil, err
	}

	query := `
		SELECT
			p.id AS producto_id,
			p.nombre AS nombre,
			COALESCE(c.nombre, 'Sin categoría') AS categoria,
			SUM(dp.cantidad) AS total_vendido,
			SUM(dp.precio * dp.cantidad) AS revenue
		FROM pedidos_detallepedido dp
		JOIN pedidos_producto p ON dp.producto_id = p.id
		LEFT JOIN pedidos_categoria c ON p.categoria_id = c.id
		JOIN pedidos_pedido pe ON dp.pedido_id = pe.id
		WHERE pe.estado = 'COMPLETADO'
			AND pe.fecha_pedido >= ?
			AND pe.fecha_pedido <= ?`
	args := []interface{}{startDate.Format(dateLayout), endOfDay(endDate)}

	query, args = appendDetailFilters(query, args, req.Filters)

	query += `
		GROUP BY p.id, p.nombre, c.nombre`
	query += orderBy(req.Pagination, productSortColumns, "total_vendido")
	query, args = appendLimit(query, args, req.Pagination, 10)

	var rows []productRow
	if err := s.db.Query(ctx, &rows, query, args...); err != nil {
		return nil, err
	}

	totalRevenue := 0.0
	for _, row := range rows {
		totalRevenue += row.Revenue
	}

	items := make([]models.ProductReportItem, 0, len(rows))
	totalUnits := 0

	for _, row := range rows {
		pct := 0.0
		if totalRevenue > 0 {
			pct = round2(row.Revenue / totalRevenue * 100)
		}
		items = append(items, models.ProductReportItem{
			ProductoID:       row.ProductoID,
			Nombre:           row.Nombre,
			Categoria:        row.Categoria,
			TotalVendido:     row.TotalVendido,
			Revenue:          row.Revenue,
			PorcentajeVentas: pct,
		})
		totalUnits += row.TotalVendido
	}

	return &models.ProductsReport{
		Data:           items,
		TotalProducts:  len(items),
		TotalUnitsSold: totalUnits,
	}, nil
}

type customerRow struct {
	ClienteID       int
	Username        string
	NombreCompleto  string
	CantidadPedidos int
	TotalGastado    float64
	TicketPromedio  float64
	UltimoPedido    string
}

// CustomersReport genera el top de clientes por gasto total.
func (s *ReportService) CustomersReport(ctx context.Context, req *models.ReportRequest) (*models.CustomersReport, error) {
	startDate, endDate, err := DateRange(req.Period, req.DateRange, s.now())
	if err != nil {
		return nil, err
	}

	// CONCAT no existe en SQLite, se usa el operador || en ese caso.
	fullName := "CONCAT(u.first_name, ' ', u.last_name)"
	if s.db.Type() == "sqlite" {
		fullName = "u.first_name || ' ' || u.last_name"
	}

	query := fmt.Sprintf(`
		SELECT
			u.id AS cliente_id,
			u.username AS username,
			%s AS nombre_completo,
			COUNT(p.id) AS cantidad_pedidos,
			SUM(p.total) AS total_gastado,
			AVG(p.total) AS ticket_promedio,
			MAX(p.fecha_pedido) AS ultimo_pedido
		FROM auth_user u
		JOIN pedidos_pedido p ON u.id = p.cliente_id
		WHERE p.fecha_pedido >= ? AND p.fecha_pedido <= ?`, fullName)
	args := []interface{}{startDate.Format(dateLayout), endOfDay(endDate)}

	query, args = appendCustomerFilters(query, args, req.Filters)

	query += `
		GROUP BY u.id, u.username, u.first_name, u.last_name`
	query += orderBy(req.Pagination, customerSortColumns, "total_gastado")
	query, args = appendLimit(query, args, req.Pagination, 20)

	var rows []customerRow
	if err := s.db.Query(ctx, &rows, query, args...); err != nil {
		return nil, err
	}

	items := make([]models.CustomerReportItem, 0, len(rows))
	for _, row := range rows {
		fullName := strings.TrimSpace(row.NombreCompleto)
		if fullName == "" {
			fullName = row.Username
		}

		lastOrder := row.UltimoPedido
		if len(lastOrder) > 10 {
			lastOrder = lastOrder[:10]
		}

		items = append(items, models.CustomerReportItem{
			ClienteID:       row.ClienteID,
			Username:        row.Username,
			NombreCompleto:  fullName,
			CantidadPedidos: row.CantidadPedidos,
			TotalGastado:    row.TotalGastado,
			TicketPromedio:  row.TicketPromedio,
			UltimoPedido:    lastOrder,
		})
	}

	return &models.CustomersReport{
		Data:           items,
		TotalCustomers: len(items),
	}, nil
}

type categoryRow struct {
	Categoria        string
	Revenue          float64
	UnidadesVendidas int
}

// RevenueByCategory genera el revenue agrupado por categoría.
func (s *ReportService) RevenueByCategory(ctx context.Context, req *models.ReportRequest) (*models.RevenueByCategoryReport, error) {
	startDate, endDate, err := DateRange(req.Period, req.DateRange, s.now())
	if err != nil {
		return nil, err
	}

	query := `
		SELECT
			COALESCE(c.nombre, 'Sin categoría') AS categoria,
			SUM(dp.precio * dp.cantidad) AS revenue,
			SUM(dp.cantidad) AS unidades_vendidas
		FROM pedidos_detallepedido dp
		JOIN pedidos_producto p ON dp.producto_id = p.id
		LEFT JOIN pedidos_categoria c ON p.categoria_id = c.id
		JOIN pedidos_pedido pe ON dp.pedido_id = pe.id
		WHERE pe.estado = 'COMPLETADO'
			AND pe.fecha_pedido >= ?
			AND pe.fecha_pedido <= ?
		GROUP BY c.nombre
		ORDER BY revenue DESC`

	var rows []categoryRow
	if err := s.db.Query(ctx, &rows, query, startDate.Format(dateLayout), endOfDay(endDate)); err != nil {
		return nil, err
	}

	totalRevenue := 0.0
	for _, row := range rows {
		totalRevenue += row.Revenue
	}

	items := make([]models.RevenueByCategoryItem, 0, len(rows))
	for _, row := range rows {
		pct := 0.0
		if totalRevenue > 0 {
			pct = round2(row.Revenue / totalRevenue * 100)
		}
		items = append(items, models.RevenueByCategoryItem{
			Categoria:        row.Categoria,
			Revenue:          row.Revenue,
			Porcentaje:       pct,
			UnidadesVendidas: row.UnidadesVendidas,
		})
	}

	return &models.RevenueByCategoryReport{
		Data:         items,
		TotalRevenue: totalRevenue,
	}, nil
}

type hourlyRow struct {
	Hora          int
	TotalVentas   float64
	NumeroPedidos int
}

// HourlySales genera las ventas agrupadas por hora del día.
func (s *ReportService) HourlySales(ctx context.Context, req *models.ReportRequest) (*models.HourlySalesReport, error) {
	startDate, endDate, err := DateRange(req.Period, req.DateRange, s.now())
	if err != nil {
		return nil, err
	}

	hourExpr := "HOUR(fecha_pedido)"
	if s.db.Type() == "sqlite" {
		hourExpr = "CAST(strftime('%H', fecha_pedido) AS INTEGER)"
	}

	query := fmt.Sprintf(`
		SELECT
			%s AS hora,
			SUM(total) AS total_ventas,
			COUNT(*) AS numero_pedidos
		FROM pedidos_pedido
		WHERE estado = 'COMPLETADO'
			AND fecha_pedido >= ?
			AND fecha_pedido <= ?
		GROUP BY hora
		ORDER BY hora`, hourExpr)

	var rows []hourlyRow
	if err := s.db.Query(ctx, &rows, query, startDate.Format(dateLayout), endOfDay(endDate)); err != nil {
		return nil, err
	}

	items := make([]models.HourlySalesItem, 0, len(rows))
	peakHour := 0
	peakRevenue := 0.0

	for _, row := range rows {
		items = append(items, models.HourlySalesItem{
			Hora:          row.Hora,
			TotalVentas:   row.TotalVentas,
			NumeroPedidos: row.NumeroPedidos,
		})
		if row.TotalVentas > peakRevenue {
			peakRevenue = row.TotalVentas
			peakHour = row.Hora
		}
	}

	return &models.HourlySalesReport{
		Data:        items,
		PeakHour:    peakHour,
		PeakRevenue: peakRevenue,
	}, nil
}

type summaryRow struct {
	TotalOrders   int             `gorm:"column:total_orders"`
	TotalRevenue  sql.NullFloat64 `gorm:"column:total_revenue"`
	AverageTicket sql.NullFloat64 `gorm:"column:average_ticket"`
}

// Summary genera las métricas del dashboard del día.
func (s *ReportService) Summary(ctx context.Context) (*models.SummaryMetrics, error) {
	now := s.now()
	today := now.Format(dateLayout)
	yesterday := now.AddDate(0, 0, -1).Format(dateLayout)
	monthAgo := now.AddDate(0, 0, -30).Format(dateLayout)

	var todayData summaryRow
	err := s.db.Query(ctx, &todayData, `
		SELECT
			COUNT(*) AS total_orders,
			SUM(total) AS total_revenue,
			AVG(total) AS average_ticket
		FROM pedidos_pedido
		WHERE DATE(fecha_pedido) = ? AND estado = 'COMPLETADO'`, today)
	if err != nil {
		return nil, err
	}

	var yesterdayData struct {
		TotalRevenue sql.NullFloat64 `gorm:"column:total_revenue"`
	}
	err = s.db.Query(ctx, &yesterdayData, `
		SELECT SUM(total) AS total_revenue
		FROM pedidos_pedido
		WHERE DATE(fecha_pedido) = ? AND estado = 'COMPLETADO'`, yesterday)
	if err != nil {
		return nil, err
	}
	yesterdayRevenue := yesterdayData.TotalRevenue

	var topProduct struct {
		Nombre string
		Total  int
	}
	err = s.db.Query(ctx, &topProduct, `
		SELECT p.nombre AS nombre, SUM(dp.cantidad) AS total
		FROM pedidos_detallepedido dp
		JOIN pedidos_producto p ON dp.producto_id = p.id
		JOIN pedidos_pedido pe ON dp.pedido_id = pe.id
		WHERE DATE(pe.fecha_pedido) = ? AND pe.estado = 'COMPLETADO'
		GROUP BY p.nombre
		ORDER BY total DESC
		LIMIT 1`, today)
	if err != nil {
		return nil, err
	}

	var totalCustomers int
	err = s.db.Query(ctx, &totalCustomers, `
		SELECT COUNT(DISTINCT cliente_id) AS total_customers
		FROM pedidos_pedido
		WHERE fecha_pedido >= ? AND estado = 'COMPLETADO'`, monthAgo)
	if err != nil {
		return nil, err
	}

	todayRevenue := todayData.TotalRevenue.Float64

	growth := 0.0
	if yesterdayRevenue.Valid && yesterdayRevenue.Float64 > 0 {
		growth = round2((todayRevenue - yesterdayRevenue.Float64) / yesterdayRevenue.Float64 * 100)
	}

	return &models.SummaryMetrics{
		TotalRevenueToday:        todayRevenue,
		TotalOrdersToday:         todayData.TotalOrders,
		AverageTicketToday:       todayData.AverageTicket.Float64,
		TotalCustomers:           totalCustomers,
		TopProductToday:          topProduct.Nombre,
		RevenueGrowthVsYesterday: growth,
	}, nil
}

// appendSalesFilters agrega filtros sobre pedidos_pedido sin alias.
func appendSalesFilters(query string, args []interface{}, f *models.ReportFilters) (string, []interface{}) {
	if f == nil {
		return query, args
	}
	if f.CustomerID != nil {
		query += "\n\t\t\tAND cliente_id = ?"
		args = append(args, *f.CustomerID)
	}
	if f.MinAmount != nil {
		query += "\n\t\t\tAND total >= ?"
		args = append(args, *f.MinAmount)
	}
	if f.MaxAmount != nil {
		query += "\n\t\t\tAND total <= ?"
		args = append(args, *f.MaxAmount)
	}
	return query, args
}

// appendDetailFilters agrega filtros sobre las queries con detalle de pedido.
func appendDetailFilters(query string, args []interface{}, f *models.ReportFilters) (string, []interface{}) {
	if f == nil {
		return query, args
	}
	if f.CustomerID != nil {
		query += "\n\t\t\tAND pe.cliente_id = ?"
		args = append(args, *f.CustomerID)
	}
	if f.ProductID != nil {
		query += "\n\t\t\tAND dp.producto_id = ?"
		args = append(args, *f.ProductID)
	}
	if f.CategoryID != nil {
		query += "\n\t\t\tAND p.categoria_id = ?"
		args = append(args, *f.CategoryID)
	}
	return query, args
}

// appendCustomerFilters agrega filtros sobre la query de clientes.
func appendCustomerFilters(query string, args []interface{}, f *models.ReportFilters) (string, []interface{}) {
	if f == nil {
		return query, args
	}
	if f.CustomerID != nil {
		query += " AND p.cliente_id = ?"
		args = append(args, *f.CustomerID)
	}
	if f.Status != nil {
		query += " AND p.estado = ?"
		args = append(args, string(*f.Status))
	}
	if f.MinAmount != nil {
		query += " AND p.total >= ?"
		args = append(args, *f.MinAmount)
	}
	if f.MaxAmount != nil {
		query += " AND p.total <= ?"
		args = append(args, *f.MaxAmount)
	}
	return query, args
}

// Columnas ordenables por reporte. sort_by nunca se interpola sin pasar
// por estas listas.
var (
	productSortColumns = map[string]bool{
		"total_vendido": true,
		"revenue":       true,
		"nombre":        true,
	}
	customerSortColumns = map[string]bool{
		"total_gastado":    true,
		"cantidad_pedidos": true,
		"ticket_promedio":  true,
		"ultimo_pedido":    true,
	}
)

// orderBy arma la cláusula ORDER BY. Un sort_by fuera de la lista blanca
// cae a la columna por defecto.
func orderBy(p *models.PaginationParams, allowed map[string]bool, defaultColumn string) string {
	column := defaultColumn
	direction := "DESC"

	if p != nil {
		if p.SortBy != "" && allowed[p.SortBy] {
			column = p.SortBy
		}
		if p.Order == "asc" {
			direction = "ASC"
		}
	}

	return fmt.Sprintf("\n\t\tORDER BY %s %s", column, direction)
}

// appendLimit agrega LIMIT/OFFSET según la paginación, o el límite por defecto.
func appendLimit(query string, args []interface{}, p *models.PaginationParams, defaultLimit int) (string, []interface{}) {
	if p == nil {
		query += "\n\t\tLIMIT ?"
		return query, append(args, defaultLimit)
	}

	offset := (p.Page - 1) * p.PageSize
	query += "\n\t\tLIMIT ? OFFSET ?"
	return query, append(args, p.PageSize, offset)
}

func endOfDay(d time.Time) string {
	return time.Date(d.Year(), d.Month(), d.Day(), 23, 59, 59, 0, d.Location()).Format(dateTimeLayout)
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
