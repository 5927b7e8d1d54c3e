package models

import (
	"fmt"
	"time"
)

// Periodos disponibles para reportes.
type ReportPeriod string

const (
	PeriodDay     ReportPeriod = "dia"
	PeriodWeek    ReportPeriod = "semana"
	PeriodMonth   ReportPeriod = "mes"
	PeriodQuarter ReportPeriod = "trimestre"
	PeriodYear    ReportPeriod = "año"
	PeriodCustom  ReportPeriod = "personalizado"
)

// Formatos de exportación de reportes.
type ReportFormat string

const (
	FormatJSON  ReportFormat = "json"
	FormatPDF   ReportFormat = "pdf"
	FormatExcel ReportFormat = "excel"
	FormatCSV   ReportFormat = "csv"
)

// Tipos de reportes disponibles.
type ReportType string

const (
	ReportSales             ReportType = "ventas"
	ReportProducts          ReportType = "productos"
	ReportCustomers         ReportType = "clientes"
	ReportRevenueByCategory ReportType = "revenue_categoria"
	ReportHourlySales       ReportType = "ventas_horarias"
	ReportSummary           ReportType = "resumen"
)

// Estados de pedidos en el esquema de HubPedidos.
type OrderStatus string

const (
	OrderPending    OrderStatus = "PENDIENTE"
	OrderConfirmed  OrderStatus = "CONFIRMADO"
	OrderInProgress OrderStatus = "EN_PROCESO"
	OrderCompleted  OrderStatus = "COMPLETADO"
	OrderCancelled  OrderStatus = "CANCELADO"
)

// DateRangeFilter es un rango de fechas explícito para periodo 'personalizado'.
type DateRangeFilter struct {
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

// ReportFilters son filtros opcionales aplicados a las queries de reportes.
type ReportFilters struct {
	CustomerID *int         `json:"customer_id,omitempty"`
	ProductID  *int         `json:"product_id,omitempty"`
	CategoryID *int         `json:"category_id,omitempty"`
	Status     *OrderStatus `json:"status,omitempty"`
	MinAmount  *float64     `json:"min_amount,omitempty"`
	MaxAmount  *float64     `json:"max_amount,omitempty"`
}

// PaginationParams controla paginación y ordenamiento.
type PaginationParams struct {
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	SortBy   string `json:"sort_by,omitempty"`
	Order    string `json:"order"`
}

// ReportRequest describe un reporte a generar.
type ReportRequest struct {
	ReportType    ReportType        `json:"report_type"`
	Period        ReportPeriod      `json:"period"`
	DateRange     *DateRangeFilter  `json:"date_range,omitempty"`
	Filters       *ReportFilters    `json:"filters,omitempty"`
	Pagination    *PaginationParams `json:"pagination,omitempty"`
	Format        ReportFormat      `json:"format"`
	IncludeCharts bool              `json:"include_charts"`
}

var validReportTypes = map[ReportType]bool{
	ReportSales:             true,
	ReportProducts:          true,
	ReportCustomers:         true,
	ReportRevenueByCategory: true,
	ReportHourlySales:       true,
	ReportSummary:           true,
}

var validPeriods = map[ReportPeriod]bool{
	PeriodDay:     true,
	PeriodWeek:    true,
	PeriodMonth:   true,
	PeriodQuarter: true,
	PeriodYear:    true,
	PeriodCustom:  true,
}

// Validate verifica los invariantes del request.
func (r *ReportRequest) Validate() error {
	if !validReportTypes[r.ReportType] {
		return fmt.Errorf("tipo de reporte no soportado: %s", r.ReportType)
	}

	if !validPeriods[r.Period] {
		return fmt.Errorf("periodo inválido: %s", r.Period)
	}

	if r.Period == PeriodCustom {
		if r.DateRange == nil {
			return fmt.Errorf("date_range es requerido para periodo 'personalizado'")
		}
		if r.DateRange.EndDate.Before(r.DateRange.StartDate) {
			return fmt.Errorf("end_date debe ser mayor o igual a start_date")
		}
	}

	if r.Filters != nil {
		if r.Filters.MinAmount != nil && *r.Filters.MinAmount < 0 {
			return fmt.Errorf("min_amount debe ser mayor o igual a 0")
		}
		if r.Filters.MaxAmount != nil {
			if *r.Filters.MaxAmount < 0 {
				return fmt.Errorf("max_amount debe ser mayor o igual a 0")
			}
			if r.Filters.MinAmount != nil && *r.Filters.MaxAmount < *r.Filters.MinAmount {
				return fmt.Errorf("max_amount debe ser mayor a min_amount")
			}
		}
	}

	if r.Pagination != nil {
		if r.Pagination.Page < 1 {
			return fmt.Errorf("page debe ser mayor o igual a 1")
		}
		if r.Pagination.PageSize < 1 || r.Pagination.PageSize > 500 {
			return fmt.Errorf("page_size debe estar entre 1 y 500")
		}
		if r.Pagination.Order != "" && r.Pagination.Order != "asc" && r.Pagination.Order != "desc" {
			return fmt.Errorf("order debe ser 'asc' o 'desc'")
		}
	}

	return nil
}

// ===== Reporte de ventas =====

type SalesReportItem struct {
	Periodo        string  `json:"periodo"`
	TotalVentas    float64 `json:"total_ventas"`
	NumeroPedidos  int     `json:"numero_pedidos"`
	TicketPromedio float64 `json:"ticket_promedio"`
}

type SalesReport struct {
	Data          []SalesReportItem `json:"data"`
	TotalRevenue  float64           `json:"total_revenue"`
	TotalOrders   int               `json:"total_orders"`
	AverageTicket float64           `json:"average_ticket"`
}

// ===== Reporte de productos =====

type ProductReportItem struct {
	ProductoID       int     `json:"producto_id"`
	Nombre           string  `json:"nombre"`
	Categoria        string  `json:"categoria,omitempty"`
	TotalVendido     int     `json:"total_vendido"`
	Revenue          float64 `json:"revenue"`
	PorcentajeVentas float64 `json:"porcentaje_ventas"`
}

type ProductsReport struct {
	Data           []ProductReportItem `json:"data"`
	TotalProducts  int                 `json:"total_products"`
	TotalUnitsSold int                 `json:"total_units_sold"`
}

// ===== Reporte de clientes =====

type CustomerReportItem struct {
	ClienteID       int     `json:"cliente_id"`
	Username        string  `json:"username"`
	NombreCompleto  string  `json:"nombre_completo,omitempty"`
	CantidadPedidos int     `json:"cantidad_pedidos"`
	TotalGastado    float64 `json:"total_gastado"`
	TicketPromedio  float64 `json:"ticket_promedio"`
	UltimoPedido    string  `json:"ultimo_pedido,omitempty"`
}

type CustomersReport struct {
	Data           []CustomerReportItem `json:"data"`
	TotalCustomers int                  `json:"total_customers"`
}

// ===== Revenue por categoría =====

type RevenueByCategoryItem struct {
	Categoria        string  `json:"categoria"`
	Revenue          float64 `json:"revenue"`
	Porcentaje       float64 `json:"porcentaje"`
	UnidadesVendidas int     `json:"unidades_vendidas"`
}

type RevenueByCategoryReport struct {
	Data         []RevenueByCategoryItem `json:"data"`
	TotalRevenue float64                 `json:"total_revenue"`
}

// ===== Ventas por hora =====

type HourlySalesItem struct {
	Hora          int     `json:"hora"`
	TotalVentas   float64 `json:"total_ventas"`
	NumeroPedidos int     `json:"numero_pedidos"`
}

type HourlySalesReport struct {
	Data        []HourlySalesItem `json:"data"`
	PeakHour    int               `json:"peak_hour"`
	PeakRevenue float64           `json:"peak_revenue"`
}

// ===== Dashboard resumen =====

type SummaryMetrics struct {
	TotalRevenueToday        float64 `json:"total_revenue_today"`
	TotalOrdersToday         int     `json:"total_orders_today"`
	AverageTicketToday       float64 `json:"average_ticket_today"`
	TotalCustomers           int     `json:"total_customers"`
	TopProductToday          string  `json:"top_product_today,omitempty"`
	RevenueGrowthVsYesterday float64 `json:"revenue_growth_vs_yesterday"`
}

// ===== Respuestas genéricas =====

type PaginationMetadata struct {
	Page        int  `json:"page"`
	PageSize    int  `json:"page_size"`
	TotalItems  int  `json:"total_items"`
	TotalPages  int  `json:"total_pages"`
	HasNext     bool `json:"has_next"`
	HasPrevious bool `json:"has_previous"`
}

// ReportResult es el payload común de todos los reportes generados.
type ReportResult struct {
	ReportType      ReportType          `json:"report_type"`
	Period          ReportPeriod        `json:"period,omitempty"`
	GeneratedAt     time.Time           `json:"generated_at"`
	Data            interface{}         `json:"data"`
	Pagination      *PaginationMetadata `json:"pagination,omitempty"`
	Cached          bool                `json:"cached"`
	ExecutionTimeMS float64             `json:"execution_time_ms,omitempty"`
}
