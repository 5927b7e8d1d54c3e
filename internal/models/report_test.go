package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validRequest() *ReportRequest {
	return &ReportRequest{
		ReportType: ReportSales,
		Period:     PeriodWeek,
		Format:     FormatJSON,
	}
}

func TestReportRequestValidate(t *testing.T) {
	minusOne := -1.0
	ten := 10.0
	five := 5.0

	tests := []struct {
		name    string
		mutate  func(r *ReportRequest)
		wantErr string
	}{
		{
			name:   "request válido",
			mutate: func(r *ReportRequest) {},
		},
		{
			name:    "tipo de reporte desconocido",
			mutate:  func(r *ReportRequest) { r.ReportType = "inventario" },
			wantErr: "tipo de reporte no soportado",
		},
		{
			name:    "periodo desconocido",
			mutate:  func(r *ReportRequest) { r.Period = "quincena" },
			wantErr: "periodo inválido",
		},
		{
			name:    "personalizado sin rango",
			mutate:  func(r *ReportRequest) { r.Period = PeriodCustom },
			wantErr: "date_range es requerido",
		},
		{
			name: "personalizado con rango invertido",
			mutate: func(r *ReportRequest) {
				r.Period = PeriodCustom
				r.DateRange = &DateRangeFilter{
					StartDate: time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC),
					EndDate:   time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC),
				}
			},
			wantErr: "end_date",
		},
		{
			name: "personalizado con rango válido",
			mutate: func(r *ReportRequest) {
				r.Period = PeriodCustom
				r.DateRange = &DateRangeFilter{
					StartDate: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
					EndDate:   time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC),
				}
			},
		},
		{
			name: "monto mínimo negativo",
			mutate: func(r *ReportRequest) {
				r.Filters = &ReportFilters{MinAmount: &minusOne}
			},
			wantErr: "min_amount",
		},
		{
			name: "max menor que min",
			mutate: func(r *ReportRequest) {
				r.Filters = &ReportFilters{MinAmount: &ten, MaxAmount: &five}
			},
			wantErr: "max_amount",
		},
		{
			name: "página cero",
			mutate: func(r *ReportRequest) {
				r.Pagination = &PaginationParams{Page: 0, PageSize: 50, Order: "desc"}
			},
			wantErr: "page",
		},
		{
			name: "page_size fuera de rango",
			mutate: func(r *ReportRequest) {
				r.Pagination = &PaginationParams{Page: 1, PageSize: 1000, Order: "desc"}
			},
			wantErr: "page_size",
		},
		{
			name: "orden inválido",
			mutate: func(r *ReportRequest) {
				r.Pagination = &PaginationParams{Page: 1, PageSize: 50, Order: "random"}
			},
			wantErr: "order",
		},
		{
			name: "paginación válida",
			mutate: func(r *ReportRequest) {
				r.Pagination = &PaginationParams{Page: 2, PageSize: 25, Order: "asc"}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(req)

			err := req.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}
