package dashboard

import (
	"context"

	"vidaview/internal/app/access"
	"vidaview/internal/app/dto"
	"vidaview/internal/app/queries"
	"vidaview/internal/app/uow"
	domainuser "vidaview/internal/domain/user"
)

const (
	revenueChartKey = "dashboard.revenue_chart"

	chartMonths = 6
	// chartStepDays walks back from today in 30-day steps; a month shorter
	// than the step can be skipped and a long one can repeat.
	chartStepDays = 30
)

// RevenueChartQuery covers the last six months: global for admins, the
// owner's apartments for owners.
type RevenueChartQuery struct {
	Actor access.Actor
}

func (q RevenueChartQuery) Key() string { return revenueChartKey }

type RevenueChartHandler struct {
	Reader
}

func (h *RevenueChartHandler) Handle(ctx context.Context, q RevenueChartQuery) (dto.RevenueChart, error) {
	if err := access.RequireRole(q.Actor, domainuser.RoleAdmin, domainuser.RoleOwner); err != nil {
		return dto.RevenueChart{}, err
	}
	var ownerID domainuser.ID
	if q.Actor.Role == domainuser.RoleOwner {
		ownerID = q.Actor.UserID
	}
	chart := dto.RevenueChart{Currency: h.currency(), Points: make([]dto.RevenuePoint, 0, chartMonths)}
	err := h.read(ctx, ownerID, "", func(_ context.Context, _ uow.UnitOfWork, s scope) error {
		now := h.now()
		for i := chartMonths - 1; i >= 0; i-- {
			month := now.AddDate(0, 0, -chartStepDays*i)
			chart.Points = append(chart.Points, dto.RevenuePoint{
				Month:   month.Format("January 2006"),
				Revenue: s.revenue(chart.Currency, month),
			})
		}
		return nil
	})
	if err != nil {
		return dto.RevenueChart{}, err
	}
	return chart, nil
}

var _ queries.Handler[RevenueChartQuery, dto.RevenueChart] = (*RevenueChartHandler)(nil)
