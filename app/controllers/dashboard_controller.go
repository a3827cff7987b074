package controllers

import (
	"github.com/shashiranjanraj/cafe/app/services"
	"github.com/shashiranjanraj/cafe/pkg/ctx"
)

type DashboardController struct {
	dashboard *services.DashboardService
}

func NewDashboardController(d *services.DashboardService) *DashboardController {
	return &DashboardController{dashboard: d}
}

func (ctl *DashboardController) GetSnapshot(c *ctx.Context) {
	snap, err := ctl.dashboard.GetSnapshot(c.Context())
	if err != nil {
		fail(c, err, "Unable to load the dashboard.")
		return
	}
	c.Success(snap)
}
