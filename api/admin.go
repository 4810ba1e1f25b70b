package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/katatrina/sheep-market-BE/internal/db"
	"github.com/katatrina/sheep-market-BE/internal/util"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

type adminDashboard struct {
	TotalUsers            int64 `json:"total_users"`
	TotalSellers          int64 `json:"total_sellers"`
	ApprovedSheep         int64 `json:"approved_sheep"`
	PendingListings       int64 `json:"pending_listings"`
	OrdersThisMonth       int64 `json:"orders_this_month"`
	OrderRevenueThisMonth int64 `json:"order_revenue_this_month"`
	VIPRevenueThisMonth   int64 `json:"vip_revenue_this_month"`
	PendingReceipts       int64 `json:"pending_receipts"`
	PendingVIPRequests    int64 `json:"pending_vip_requests"`
	PendingAdRequests     int64 `json:"pending_ad_requests"`
}

//	@Summary		Get admin dashboard statistics
//	@Description	Platform counters and the revenue of the current month
//	@Tags			admin
//	@Produce		json
//	@Security		accessToken
//	@Success		200	{object}	adminDashboard
//	@Router			/admin/dashboard [get]
func (server *Server) getAdminDashboard(c *gin.Context) {
	var resp adminDashboard

	monthStart := util.StartOfMonth(server.now())

	g, ctx := errgroup.WithContext(c.Request.Context())

	stat := func(target *int64, name string, fetch func(ctx context.Context) (int64, error)) {
		g.Go(func() error {
			value, err := fetch(ctx)
			if err != nil {
				return fmt.Errorf("failed to get %s: %w", name, err)
			}
			*target = value
			return nil
		})
	}

	stat(&resp.TotalUsers, "total users", func(ctx context.Context) (int64, error) {
		return server.store.CountUsers(ctx, "")
	})
	stat(&resp.TotalSellers, "total sellers", func(ctx context.Context) (int64, error) {
		return server.store.CountUsers(ctx, string(db.UserRoleSeller))
	})
	stat(&resp.ApprovedSheep, "approved sheep", func(ctx context.Context) (int64, error) {
		return server.store.CountSheep(ctx, string(db.SheepStatusApproved))
	})
	stat(&resp.PendingListings, "pending listings", func(ctx context.Context) (int64, error) {
		return server.store.CountSheep(ctx, string(db.SheepStatusPending))
	})
	stat(&resp.OrdersThisMonth, "orders this month", func(ctx context.Context) (int64, error) {
		return server.store.CountOrdersSince(ctx, monthStart)
	})
	stat(&resp.OrderRevenueThisMonth, "order revenue this month", func(ctx context.Context) (int64, error) {
		return server.store.SumPaymentsSince(ctx, db.PaymentTypeOrder, monthStart)
	})
	stat(&resp.VIPRevenueThisMonth, "VIP revenue this month", func(ctx context.Context) (int64, error) {
		return server.store.SumPaymentsSince(ctx, db.PaymentTypeVIP, monthStart)
	})
	stat(&resp.PendingReceipts, "pending receipts", func(ctx context.Context) (int64, error) {
		return server.store.CountReceipts(ctx, string(db.ReceiptStatusPending))
	})
	stat(&resp.PendingVIPRequests, "pending VIP requests", func(ctx context.Context) (int64, error) {
		return server.store.CountPayments(ctx, db.PaymentTypeVIP, string(db.PaymentRecordStatusPending))
	})
	stat(&resp.PendingAdRequests, "pending ad requests", func(ctx context.Context) (int64, error) {
		return server.store.CountAdRequests(ctx, string(db.AdRequestStatusPending))
	})

	if err := g.Wait(); err != nil {
		log.Err(err).Msg("failed to build admin dashboard")
		c.JSON(http.StatusInternalServerError, errorResponse(ErrInternalServer))
		return
	}

	c.JSON(http.StatusOK, resp)
}
