package api

import (
	"errors"
	"fmt"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/katatrina/sheep-market-BE/internal/db"
	"github.com/katatrina/sheep-market-BE/internal/event"
	"github.com/katatrina/sheep-market-BE/internal/mailer"
	"github.com/katatrina/sheep-market-BE/internal/pricing"
	"github.com/katatrina/sheep-market-BE/internal/util"
	"github.com/katatrina/sheep-market-BE/internal/validator"
	"github.com/rs/zerolog/log"
)

var (
	ErrNationalIDRequired  = errors.New("national_id is required for foreign sheep")
	ErrSalaryRequired      = errors.New("monthly_salary is required for foreign sheep")
	ErrSalaryAboveCap      = errors.New("monthly salary exceeds the cap for foreign sheep")
	ErrInstallmentsOutside = errors.New("installment count is outside the allowed range")
)

type createOrderRequest struct {
	SheepID          string `json:"sheep_id" binding:"required"`
	PaymentMethod    string `json:"payment_method" binding:"required"`
	InstallmentCount int64  `json:"installment_count"`
	NationalID       string `json:"national_id"`
	MonthlySalary    int64  `json:"monthly_salary"`
	DeliveryAddress  string `json:"delivery_address" binding:"required"`
	PhoneNumber      string `json:"phone_number" binding:"required"`
	Note             string `json:"note"`
}

func validateCreateOrderRequest(req *createOrderRequest) (violations []*FieldViolation) {
	if err := db.IsValidPaymentMethod(req.PaymentMethod); err != nil {
		violations = append(violations, fieldViolation("payment_method", err))
	}

	if err := validator.ValidateString(req.DeliveryAddress, 5, 255); err != nil {
		violations = append(violations, fieldViolation("delivery_address", err))
	}

	req.PhoneNumber = validator.NormalizePhoneNumber(req.PhoneNumber)
	if err := validator.ValidatePhoneNumber(req.PhoneNumber); err != nil {
		violations = append(violations, fieldViolation("phone_number", err))
	}

	if err := validator.ValidateString(req.Note, 0, 500); err != nil {
		violations = append(violations, fieldViolation("note", err))
	}

	if req.MonthlySalary < 0 {
		violations = append(violations, fieldViolation("monthly_salary", errors.New("must not be negative")))
	}

	return violations
}

// validateForeignOrder applies the extra rules for price-regulated imported sheep.
func validateForeignOrder(req *createOrderRequest, settings db.Settings) (violations []*FieldViolation) {
	if req.NationalID == "" {
		violations = append(violations, fieldViolation("national_id", ErrNationalIDRequired))
	} else if err := validator.ValidateNationalID(util.NormalizeNationalID(req.NationalID)); err != nil {
		violations = append(violations, fieldViolation("national_id", err))
	}

	switch {
	case req.MonthlySalary <= 0:
		violations = append(violations, fieldViolation("monthly_salary", ErrSalaryRequired))
	case settings.ForeignSheepMaxSalary > 0 && req.MonthlySalary > settings.ForeignSheepMaxSalary:
		violations = append(violations, fieldViolation("monthly_salary",
			fmt.Errorf("%w (%s)", ErrSalaryAboveCap, util.FormatDZD(settings.ForeignSheepMaxSalary))))
	}

	return violations
}

//	@Summary		Place an order
//	@Description	Reserves the sheep. Foreign sheep require a national ID and a monthly salary, limited to one order per national ID and year.
//	@Tags			orders
//	@Accept			json
//	@Produce		json
//	@Security		accessToken
//	@Param			request	body		createOrderRequest	true	"Order"
//	@Success		201		{object}	db.CreateOrderTxResult
//	@Failure		403		{object}	map[string]string	"Foreign orders are closed or the sheep is your own"
//	@Failure		409		{object}	map[string]string	"Sheep unavailable or national ID already used this year"
//	@Failure		422		{object}	FailedValidationResponse
//	@Router			/orders [post]
func (server *Server) createOrder(c *gin.Context) {
	buyer := currentUser(c)
	req := new(createOrderRequest)

	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err))
		return
	}

	violations := validateCreateOrderRequest(req)
	if violations != nil {
		c.JSON(http.StatusUnprocessableEntity, failedValidationError(violations))
		return
	}

	sheep, ok := server.getSheepOr404(c, req.SheepID)
	if !ok {
		return
	}

	if sheep.SellerID == buyer.ID {
		c.JSON(http.StatusForbidden, errorResponse(ErrOwnSheep))
		return
	}

	if sheep.Status != db.SheepStatusApproved {
		c.JSON(http.StatusConflict, errorResponse(db.ErrSheepUnavailable))
		return
	}

	settings, err := server.store.GetSettings(c)
	if err != nil {
		log.Err(err).Msg("failed to get settings")
		c.JSON(http.StatusInternalServerError, errorResponse(ErrInternalServer))
		return
	}

	now := server.now()
	order := db.Order{
		Code:     util.GenerateOrderCode(),
		BuyerID:  buyer.ID,
		SellerID: sheep.SellerID,
		SheepID:  sheep.ID,
		SheepSnapshot: db.SheepSnapshot{
			Title:  sheep.Title,
			Origin: sheep.Origin,
			Price:  sheep.Price,
			Image:  sheep.PrimaryImage(),
			Slug:   sheep.Slug,
		},
		SheepOrigin:     sheep.Origin,
		PaymentMethod:   db.PaymentMethod(req.PaymentMethod),
		DeliveryAddress: req.DeliveryAddress,
		PhoneNumber:     req.PhoneNumber,
		Note:            req.Note,
	}

	if sheep.Origin == db.SheepOriginForeign {
		if !settings.ForeignOrdersOpen {
			c.JSON(http.StatusForbidden, errorResponse(ErrForeignOrdersClosed))
			return
		}

		violations = validateForeignOrder(req, settings)
		if violations != nil {
			c.JSON(http.StatusUnprocessableEntity, failedValidationError(violations))
			return
		}

		order.NationalIDHash = util.HashNationalID(server.config.NationalIDSecret, req.NationalID)
		order.MonthlySalary = req.MonthlySalary

		duplicated, err := server.store.HasForeignOrderInYear(c, order.NationalIDHash, now.Year())
		if err != nil {
			log.Err(err).Msg("failed to check foreign orders of national ID")
			c.JSON(http.StatusInternalServerError, errorResponse(ErrInternalServer))
			return
		}
		if duplicated {
			c.JSON(http.StatusConflict, errorResponse(db.ErrDuplicateNationalID))
			return
		}
	}

	quote, err := pricing.QuoteOrder(sheep.Price, sheep.Origin == db.SheepOriginLocal, buyer.HasActiveVIP(now), settings.VIPDiscountPercent)
	if err != nil {
		log.Err(err).Str("sheep_id", sheep.ID).Msg("failed to quote order")
		c.JSON(http.StatusInternalServerError, errorResponse(ErrInternalServer))
		return
	}
	order.OriginalPrice = quote.OriginalPrice
	order.DiscountAmount = quote.DiscountAmount
	order.TotalAmount = quote.TotalAmount
	order.VIPApplied = quote.VIPApplied

	var installments []db.Installment
	if order.PaymentMethod == db.PaymentMethodInstallments {
		if req.InstallmentCount < 2 || req.InstallmentCount > settings.MaxInstallments {
			c.JSON(http.StatusUnprocessableEntity, failedValidationError([]*FieldViolation{
				fieldViolation("installment_count", fmt.Errorf("%w: must be from 2 to %d", ErrInstallmentsOutside, settings.MaxInstallments)),
			}))
			return
		}

		// The first installment falls due one month after the order.
		schedule, err := pricing.SplitInstallments(order.TotalAmount, int(req.InstallmentCount), now.AddDate(0, 1, 0))
		if err != nil {
			log.Err(err).Msg("failed to split installments")
			c.JSON(http.StatusInternalServerError, errorResponse(ErrInternalServer))
			return
		}

		order.InstallmentCount = req.InstallmentCount
		for _, entry := range schedule {
			installments = append(installments, db.Installment{
				Sequence: entry.Sequence,
				Amount:   entry.Amount,
				DueDate:  entry.DueDate,
			})
		}
	}

	result, err := server.store.CreateOrderTx(c, db.CreateOrderTxParams{
		Order:        order,
		Installments: installments,
	})
	if err != nil {
		switch {
		case errors.Is(err, db.ErrSheepUnavailable), errors.Is(err, db.ErrDuplicateNationalID):
			c.JSON(http.StatusConflict, errorResponse(err))
		case errors.Is(err, db.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, errorResponse(ErrSheepNotFound))
		default:
			log.Err(err).Str("sheep_id", sheep.ID).Msg("failed to create order")
			c.JSON(http.StatusInternalServerError, errorResponse(ErrInternalServer))
		}
		return
	}

	server.sendEmail(c, buyer.Email, mailer.TemplateOrderConfirmation, map[string]any{
		"full_name":       buyer.FullName,
		"order_code":      result.Order.Code,
		"sheep_title":     sheep.Title,
		"original_price":  result.Order.OriginalPrice,
		"discount_amount": result.Order.DiscountAmount,
		"total_amount":    result.Order.TotalAmount,
		"payment_method":  string(result.Order.PaymentMethod),
	})
	server.notify(c, sheep.SellerID, db.NotificationTypeOrder, result.Order.ID,
		"New order",
		fmt.Sprintf("%s ordered \"%s\" for %s.", buyer.FullName, util.TruncateContent(sheep.Title, 60), util.FormatDZD(result.Order.TotalAmount)))

	c.JSON(http.StatusCreated, result)
}

//	@Summary		List own orders
//	@Tags			orders
//	@Produce		json
//	@Security		accessToken
//	@Param			status	query		string	false	"Status filter"
//	@Success		200		{array}		db.Order
//	@Router			/orders [get]
func (server *Server) listBuyerOrders(c *gin.Context) {
	server.listOrders(c, db.ListOrdersParams{BuyerID: currentUser(c).ID})
}

//	@Summary		List orders received as a seller
//	@Tags			seller
//	@Produce		json
//	@Security		accessToken
//	@Param			status	query		string	false	"Status filter"
//	@Success		200		{array}		db.Order
//	@Router			/seller/orders [get]
func (server *Server) listSellerOrders(c *gin.Context) {
	server.listOrders(c, db.ListOrdersParams{SellerID: currentUser(c).ID})
}

//	@Summary		List all orders
//	@Tags			admin
//	@Produce		json
//	@Security		accessToken
//	@Param			status	query		string	false	"Status filter"
//	@Success		200		{array}		db.Order
//	@Router			/admin/orders [get]
func (server *Server) listOrdersForAdmin(c *gin.Context) {
	server.listOrders(c, db.ListOrdersParams{})
}

func (server *Server) listOrders(c *gin.Context, arg db.ListOrdersParams) {
	arg.Status = c.Query("status")
	if arg.Status != "" {
		if err := db.IsValidOrderStatus(arg.Status); err != nil {
			c.JSON(http.StatusBadRequest, errorResponse(err))
			return
		}
	}
	arg.Limit = queryLimit(c)

	orders, err := server.store.ListOrders(c, arg)
	if err != nil {
		log.Err(err).Msg("failed to list orders")
		c.JSON(http.StatusInternalServerError, errorResponse(ErrInternalServer))
		return
	}

	c.JSON(http.StatusOK, orders)
}

// getOrderForParty loads an order visible to the current user: its buyer, its seller or an admin.
func (server *Server) getOrderForParty(c *gin.Context) (db.Order, bool) {
	user := currentUser(c)
	orderID := c.Param("orderID")

	order, err := server.store.GetOrderByID(c, orderID)
	if err != nil {
		if errors.Is(err, db.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, errorResponse(ErrOrderNotFound))
			return db.Order{}, false
		}

		log.Err(err).Str("order_id", orderID).Msg("failed to get order")
		c.JSON(http.StatusInternalServerError, errorResponse(ErrInternalServer))
		return db.Order{}, false
	}

	if !order.IsParty(user.ID) && user.Role != db.UserRoleAdmin {
		c.JSON(http.StatusForbidden, errorResponse(ErrNotOrderParty))
		return db.Order{}, false
	}

	return order, true
}

//	@Summary		Get an order
//	@Tags			orders
//	@Produce		json
//	@Security		accessToken
//	@Param			orderID	path		string	true	"Order ID"
//	@Success		200		{object}	db.Order
//	@Failure		403		{object}	map[string]string
//	@Failure		404		{object}	map[string]string
//	@Router			/orders/{orderID} [get]
func (server *Server) getOrder(c *gin.Context) {
	order, ok := server.getOrderForParty(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, order)
}

type orderReasonRequest struct {
	Reason string `json:"reason"`
}

//	@Summary		Cancel an order
//	@Description	Buyers cancel pending orders. Sellers and admins may also cancel confirmed ones.
//	@Tags			orders
//	@Accept			json
//	@Produce		json
//	@Security		accessToken
//	@Param			orderID	path		string				true	"Order ID"
//	@Param			request	body		orderReasonRequest	false	"Reason"
//	@Success		200		{object}	db.Order
//	@Failure		409		{object}	map[string]string	"Invalid status transition"
//	@Router			/orders/{orderID}/cancel [patch]
func (server *Server) cancelOrder(c *gin.Context) {
	server.changeOrderStatus(c, db.OrderStatusCancelled)
}

//	@Summary		Confirm an order
//	@Tags			orders
//	@Produce		json
//	@Security		accessToken
//	@Param			orderID	path		string	true	"Order ID"
//	@Success		200		{object}	db.Order
//	@Failure		409		{object}	map[string]string	"Invalid status transition"
//	@Router			/orders/{orderID}/confirm [patch]
func (server *Server) confirmOrder(c *gin.Context) {
	server.changeOrderStatus(c, db.OrderStatusConfirmed)
}

//	@Summary		Reject an order
//	@Tags			orders
//	@Accept			json
//	@Produce		json
//	@Security		accessToken
//	@Param			orderID	path		string				true	"Order ID"
//	@Param			request	body		orderReasonRequest	false	"Reason"
//	@Success		200		{object}	db.Order
//	@Failure		409		{object}	map[string]string	"Invalid status transition"
//	@Router			/orders/{orderID}/reject [patch]
func (server *Server) rejectOrder(c *gin.Context) {
	server.changeOrderStatus(c, db.OrderStatusRejected)
}

//	@Summary		Mark an order delivered
//	@Tags			orders
//	@Produce		json
//	@Security		accessToken
//	@Param			orderID	path		string	true	"Order ID"
//	@Success		200		{object}	db.Order
//	@Failure		409		{object}	map[string]string	"Invalid status transition"
//	@Router			/orders/{orderID}/deliver [patch]
func (server *Server) deliverOrder(c *gin.Context) {
	server.changeOrderStatus(c, db.OrderStatusDelivered)
}

func (server *Server) changeOrderStatus(c *gin.Context, status db.OrderStatus) {
	user := currentUser(c)

	req := new(orderReasonRequest)
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(req); err != nil {
			c.JSON(http.StatusBadRequest, errorResponse(err))
			return
		}
	}
	if err := validator.ValidateString(req.Reason, 0, 500); err != nil {
		c.JSON(http.StatusUnprocessableEntity, failedValidationError([]*FieldViolation{fieldViolation("reason", err)}))
		return
	}

	order, ok := server.getOrderForParty(c)
	if !ok {
		return
	}

	arg := db.UpdateOrderStatusTxParams{
		OrderID: order.ID,
		Status:  status,
		Reason:  req.Reason,
	}

	isManager := user.ID == order.SellerID || user.Role == db.UserRoleAdmin
	switch {
	case isManager:
	case user.ID == order.BuyerID && status == db.OrderStatusCancelled:
		arg.AllowedFrom = []db.OrderStatus{db.OrderStatusPending}
	default:
		c.JSON(http.StatusForbidden, errorResponse(ErrInsufficientPermission))
		return
	}

	updated, err := server.store.UpdateOrderStatusTx(c, arg)
	if err != nil {
		switch {
		case errors.Is(err, db.ErrInvalidStatusTransition):
			c.JSON(http.StatusConflict, errorResponse(err))
		case errors.Is(err, db.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, errorResponse(ErrOrderNotFound))
		default:
			log.Err(err).Str("order_id", order.ID).Msg("failed to update order status")
			c.JSON(http.StatusInternalServerError, errorResponse(ErrInternalServer))
		}
		return
	}

	server.announceOrderStatus(c, user, updated)

	c.JSON(http.StatusOK, updated)
}

// announceOrderStatus emails the buyer and notifies whichever party did not make the change.
func (server *Server) announceOrderStatus(c *gin.Context, actor *db.User, order db.Order) {
	message := fmt.Sprintf("Order %s is now %s.", order.Code, order.Status)
	if order.CancelReason != "" {
		message = fmt.Sprintf("%s Reason: %s", message, order.CancelReason)
	}

	recipients := []string{order.BuyerID, order.SellerID}
	recipients = slices.DeleteFunc(recipients, func(id string) bool { return id == actor.ID })
	for _, recipientID := range recipients {
		server.notify(c, recipientID, db.NotificationTypeOrder, order.ID, "Order updated", message)
	}
	for _, partyID := range []string{order.BuyerID, order.SellerID} {
		server.eventSender.Broadcast(event.Event{
			Topic: event.UserTopic(partyID),
			Type:  event.EventTypeOrderUpdated,
			Data:  order,
		})
	}

	buyer, err := server.store.GetUserByID(c, order.BuyerID)
	if err != nil {
		log.Err(err).Str("order_id", order.ID).Msg("failed to get buyer for status email")
		return
	}

	server.sendEmail(c, buyer.Email, mailer.TemplateOrderStatus, map[string]any{
		"full_name":  buyer.FullName,
		"order_code": order.Code,
		"status":     string(order.Status),
		"reason":     order.CancelReason,
	})
}
