package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

//	@Summary		List the installments of an order
//	@Tags			orders
//	@Produce		json
//	@Security		accessToken
//	@Param			orderID	path		string	true	"Order ID"
//	@Success		200		{array}		db.Installment
//	@Router			/orders/{orderID}/installments [get]
func (server *Server) listOrderInstallments(c *gin.Context) {
	order, ok := server.getOrderForParty(c)
	if !ok {
		return
	}

	installments, err := server.store.ListInstallmentsByOrder(c, order.ID)
	if err != nil {
		log.Err(err).Str("order_id", order.ID).Msg("failed to list installments")
		c.JSON(http.StatusInternalServerError, errorResponse(ErrInternalServer))
		return
	}

	c.JSON(http.StatusOK, installments)
}
