package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/table-order/services"
	"github.com/yeremiapane/table-order/utils"
)

type OrderController struct {
	Orders  *services.OrderService
	Kitchen *services.KitchenService
	History *services.HistoryService
}

func NewOrderController(orders *services.OrderService, kitchen *services.KitchenService, history *services.HistoryService) *OrderController {
	return &OrderController{Orders: orders, Kitchen: kitchen, History: history}
}

// ConfirmOrder turns the table's cart into an order.
func (oc *OrderController) ConfirmOrder(c *gin.Context) {
	order, err := oc.Orders.ConfirmOrder(c.Request.Context(), tableNum(c))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Order confirmed", gin.H{
		"order":         order,
		"total_display": utils.FormatKyats(order.Total),
	})
}

func (oc *OrderController) GetTableOrders(c *gin.Context) {
	orders, err := oc.Orders.ListTableOrders(c.Request.Context(), tableNum(c))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of orders", orders)
}

func (oc *OrderController) GetKitchenOrders(c *gin.Context) {
	orders, err := oc.Kitchen.ListPending(c.Request.Context())
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Pending orders", orders)
}

func (oc *OrderController) MarkServed(c *gin.Context) {
	orderID, ok := uintParam(c, "order_id")
	if !ok {
		return
	}

	order, err := oc.Kitchen.MarkServed(c.Request.Context(), orderID)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order served", order)
}

func (oc *OrderController) GetHistory(c *gin.Context) {
	records, err := oc.History.ListHistory(c.Request.Context())
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order history", records)
}
