package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/table-order/services"
	"github.com/yeremiapane/table-order/utils"
)

type CartController struct {
	Carts *services.CartService
}

func NewCartController(carts *services.CartService) *CartController {
	return &CartController{Carts: carts}
}

func (cc *CartController) AddItem(c *gin.Context) {
	var req struct {
		ItemID uint `json:"item_id" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	item, err := cc.Carts.AddItem(c.Request.Context(), tableNum(c), req.ItemID, c.GetHeader("Idempotency-Key"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Item added to cart", item)
}

// UpdateQuantity sets the quantity of a cart row; a quantity below one
// removes it.
func (cc *CartController) UpdateQuantity(c *gin.Context) {
	cartID, ok := uintParam(c, "cart_id")
	if !ok {
		return
	}

	var req struct {
		Quantity *int `json:"quantity" binding:"required"`
		Version  *int `json:"version"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	item, err := cc.Carts.SetQuantity(c.Request.Context(), tableNum(c), cartID, *req.Quantity, req.Version)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	if item == nil {
		utils.InfoLogger.WithFields(logrus.Fields{"table": tableNum(c), "cart_id": cartID}).Info("Cart item removed")
		utils.RespondJSON(c, http.StatusOK, "Cart item removed", nil)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Cart item updated", item)
}

func (cc *CartController) GetCart(c *gin.Context) {
	view, err := cc.Carts.ListCart(c.Request.Context(), tableNum(c))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Cart", view)
}
