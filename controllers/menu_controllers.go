package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/table-order/services"
	"github.com/yeremiapane/table-order/utils"
)

type MenuController struct {
	Menus *services.MenuService
}

func NewMenuController(menus *services.MenuService) *MenuController {
	return &MenuController{Menus: menus}
}

func (mc *MenuController) GetAllMenus(c *gin.Context) {
	menus, err := mc.Menus.ListMenu(c.Request.Context())
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of menus", menus)
}

// CreateMenu expects a multipart form with name, price and image.
func (mc *MenuController) CreateMenu(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize+(1<<20))

	price, err := strconv.ParseInt(c.PostForm("price"), 10, 64)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid price"))
		return
	}

	upload, file, ok, err := formUpload(c, "image")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if !ok {
		utils.RespondError(c, http.StatusBadRequest, errors.New("image is required"))
		return
	}
	defer file.Close()

	item, err := mc.Menus.CreateMenuItem(c.Request.Context(), services.MenuInput{
		Name:  c.PostForm("name"),
		Price: price,
		Image: upload,
	})
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Menu created", item)
}

// UpdateMenu changes only the fields present in the form.
func (mc *MenuController) UpdateMenu(c *gin.Context) {
	id, ok := uintParam(c, "menu_id")
	if !ok {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize+(1<<20))

	var update services.MenuUpdate
	if name, exists := c.GetPostForm("name"); exists {
		name = strings.TrimSpace(name)
		update.Name = &name
	}
	if raw, exists := c.GetPostForm("price"); exists {
		price, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, errors.New("invalid price"))
			return
		}
		update.Price = &price
	}

	upload, file, hasFile, err := formUpload(c, "image")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if hasFile {
		defer file.Close()
		update.Image = upload
	}

	item, err := mc.Menus.UpdateMenuItem(c.Request.Context(), id, update)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu updated", item)
}

func (mc *MenuController) DeleteMenu(c *gin.Context) {
	id, ok := uintParam(c, "menu_id")
	if !ok {
		return
	}

	if err := mc.Menus.DeleteMenuItem(c.Request.Context(), id); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu deleted", nil)
}
