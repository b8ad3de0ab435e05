package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/table-order/services"
	"github.com/yeremiapane/table-order/utils"
)

type TableController struct {
	Sessions *services.SessionService
}

func NewTableController(sessions *services.SessionService) *TableController {
	return &TableController{Sessions: sessions}
}

// ValidateSession answers whether a table/token pair from a QR code is valid.
func (tc *TableController) ValidateSession(c *gin.Context) {
	table, _ := strconv.Atoi(c.Query("table"))
	valid := tc.Sessions.Validate(c.Request.Context(), table, c.Query("token"))

	utils.RespondJSON(c, http.StatusOK, "Session checked", gin.H{
		"table": table,
		"valid": valid,
	})
}

func (tc *TableController) GetAllTables(c *gin.Context) {
	tokens, err := tc.Sessions.ListTokens(c.Request.Context())
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of tables", tokens)
}

// IssueToken creates or rotates the token of a table. An empty body
// generates a random token.
func (tc *TableController) IssueToken(c *gin.Context) {
	table, err := strconv.Atoi(c.Param("table_num"))
	if err != nil || table < 1 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid table_num"))
		return
	}

	var req struct {
		Token string `json:"token" binding:"omitempty,max=64"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondError(c, http.StatusBadRequest, err)
			return
		}
	}

	token, err := tc.Sessions.IssueToken(c.Request.Context(), table, req.Token)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Table token issued", token)
}

func (tc *TableController) RevokeToken(c *gin.Context) {
	table, err := strconv.Atoi(c.Param("table_num"))
	if err != nil || table < 1 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid table_num"))
		return
	}

	if err := tc.Sessions.RevokeToken(c.Request.Context(), table); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table token revoked", nil)
}
