package controllers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/table-order/services"
	"github.com/yeremiapane/table-order/utils"
)

const maxUploadSize = 10 << 20

// tableNum returns the table stored by TableSessionMiddleware.
func tableNum(c *gin.Context) int {
	return c.GetInt("table_num")
}

func uintParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid "+name))
		return 0, false
	}
	return uint(id), true
}

// formUpload opens the named multipart file. ok is false when the field is
// absent; the caller must close the returned file.
func formUpload(c *gin.Context, field string) (*services.Upload, multipart.File, bool, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil, false, nil
		}
		return nil, nil, false, err
	}
	if fh.Size > maxUploadSize {
		return nil, nil, false, errors.New("file too large")
	}
	f, err := fh.Open()
	if err != nil {
		return nil, nil, false, err
	}
	return &services.Upload{Name: fh.Filename, Body: f}, f, true, nil
}
