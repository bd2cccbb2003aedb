package v1

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

const csvContentType = "text/csv"

func (h *handlerImpl) HandleExportCSV(c *gin.Context) {
	bounds, err := parseRangeBounds(c)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to parse range bounds")
		abort(c, newBadRequestError(errInvalidDateBound.Error()))
		return
	}

	export, err := h.export.ExportCSV(c, bounds)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to export csv")
		abortServiceError(c, err)
		return
	}

	c.Header("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", export.Filename))
	c.Data(http.StatusOK, csvContentType, export.Data)
}
