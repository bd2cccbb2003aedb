package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/gavinbarnard/timetracker/internal/services"
	"github.com/gavinbarnard/timetracker/internal/storage"
)

type Handler interface {
	HandleCreateTask(c *gin.Context)
	HandleGetTask(c *gin.Context)
	HandleListTasks(c *gin.Context)
	HandleUpdateTask(c *gin.Context)
	HandleDeleteTask(c *gin.Context)

	HandleExportCSV(c *gin.Context)
	HandleHealth(c *gin.Context)
}

type handlerImpl struct {
	logger zerolog.Logger
	store  storage.Store
	tasks  services.TaskService
	export services.ExportService
}

func New(
	logger zerolog.Logger,
	store storage.Store,
	taskService services.TaskService,
	exportService services.ExportService,
) Handler {
	return &handlerImpl{
		logger: logger,
		store:  store,
		tasks:  taskService,
		export: exportService,
	}
}
