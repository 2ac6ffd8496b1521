package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/noah-isme/lesson-planner-api/internal/handler"
)

type handlers struct {
	week      *handler.WeekHandler
	lessons   *handler.LessonHandler
	items     *handler.LessonItemHandler
	settings  *handler.SettingsHandler
	subjects  *handler.SubjectHandler
	timetable *handler.TimetableHandler
	metrics   *handler.MetricsHandler
}

func registerRoutes(r *gin.Engine, prefix string, h handlers, docs bool) {
	r.GET("/health", h.metrics.Health)
	r.GET("/ready", h.metrics.Ready)
	r.GET("/metrics", h.metrics.Prometheus)
	r.GET("/metrics/summary", h.metrics.Summary)
	if docs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(prefix)

	lessons := api.Group("/lessons")
	lessons.GET("/week", h.week.Week)
	lessons.GET("/week/export", h.week.Export)
	lessons.POST("", h.lessons.Create)
	lessons.GET("/:id", h.lessons.Get)
	lessons.PUT("/:id", h.lessons.Update)
	lessons.DELETE("/:id", h.lessons.Delete)

	lessons.GET("/:id/notes", h.items.ListNotes)
	lessons.POST("/:id/notes", h.items.CreateNote)
	lessons.GET("/:id/notes/:note_id", h.items.GetNote)
	lessons.PUT("/:id/notes/:note_id", h.items.UpdateNote)
	lessons.DELETE("/:id/notes/:note_id", h.items.DeleteNote)

	lessons.GET("/:id/resources", h.items.ListResources)
	lessons.POST("/:id/resources", h.items.CreateResource)
	lessons.GET("/:id/resources/:resource_id", h.items.GetResource)
	lessons.PUT("/:id/resources/:resource_id", h.items.UpdateResource)
	lessons.DELETE("/:id/resources/:resource_id", h.items.DeleteResource)

	lessons.GET("/:id/todos", h.items.ListTodos)
	lessons.POST("/:id/todos", h.items.CreateTodo)
	lessons.GET("/:id/todos/:todo_id", h.items.GetTodo)
	lessons.PUT("/:id/todos/:todo_id", h.items.UpdateTodo)
	lessons.PATCH("/:id/todos/:todo_id/toggle", h.items.ToggleTodo)
	lessons.DELETE("/:id/todos/:todo_id", h.items.DeleteTodo)

	api.GET("/exports/download", h.week.Download)

	settings := api.Group("/settings")
	settings.GET("", h.settings.Get)
	settings.PUT("", h.settings.Update)
	settings.PUT("/periods", h.settings.SetPeriods)
	settings.GET("/cycle-day", h.settings.CycleDay)
	settings.GET("/exclusions", h.settings.ListExclusions)
	settings.POST("/exclusions", h.settings.AddExclusion)
	settings.DELETE("/exclusions/:date", h.settings.RemoveExclusion)

	subjects := api.Group("/subjects")
	subjects.GET("", h.subjects.List)
	subjects.POST("", h.subjects.Create)
	subjects.GET("/:id", h.subjects.Get)
	subjects.PUT("/:id", h.subjects.Update)
	subjects.DELETE("/:id", h.subjects.Delete)

	api.GET("/timetable", h.timetable.List)
	api.PUT("/timetable/:cycle_day/:period", h.timetable.Set)
	api.DELETE("/timetable/:cycle_day/:period", h.timetable.Clear)
	api.GET("/periods", h.timetable.Periods)
}
