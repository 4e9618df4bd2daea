package api

import (
	"github.com/gin-contrib/cors"
	"github.com/wb-go/wbf/ginext"

	"neksa/cmd/middleware"
	"neksa/internal/service"
)

type Routers struct {
	Service    service.Service
	AdminToken string
}

func NewRouters(r *Routers) *ginext.Engine {
	app := ginext.New("release")

	app.Use(middleware.LoggingMiddleware())
	app.Use(cors.Default())
	apiGroup := app.Group("/v1")

	// Public surface: browse events, register, re-download a ticket.
	apiGroup.GET("/events", r.Service.GetAllEvents)
	apiGroup.GET("/events/:id", r.Service.GetEvent)
	apiGroup.POST("/events/:id/register", r.Service.Register)
	apiGroup.GET("/registrations/:id/ticket", r.Service.DownloadTicket)

	// Admin surface, gated by an explicit capability token.
	admin := apiGroup.Group("")
	admin.Use(middleware.RequireAdmin(r.AdminToken))
	admin.POST("/events", r.Service.CreateEvent)
	admin.POST("/events/:id/scan", r.Service.Scan)
	admin.POST("/events/:id/import", r.Service.ImportCSV)
	admin.GET("/events/:id/export", r.Service.ExportCSV)
	admin.GET("/events/:id/registrations", r.Service.ListRegistrations)
	admin.PATCH("/registrations/:id", r.Service.PatchRegistration)

	return app
}
