package ui

import "github.com/go-chi/chi/v5"

// RegisterRoutes registers all UI routes on the given router.
func (ui *UI) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(ui.ClientMiddleware)

		// Dashboard
		r.Get("/", ui.HandleDashboard)
		r.Get("/activity", ui.HandleActivity)

		// Admin: owners
		r.Route("/admin/owners", func(r chi.Router) {
			r.Get("/", ui.HandleOwners)
			r.Get("/export.csv", ui.HandleExport)
			r.Post("/export", ui.HandlePublish)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/menu", ui.HandleMenu)
				r.Post("/toggle", ui.HandleToggle)
			})
		})

		// Owner tables: buses, routes, schedules, bookings
		r.Route("/owner/{collection}", func(r chi.Router) {
			r.Get("/", ui.HandleList)
			r.Get("/new", ui.HandleCreateForm)
			r.Post("/new", ui.HandleCreate)
			r.Get("/export.csv", ui.HandleExport)
			r.Post("/export", ui.HandlePublish)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/menu", ui.HandleMenu)
				r.Get("/edit/{field}", ui.HandleEditPrompt)
				r.Post("/edit/{field}", ui.HandleEdit)
				r.Get("/delete", ui.HandleDeleteConfirm)
				r.Post("/delete", ui.HandleDelete)
			})
		})
	})
}
