package http

import (
	"log/slog"
	"os"

	"github.com/cmlabs-hris/payroll-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(JWTService jwt.Service, payrollHandler PayrollHandler, statutoryHandler StatutoryHandler) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "payroll-cmlabs"),
		slog.String("version", "v1.0.0"),
		slog.String("env", "development"),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

			r.Route("/payroll", func(r chi.Router) {

				r.Route("/runs", func(r chi.Router) {
					r.Post("/", payrollHandler.CreateRun)
					r.Get("/", payrollHandler.ListRuns)

					r.Route("/{runID}", func(r chi.Router) {
						r.Get("/", payrollHandler.GetRun)
						r.Post("/process", payrollHandler.ProcessRun)
						r.Post("/approve", payrollHandler.ApproveRun)
						r.Post("/pay", payrollHandler.MarkRunPaid)
						r.Post("/cancel", payrollHandler.CancelRun)
						r.Get("/payslips", payrollHandler.ListPayslips)

						r.Route("/exports", func(r chi.Router) {
							r.Get("/tax-matrix", payrollHandler.ExportTaxMatrix)
							r.Get("/bank-transfers", payrollHandler.ExportBankTransfers)
						})
					})
				})

				r.Route("/payslips/{payslipID}", func(r chi.Router) {
					r.Get("/", payrollHandler.GetPayslip)
					r.Patch("/", payrollHandler.AdjustPayslip)
					r.Post("/pdf", payrollHandler.RenderPayslipPdf)
					r.Post("/email", payrollHandler.EmailPayslip)
				})

				r.Route("/statutory-tables", func(r chi.Router) {
					r.Put("/", statutoryHandler.UpsertTable)
					r.Get("/", statutoryHandler.ListTables)
					r.Get("/effective", statutoryHandler.GetEffectiveTable)
				})
			})
		})
	})
	return r
}
