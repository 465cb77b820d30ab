package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"

	authdomain "github.com/Yassinesbr/support-center/internal/auth/domain"
	billingdomain "github.com/Yassinesbr/support-center/internal/billing/domain"
	classdomain "github.com/Yassinesbr/support-center/internal/class/domain"
	"github.com/Yassinesbr/support-center/internal/config"
	obsmiddleware "github.com/Yassinesbr/support-center/internal/observability/logger"
	obsmetrics "github.com/Yassinesbr/support-center/internal/observability/metrics"
	studentdomain "github.com/Yassinesbr/support-center/internal/student/domain"
	teacherdomain "github.com/Yassinesbr/support-center/internal/teacher/domain"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(cfg config.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           cfg.Environment != "production",
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(httpMetrics.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(cfg config.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(cfg, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, log *zap.Logger, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine     *gin.Engine
	cfg        config.Config
	authSvc    authdomain.Service
	studentSvc studentdomain.Service
	teacherSvc teacherdomain.Service
	classSvc   classdomain.Service
	billingSvc billingdomain.Service
}

type ServerParams struct {
	fx.In

	Gin        *gin.Engine
	Cfg        config.Config
	AuthSvc    authdomain.Service
	StudentSvc studentdomain.Service
	TeacherSvc teacherdomain.Service
	ClassSvc   classdomain.Service
	BillingSvc billingdomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:     p.Gin,
		cfg:        p.Cfg,
		authSvc:    p.AuthSvc,
		studentSvc: p.StudentSvc,
		teacherSvc: p.TeacherSvc,
		classSvc:   p.ClassSvc,
		billingSvc: p.BillingSvc,
	}

	svc.registerAuthRoutes()
	svc.registerAPIRoutes()

	return svc
}

func (s *Server) registerAuthRoutes() {
	auth := s.engine.Group("/auth")
	auth.POST("/login", s.Login)
	auth.GET("/me", s.AuthRequired(), s.Me)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api", s.AuthRequired(), RequireRole(authdomain.RoleAdmin))

	invoices := api.Group("/invoices")
	invoices.GET("", s.ListInvoices)
	invoices.POST("/generate-monthly", s.GenerateMonthlyInvoices)
	invoices.GET("/:id", s.GetInvoice)
	invoices.GET("/:id/pdf", s.GetInvoicePDF)
	invoices.POST("/:id/pay", s.PayInvoice)
	invoices.POST("/:id/items/:itemId/pay", s.PayInvoiceItem)

	students := api.Group("/students")
	students.GET("", s.ListStudents)
	students.POST("", s.CreateStudent)
	students.GET("/:id", s.GetStudent)
	students.PATCH("/:id", s.UpdateStudent)
	students.PUT("/:id/classes", s.SetStudentClasses)
	students.POST("/:id/classes/:classId", s.AddStudentClass)
	students.DELETE("/:id/classes/:classId", s.RemoveStudentClass)
	students.PUT("/:id/classes/:classId/price-override", s.SetPriceOverride)
	students.DELETE("/:id/classes/:classId/price-override", s.ClearPriceOverride)

	teachers := api.Group("/teachers")
	teachers.GET("", s.ListTeachers)
	teachers.POST("", s.CreateTeacher)
	teachers.GET("/:id", s.GetTeacher)
	teachers.PATCH("/:id", s.UpdateTeacher)

	classes := api.Group("/classes")
	classes.GET("", s.ListClasses)
	classes.POST("", s.CreateClass)
	classes.GET("/:id", s.GetClass)
	classes.POST("/:id/students/:studentId", s.AddClassStudent)
	classes.POST("/:id/teacher/:teacherId", s.AssignClassTeacher)
}
