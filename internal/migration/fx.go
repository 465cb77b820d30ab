package migration

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"gorm.io/gorm"

	authdomain "github.com/Yassinesbr/support-center/internal/auth/domain"
	billingdomain "github.com/Yassinesbr/support-center/internal/billing/domain"
	classdomain "github.com/Yassinesbr/support-center/internal/class/domain"
	"github.com/Yassinesbr/support-center/internal/config"
	"github.com/Yassinesbr/support-center/internal/seed"
	studentdomain "github.com/Yassinesbr/support-center/internal/student/domain"
	teacherdomain "github.com/Yassinesbr/support-center/internal/teacher/domain"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, node *snowflake.Node, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// The versioned migrations target postgres; other dialects
			// sync the schema straight from the models.
			if err := conn.AutoMigrate(
				&authdomain.User{},
				&teacherdomain.Teacher{},
				&studentdomain.Student{},
				&classdomain.Class{},
				&classdomain.Enrollment{},
				&billingdomain.PriceOverride{},
				&billingdomain.Invoice{},
				&billingdomain.InvoiceItem{},
				&billingdomain.Payment{},
				&billingdomain.PaymentAllocation{},
			); err != nil {
				return err
			}
		}

		return seed.EnsureAdmin(conn, node, cfg.SeedAdminEmail, cfg.SeedAdminPassword)
	}),
)
