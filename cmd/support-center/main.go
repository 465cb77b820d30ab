package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/Yassinesbr/support-center/internal/auth"
	"github.com/Yassinesbr/support-center/internal/billing"
	"github.com/Yassinesbr/support-center/internal/class"
	"github.com/Yassinesbr/support-center/internal/clock"
	"github.com/Yassinesbr/support-center/internal/config"
	"github.com/Yassinesbr/support-center/internal/migration"
	"github.com/Yassinesbr/support-center/internal/observability"
	"github.com/Yassinesbr/support-center/internal/providers/pdf"
	"github.com/Yassinesbr/support-center/internal/scheduler"
	"github.com/Yassinesbr/support-center/internal/server"
	"github.com/Yassinesbr/support-center/internal/student"
	"github.com/Yassinesbr/support-center/internal/teacher"
	"github.com/Yassinesbr/support-center/pkg/db"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		auth.Module,
		teacher.Module,
		student.Module,
		class.Module,
		pdf.Module,
		billing.Module,

		server.Module,
		scheduler.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
