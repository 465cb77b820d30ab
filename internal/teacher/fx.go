package teacher

import (
	"go.uber.org/fx"

	"github.com/Yassinesbr/support-center/internal/teacher/domain"
	"github.com/Yassinesbr/support-center/internal/teacher/service"
	"github.com/Yassinesbr/support-center/pkg/repository"
)

var Module = fx.Module("teacher.service",
	fx.Provide(repository.ProvideStore[domain.Teacher]),
	fx.Provide(service.New),
)
