package student

import (
	"go.uber.org/fx"

	"github.com/Yassinesbr/support-center/internal/student/domain"
	"github.com/Yassinesbr/support-center/internal/student/service"
	"github.com/Yassinesbr/support-center/pkg/repository"
)

var Module = fx.Module("student.service",
	fx.Provide(repository.ProvideStore[domain.Student]),
	fx.Provide(service.New),
)
