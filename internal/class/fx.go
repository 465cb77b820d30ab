package class

import (
	"go.uber.org/fx"

	"github.com/Yassinesbr/support-center/internal/class/domain"
	"github.com/Yassinesbr/support-center/internal/class/service"
	"github.com/Yassinesbr/support-center/pkg/repository"
)

var Module = fx.Module("class.service",
	fx.Provide(repository.ProvideStore[domain.Class]),
	fx.Provide(service.New),
)
