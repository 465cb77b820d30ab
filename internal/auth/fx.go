package auth

import (
	"go.uber.org/fx"

	"github.com/Yassinesbr/support-center/internal/auth/domain"
	"github.com/Yassinesbr/support-center/internal/auth/service"
	"github.com/Yassinesbr/support-center/pkg/repository"
)

var Module = fx.Module("auth.service",
	fx.Provide(repository.ProvideStore[domain.User]),
	fx.Provide(service.New),
)
