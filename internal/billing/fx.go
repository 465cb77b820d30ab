package billing

import (
	"go.uber.org/fx"

	"github.com/Yassinesbr/support-center/internal/billing/domain"
	"github.com/Yassinesbr/support-center/internal/billing/service"
	"github.com/Yassinesbr/support-center/pkg/repository"
)

var Module = fx.Module("billing.service",
	fx.Provide(
		repository.ProvideStore[domain.Invoice],
		service.New,
	),
)
