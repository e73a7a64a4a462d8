package pdf

import (
	"context"
	"io"

	paymentdomain "github.com/expediterhq/expediter/internal/payment/domain"
	"go.uber.org/fx"
)

type Provider interface {
	GenerateReceipt(ctx context.Context, receipt paymentdomain.Receipt) (io.Reader, error)
}

var Module = fx.Module("providers.pdf",
	fx.Provide(New),
)
