package payhook

import (
	"context"

	"go.uber.org/dig"
	"go.uber.org/zap"
)

// DIParams holds dependencies needed to create a Receiver via DI.
type DIParams struct {
	dig.In

	Logger *zap.Logger
	Config *Config `optional:"true"`
}

// ProvideReceiver creates a Receiver for dependency injection.
// Use this when integrating payhook into an app that uses uber-go/dig.
//
// Example:
//
//	container := dig.New()
//	container.Provide(payhook.ProvideReceiver)
//	container.Invoke(func(r *payhook.Receiver) {
//	    mux.Handle("/payhook/", http.StripPrefix("/payhook", r.Handler()))
//	})
func ProvideReceiver(params DIParams) (*Receiver, error) {
	cfg := params.Config
	if cfg == nil {
		cfg = DefaultConfig()
	}

	// Use the provided logger
	cfg.Logger = params.Logger

	return New(cfg)
}

// RegisterWithContainer registers the Receiver with a dig container.
func RegisterWithContainer(container *dig.Container) error {
	return container.Provide(ProvideReceiver)
}

// StartParams holds dependencies for starting the Receiver via DI.
type StartParams struct {
	dig.In

	Receiver *Receiver
	Context  context.Context `optional:"true"`
}

// StartReceiver is a lifecycle hook that starts the Receiver when invoked via DI.
//
// Example:
//
//	container.Invoke(payhook.StartReceiver)
func StartReceiver(params StartParams) error {
	ctx := params.Context
	if ctx == nil {
		ctx = context.Background()
	}

	return params.Receiver.Start(ctx)
}
