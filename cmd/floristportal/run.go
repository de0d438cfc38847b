package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/fx"
)

// stopTimeout bounds graceful shutdown once a signal arrives.
const stopTimeout = 30 * time.Second

func run(ctx context.Context, app *fx.App) error {
	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("start application: %w", err)
	}

	var signal string
	select {
	case <-ctx.Done():
		signal = "interrupt"
	case sig := <-app.Done():
		signal = sig.String()
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	if err := app.Stop(stopCtx); err != nil {
		return fmt.Errorf("stop application after %s: %w", signal, err)
	}
	return nil
}
