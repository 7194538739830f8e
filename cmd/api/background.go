package main

import (
	"context"
	"time"
)

// every runs fn once now and then on each tick for the life of the process.
func (app *application) every(interval time.Duration, name string, fn func() error) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			if err := fn(); err != nil {
				app.logger.Errorw("background job failed", "job", name, "error", err)
			}
			<-ticker.C
		}
	}()
}

// deactivateExpiredAdsEvery switches off advertisements whose end date has
// passed so the admin list reflects what shoppers see.
func (app *application) deactivateExpiredAdsEvery(interval time.Duration) {
	app.every(interval, "deactivate expired ads", func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		n, err := app.store.Ads.DeactivateExpired(ctx, app.now())
		if err != nil {
			return err
		}
		if n > 0 {
			app.logger.Infow("deactivated expired advertisements", "count", n)
		}
		return nil
	})
}
