package handler

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func CreateRoutes(trader Trader, trades TradeStore, gatherer prometheus.Gatherer) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	var (
		WalletHandler = NewWalletHandler(trader)
		TradeHandler  = NewTradeHandler(trades)
	)

	r.Route("/wallets", func(r chi.Router) {
		r.Get("/", WalletHandler.List)
		r.Get("/{wallet}/balance", WalletHandler.Balance)
		r.Get("/{wallet}/holdings", WalletHandler.Holdings)
		r.Post("/{wallet}/lookup", WalletHandler.Lookup)
		r.Post("/{wallet}/{operation}", WalletHandler.Execute)
	})

	r.Route("/trade", func(r chi.Router) {
		r.Get("/", TradeHandler.Get)
		r.Delete("/", TradeHandler.DeleteAll)
	})

	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	return r
}
