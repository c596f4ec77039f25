package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/simaogato/cpay-backend/internal/domain"
	"github.com/simaogato/cpay-backend/internal/logger"
)

// NewRouter builds the HTTP side of the simulator: health, metrics, the
// dashboard config and the websocket change stream.
func NewRouter(
	log *logger.Logger,
	gatherer prometheus.Gatherer,
	broadcaster *Broadcaster,
	appConfig domain.AppConfig,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		Recoverer(log),
		Logging(log),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", healthLive())
	})
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	r.Get("/api/v1/config", configHandler(appConfig))
	r.Get("/ws", broadcaster.Handler())

	return r
}

func healthLive() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "live"})
	}
}

type contractsResponse struct {
	MerchantRegistry string `json:"merchantRegistry"`
	CPayPayments     string `json:"cPayPayments"`
	CUSD             string `json:"cUSD"`
}

type configResponse struct {
	MockMode   bool              `json:"mockMode"`
	CeloRPCURL string            `json:"celoRpcUrl"`
	ChainID    int64             `json:"chainId"`
	Contracts  contractsResponse `json:"contracts"`
}

func configHandler(c domain.AppConfig) http.HandlerFunc {
	body := configResponse{
		MockMode:   c.MockMode,
		CeloRPCURL: c.CeloRPCURL,
		ChainID:    c.ChainID,
		Contracts: contractsResponse{
			MerchantRegistry: c.Contracts.MerchantRegistry,
			CPayPayments:     c.Contracts.CPayPayments,
			CUSD:             c.Contracts.CUSD,
		},
	}
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, body)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
