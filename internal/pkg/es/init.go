package es

import (
	"Motorway/internal/api/config"
	"Motorway/internal/pkg/logger"
	"context"
	log "log/slog"
	"net/http"

	"github.com/elastic/go-elasticsearch/v8"
)

const (
	NotFoundCode = 404
	ConflictCode = 409
)

// NewClient 初始化 Elasticsearch 客户端
func NewClient(ctx context.Context, cfg config.ElasticConfig) (*elasticsearch.TypedClient, error) {
	client, err := elasticsearch.NewTypedClient(elasticsearch.Config{
		Addresses: []string{cfg.Address},
		Username:  cfg.Username,
		Password:  cfg.Password,
		Transport: &logger.ESTransport{
			Transport: http.DefaultTransport,
		},
	})
	if err != nil {
		log.Error("Cannot Connect to Elasticsearch", "err", err)
		return nil, err
	}

	info, err := client.Info().Do(ctx)
	if err != nil {
		log.Error("Cannot Connect to Elasticsearch", "err", err)
		return nil, err
	}

	log.Info("Connected to Elasticsearch", "version", info.Version.Int)
	return client, nil
}
