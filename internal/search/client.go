package search

import (
	"fmt"
	"io"

	"github.com/automarket/automarket-backend/config"
	"github.com/automarket/automarket-backend/pkg/logger"
	"github.com/elastic/go-elasticsearch/v9"
)

// NewClient connects to Elasticsearch and verifies the cluster answers.
func NewClient(cfg *config.ElasticsearchConfig) (*elasticsearch.Client, error) {
	logger.Info("Connecting to Elasticsearch", map[string]interface{}{
		"url": cfg.URL,
	})

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}

	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("failed to reach Elasticsearch: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("elasticsearch error %s: %s", res.Status(), body)
	}

	logger.Info("Elasticsearch connection established successfully", nil)
	return client, nil
}
