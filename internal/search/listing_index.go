package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/automarket/automarket-backend/internal/app/model"
	"github.com/elastic/go-elasticsearch/v9"
	"github.com/elastic/go-elasticsearch/v9/esapi"
)

// document is the indexed shape of a listing.
type document struct {
	ID          string    `json:"id"`
	Brand       string    `json:"brand"`
	Model       string    `json:"model"`
	Description string    `json:"description"`
	Year        int       `json:"year"`
	Price       int       `json:"price"`
	VehicleType string    `json:"vehicle_type,omitempty"`
	Condition   string    `json:"condition"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

const indexMapping = `{
  "mappings": {
    "properties": {
      "id":           {"type": "keyword"},
      "brand":        {"type": "text", "fields": {"raw": {"type": "keyword"}}},
      "model":        {"type": "text", "fields": {"raw": {"type": "keyword"}}},
      "description":  {"type": "text"},
      "year":         {"type": "integer"},
      "price":        {"type": "long"},
      "vehicle_type": {"type": "keyword"},
      "condition":    {"type": "keyword"},
      "status":       {"type": "keyword"},
      "created_at":   {"type": "date"}
    }
  }
}`

// ListingIndex keeps vehicle listings searchable in Elasticsearch.
type ListingIndex struct {
	client *elasticsearch.Client
	index  string
}

func NewListingIndex(client *elasticsearch.Client, index string) *ListingIndex {
	return &ListingIndex{client: client, index: index}
}

// EnsureIndex creates the index with its mapping when missing.
func (i *ListingIndex) EnsureIndex(ctx context.Context) error {
	res, err := i.client.Indices.Exists([]string{i.index}, i.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("search: index exists check failed: %w", err)
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}

	res, err = i.client.Indices.Create(i.index,
		i.client.Indices.Create.WithContext(ctx),
		i.client.Indices.Create.WithBody(strings.NewReader(indexMapping)),
	)
	if err != nil {
		return fmt.Errorf("search: create index failed: %w", err)
	}
	return checkResponse(res, "create index")
}

// Index upserts v.
func (i *ListingIndex) Index(ctx context.Context, v *model.VehicleListing) error {
	body, err := json.Marshal(document{
		ID:          v.ID,
		Brand:       v.Brand,
		Model:       v.Model,
		Description: v.Description,
		Year:        v.Year,
		Price:       v.Price,
		VehicleType: v.VehicleType,
		Condition:   string(v.Condition),
		Status:      string(v.Status),
		CreatedAt:   v.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("search: encode listing: %w", err)
	}

	res, err := i.client.Index(i.index, bytes.NewReader(body),
		i.client.Index.WithContext(ctx),
		i.client.Index.WithDocumentID(v.ID),
	)
	if err != nil {
		return fmt.Errorf("search: index listing %s: %w", v.ID, err)
	}
	return checkResponse(res, "index listing")
}

// Delete removes the listing document. A missing document is not an error.
func (i *ListingIndex) Delete(ctx context.Context, id string) error {
	res, err := i.client.Delete(i.index, id, i.client.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("search: delete listing %s: %w", id, err)
	}
	if res.StatusCode == http.StatusNotFound {
		res.Body.Close()
		return nil
	}
	return checkResponse(res, "delete listing")
}

// Search runs a fuzzy multi-match over active listings and returns their
// ids in relevance order.
func (i *ListingIndex) Search(ctx context.Context, query string, from, size int) ([]string, int64, error) {
	body := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must": map[string]interface{}{
					"multi_match": map[string]interface{}{
						"query":     query,
						"fields":    []string{"brand^2", "model^2", "description"},
						"fuzziness": "AUTO",
					},
				},
				"filter": map[string]interface{}{
					"term": map[string]interface{}{"status": string(model.ListingActive)},
				},
			},
		},
		"_source": []string{"id"},
		"from":    from,
		"size":    size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, 0, fmt.Errorf("search: encode query: %w", err)
	}

	res, err := i.client.Search(
		i.client.Search.WithContext(ctx),
		i.client.Search.WithIndex(i.index),
		i.client.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, 0, fmt.Errorf("search: query failed: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		msg, _ := io.ReadAll(res.Body)
		return nil, 0, fmt.Errorf("search: query failed with %s: %s", res.Status(), msg)
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, 0, fmt.Errorf("search: decode response: %w", err)
	}

	ids := make([]string, len(r.Hits.Hits))
	for n, hit := range r.Hits.Hits {
		ids[n] = hit.ID
	}
	return ids, r.Hits.Total.Value, nil
}

func checkResponse(res *esapi.Response, op string) error {
	defer res.Body.Close()
	if res.IsError() {
		msg, _ := io.ReadAll(res.Body)
		return fmt.Errorf("search: %s failed with %s: %s", op, res.Status(), msg)
	}
	return nil
}
