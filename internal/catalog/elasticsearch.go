// internal/catalog/elasticsearch.go
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"

	"agrimatch/internal/models"
)

// ESSearcher is the Elasticsearch-backed CandidateSearcher, used when the
// catalog keeps product listings in a search index.
type ESSearcher struct {
	client *elasticsearch.Client
	index  string
}

func NewESSearcher(client *elasticsearch.Client, index string) *ESSearcher {
	return &ESSearcher{client: client, index: index}
}

func (s *ESSearcher) SearchCandidates(ctx context.Context, variety, region string, limit int) ([]models.Product, error) {
	queryBody := buildCandidateQuery(variety, region)
	body, _ := json.Marshal(queryBody)

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.index),
		s.client.Search.WithBody(strings.NewReader(string(body))),
		s.client.Search.WithSize(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("candidate search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("candidate search error: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source models.Product `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode candidate search response: %w", err)
	}

	products := make([]models.Product, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		products = append(products, hit.Source)
	}
	return products, nil
}

func buildCandidateQuery(variety, region string) map[string]interface{} {
	shouldClauses := []interface{}{}

	if variety != "" {
		shouldClauses = append(shouldClauses, map[string]interface{}{
			"match": map[string]interface{}{
				"variety": variety,
			},
		})
	}
	if region != "" {
		shouldClauses = append(shouldClauses, map[string]interface{}{
			"match": map[string]interface{}{
				"regions": region,
			},
		})
	}

	boolQuery := map[string]interface{}{
		"should":               shouldClauses,
		"minimum_should_match": 1,
		"filter": []interface{}{
			map[string]interface{}{
				"range": map[string]interface{}{
					"stock": map[string]interface{}{"gt": 0},
				},
			},
		},
	}

	return map[string]interface{}{
		"query": map[string]interface{}{
			"bool": boolQuery,
		},
	}
}
