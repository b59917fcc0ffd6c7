package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/qdrant/go-client/qdrant"

	"alfredoptarigan/research-advisor/internal/logger"
	"alfredoptarigan/research-advisor/internal/models"
)

// QdrantService stores one vector per catalogue paper (title + abstract).
type QdrantService interface {
	InitCollection(ctx context.Context) error
	UpsertPapers(ctx context.Context, papers []PaperVector) error
	SearchPapers(ctx context.Context, queryEmbedding []float32, limit int) ([]models.Paper, error)
}

// PaperVector pairs a catalogue row with its embedding.
type PaperVector struct {
	Paper     models.PaperRecord
	Embedding []float32
}

type qdrantService struct {
	client         *qdrant.Client
	collectionName string
	vectorSize     uint64
	log            *logger.Logger
}

func NewQdrantService(urlStr, apiKey, collectionName string, vectorSize uint64, log *logger.Logger) (QdrantService, error) {
	// Parse URL to extract host, port, and TLS usage
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsed.Hostname()
	useTLS := parsed.Scheme == "https"

	// gRPC port by default
	port := 6334
	if p := parsed.Port(); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: apiKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &qdrantService{
		client:         client,
		collectionName: collectionName,
		vectorSize:     vectorSize,
		log:            log.WithComponent("qdrant"),
	}, nil
}

// InitCollection implements QdrantService.
func (q *qdrantService) InitCollection(ctx context.Context) error {
	exists, err := q.client.CollectionExists(ctx, q.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if exists {
		q.log.Debug().Str("collection", q.collectionName).Msg("collection already exists")
		return nil
	}

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     q.vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	q.log.Info().Str("collection", q.collectionName).Msg("qdrant collection created")
	return nil
}

// UpsertPapers implements QdrantService. Point IDs are catalogue IDs, so
// re-indexing a paper overwrites its previous vector.
func (q *qdrantService) UpsertPapers(ctx context.Context, papers []PaperVector) error {
	if len(papers) == 0 {
		return nil
	}

	points := make([]*qdrant.PointStruct, 0, len(papers))
	for _, pv := range papers {
		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewIDNum(pv.Paper.ID),
			Vectors: qdrant.NewVectors(pv.Embedding...),
			Payload: qdrant.NewValueMap(map[string]interface{}{
				"paper_id": int64(pv.Paper.ID),
				"title":    pv.Paper.Title,
				"abstract": pv.Paper.Abstract,
				"authors":  pv.Paper.Authors,
				"year":     int64(pv.Paper.Year),
				"venue":    pv.Paper.Venue,
				"url":      pv.Paper.URL,
				"category": pv.Paper.Category,
			}),
		})
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collectionName,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert points: %w", err)
	}

	return nil
}

// SearchPapers implements QdrantService.
func (q *qdrantService) SearchPapers(ctx context.Context, queryEmbedding []float32, limit int) ([]models.Paper, error) {
	searchResult, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collectionName,
		Query:          qdrant.NewQuery(queryEmbedding...),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	papers := make([]models.Paper, 0, len(searchResult))
	for _, point := range searchResult {
		payload := point.Payload

		papers = append(papers, models.Paper{
			Title:      payloadString(payload, "title"),
			Authors:    models.SplitAuthors(payloadString(payload, "authors")),
			Abstract:   payloadString(payload, "abstract"),
			Year:       int(payloadInt(payload, "year")),
			Venue:      payloadString(payload, "venue"),
			URL:        payloadString(payload, "url"),
			Similarity: point.Score,
		})
	}

	return papers, nil
}

func payloadString(payload map[string]*qdrant.Value, key string) string {
	if v, ok := payload[key]; ok {
		if val, ok := v.GetKind().(*qdrant.Value_StringValue); ok {
			return val.StringValue
		}
	}
	return ""
}

func payloadInt(payload map[string]*qdrant.Value, key string) int64 {
	if v, ok := payload[key]; ok {
		switch val := v.GetKind().(type) {
		case *qdrant.Value_IntegerValue:
			return val.IntegerValue
		case *qdrant.Value_DoubleValue:
			return int64(val.DoubleValue)
		}
	}
	return 0
}
