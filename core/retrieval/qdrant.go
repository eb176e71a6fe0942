package retrieval

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	qdrantclient "github.com/qdrant/go-client/qdrant"
	"github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/helper"
	"github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/model"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const qdrantUpsertBatch = 100

const (
	payloadContent    = "content"
	payloadType       = "chunk_type"
	payloadCohortName = "cohort_name"
	payloadSourceURL  = "source_url"
	payloadField      = "field"
	payloadMetadata   = "metadata"
	payloadCreatedAt  = "created_at"
)

// QdrantStore is a Store backed by a Qdrant collection with cosine distance.
type QdrantStore struct {
	conn        *grpc.ClientConn
	points      qdrantclient.PointsClient
	collections qdrantclient.CollectionsClient
	collection  string
	dim         int
}

// NewQdrantStore connects to the Qdrant gRPC endpoint at addr (host:port)
// and creates the collection when it does not exist.
func NewQdrantStore(ctx context.Context, addr string, collection string, dim int) (*QdrantStore, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, helper.NewError("qdrant connect", err)
	}

	store := &QdrantStore{
		conn:        conn,
		points:      qdrantclient.NewPointsClient(conn),
		collections: qdrantclient.NewCollectionsClient(conn),
		collection:  collection,
		dim:         dim,
	}

	if err := store.ensureCollection(ctx); err != nil {
		conn.Close()
		return nil, helper.NewError("ensure collection", err)
	}

	return store, nil
}

// Close closes the gRPC connection.
func (s *QdrantStore) Close() error {
	return s.conn.Close()
}

func (s *QdrantStore) ensureCollection(ctx context.Context) error {
	collections, err := s.collections.List(ctx, &qdrantclient.ListCollectionsRequest{})
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}
	for _, col := range collections.GetCollections() {
		if col.GetName() == s.collection {
			return nil
		}
	}
	return s.createCollection(ctx)
}

func (s *QdrantStore) createCollection(ctx context.Context) error {
	_, err := s.collections.Create(ctx, &qdrantclient.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: &qdrantclient.VectorsConfig{
			Config: &qdrantclient.VectorsConfig_Params{
				Params: &qdrantclient.VectorParams{
					Size:     uint64(s.dim),
					Distance: qdrantclient.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}
	return nil
}

func (s *QdrantStore) Search(ctx context.Context, embedding []float32, topK int) ([]model.ScoredChunk, error) {
	if topK <= 0 {
		return nil, nil
	}

	resp, err := s.points.Search(ctx, &qdrantclient.SearchPoints{
		CollectionName: s.collection,
		Vector:         embedding,
		Limit:          uint64(topK),
		WithPayload: &qdrantclient.WithPayloadSelector{
			SelectorOptions: &qdrantclient.WithPayloadSelector_Enable{Enable: true},
		},
	})
	if err != nil {
		return nil, helper.NewError("qdrant search", err)
	}

	scored := make([]model.ScoredChunk, 0, len(resp.GetResult()))
	for _, point := range resp.GetResult() {
		chunk, err := chunkFromPayload(point.GetId(), point.GetPayload())
		if err != nil {
			return nil, helper.NewError("decode payload", err)
		}
		scored = append(scored, model.ScoredChunk{
			Chunk:    chunk,
			Distance: 1 - float64(point.GetScore()),
			Index:    len(scored),
		})
	}
	return scored, nil
}

func (s *QdrantStore) Insert(ctx context.Context, chunks []*model.Chunk) error {
	wait := true
	batch := make([]*qdrantclient.PointStruct, 0, qdrantUpsertBatch)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		_, err := s.points.Upsert(ctx, &qdrantclient.UpsertPoints{
			CollectionName: s.collection,
			Wait:           &wait,
			Points:         batch,
		})
		if err != nil {
			return helper.NewError("qdrant upsert", err)
		}
		batch = batch[:0]
		return nil
	}

	for _, chunk := range chunks {
		if len(chunk.Embedding) != s.dim {
			return helper.NewError("embedding validation", fmt.Errorf("expected embedding of dimension %d, got %d", s.dim, len(chunk.Embedding)))
		}
		if chunk.RID == uuid.Nil {
			chunk.RID = uuid.New()
		}
		if chunk.CreatedAt.IsZero() {
			chunk.CreatedAt = time.Now()
		}

		payload, err := chunkPayload(chunk)
		if err != nil {
			return helper.NewError("encode payload", err)
		}
		batch = append(batch, &qdrantclient.PointStruct{
			Id: &qdrantclient.PointId{
				PointIdOptions: &qdrantclient.PointId_Uuid{Uuid: chunk.RID.String()},
			},
			Vectors: &qdrantclient.Vectors{
				VectorsOptions: &qdrantclient.Vectors_Vector{
					Vector: &qdrantclient.Vector{Data: chunk.Embedding},
				},
			},
			Payload: payload,
		})

		if len(batch) >= qdrantUpsertBatch {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	return flush()
}

func (s *QdrantStore) Count(ctx context.Context) (int, error) {
	exact := true
	resp, err := s.points.Count(ctx, &qdrantclient.CountPoints{
		CollectionName: s.collection,
		Exact:          &exact,
	})
	if err != nil {
		return 0, helper.NewError("qdrant count", err)
	}
	return int(resp.GetResult().GetCount()), nil
}

// Clear drops and recreates the collection.
func (s *QdrantStore) Clear(ctx context.Context) error {
	_, err := s.collections.Delete(ctx, &qdrantclient.DeleteCollection{CollectionName: s.collection})
	if err != nil {
		return helper.NewError("qdrant delete collection", err)
	}
	if err := s.createCollection(ctx); err != nil {
		return helper.NewError("qdrant create collection", err)
	}
	return nil
}

func stringValue(s string) *qdrantclient.Value {
	return &qdrantclient.Value{Kind: &qdrantclient.Value_StringValue{StringValue: s}}
}

func chunkPayload(chunk *model.Chunk) (map[string]*qdrantclient.Value, error) {
	metadata, err := chunk.Metadata.Marshal()
	if err != nil {
		return nil, err
	}
	return map[string]*qdrantclient.Value{
		payloadContent:    stringValue(chunk.Content),
		payloadType:       stringValue(string(chunk.Type)),
		payloadCohortName: stringValue(chunk.CohortName),
		payloadSourceURL:  stringValue(chunk.SourceURL),
		payloadField:      stringValue(chunk.Field),
		payloadMetadata:   stringValue(string(metadata)),
		payloadCreatedAt:  stringValue(chunk.CreatedAt.UTC().Format(time.RFC3339Nano)),
	}, nil
}

func chunkFromPayload(id *qdrantclient.PointId, payload map[string]*qdrantclient.Value) (*model.Chunk, error) {
	chunk := &model.Chunk{
		Content:    payload[payloadContent].GetStringValue(),
		Type:       model.ChunkType(payload[payloadType].GetStringValue()),
		CohortName: payload[payloadCohortName].GetStringValue(),
		SourceURL:  payload[payloadSourceURL].GetStringValue(),
		Field:      payload[payloadField].GetStringValue(),
	}

	if rid, err := uuid.Parse(id.GetUuid()); err == nil {
		chunk.RID = rid
	}
	if createdAt, err := time.Parse(time.RFC3339Nano, payload[payloadCreatedAt].GetStringValue()); err == nil {
		chunk.CreatedAt = createdAt
	}

	if err := chunk.Metadata.Unmarshal(payload[payloadMetadata].GetStringValue()); err != nil {
		return nil, err
	}
	return chunk, nil
}
