// Package qdrant implements vector.Repository on a remote Qdrant instance.
package qdrant

import (
	"context"
	"fmt"
	"time"

	"github.com/efebarandurmaz/ragpipe/internal/observability"
	"github.com/efebarandurmaz/ragpipe/internal/vector"
	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Repository talks to Qdrant over gRPC. Collections use cosine distance,
// matching the similarity metric the query pipeline ranks by.
type Repository struct {
	conn        *grpc.ClientConn
	points      pb.PointsClient
	collections pb.CollectionsClient
	collection  string
}

// New creates a Qdrant-backed repository.
func New(ctx context.Context, host string, port int, collection string) (*Repository, error) {
	addr := fmt.Sprintf("%s:%d", host, port)
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("qdrant connect: %w", err)
	}
	return &Repository{
		conn:        conn,
		points:      pb.NewPointsClient(conn),
		collections: pb.NewCollectionsClient(conn),
		collection:  collection,
	}, nil
}

// EnsureCollection creates the collection with the given vector dimension if
// it does not exist yet.
func (r *Repository) EnsureCollection(ctx context.Context, dimension uint64) error {
	exists, err := r.collections.CollectionExists(ctx, &pb.CollectionExistsRequest{
		CollectionName: r.collection,
	})
	if err != nil {
		return fmt.Errorf("qdrant collection check: %w", err)
	}
	if exists.GetResult().GetExists() {
		return nil
	}

	_, err = r.collections.Create(ctx, &pb.CreateCollection{
		CollectionName: r.collection,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     dimension,
					Distance: pb.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("qdrant create collection %q: %w", r.collection, err)
	}
	return nil
}

func (r *Repository) Upsert(ctx context.Context, docs []vector.Document) error {
	start := time.Now()
	points := make([]*pb.PointStruct, len(docs))
	for i, d := range docs {
		payload := map[string]*pb.Value{
			"content": {Kind: &pb.Value_StringValue{StringValue: d.Content}},
		}
		for k, v := range d.Metadata {
			payload[k] = &pb.Value{Kind: &pb.Value_StringValue{StringValue: v}}
		}
		points[i] = &pb.PointStruct{
			Id:      &pb.PointId{PointIdOptions: &pb.PointId_Uuid{Uuid: d.ID}},
			Vectors: &pb.Vectors{VectorsOptions: &pb.Vectors_Vector{Vector: &pb.Vector{Data: d.Vector}}},
			Payload: payload,
		}
	}

	// Wait for the write to be applied; the upsert is the pipeline's only
	// durable side effect.
	wait := true
	_, err := r.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: r.collection,
		Points:         points,
		Wait:           &wait,
	})
	if err != nil {
		return err
	}
	observability.Audit().LogStoreWrite(ctx, r.collection, len(docs), time.Since(start))
	return nil
}

func (r *Repository) Search(ctx context.Context, vec []float32, topK int) ([]vector.SearchResult, error) {
	ctx, span := observability.StartRetrievalSpan(ctx, r.collection, topK)
	defer span.End()

	resp, err := r.points.Search(ctx, &pb.SearchPoints{
		CollectionName: r.collection,
		Vector:         vec,
		Limit:          uint64(topK),
		WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
	})
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	results := make([]vector.SearchResult, len(resp.Result))
	for i, pt := range resp.Result {
		content := ""
		meta := make(map[string]string)
		for k, v := range pt.Payload {
			if k == "content" {
				content = v.GetStringValue()
			} else {
				meta[k] = v.GetStringValue()
			}
		}
		results[i] = vector.SearchResult{
			ID:       pt.Id.GetUuid(),
			Score:    pt.Score,
			Content:  content,
			Metadata: meta,
		}
	}
	observability.RecordRetrievalResult(span, len(results))
	return results, nil
}

// Ping checks connectivity with a cheap collection-existence call.
func (r *Repository) Ping(ctx context.Context) error {
	_, err := r.collections.CollectionExists(ctx, &pb.CollectionExistsRequest{
		CollectionName: r.collection,
	})
	return err
}

func (r *Repository) Close() error {
	return r.conn.Close()
}

var _ vector.Repository = (*Repository)(nil)
