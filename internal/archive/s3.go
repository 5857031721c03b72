package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"

	"github.com/local/answerpipe/internal/parser"
)

// S3Archiver writes each parsed solution to S3 as a JSON object. Best-effort:
// callers log failures and move on, the request result is already delivered.
type S3Archiver struct {
	client *s3.Client
	bucket string
	prefix string
}

func NewS3Archiver(ctx context.Context, bucket, prefix string) (*S3Archiver, error) {
	cfg, err := awscfg.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &S3Archiver{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
		prefix: prefix,
	}, nil
}

type archivedSolution struct {
	RequestID  string          `json:"request_id"`
	ArchivedAt time.Time       `json:"archived_at"`
	Solution   parser.Solution `json:"solution"`
}

func (a *S3Archiver) Save(ctx context.Context, requestID string, sol parser.Solution) error {
	body, err := json.Marshal(archivedSolution{
		RequestID:  requestID,
		ArchivedAt: time.Now().UTC(),
		Solution:   sol,
	})
	if err != nil {
		return fmt.Errorf("marshal solution: %w", err)
	}

	key := fmt.Sprintf("%s/%s/%s.json", a.prefix, time.Now().UTC().Format("2006-01-02"), requestID)
	cctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err = a.client.PutObject(cctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}

	log.Debug().Str("bucket", a.bucket).Str("key", key).Msg("solution archived")
	return nil
}
