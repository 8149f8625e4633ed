// Package objectstore wraps the S3-compatible client the extractors
// use to list and download source files, adapted from the teacher's
// newS3Client/loadS3Config/listCSVObjects (ohlcv_config.go) and
// getS3ObjectWithRetry (ohlcv_pipeline.go).
package objectstore

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/sl40168/sdd-etl-tool-sub002/internal/errs"
	"github.com/sl40168/sdd-etl-tool-sub002/internal/model"
)

// ClientConfig carries the per-source connection properties resolved
// from the config file (§6 "*.endpoint, *.bucket, *.region, ...").
type ClientConfig struct {
	Endpoint  string
	Bucket    string
	Region    string
	SecretID  string
	SecretKey string
}

// NewClient builds an S3 client for cfg. When both SecretID and
// SecretKey are empty the client runs in anonymous mode; supplying
// only one is a ConfigError (§4.3).
func NewClient(ctx context.Context, cfg ClientConfig) (*s3.Client, error) {
	anonymous := cfg.SecretID == "" && cfg.SecretKey == ""
	if !anonymous && (cfg.SecretID == "" || cfg.SecretKey == "") {
		return nil, errs.Config("EXTRACT", "", "object store credentials partially set: both secretId and secretKey must be present or both absent", nil)
	}

	var optFns []func(*awscfg.LoadOptions) error
	if cfg.Region != "" {
		optFns = append(optFns, awscfg.WithRegion(cfg.Region))
	}
	if anonymous {
		optFns = append(optFns, awscfg.WithCredentialsProvider(aws.AnonymousCredentials{}))
	} else {
		optFns = append(optFns, awscfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.SecretID, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return nil, errs.Config("EXTRACT", "", "cannot build object store client config", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.Endpoint != ""
	}), nil
}

// List returns all objects under prefix in bucket whose key contains
// suffix (the resolved template's literal tail, e.g. a business-date
// string), ordered deterministically by key ascending (§4.3).
func List(ctx context.Context, client *s3.Client, bucket, prefix, suffix string) ([]model.FileMetadata, error) {
	var out []model.FileMetadata

	paginator := s3.NewListObjectsV2Paginator(client, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, errs.Download("EXTRACT", "", "listing objects under "+prefix, err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if suffix != "" && !strings.Contains(key, suffix) {
				continue
			}
			out = append(out, model.FileMetadata{
				Key:          key,
				Size:         aws.ToInt64(obj.Size),
				LastModified: aws.ToTime(obj.LastModified),
			})
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// SizeCheck fails with FileTooLarge when meta.Size exceeds ceiling
// (§4.3, FR-005a). ceiling <= 0 means no limit is configured.
func SizeCheck(meta model.FileMetadata, ceiling int64) error {
	if ceiling > 0 && meta.Size > ceiling {
		return errs.FileTooLarge("EXTRACT", "", "object "+meta.Key+" exceeds configured size ceiling", nil)
	}
	return nil
}

// Download streams the object into destDir, named after the object's
// base key, and returns the local path. The caller owns the returned
// file and is responsible for removing destDir on cleanup.
func Download(ctx context.Context, client *s3.Client, bucket, key, destDir string) (string, error) {
	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", errs.Download("EXTRACT", "", "fetching object "+key, err)
	}
	defer out.Body.Close()

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", errs.Download("EXTRACT", "", "creating temp dir for "+key, err)
	}

	localPath := filepath.Join(destDir, filepath.Base(key))
	f, err := os.Create(localPath)
	if err != nil {
		return "", errs.Download("EXTRACT", "", "creating local file for "+key, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, out.Body); err != nil {
		return "", errs.Download("EXTRACT", "", "writing object "+key+" to disk", err)
	}

	return localPath, nil
}
