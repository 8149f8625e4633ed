package extract

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/sl40168/sdd-etl-tool-sub002/internal/csvstream"
	"github.com/sl40168/sdd-etl-tool-sub002/internal/errs"
	"github.com/sl40168/sdd-etl-tool-sub002/internal/model"
	"github.com/sl40168/sdd-etl-tool-sub002/internal/objectstore"
)

// objectStoreBase holds the connection/config state shared by every
// object-store extractor flavor; concrete extractors embed it and
// supply their own conversion step (§4.5 steps 5-6).
type objectStoreBase struct {
	source model.SourceConfig

	endpoint  string
	bucket    string
	region    string
	prefix    string
	secretID  string
	secretKey string
	maxSize   int64
	delimiter rune
	gzipped   bool

	tempRoot string
	tempDir  string
	client   *awss3.Client
	log      *zap.SugaredLogger
}

func newObjectStoreBase(src model.SourceConfig, tempRoot string, log *zap.SugaredLogger) (*objectStoreBase, error) {
	p := src.Properties

	maxSize := int64(0)
	if v := p["maxFileSize"]; v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, errs.Config("EXTRACT", "", "source "+src.Name+" maxFileSize not an integer", err)
		}
		maxSize = n
	}

	delim := ','
	if v := p["delimiter"]; v == "pipe" {
		delim = '|'
	}

	return &objectStoreBase{
		source:    src,
		endpoint:  p["endpoint"],
		bucket:    p["bucket"],
		region:    p["region"],
		prefix:    p["prefix"],
		secretID:  p["secretId"],
		secretKey: p["secretKey"],
		maxSize:   maxSize,
		delimiter: delim,
		gzipped:   p["gzip"] == "true",
		tempRoot:  tempRoot,
		log:       log,
	}, nil
}

func (b *objectStoreBase) validate(ctx *model.Context) error {
	if b.bucket == "" {
		return errs.Config("EXTRACT", ctx.CurrentDate, "source "+b.source.Name+" missing bucket", nil)
	}
	if (b.secretID == "") != (b.secretKey == "") {
		return errs.Config("EXTRACT", ctx.CurrentDate, "source "+b.source.Name+" has partial credentials", nil)
	}
	if ctx.CurrentDate == "" {
		return errs.Config("EXTRACT", ctx.CurrentDate, "missing current date", nil)
	}
	return nil
}

func (b *objectStoreBase) setup(stdctx context.Context, ctx *model.Context) error {
	client, err := objectstore.NewClient(stdctx, objectstore.ClientConfig{
		Endpoint:  b.endpoint,
		Bucket:    b.bucket,
		Region:    b.region,
		SecretID:  b.secretID,
		SecretKey: b.secretKey,
	})
	if err != nil {
		return err
	}
	b.client = client
	b.tempDir = filepath.Join(b.tempRoot, b.source.Name+"-"+strings.ReplaceAll(ctx.CurrentDate, ".", ""))
	return os.MkdirAll(b.tempDir, 0o755)
}

func (b *objectStoreBase) cleanup() error {
	if b.tempDir == "" {
		return nil
	}
	return os.RemoveAll(b.tempDir)
}

// fetchAll lists, size-checks, and sequentially downloads every file
// matching the resolved template for the given business date
// (§4.5 steps 1-3), returning the local file paths in key order.
func (b *objectStoreBase) fetchAll(stdctx context.Context, cliDate string) ([]string, error) {
	metas, err := objectstore.List(stdctx, b.client, b.bucket, b.prefix, cliDate)
	if err != nil {
		return nil, err
	}

	for _, m := range metas {
		if err := objectstore.SizeCheck(m, b.maxSize); err != nil {
			return nil, err
		}
	}

	var paths []string
	for _, m := range metas {
		select {
		case <-stdctx.Done():
			return nil, errs.Cancel("EXTRACT", "", "cancelled before downloading "+m.Key, stdctx.Err())
		default:
		}
		path, err := objectstore.Download(stdctx, b.client, b.bucket, m.Key, b.tempDir)
		if err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// readRows streams one file's rows, filtering out rows whose date
// portion does not match currentDate when files carry mixed dates
// (§4.5 step 4).
func (b *objectStoreBase) readRows(path, dateColumn, currentCLIDate string) ([]model.RawRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.Parse("EXTRACT", "", "opening downloaded file "+path, err)
	}
	defer f.Close()

	r, err := csvstream.Open(f, b.delimiter, b.gzipped, b.log)
	if err != nil {
		return nil, err
	}
	all, err := csvstream.ReadAll(r)
	if err != nil {
		return nil, err
	}

	if dateColumn == "" {
		return all, nil
	}

	var out []model.RawRecord
	for _, row := range all {
		if v, ok := row.Get(dateColumn); ok && !sameDate(v, currentCLIDate) {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

// sameDate compares a row's date column (which may appear as either
// YYYY.MM.DD or YYYYMMDD depending on source) against currentCLIDate
// (always YYYYMMDD), normalizing both to YYYYMMDD before comparing so
// mixed-date files (§4.5 step 4) are filtered correctly regardless of
// which format the source uses.
func sameDate(rowDate, currentCLIDate string) bool {
	return strings.ReplaceAll(rowDate, ".", "") == currentCLIDate
}

// ibSuffix appends the ".IB" product-identifier suffix required by
// post-processing (§4.5 step 6), idempotently.
func ibSuffix(productID string) string {
	if strings.HasSuffix(productID, ".IB") {
		return productID
	}
	return productID + ".IB"
}
