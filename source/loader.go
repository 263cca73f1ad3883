package source

import (
	"context"
	"errors"
	"time"

	apperrors "github.com/kbukum/tabkit/errors"
	"github.com/kbukum/tabkit/httpclient"
	"github.com/kbukum/tabkit/logger"
	"github.com/kbukum/tabkit/record"
	"github.com/kbukum/tabkit/storage"
	"github.com/kbukum/tabkit/storage/local"
)

// Fetcher downloads remote sources. *httpclient.Client satisfies it.
type Fetcher interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// Request is everything a Loader needs to produce raw records.
type Request struct {
	Input
	// Encoding labels the bytes of path and url sources.
	Encoding string
	// Header marks the first CSV row as column names.
	Header bool
	// Delimiter and Comment set the CSV dialect; each is empty or one
	// character.
	Delimiter string
	Comment   string
	// Before rewrites decoded text before it is parsed.
	Before func(string) (string, error)
}

// Loader reads, decodes and parses request sources.
type Loader struct {
	storage  storage.Storage
	maxBytes int64
	fetcher  Fetcher
	log      *logger.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithStorage sets the file boundary. A positive maxBytes caps file size.
func WithStorage(s storage.Storage, maxBytes int64) LoaderOption {
	return func(l *Loader) {
		l.storage = s
		l.maxBytes = maxBytes
	}
}

// WithFetcher sets the network boundary.
func WithFetcher(f Fetcher) LoaderOption {
	return func(l *Loader) {
		l.fetcher = f
	}
}

// WithLogger sets the loader's logger.
func WithLogger(log *logger.Logger) LoaderOption {
	return func(l *Loader) {
		l.log = log
	}
}

// NewLoader creates a Loader. Without options it reads files relative to the
// working directory and downloads with a default HTTP client.
func NewLoader(opts ...LoaderOption) (*Loader, error) {
	l := &Loader{}
	for _, opt := range opts {
		opt(l)
	}
	if l.storage == nil {
		s, err := local.NewStorage("")
		if err != nil {
			return nil, err
		}
		l.storage = s
	}
	if l.fetcher == nil {
		c, err := httpclient.New(httpclient.Config{})
		if err != nil {
			return nil, err
		}
		l.fetcher = c
	}
	if l.log == nil {
		l.log = logger.Get("source")
	}
	return l, nil
}

// Load produces the raw records for req according to plan. Failures are
// *errors.AppError values with a READ_FAILED, FETCH_FAILED, DECODE_FAILED,
// HOOK_FAILED or PARSE_FAILED code.
func (l *Loader) Load(ctx context.Context, plan Plan, req Request) ([]record.Record, error) {
	start := time.Now()
	var (
		text string
		err  error
	)
	switch plan.Kind {
	case KindData:
		records, err := Normalize(req.Data)
		if err != nil {
			return nil, apperrors.ParseFailed("data", err)
		}
		return records, nil
	case KindText:
		text = *req.Text
	case KindPath:
		text, err = l.readFile(ctx, req.Path, req.Encoding)
	case KindURL:
		text, err = l.fetch(ctx, req.URL, req.Encoding)
	default:
		return nil, apperrors.MissingSource()
	}
	if err != nil {
		return nil, err
	}

	if req.Before != nil {
		if text, err = req.Before(text); err != nil {
			return nil, apperrors.HookFailed("before", err)
		}
	}

	records, err := parse(plan.Format, text, req)
	if err != nil {
		return nil, apperrors.ParseFailed(string(plan.Format), err)
	}
	l.log.Debug("source loaded", map[string]interface{}{
		logger.FieldSource:   string(plan.Kind),
		logger.FieldFormat:   string(plan.Format),
		logger.FieldRecords:  len(records),
		logger.FieldDuration: time.Since(start).Milliseconds(),
	})
	return records, nil
}

func (l *Loader) readFile(ctx context.Context, path, encoding string) (string, error) {
	b, err := storage.ReadAll(ctx, l.storage, path, l.maxBytes)
	if err != nil {
		return "", apperrors.ReadFailed(path, err)
	}
	l.log.Debug("file read", map[string]interface{}{"path": path, logger.FieldBytes: len(b)})
	return Decode(b, encoding)
}

func (l *Loader) fetch(ctx context.Context, url, encoding string) (string, error) {
	b, err := l.fetcher.Get(ctx, url)
	if err != nil {
		ae := apperrors.FetchFailed(url, err)
		var herr *httpclient.Error
		if errors.As(err, &herr) {
			ae.Retryable = herr.Retryable
			if herr.StatusCode > 0 {
				ae.WithDetail("status", herr.StatusCode)
			}
		}
		return "", ae
	}
	l.log.Debug("url fetched", map[string]interface{}{"url": url, logger.FieldBytes: len(b)})
	return Decode(b, encoding)
}

func parse(format Format, text string, req Request) ([]record.Record, error) {
	switch format {
	case FormatJSON:
		return ParseJSON(text)
	case FormatYAML:
		return ParseYAML(text)
	}
	opts, err := dialectOptions(req.Delimiter, req.Comment)
	if err != nil {
		return nil, err
	}
	return ParseCSV(text, req.Header, opts...)
}
