// Пакет export — выгрузка архивов документов в S3-совместимое хранилище.
//
// Архив кладётся под ключ <prefix><filename>, клиент получает presigned
// GET-ссылку с ограниченным временем жизни.
package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ErrNotConfigured — bucket не задан.
var ErrNotConfigured = errors.New("экспорт архивов в S3 не настроен")

// Config — параметры S3.
type Config struct {
	Bucket string
	// Prefix — префикс ключей (например, archives/)
	Prefix string
	// Endpoint — адрес S3-совместимого сервиса (пусто — AWS)
	Endpoint string
	Region   string
	// AccessKey и SecretKey — статические ключи (пусто — цепочка AWS по умолчанию)
	AccessKey string
	SecretKey string
	// URLTTL — время жизни presigned-ссылки
	URLTTL time.Duration
}

// Result — выгруженный архив.
type Result struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

type putClient interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type presignClient interface {
	PresignGetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// S3Exporter выгружает архивы в bucket.
type S3Exporter struct {
	client    putClient
	presigner presignClient
	cfg       Config
	logger    *slog.Logger
}

// New создаёт экспортёр по конфигурации.
// Для собственного endpoint (MinIO, LocalStack) включается path-style адресация.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*S3Exporter, error) {
	if cfg.Bucket == "" {
		return nil, ErrNotConfigured
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("загрузка конфигурации AWS SDK: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return newS3Exporter(client, s3.NewPresignClient(client), cfg, logger), nil
}

func newS3Exporter(client putClient, presigner presignClient, cfg Config, logger *slog.Logger) *S3Exporter {
	return &S3Exporter{
		client:    client,
		presigner: presigner,
		cfg:       cfg,
		logger:    logger.With(slog.String("component", "s3_export")),
	}
}

// Export выгружает архив и возвращает ключ и presigned-ссылку.
func (e *S3Exporter) Export(ctx context.Context, filename string, data []byte) (Result, error) {
	key := ObjectKey(e.cfg.Prefix, filename)

	_, err := e.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(e.cfg.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String("application/zip"),
	})
	if err != nil {
		return Result{}, fmt.Errorf("выгрузка %s в S3: %w", key, err)
	}

	req, err := e.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket:                     aws.String(e.cfg.Bucket),
		Key:                        aws.String(key),
		ResponseContentDisposition: aws.String(fmt.Sprintf(`attachment; filename="%s"`, filename)),
	}, s3.WithPresignExpires(e.cfg.URLTTL))
	if err != nil {
		return Result{}, fmt.Errorf("presigned-ссылка для %s: %w", key, err)
	}

	e.logger.Info("Архив выгружен в S3",
		slog.String("bucket", e.cfg.Bucket),
		slog.String("key", key),
		slog.Int("bytes", len(data)),
	)
	return Result{Key: key, URL: req.URL}, nil
}

// ObjectKey соединяет префикс и имя файла ровно одним "/".
func ObjectKey(prefix, filename string) string {
	prefix = strings.Trim(prefix, "/")
	filename = strings.TrimLeft(filename, "/")
	if prefix == "" {
		return filename
	}
	return prefix + "/" + filename
}
