// retrieval.go — получение файла документа цепочкой стратегий.
//
// Стратегии пробуются по порядку: direct (GET абсолютного URL без
// credential), затем proxy (POST /downloadDocument с credential).
// Стратегия возвращает Outcome и никогда не паникует; цепочка переходит
// к следующей стратегии по признаку Outcome.OK, а не по типу ошибки.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/goartstore/dms-admin/internal/domain/model"
	"github.com/bigkaa/goartstore/dms-admin/internal/session"
)

// Имена стратегий (лейбл strategy в метриках).
const (
	StrategyDirect = "direct"
	StrategyProxy  = "proxy"
)

// Причины отказа стратегии без сетевого запроса.
var (
	errNoLocator   = errors.New("у записи нет локатора файла")
	errNotAbsolute = errors.New("локатор не является абсолютным URL")
)

var retrievalTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "dms_retrieval_total",
	Help: "Попытки получения файла (по стратегии и результату).",
}, []string{"strategy", "outcome"})

// Outcome — результат одной стратегии или всей цепочки.
type Outcome struct {
	// File — полученный файл (nil при неудаче)
	File *model.RetrievedFile
	// Err — причина неудачи (nil при успехе)
	Err error
}

// OK — файл получен.
func (o Outcome) OK() bool { return o.File != nil }

func failed(err error) Outcome { return Outcome{Err: err} }

// Strategy — один способ получить файл записи.
type Strategy interface {
	Name() string
	Retrieve(ctx context.Context, cred session.Credential, rec model.DocumentRecord, filename string) Outcome
}

// DirectStrategy скачивает абсолютный (pre-signed) URL без credential.
type DirectStrategy struct {
	fetcher DirectFetcher
}

// NewDirectStrategy создаёт стратегию прямого скачивания.
func NewDirectStrategy(fetcher DirectFetcher) *DirectStrategy {
	return &DirectStrategy{fetcher: fetcher}
}

// Name — имя стратегии.
func (s *DirectStrategy) Name() string { return StrategyDirect }

// Retrieve скачивает файл. Относительный или отсутствующий локатор — отказ без запроса.
func (s *DirectStrategy) Retrieve(ctx context.Context, _ session.Credential, rec model.DocumentRecord, filename string) Outcome {
	loc, ok := rec.Locator()
	if !ok {
		return failed(errNoLocator)
	}
	if !model.IsAbsoluteURL(loc) {
		return failed(errNotAbsolute)
	}

	data, contentType, err := s.fetcher.Fetch(ctx, loc)
	if err != nil {
		return failed(fmt.Errorf("direct: %w", err))
	}
	return Outcome{File: &model.RetrievedFile{
		Data:        data,
		Filename:    filename,
		ContentType: contentType,
		Strategy:    StrategyDirect,
	}}
}

// ProxyStrategy получает файл через POST /downloadDocument {path}.
type ProxyStrategy struct {
	api DocumentAPI
}

// NewProxyStrategy создаёт стратегию proxy-скачивания.
func NewProxyStrategy(api DocumentAPI) *ProxyStrategy {
	return &ProxyStrategy{api: api}
}

// Name — имя стратегии.
func (s *ProxyStrategy) Name() string { return StrategyProxy }

// Retrieve отправляет локатор в proxy endpoint. Без локатора — отказ без запроса.
func (s *ProxyStrategy) Retrieve(ctx context.Context, cred session.Credential, rec model.DocumentRecord, filename string) Outcome {
	loc, ok := rec.Locator()
	if !ok {
		return failed(errNoLocator)
	}

	data, contentType, err := s.api.ProxyDownload(ctx, cred.Token, loc)
	if err != nil {
		return failed(fmt.Errorf("proxy: %w", err))
	}
	return Outcome{File: &model.RetrievedFile{
		Data:        data,
		Filename:    filename,
		ContentType: contentType,
		Strategy:    StrategyProxy,
	}}
}

// Chain — упорядоченная цепочка стратегий.
type Chain struct {
	strategies []Strategy
	logger     *slog.Logger
}

// NewChain создаёт цепочку из стратегий в порядке применения.
func NewChain(logger *slog.Logger, strategies ...Strategy) *Chain {
	return &Chain{
		strategies: strategies,
		logger:     logger.With(slog.String("component", "retrieval_chain")),
	}
}

// Retrieve пробует стратегии по порядку и возвращает первый успех.
// При неудаче всех стратегий Err объединяет их причины.
func (c *Chain) Retrieve(ctx context.Context, cred session.Credential, rec model.DocumentRecord, filename string) Outcome {
	var errs []error
	for _, s := range c.strategies {
		out := s.Retrieve(ctx, cred, rec, filename)
		if out.OK() {
			retrievalTotal.WithLabelValues(s.Name(), "ok").Inc()
			return out
		}
		retrievalTotal.WithLabelValues(s.Name(), "fail").Inc()
		errs = append(errs, out.Err)
	}

	err := errors.Join(errs...)
	if err == nil {
		err = ErrRetrievalFailed
	}
	c.logger.Debug("Файл не получен ни одной стратегией",
		slog.String("filename", filename),
		slog.String("error", err.Error()),
	)
	return failed(err)
}
