package rates

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/zhukovvlad/designfee-go/cmd/pkg/logging"
)

//go:generate mockgen -source=source.go -destination=mocks/source_mock.go -package=mocks

// maxPayloadSize - верхняя граница размера опубликованной таблицы.
const maxPayloadSize = 10 << 20

// Source отдаёт содержимое опубликованной таблицы по URL.
type Source interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// HTTPSource загружает CSV по HTTP с таймаутом и ограничением частоты запросов.
type HTTPSource struct {
	client  *http.Client
	limiter *rate.Limiter
	logger  *logging.Logger
}

// NewHTTPSource создает HTTPSource. requestsPerSecond <= 0 отключает ограничение.
func NewHTTPSource(timeout time.Duration, requestsPerSecond int, logger *logging.Logger) *HTTPSource {
	limit := rate.Inf
	burst := 1
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
		burst = requestsPerSecond
	}
	return &HTTPSource{
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(limit, burst),
		logger:  logger,
	}
}

func (s *HTTPSource) Fetch(ctx context.Context, url string) ([]byte, error) {
	logger := s.logger.WithField("method", "Fetch")

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("ожидание лимита запросов: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("некорректный URL источника: %w", err)
	}

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		logger.Errorf("Ошибка запроса к источнику: %v", err)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Warnf("Источник ответил статусом %d", resp.StatusCode)
		return nil, fmt.Errorf("неожиданный статус ответа: %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadSize))
	if err != nil {
		return nil, fmt.Errorf("чтение ответа источника: %w", err)
	}

	logger.Debugf("Загружено %d байт за %v", len(body), time.Since(start))
	return body, nil
}
