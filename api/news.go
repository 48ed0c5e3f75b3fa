package api

import "context"

// NewsService covers the /market-news endpoints.
type NewsService struct {
	client *Client
}

// Market returns general market news.
func (s *NewsService) Market(ctx context.Context) ([]Article, error) {
	return s.list(ctx, "news.market", "/market-news/")
}

// Crypto returns crypto-specific news.
func (s *NewsService) Crypto(ctx context.Context) ([]Article, error) {
	return s.list(ctx, "news.crypto", "/market-news/crypto")
}

func (s *NewsService) list(ctx context.Context, op, path string) ([]Article, error) {
	var articles []Article
	if err := s.client.get(ctx, op, path, nil, &articles); err != nil {
		return nil, err
	}
	for i := range articles {
		if articles[i].Title == "" {
			articles[i].Title = articles[i].Headline
		}
	}
	return articles, nil
}
