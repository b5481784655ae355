package usecase

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"mutitpay-storefront/config"
	"mutitpay-storefront/internal/domain"
	"mutitpay-storefront/pkg/cache"
	"mutitpay-storefront/pkg/logger"
	"mutitpay-storefront/pkg/utils"

	"golang.org/x/sync/errgroup"
)

// SearchUsecase evaluates the header search panel for a query
type SearchUsecase struct {
	api     domain.ProductSearcher
	cache   cache.CacheService
	timeout time.Duration

	minQueryLen  int
	resultLimit  int
	suggestLimit int
	seeMoreRatio float64
	seeMoreMin   int
	categoryTTL  time.Duration
	recommendTTL time.Duration
}

func NewSearchUsecase(api domain.ProductSearcher, c cache.CacheService, cfg *config.Config) *SearchUsecase {
	return &SearchUsecase{
		api:          api,
		cache:        c,
		timeout:      cfg.SearchTimeout,
		minQueryLen:  cfg.SearchMinQueryLen,
		resultLimit:  cfg.SearchResultLimit,
		suggestLimit: cfg.SearchSuggestLimit,
		seeMoreRatio: cfg.SearchSeeMoreRatio,
		seeMoreMin:   cfg.SearchSeeMoreMinHit,
		categoryTTL:  cfg.CacheCategoryTTL,
		recommendTTL: cfg.CacheRecommendationTTL,
	}
}

func (u *SearchUsecase) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if u.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, u.timeout)
}

// IsShortQuery reports whether q stays in recommendation mode
func (u *SearchUsecase) IsShortQuery(q string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(q)) < u.minQueryLen
}

// Recommendations loads bestsellers and on-sale products side by side.
// A failure is logged and both sections come back empty.
func (u *SearchUsecase) Recommendations(ctx context.Context) ([]domain.SearchHit, []domain.SearchHit) {
	ctx, cancel := u.withTimeout(ctx)
	defer cancel()

	var best, sale []domain.ProductSummary
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		best, err = cache.Remember(u.cache, keyHighlight(HighlightBestseller, u.suggestLimit), u.recommendTTL, func() ([]domain.ProductSummary, error) {
			return u.api.Bestsellers(gctx, u.suggestLimit)
		})
		return err
	})
	g.Go(func() error {
		var err error
		sale, err = cache.Remember(u.cache, keyHighlight(HighlightOnSale, u.suggestLimit), u.recommendTTL, func() ([]domain.ProductSummary, error) {
			return u.api.OnSale(gctx, u.suggestLimit)
		})
		return err
	})
	if err := g.Wait(); err != nil {
		logger.WithContext(ctx).Warn().Err(err).Msg("Failed to load search recommendations")
		return nil, nil
	}
	return toHits(best, u.suggestLimit), toHits(sale, u.suggestLimit)
}

// knownCategories returns the cached category and subcategory lists
func (u *SearchUsecase) knownCategories(ctx context.Context) ([]domain.Category, []domain.Subcategory, error) {
	var cats []domain.Category
	var subs []domain.Subcategory
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		cats, err = cache.Remember(u.cache, keyCategories, u.categoryTTL, func() ([]domain.Category, error) {
			return u.api.Categories(gctx)
		})
		return err
	})
	g.Go(func() error {
		var err error
		subs, err = cache.Remember(u.cache, keySubcategories, u.categoryTTL, func() ([]domain.Subcategory, error) {
			return u.api.Subcategories(gctx)
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return cats, subs, nil
}

// MatchCategories substring-matches the query against category and
// subcategory names, ignoring case and accents
func (u *SearchUsecase) MatchCategories(ctx context.Context, query string) ([]domain.CategoryLink, []domain.CategoryLink) {
	needle := utils.Normalize(strings.TrimSpace(query))
	if needle == "" {
		return nil, nil
	}
	cats, subs, err := u.knownCategories(ctx)
	if err != nil {
		logger.WithContext(ctx).Warn().Err(err).Msg("Failed to load categories for search")
		return nil, nil
	}
	return matchCategories(needle, cats, subs, u.suggestLimit)
}

func matchCategories(needle string, cats []domain.Category, subs []domain.Subcategory, limit int) ([]domain.CategoryLink, []domain.CategoryLink) {
	var outCats, outSubs []domain.CategoryLink
	for _, c := range cats {
		if len(outCats) == limit {
			break
		}
		if c.IsActive && strings.Contains(utils.Normalize(c.Name), needle) {
			outCats = append(outCats, domain.CategoryLink{ID: c.ID, Name: c.Name, URL: domain.CategoryURL(c.ID)})
		}
	}
	for _, s := range subs {
		if len(outSubs) == limit {
			break
		}
		if s.IsActive && strings.Contains(utils.Normalize(s.Name), needle) {
			outSubs = append(outSubs, domain.CategoryLink{ID: s.ID, Name: s.Name, URL: domain.SubcategoryURL(s.Category, s.ID)})
		}
	}
	return outCats, outSubs
}

// SearchProducts runs one remote search and keeps the first results
func (u *SearchUsecase) SearchProducts(ctx context.Context, query string) ([]domain.ProductSummary, error) {
	ctx, cancel := u.withTimeout(ctx)
	defer cancel()

	q := strings.TrimSpace(query)
	products, err := u.api.SearchProducts(ctx, q, u.resultLimit)
	if err != nil {
		return nil, err
	}
	if len(products) > u.resultLimit {
		products = products[:u.resultLimit]
	}
	return products, nil
}

// SeeMoreLink computes the dominant-category shortcut for a result set
func (u *SearchUsecase) SeeMoreLink(ctx context.Context, results []domain.ProductSummary) *domain.CategoryLink {
	if len(results) < u.seeMoreMin {
		return nil
	}
	cats, _, err := u.knownCategories(ctx)
	if err != nil {
		return nil
	}
	return DominantCategory(results, cats, u.seeMoreMin, u.seeMoreRatio)
}

// DominantCategory returns the category holding at least ratio of the
// results. Ties go to the category that reached the top count first.
func DominantCategory(results []domain.ProductSummary, categories []domain.Category, minResults int, ratio float64) *domain.CategoryLink {
	if len(results) < minResults || len(results) == 0 {
		return nil
	}
	counts := make(map[int64]int)
	var topID int64
	topCount := 0
	for _, p := range results {
		if p.CategoryID == 0 {
			continue
		}
		counts[p.CategoryID]++
		if counts[p.CategoryID] > topCount {
			topID = p.CategoryID
			topCount = counts[p.CategoryID]
		}
	}
	if topCount == 0 || float64(topCount)/float64(len(results)) < ratio {
		return nil
	}
	for _, c := range categories {
		if c.ID == topID {
			return &domain.CategoryLink{
				ID:   c.ID,
				Name: c.Name,
				URL:  domain.CategoryURL(c.ID),
				Text: "Ver mais em " + c.Name,
			}
		}
	}
	return nil
}

// RecommendationPanel is the dropdown shown for an empty or short query
func (u *SearchUsecase) RecommendationPanel(query string, best, sale []domain.SearchHit) domain.SearchPanel {
	panel := domain.SearchPanel{
		Open:        true,
		Query:       query,
		Mode:        domain.SearchModeRecommendations,
		Bestsellers: best,
		OnSale:      sale,
	}
	if len(best) == 0 && len(sale) == 0 {
		panel.Hint = domain.LabelTypeMore
	}
	return panel
}

// LoadingPanel shows local category matches while the remote search runs
func (u *SearchUsecase) LoadingPanel(query string, cats, subs []domain.CategoryLink) domain.SearchPanel {
	return domain.SearchPanel{
		Open:          true,
		Query:         query,
		Mode:          domain.SearchModeResults,
		Loading:       true,
		Hint:          domain.LabelSearching,
		Categories:    cats,
		Subcategories: subs,
	}
}

// ResultPanel settles the dropdown once the remote search answered
func (u *SearchUsecase) ResultPanel(ctx context.Context, query string, cats, subs []domain.CategoryLink, products []domain.ProductSummary, err error) domain.SearchPanel {
	panel := domain.SearchPanel{
		Open:          true,
		Query:         query,
		Mode:          domain.SearchModeResults,
		Categories:    cats,
		Subcategories: subs,
	}
	if err != nil {
		panel.Error = searchErrorMessage(err)
		return panel
	}
	panel.Products = toHits(products, u.resultLimit)
	panel.SeeMore = u.SeeMoreLink(ctx, products)
	if len(products) == 0 && len(cats) == 0 && len(subs) == 0 {
		panel.Empty = true
		panel.Hint = domain.LabelNoResults
	}
	return panel
}

// Suggest evaluates the whole panel for one query in a single call
func (u *SearchUsecase) Suggest(ctx context.Context, query string) domain.SearchPanel {
	if u.IsShortQuery(query) {
		best, sale := u.Recommendations(ctx)
		return u.RecommendationPanel(query, best, sale)
	}
	cats, subs := u.MatchCategories(ctx, query)
	products, err := u.SearchProducts(ctx, query)
	if err != nil {
		logger.WithContext(ctx).Warn().Err(err).Str("query", query).Msg("Product search failed")
	}
	return u.ResultPanel(ctx, query, cats, subs, products, err)
}

// SubmitURL is the full listing for a query. An empty query does not navigate.
func SubmitURL(query string) (string, bool) {
	q := strings.TrimSpace(query)
	if q == "" {
		return "", false
	}
	return "/products?q=" + strings.ReplaceAll(url.QueryEscape(q), "+", "%20"), true
}

// userMessager is implemented by remote errors that carry a displayable message
type userMessager interface {
	UserMessage() string
}

func searchErrorMessage(err error) string {
	var um userMessager
	if errors.As(err, &um) && um.UserMessage() != "" {
		return um.UserMessage()
	}
	return domain.MsgSearchFailed
}

func toHits(products []domain.ProductSummary, limit int) []domain.SearchHit {
	if len(products) == 0 {
		return nil
	}
	if limit > 0 && len(products) > limit {
		products = products[:limit]
	}
	hits := make([]domain.SearchHit, len(products))
	for i, p := range products {
		hits[i] = domain.NewSearchHit(p)
	}
	return hits
}
