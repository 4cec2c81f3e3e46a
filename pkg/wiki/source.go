package wiki

import (
	"context"
	"net/url"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/wikigraph/pkg/cache"
	"github.com/matzehuels/wikigraph/pkg/errors"
)

// maxPages bounds plcontinue pagination for a single article.
const maxPages = 50

// Source fetches the outgoing article links of a Wikipedia page. It is the
// link source of an exploration session.
//
// Source is safe for concurrent use; concurrent calls for distinct titles
// proceed in parallel, limited only by the shared rate limiter.
type Source struct {
	client   *Client
	lang     string
	endpoint string
	keyer    cache.Keyer
	refresh  bool
	logger   *log.Logger
}

// NewSource creates a link source for one language edition.
func NewSource(backend cache.Cache, keyer cache.Keyer, opts Options) *Source {
	opts = opts.withDefaults()
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	endpoint := opts.Endpoint
	if endpoint == "" {
		endpoint = EndpointFor(opts.Language)
	}
	return &Source{
		client:   NewClient(backend, opts),
		lang:     opts.Language,
		endpoint: endpoint,
		keyer:    keyer,
		refresh:  opts.Refresh,
		logger:   opts.Logger,
	}
}

// Language returns the language edition served by s.
func (s *Source) Language() string { return s.lang }

// linksResponse is the formatversion=2 shape of a prop=links query.
type linksResponse struct {
	Continue *struct {
		PLContinue string `json:"plcontinue"`
	} `json:"continue"`
	Query struct {
		Pages []struct {
			Title   string `json:"title"`
			Missing bool   `json:"missing"`
			Invalid bool   `json:"invalid"`
			Links   []struct {
				Title string `json:"title"`
			} `json:"links"`
		} `json:"pages"`
	} `json:"query"`
	Error *struct {
		Code string `json:"code"`
		Info string `json:"info"`
	} `json:"error"`
}

// FetchLinks returns the titles of the main-namespace articles linked from
// title, deduplicated, in API order. Redirects are followed. A missing page
// yields an ARTICLE_NOT_FOUND error.
func (s *Source) FetchLinks(ctx context.Context, title string) ([]string, error) {
	title = NormalizeTitle(title)
	if err := errors.ValidateTitle(title); err != nil {
		return nil, err
	}

	var links []string
	key := s.keyer.LinksKey(s.lang, title)
	err := s.client.Cached(ctx, key, s.refresh, &links, func() error {
		var err error
		links, err = s.fetch(ctx, title)
		return err
	})
	if err != nil {
		return nil, err
	}
	return links, nil
}

func (s *Source) fetch(ctx context.Context, title string) ([]string, error) {
	params := url.Values{
		"action":        {"query"},
		"format":        {"json"},
		"formatversion": {"2"},
		"prop":          {"links"},
		"plnamespace":   {"0"},
		"pllimit":       {"max"},
		"redirects":     {"1"},
		"titles":        {title},
	}

	seen := make(map[string]struct{})
	links := []string{}
	for page := 0; page < maxPages; page++ {
		var resp linksResponse
		if err := s.client.Get(ctx, apiURL(s.endpoint, params), &resp); err != nil {
			return nil, err
		}
		if resp.Error != nil {
			return nil, errors.New(errors.ErrCodeNetwork, "api error %s: %s", resp.Error.Code, resp.Error.Info)
		}
		for _, p := range resp.Query.Pages {
			if p.Missing || p.Invalid {
				return nil, errors.New(errors.ErrCodeArticleNotFound, "article %q not found", title)
			}
			for _, l := range p.Links {
				if _, dup := seen[l.Title]; dup || l.Title == p.Title {
					continue
				}
				seen[l.Title] = struct{}{}
				links = append(links, l.Title)
			}
		}
		if resp.Continue == nil || resp.Continue.PLContinue == "" {
			s.logger.Debug("links fetched", "title", title, "links", len(links), "pages", page+1)
			return links, nil
		}
		params.Set("plcontinue", resp.Continue.PLContinue)
	}
	s.logger.Warn("link pagination truncated", "title", title, "links", len(links))
	return links, nil
}
