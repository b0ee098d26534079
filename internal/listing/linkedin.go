package listing

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

const (
	linkedInURL        = "https://www.linkedin.com"
	linkedInSearchPath = "/jobs/search"
	defaultUserAgent   = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"
	defaultHTTPTimeout = 10 * time.Second
)

// Markup of the public job search and posting pages.
const (
	cardSelector        = "div.base-card"
	titleSelector       = "h3.base-search-card__title"
	companySelector     = "h4.base-search-card__subtitle"
	locationSelector    = "span.job-search-card__location"
	linkSelector        = "a.base-card__full-link"
	descriptionSelector = "div.description__text"
	showMoreSelector    = "section.show-more-less-html"
)

// LinkedIn reads the public (guest) LinkedIn job search pages.
type LinkedIn struct {
	HTTPClient *http.Client
	UserAgent  string
	BaseURL    string
	logger     *zap.Logger
}

var (
	_ Source = (*LinkedIn)(nil)
	_ Parser = (*LinkedIn)(nil)
)

// NewLinkedIn creates the source. Every request is bounded by timeout and is
// attempted once.
func NewLinkedIn(logger *zap.Logger, userAgent string, timeout time.Duration) *LinkedIn {
	if strings.TrimSpace(userAgent) == "" {
		userAgent = defaultUserAgent
	}
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &LinkedIn{
		HTTPClient: &http.Client{Timeout: timeout},
		UserAgent:  userAgent,
		BaseURL:    linkedInURL,
		logger:     logger,
	}
}

func (l *LinkedIn) Name() string { return "linkedin" }

func (l *LinkedIn) Search(ctx context.Context, query, location string) (io.ReadCloser, error) {
	q := url.Values{}
	q.Set("keywords", query)
	q.Set("location", location)

	return l.get(ctx, strings.TrimRight(l.BaseURL, "/")+linkedInSearchPath+"?"+q.Encode())
}

func (l *LinkedIn) Detail(ctx context.Context, link string) (io.ReadCloser, error) {
	return l.get(ctx, l.resolve(link))
}

func (l *LinkedIn) get(ctx context.Context, target string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &FetchError{URL: target, Err: err}
	}
	req.Header.Set("User-Agent", l.UserAgent)
	req.Header.Set("Accept", "text/html")

	l.logger.Debug("make request", zap.String("url", target))
	resp, err := l.HTTPClient.Do(req)
	if err != nil {
		return nil, &FetchError{URL: target, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, &FetchError{URL: target, Status: resp.StatusCode}
	}

	return resp.Body, nil
}

// resolve turns relative posting links into absolute ones.
func (l *LinkedIn) resolve(link string) string {
	u, err := url.Parse(link)
	if err != nil || u.IsAbs() {
		return link
	}
	base, err := url.Parse(l.BaseURL)
	if err != nil {
		return link
	}
	return base.ResolveReference(u).String()
}

func (l *LinkedIn) ParseCards(r io.Reader, limit int) ([]*JobPosting, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	var postings []*JobPosting
	doc.Find(cardSelector).EachWithBreak(func(_ int, card *goquery.Selection) bool {
		if limit > 0 && len(postings) >= limit {
			return false
		}

		title := cleanText(card.Find(titleSelector).First().Text())
		company := cleanText(card.Find(companySelector).First().Text())
		link, _ := card.Find(linkSelector).First().Attr("href")
		link = strings.TrimSpace(link)

		if title == "" || company == "" || link == "" {
			l.logger.Debug("skipping incomplete job card", zap.String("title", title), zap.String("company", company))
			return true
		}

		postings = append(postings, &JobPosting{
			Title:    title,
			Company:  company,
			Location: cleanText(card.Find(locationSelector).First().Text()),
			URL:      link,
		})
		return true
	})

	return postings, nil
}

func (l *LinkedIn) ParseDescription(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", err
	}

	for _, selector := range []string{descriptionSelector, showMoreSelector} {
		region := doc.Find(selector).First()
		if region.Length() == 0 {
			continue
		}
		if text := regionText(region); text != "" {
			return text, nil
		}
	}

	return "", nil
}

// regionText renders a description region as markdown, falling back to plain text.
func regionText(region *goquery.Selection) string {
	if inner, err := region.Html(); err == nil {
		if md, err := htmltomarkdown.ConvertString(inner); err == nil {
			if md = strings.TrimSpace(md); md != "" {
				return md
			}
		}
	}
	return strings.TrimSpace(region.Text())
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
