package wiki

import (
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/matzehuels/wikigraph/pkg/errors"
)

// Kind classifies a URL found on or pointing at Wikipedia.
type Kind int

const (
	// KindOther is any URL that fits no other kind.
	KindOther Kind = iota
	// KindArticle is a main-namespace Wikipedia article.
	KindArticle
	// KindFile is a link to an image file.
	KindFile
	// KindExternalArticle is a paper on arXiv or behind a DOI.
	KindExternalArticle
)

// String returns the lowercase kind name.
func (k Kind) String() string {
	switch k {
	case KindArticle:
		return "article"
	case KindFile:
		return "file"
	case KindExternalArticle:
		return "external"
	default:
		return "other"
	}
}

// URL is a classified URL.
type URL struct {
	Raw   string
	Kind  Kind
	Lang  string // Language edition, set for articles
	Title string // Decoded, normalized title for articles; file name for files
}

var (
	articleHostRE = regexp.MustCompile(`^([a-z]{2,3}(?:-[a-z]{2,8})*|simple)(?:\.m)?\.wikipedia\.org$`)
	fileExts      = []string{".png", ".jpg", ".jpeg", ".gif", ".svg"}
	externalHosts = []string{"arxiv.org", "doi.org"}
)

// ParseURL parses and classifies raw. Only http and https URLs are accepted.
//
// An article URL has the form https://<lang>.wikipedia.org/wiki/<Title>
// (the mobile host <lang>.m.wikipedia.org is accepted too). Titles with a
// namespace prefix such as "Talk:" or "File:" are not articles; see
// [HasNamespace].
func ParseURL(raw string) (URL, error) {
	if err := errors.ValidateURL(raw); err != nil {
		return URL{}, err
	}
	u, err := url.Parse(raw)
	if err != nil {
		return URL{}, errors.Wrap(errors.ErrCodeInvalidURL, err, "parse %q", raw)
	}
	out := URL{Raw: raw}
	host := strings.ToLower(u.Hostname())
	p := u.EscapedPath()

	if m := articleHostRE.FindStringSubmatch(host); m != nil && strings.HasPrefix(p, "/wiki/") {
		title, err := url.PathUnescape(strings.TrimPrefix(p, "/wiki/"))
		if err == nil && title != "" && !HasNamespace(title) {
			out.Kind = KindArticle
			out.Lang = m[1]
			out.Title = NormalizeTitle(title)
			return out, nil
		}
	}

	lower := strings.ToLower(u.Path)
	for _, ext := range fileExts {
		if strings.HasSuffix(lower, ext) {
			out.Kind = KindFile
			out.Title = path.Base(u.Path)
			return out, nil
		}
	}

	for _, h := range externalHosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			out.Kind = KindExternalArticle
			return out, nil
		}
	}
	return out, nil
}

// ArticleURL returns the canonical URL of title on the lang edition, the
// inverse of [ParseURL] for article URLs. An empty lang means
// [DefaultLanguage].
func ArticleURL(lang, title string) string {
	if lang == "" {
		lang = DefaultLanguage
	}
	u := url.URL{
		Scheme: "https",
		Host:   lang + ".wikipedia.org",
		Path:   "/wiki/" + strings.ReplaceAll(NormalizeTitle(title), " ", "_"),
	}
	return u.String()
}

// ResolveSeed turns a command-line argument into a language and title. arg
// is either a title, used with defaultLang, or a Wikipedia article URL whose
// language wins.
func ResolveSeed(arg, defaultLang string) (lang, title string, err error) {
	if strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://") {
		u, err := ParseURL(arg)
		if err != nil {
			return "", "", err
		}
		if u.Kind != KindArticle {
			return "", "", errors.New(errors.ErrCodeInvalidInput, "%s is not a Wikipedia article URL (%s)", arg, u.Kind)
		}
		return u.Lang, u.Title, nil
	}
	if err := errors.ValidateLanguage(defaultLang); err != nil {
		return "", "", err
	}
	title = NormalizeTitle(arg)
	if err := errors.ValidateTitle(title); err != nil {
		return "", "", err
	}
	return defaultLang, title, nil
}
