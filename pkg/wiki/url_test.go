package wiki

import (
	"testing"

	"github.com/matzehuels/wikigraph/pkg/errors"
)

func TestParseURL(t *testing.T) {
	tests := []struct {
		raw       string
		wantKind  Kind
		wantLang  string
		wantTitle string
	}{
		{"https://en.wikipedia.org/wiki/Graph_theory", KindArticle, "en", "Graph theory"},
		{"https://de.m.wikipedia.org/wiki/Graphentheorie", KindArticle, "de", "Graphentheorie"},
		{"https://en.wikipedia.org/wiki/Erd%C5%91s_number", KindArticle, "en", "Erdős number"},
		{"https://en.wikipedia.org/wiki/AC/DC", KindArticle, "en", "AC/DC"},
		{"https://en.wikipedia.org/wiki/Graph_theory#History", KindArticle, "en", "Graph theory"},
		{"https://en.wikipedia.org/wiki/Talk:Graph_theory", KindOther, "", ""},
		{"https://en.wikipedia.org/wiki/User_talk:Example", KindOther, "", ""},
		{"https://en.wikipedia.org/wiki/Category:Graph_theory", KindOther, "", ""},
		{"https://en.wikipedia.org/wiki/Star_Wars:_Episode_IV_%E2%80%93_A_New_Hope", KindArticle, "en", "Star Wars: Episode IV – A New Hope"},
		{"https://upload.wikimedia.org/wikipedia/commons/5/5b/6n-graf.svg", KindFile, "", "6n-graf.svg"},
		{"https://en.wikipedia.org/wiki/File:Euler.PNG", KindFile, "", "File:Euler.PNG"},
		{"https://arxiv.org/abs/1234.5678", KindExternalArticle, "", ""},
		{"https://doi.org/10.1000/182", KindExternalArticle, "", ""},
		{"https://example.com/page", KindOther, "", ""},
		{"https://wikipedia.org/wiki/Graph_theory", KindOther, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			u, err := ParseURL(tt.raw)
			if err != nil {
				t.Fatalf("ParseURL: %v", err)
			}
			if u.Kind != tt.wantKind || u.Lang != tt.wantLang || u.Title != tt.wantTitle {
				t.Errorf("ParseURL = {%v %q %q}, want {%v %q %q}", u.Kind, u.Lang, u.Title, tt.wantKind, tt.wantLang, tt.wantTitle)
			}
		})
	}
}

func TestHasNamespace(t *testing.T) {
	tests := []struct {
		title string
		want  bool
	}{
		{"Graph theory", false},
		{"Talk:Graph theory", true},
		{"file:Euler.png", true},
		{"Wikipedia_talk:Manual of Style", true},
		{"Portal talk:Mathematics", true},
		{"Star Wars: Episode IV – A New Hope", false},
		{"Re:Zero", false},
		{":Leading colon", false},
	}
	for _, tt := range tests {
		if got := HasNamespace(tt.title); got != tt.want {
			t.Errorf("HasNamespace(%q) = %v, want %v", tt.title, got, tt.want)
		}
	}
}

func TestArticleURL(t *testing.T) {
	tests := []struct {
		lang, title string
		want        string
	}{
		{"en", "Graph theory", "https://en.wikipedia.org/wiki/Graph_theory"},
		{"en", "AC/DC", "https://en.wikipedia.org/wiki/AC/DC"},
		{"en", "Erdős number", "https://en.wikipedia.org/wiki/Erd%C5%91s_number"},
		{"de", "graphentheorie", "https://de.wikipedia.org/wiki/Graphentheorie"},
		{"", "Tree", "https://en.wikipedia.org/wiki/Tree"},
		{"en", "Star Wars: Episode IV – A New Hope", "https://en.wikipedia.org/wiki/Star_Wars:_Episode_IV_%E2%80%93_A_New_Hope"},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			got := ArticleURL(tt.lang, tt.title)
			if got != tt.want {
				t.Fatalf("ArticleURL(%q, %q) = %q, want %q", tt.lang, tt.title, got, tt.want)
			}
			u, err := ParseURL(got)
			if err != nil {
				t.Fatalf("ParseURL: %v", err)
			}
			if u.Kind != KindArticle || u.Title != NormalizeTitle(tt.title) {
				t.Errorf("ParseURL(%q) = {%v %q}, want the article back", got, u.Kind, u.Title)
			}
		})
	}
}

func TestParseURLRejectsNonHTTP(t *testing.T) {
	for _, raw := range []string{"", "ftp://en.wikipedia.org/wiki/X", "Graph theory"} {
		if _, err := ParseURL(raw); !errors.Is(err, errors.ErrCodeInvalidURL) {
			t.Errorf("ParseURL(%q) err = %v, want INVALID_URL", raw, err)
		}
	}
}

func TestNormalizeTitle(t *testing.T) {
	tests := []struct{ in, want string }{
		{"graph_theory", "Graph theory"},
		{"  Graph   theory ", "Graph theory"},
		{"ëuler", "Ëuler"},
		{"", ""},
		{"Already fine", "Already fine"},
	}
	for _, tt := range tests {
		if got := NormalizeTitle(tt.in); got != tt.want {
			t.Errorf("NormalizeTitle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestResolveSeed(t *testing.T) {
	tests := []struct {
		name      string
		arg       string
		lang      string
		wantLang  string
		wantTitle string
		wantCode  errors.Code
	}{
		{"title", "graph theory", "en", "en", "Graph theory", ""},
		{"article url wins language", "https://fr.wikipedia.org/wiki/Th%C3%A9orie_des_graphes", "en", "fr", "Théorie des graphes", ""},
		{"non article url", "https://example.com/x", "en", "", "", errors.ErrCodeInvalidInput},
		{"empty title", "   ", "en", "", "", errors.ErrCodeInvalidTitle},
		{"bad language", "Tree", "EN", "", "", errors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lang, title, err := ResolveSeed(tt.arg, tt.lang)
			if tt.wantCode != "" {
				if !errors.Is(err, tt.wantCode) {
					t.Fatalf("err = %v, want %v", err, tt.wantCode)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveSeed: %v", err)
			}
			if lang != tt.wantLang || title != tt.wantTitle {
				t.Errorf("ResolveSeed = %q, %q; want %q, %q", lang, title, tt.wantLang, tt.wantTitle)
			}
		})
	}
}
