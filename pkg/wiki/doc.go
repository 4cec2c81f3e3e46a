// Package wiki is the Wikipedia link source.
//
// [Source.FetchLinks] asks the MediaWiki Action API for the main-namespace
// links of an article (prop=links, following plcontinue) and returns the
// linked titles in API order. Requests share a token-bucket rate limiter and
// a circuit breaker, transient failures are retried with backoff and results
// are cached per language and title:
//
//	src := wiki.NewSource(fileCache, nil, wiki.Options{Language: "en"})
//	links, err := src.FetchLinks(ctx, "Graph theory")
//
// Failures carry codes from package errors: ARTICLE_NOT_FOUND for missing
// pages, RATE_LIMITED for HTTP 429, CIRCUIT_OPEN while the breaker is open,
// and NETWORK_ERROR or TIMEOUT otherwise.
//
// [ParseURL] classifies URLs (article, image file, external paper, other)
// and [ResolveSeed] accepts either a title or an article URL on the command
// line.
package wiki
