// Package extractor implements the Content Extractor: given a URL, select
// one of {HTML structural, hosted crawler, PDF parser} and return cleaned
// text plus metadata, with a fallback chain on failure. Adapted from the
// teacher's internal/extractor package (dispatcher.go, webpage.go, pdf.go),
// generalized to the fixed three-strategy contract and the FetchOutcome
// shape instead of the teacher's per-source-type ExtractedResult union.
package extractor

import "time"

// Method identifies which strategy produced a FetchOutcome.
type Method string

const (
	MethodHTMLStructural           Method = "html_structural"
	MethodHostedCrawler            Method = "hosted_crawler"
	MethodPDFParser                Method = "pdf_parser"
	MethodSnippetOnly              Method = "snippet_only"
	MethodSerpFallback             Method = "serp_fallback"
	MethodSerpFallbackAfterFailure Method = "serp_fallback_after_failure"
)

// FailureType classifies why an extraction attempt failed, driven by
// substring matching over the normalized error message (see classify.go).
type FailureType string

const (
	FailureHTTP403       FailureType = "HTTP_403"
	FailureHTTP404       FailureType = "HTTP_404"
	FailureRateLimited   FailureType = "RATE_LIMITED"
	FailureTimeout       FailureType = "TIMEOUT"
	FailureSSLError      FailureType = "SSL_ERROR"
	FailureDNSError      FailureType = "DNS_ERROR"
	FailureParseError    FailureType = "PARSE_ERROR"
	FailureConnection    FailureType = "CONNECTION_ERROR"
	FailureOther         FailureType = "OTHER"
)

// ContentType is the result of the cheap, pre-dispatch content sniff.
type ContentType string

const (
	ContentTypePDF  ContentType = "pdf"
	ContentTypeHTML ContentType = "html"
)

// Options configures one Extract call, matching the specification's
// Content Extractor contract.
type Options struct {
	AllowFallback      bool
	IncludeMetadata    bool
	MaxContentBytes    int
	MaxContentTokens   int
	SingleURLTimeout   time.Duration
}

// Outcome is the FetchOutcome entity: the result of extracting one URL.
type Outcome struct {
	Success          bool
	Content          string
	ContentLength    int
	EstimatedTokens  int
	IsTruncated      bool
	ExtractionMethod Method
	IsPDF            bool
	Error            string
	FailureType      FailureType
	IsTimeout        bool
	IsSerpFallback   bool
	Confidence       float64
	ElapsedMS        int64
	Metadata         map[string]string
}
