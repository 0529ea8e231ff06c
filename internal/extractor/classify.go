package extractor

import "strings"

// classifyFailure maps a normalized error message to a FailureType via
// substring matching, grounded on smart_content_extractor.py's
// _classify_failure_type.
func classifyFailure(err error, isTimeout bool) FailureType {
	if isTimeout {
		return FailureTimeout
	}
	if err == nil {
		return FailureOther
	}
	msg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(msg, "403") || strings.Contains(msg, "forbidden"):
		return FailureHTTP403
	case strings.Contains(msg, "404") || strings.Contains(msg, "not found"):
		return FailureHTTP404
	case strings.Contains(msg, "429") || strings.Contains(msg, "rate limit") || strings.Contains(msg, "too many requests"):
		return FailureRateLimited
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline exceeded"):
		return FailureTimeout
	case strings.Contains(msg, "tls") || strings.Contains(msg, "certificate") || strings.Contains(msg, "x509"):
		return FailureSSLError
	case strings.Contains(msg, "no such host") || strings.Contains(msg, "dns"):
		return FailureDNSError
	case strings.Contains(msg, "parse") || strings.Contains(msg, "decode") || strings.Contains(msg, "malformed"):
		return FailureParseError
	case strings.Contains(msg, "connection refused") || strings.Contains(msg, "connection reset") || strings.Contains(msg, "broken pipe") || strings.Contains(msg, "eof"):
		return FailureConnection
	default:
		return FailureOther
	}
}
