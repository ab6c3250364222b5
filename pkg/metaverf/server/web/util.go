package web

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"
)

const (
	successJsonKey = "success"
	errorJsonKey   = "error"
)

type GenericApiResponseBody map[string]any

func NewGenericApiSuccessResponseBody() GenericApiResponseBody {
	return map[string]any{
		successJsonKey: true,
	}
}

func NewGenericApiFailureResponseBody(err error) GenericApiResponseBody {
	return map[string]any{
		successJsonKey: false,
		errorJsonKey:   err.Error(),
	}
}

func (b *GenericApiResponseBody) ToString() string {
	marshalled, _ := json.Marshal(b)
	return string(marshalled)
}

// clientIP is the first forwarded address when behind a proxy, otherwise the
// connection's remote address
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get(forwardedForHeaderName); len(forwarded) > 0 {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
