package velux

import (
	"bytes"
	"io"
	"net/http"
	"net/url"
)

// formParamTransport adds fixed form parameters to token requests,
// oauth2.Config has no way to pass extra parameters on a password grant
type formParamTransport struct {
	base     http.RoundTripper
	tokenURL string
	params   map[string]string
}

func (t *formParamTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodPost || req.URL.String() != t.tokenURL || req.Body == nil {
		return t.base.RoundTrip(req)
	}
	raw, err := io.ReadAll(req.Body)
	req.Body.Close()
	if err != nil {
		return nil, err
	}
	form, err := url.ParseQuery(string(raw))
	if err != nil {
		return nil, err
	}
	for k, v := range t.params {
		form.Set(k, v)
	}
	encoded := []byte(form.Encode())
	clone := req.Clone(req.Context())
	clone.Body = io.NopCloser(bytes.NewReader(encoded))
	clone.ContentLength = int64(len(encoded))
	clone.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(encoded)), nil
	}
	return t.base.RoundTrip(clone)
}
