package gql

import (
	"net/http"
	"strings"
	"time"

	genqlientgraphql "github.com/Khan/genqlient/graphql"

	"website/internal/config"
)

const (
	defaultTimeout    = 15 * time.Second
	defaultAuthScheme = "JWT"
	userAgent         = "website-generators"
)

// NewClient builds a GraphQL client for the record source. The token is sent
// as "<scheme> <token>"; Payload-style backends expect the JWT scheme.
func NewClient(cfg config.Config) genqlientgraphql.Client {
	scheme := strings.TrimSpace(cfg.GraphQLAuthScheme)
	if scheme == "" {
		scheme = defaultAuthScheme
	}

	client := &http.Client{
		Timeout: defaultTimeout,
		Transport: &authTransport{
			base:   http.DefaultTransport,
			scheme: scheme,
			token:  strings.TrimSpace(cfg.GraphQLAuthToken),
		},
	}

	return genqlientgraphql.NewClient(cfg.GraphQLEndpoint, client)
}

type authTransport struct {
	base   http.RoundTripper
	scheme string
	token  string
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.Header.Set("User-Agent", userAgent)
	if t.token != "" {
		clone.Header.Set("Authorization", t.scheme+" "+t.token)
	}
	return t.base.RoundTrip(clone)
}
