package authn

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/doxysoft/jsonrpc-bidirectional/plugin"
	"github.com/doxysoft/jsonrpc-bidirectional/transport/httptransport"
)

// OAuth2HTTPClient builds an *http.Client that attaches an
// "Authorization: Bearer <token>" header to every outgoing request,
// refreshing the token through source as it expires. Pass the result as
// the httpClient argument to httptransport.ClientPlugin to make an
// outgoing JSON-RPC call authenticate itself against a JWTBearerPlugin
// installed on the peer.
//
// Grounded on mnehpets-oneserve/auth.Provider, which drives the same
// *oauth2.Config through an authorization-code exchange for a browser
// login; a JSON-RPC client has no browser step, so it starts from
// whatever oauth2.TokenSource already holds a token (a client-credentials
// exchange, a cached refresh token, or oauth2.StaticTokenSource for a
// long-lived service token) and reuses the library's own
// transport-wrapping half, oauth2.NewClient.
func OAuth2HTTPClient(ctx context.Context, source oauth2.TokenSource) *http.Client {
	return oauth2.NewClient(ctx, source)
}

// OAuth2ClientPlugin is a convenience combining OAuth2HTTPClient with
// httptransport.ClientPlugin for the common case of an HTTP-transported
// JSON-RPC client authenticating with a bearer token from source.
func OAuth2ClientPlugin(ctx context.Context, endpointURL string, source oauth2.TokenSource) plugin.ClientPlugin {
	return httptransport.ClientPlugin(endpointURL, OAuth2HTTPClient(ctx, source))
}
