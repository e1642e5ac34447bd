package paypal

import (
	"context"
	"encoding/base64"
	"net/http"
	"sync"
	"time"

	"github.com/floradex/billing/internal/infrastructure/payment/vendorapi"
)

// tokenRefreshMargin renews a token this long before PayPal expires it.
const tokenRefreshMargin = time.Minute

// tokenCache holds one OAuth access token per client id and endpoint.
type tokenCache struct {
	mu      sync.Mutex
	key     string
	token   string
	expires time.Time
	now     func() time.Time
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

func (c *tokenCache) get(ctx context.Context, client *vendorapi.Client, baseURL, clientID, secret string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := baseURL + "|" + clientID
	if c.key == key && c.token != "" && c.now().Before(c.expires) {
		return c.token, nil
	}

	auth := base64.StdEncoding.EncodeToString([]byte(clientID + ":" + secret))
	var resp tokenResponse
	err := client.Do(ctx, baseURL, vendorapi.Request{
		Method:  http.MethodPost,
		Path:    "/v1/oauth2/token",
		Header:  http.Header{"Authorization": []string{"Basic " + auth}},
		Form:    "grant_type=client_credentials",
		Out:     &resp,
		Context: "obtain access token",
	})
	if err != nil {
		return "", err
	}

	c.key = key
	c.token = resp.AccessToken
	c.expires = c.now().Add(time.Duration(resp.ExpiresIn)*time.Second - tokenRefreshMargin)
	return c.token, nil
}
