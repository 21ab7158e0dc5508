package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

const (
	docEndpoint    = "_doc"
	searchEndpoint = "_search"
)

// ESHttpClient holds the methods the agent uses against an Elasticsearch
// cluster
type ESHttpClient interface {
	IndexDocument(ctx context.Context, index string, doc interface{}) error
	Search(ctx context.Context, index string, body interface{}, out interface{}) error
}

type esClient struct {
	baseURL    *url.URL
	httpClient *http.Client
}

var _ ESHttpClient = &esClient{}

// NewESClient creates a client for the cluster at baseURL.  Auth and TLS
// are taken from httpClient.
func NewESClient(baseURL string, httpClient *http.Client) (ESHttpClient, error) {
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/") + "/")
	if err != nil {
		return nil, errors.Wrapf(err, "invalid elasticsearch url %s", baseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("elasticsearch url %s must be http or https", baseURL)
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	return &esClient{
		baseURL:    u,
		httpClient: httpClient,
	}, nil
}

// IndexDocument stores doc as a new document in index
func (c *esClient) IndexDocument(ctx context.Context, index string, doc interface{}) error {
	return c.doJSON(ctx, http.MethodPost, index+"/"+docEndpoint, doc, nil)
}

// Search runs body against index and decodes the response into out
func (c *esClient) Search(ctx context.Context, index string, body interface{}, out interface{}) error {
	return c.doJSON(ctx, http.MethodPost, index+"/"+searchEndpoint, body, out)
}

// Sends a JSON body and puts the JSON response into obj, if given
func (c *esClient) doJSON(ctx context.Context, method string, path string, body interface{}, obj interface{}) error {
	u, err := c.baseURL.Parse(path)
	if err != nil {
		return errors.Wrapf(err, "could not build url for %s", path)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return errors.Wrap(err, "could not serialize request body")
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("could not create request for url %s: %v", u, err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("could not reach url %s: %v", u, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		msg, _ := ioutil.ReadAll(io.LimitReader(res.Body, 512))
		return fmt.Errorf("received status code that's not 2xx: %s, url: %s, body: %s", res.Status, u, bytes.TrimSpace(msg))
	}

	if obj == nil {
		return nil
	}

	if err := json.NewDecoder(res.Body).Decode(obj); err != nil {
		return fmt.Errorf("could not decode response of url %s: %v", u, err)
	}
	return nil
}
