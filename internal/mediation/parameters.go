// internal/mediation/parameters.go
package mediation

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

func parameterPath(id string) string {
	return fmt.Sprintf("parameters/%s/", url.PathEscape(id))
}

func (c *Client) ListParameters(ctx context.Context) ([]Parameter, error) {
	var out []Parameter
	if err := c.do(ctx, http.MethodGet, "parameters/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetParameter(ctx context.Context, id string) (*Parameter, error) {
	var out Parameter
	if err := c.do(ctx, http.MethodGet, parameterPath(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateParameter(ctx context.Context, in ParameterInput) (*Parameter, error) {
	var out Parameter
	if err := c.do(ctx, http.MethodPost, "parameters/", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateParameter sends a partial update.
func (c *Client) UpdateParameter(ctx context.Context, id string, in ParameterInput) (*Parameter, error) {
	var out Parameter
	if err := c.do(ctx, http.MethodPatch, parameterPath(id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteParameter(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, parameterPath(id), nil, nil)
}
