// internal/mediation/nodes.go
package mediation

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

func nodePath(id string) string {
	return fmt.Sprintf("node-families/%s/", url.PathEscape(id))
}

func nodeVersionPath(id string, version int) string {
	return fmt.Sprintf("%sversions/%d/", nodePath(id), version)
}

func (c *Client) ListNodeFamilies(ctx context.Context) ([]NodeFamily, error) {
	var out []NodeFamily
	if err := c.do(ctx, http.MethodGet, "node-families/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetNodeFamily(ctx context.Context, id string) (*NodeFamily, error) {
	var out NodeFamily
	if err := c.do(ctx, http.MethodGet, nodePath(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateNodeFamily(ctx context.Context, in NodeFamilyInput) (*NodeFamily, error) {
	var out NodeFamily
	if err := c.do(ctx, http.MethodPost, "node-families/", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateNodeFamily(ctx context.Context, id string, in NodeFamilyInput) (*NodeFamily, error) {
	var out NodeFamily
	if err := c.do(ctx, http.MethodPut, nodePath(id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteNodeFamily(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, nodePath(id), nil, nil)
}

func (c *Client) ListNodeVersions(ctx context.Context, id string) ([]NodeVersionDetail, error) {
	var out []NodeVersionDetail
	if err := c.do(ctx, http.MethodGet, nodePath(id)+"versions/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetNodeVersion(ctx context.Context, id string, version int) (*NodeVersionDetail, error) {
	var out NodeVersionDetail
	if err := c.do(ctx, http.MethodGet, nodeVersionPath(id, version), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateNodeVersion copies fromVersion into a new editable version.
func (c *Client) CreateNodeVersion(ctx context.Context, id string, fromVersion int) (*NodeVersion, error) {
	var out NodeVersion
	body := map[string]int{"from_version": fromVersion}
	if err := c.do(ctx, http.MethodPost, nodePath(id)+"versions/", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeployNodeVersion activates version; the backend deactivates the others.
func (c *Client) DeployNodeVersion(ctx context.Context, id string, version int) (*ActionStatus, error) {
	var out ActionStatus
	if err := c.do(ctx, http.MethodPost, nodeVersionPath(id, version)+"deploy/", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UndeployNodeVersion uses the backend's route spelling ("undepoly").
func (c *Client) UndeployNodeVersion(ctx context.Context, id string, version int) (*ActionStatus, error) {
	var out ActionStatus
	if err := c.do(ctx, http.MethodPatch, nodeVersionPath(id, version)+"undepoly/", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AddParametersToNode(ctx context.Context, id string, version int, params []VersionParameter) error {
	body := map[string][]VersionParameter{"parameters": params}
	return c.do(ctx, http.MethodPost, nodeVersionPath(id, version)+"add_parameter/", body, nil)
}
