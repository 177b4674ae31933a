// internal/mediation/subnodes.go
package mediation

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

func subnodePath(id string) string {
	return fmt.Sprintf("subnodes/%s/", url.PathEscape(id))
}

func (c *Client) ListSubnodes(ctx context.Context) ([]Subnode, error) {
	var out []Subnode
	if err := c.do(ctx, http.MethodGet, "subnodes/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetSubnode(ctx context.Context, id string) (*Subnode, error) {
	var out Subnode
	if err := c.do(ctx, http.MethodGet, subnodePath(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateSubnode(ctx context.Context, in SubnodeInput) (*Subnode, error) {
	var out Subnode
	if err := c.do(ctx, http.MethodPost, "subnodes/", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateSubnode(ctx context.Context, id string, in SubnodeInput) (*Subnode, error) {
	var out Subnode
	if err := c.do(ctx, http.MethodPatch, subnodePath(id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteSubnode(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, subnodePath(id), nil, nil)
}

func (c *Client) UpdateSubnodeParameterValues(ctx context.Context, id string, values []ParameterValueInput) error {
	body := map[string][]ParameterValueInput{"parameter_values": values}
	return c.do(ctx, http.MethodPatch, subnodePath(id)+"update_parameter_values/", body, nil)
}

func (c *Client) EditSubnodeWithParameters(ctx context.Context, id string, in EditWithParametersInput) error {
	return c.do(ctx, http.MethodPatch, subnodePath(id)+"edit_with_parameters/", in, nil)
}

func (c *Client) CreateEditableSubnodeVersion(ctx context.Context, id, comment string) (*EditableVersion, error) {
	var out EditableVersion
	body := map[string]string{"version_comment": comment}
	if err := c.do(ctx, http.MethodPost, subnodePath(id)+"create_editable_version/", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ActivateSubnodeVersion(ctx context.Context, id string, version int) (*ActionStatus, error) {
	var out ActionStatus
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("%sactivate_version/%d/", subnodePath(id), version), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UndeploySubnodeVersion(ctx context.Context, id string, version int) (*ActionStatus, error) {
	var out ActionStatus
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("%sundeploy_version/%d/", subnodePath(id), version), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteSubnodeVersion(ctx context.Context, id string, version int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("%sdelete_version/%d/", subnodePath(id), version), nil, nil)
}

func (c *Client) DeleteAllSubnodeVersions(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, subnodePath(id)+"delete_all_versions/", nil, nil)
}

// ExportSubnode returns the backend's export document untouched.
func (c *Client) ExportSubnode(ctx context.Context, id string) (json.RawMessage, error) {
	var out json.RawMessage
	if err := c.do(ctx, http.MethodGet, subnodePath(id)+"export/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ImportSubnode(ctx context.Context, doc json.RawMessage) (*Subnode, error) {
	var out Subnode
	if err := c.do(ctx, http.MethodPost, "subnodes/import/", doc, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CloneSubnode copies a subnode; an empty name lets the backend pick one.
func (c *Client) CloneSubnode(ctx context.Context, id, name string) (*Subnode, error) {
	body := map[string]string{}
	if name != "" {
		body["name"] = name
	}
	var out Subnode
	if err := c.do(ctx, http.MethodPost, subnodePath(id)+"clone/", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
