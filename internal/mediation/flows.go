// internal/mediation/flows.go
package mediation

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

func flowPath(id string) string {
	return fmt.Sprintf("flows/%s/", url.PathEscape(id))
}

func (c *Client) ListFlows(ctx context.Context) ([]Flow, error) {
	var out []Flow
	if err := c.do(ctx, http.MethodGet, "flows/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetFlow(ctx context.Context, id string) (*Flow, error) {
	var out Flow
	if err := c.do(ctx, http.MethodGet, flowPath(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateFlow(ctx context.Context, id string, in FlowInput) (*Flow, error) {
	var out Flow
	if err := c.do(ctx, http.MethodPut, flowPath(id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) flowAction(ctx context.Context, id, action string) (*ActionStatus, error) {
	var out ActionStatus
	if err := c.do(ctx, http.MethodPost, flowPath(id)+action+"/", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) StartFlow(ctx context.Context, id string) (*ActionStatus, error) {
	return c.flowAction(ctx, id, "start")
}

func (c *Client) StopFlow(ctx context.Context, id string) (*ActionStatus, error) {
	return c.flowAction(ctx, id, "stop")
}

func (c *Client) DeployFlow(ctx context.Context, id string) (*ActionStatus, error) {
	return c.flowAction(ctx, id, "deploy")
}

func (c *Client) UndeployFlow(ctx context.Context, id string) (*ActionStatus, error) {
	return c.flowAction(ctx, id, "undeploy")
}

// UpdateFlowNodeConnection sets the upstream node of a flow node; an empty
// fromNodeID disconnects it.
func (c *Client) UpdateFlowNodeConnection(ctx context.Context, flowNodeID, fromNodeID string) (*FlowNode, error) {
	body := map[string]*string{"from_node": nil}
	if fromNodeID != "" {
		body["from_node"] = &fromNodeID
	}
	var out FlowNode
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("flownode/%s/", url.PathEscape(flowNodeID)), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
