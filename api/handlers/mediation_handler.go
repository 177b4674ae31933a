// api/handlers/mediation_handler.go
package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Annany2002/cvm-baseprep/api/middleware"
	"github.com/Annany2002/cvm-baseprep/api/models"
	"github.com/Annany2002/cvm-baseprep/internal/mediation"
)

// MediationHandler forwards node, subnode, parameter and flow management to
// the mediation backend. Backend failures surface as 502.
type MediationHandler struct {
	Client *mediation.Client
}

func NewMediationHandler(client *mediation.Client) *MediationHandler {
	return &MediationHandler{Client: client}
}

func versionParam(c *gin.Context) (int, error) {
	raw := c.Param("version")
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return 0, fmt.Errorf("%w: invalid version %q", middleware.ErrBadRequest, raw)
	}
	return v, nil
}

// respond writes out with status, or hands err to the error handler.
func respond(c *gin.Context, status int, out any, err error) {
	if err != nil {
		_ = c.Error(err)
		return
	}
	if out == nil {
		c.Status(status)
		return
	}
	c.JSON(status, out)
}

// --- Node families ---

func (h *MediationHandler) ListNodeFamilies(c *gin.Context) {
	out, err := h.Client.ListNodeFamilies(c.Request.Context())
	respond(c, http.StatusOK, out, err)
}

func (h *MediationHandler) GetNodeFamily(c *gin.Context) {
	out, err := h.Client.GetNodeFamily(c.Request.Context(), c.Param("node_id"))
	respond(c, http.StatusOK, out, err)
}

func (h *MediationHandler) CreateNodeFamily(c *gin.Context) {
	var req models.CreateNodeFamilyRequest
	if err := bindJSON(c, &req, false); err != nil {
		_ = c.Error(err)
		return
	}
	out, err := h.Client.CreateNodeFamily(c.Request.Context(), mediation.NodeFamilyInput{Name: req.Name, Description: req.Description})
	if err == nil {
		customLog.Printf("Handler: Created node family %s (%s)", out.ID, out.Name)
	}
	respond(c, http.StatusCreated, out, err)
}

func (h *MediationHandler) UpdateNodeFamily(c *gin.Context) {
	var req mediation.NodeFamilyInput
	if err := bindJSON(c, &req, false); err != nil {
		_ = c.Error(err)
		return
	}
	out, err := h.Client.UpdateNodeFamily(c.Request.Context(), c.Param("node_id"), req)
	respond(c, http.StatusOK, out, err)
}

func (h *MediationHandler) DeleteNodeFamily(c *gin.Context) {
	respond(c, http.StatusNoContent, nil, h.Client.DeleteNodeFamily(c.Request.Context(), c.Param("node_id")))
}

func (h *MediationHandler) ListNodeVersions(c *gin.Context) {
	out, err := h.Client.ListNodeVersions(c.Request.Context(), c.Param("node_id"))
	respond(c, http.StatusOK, out, err)
}

func (h *MediationHandler) GetNodeVersion(c *gin.Context) {
	version, err := versionParam(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	out, err := h.Client.GetNodeVersion(c.Request.Context(), c.Param("node_id"), version)
	respond(c, http.StatusOK, out, err)
}

func (h *MediationHandler) CreateNodeVersion(c *gin.Context) {
	var req models.CreateNodeVersionRequest
	if err := bindJSON(c, &req, false); err != nil {
		_ = c.Error(err)
		return
	}
	out, err := h.Client.CreateNodeVersion(c.Request.Context(), c.Param("node_id"), req.FromVersion)
	respond(c, http.StatusCreated, out, err)
}

func (h *MediationHandler) DeployNodeVersion(c *gin.Context) {
	version, err := versionParam(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	out, err := h.Client.DeployNodeVersion(c.Request.Context(), c.Param("node_id"), version)
	respond(c, http.StatusOK, out, err)
}

func (h *MediationHandler) UndeployNodeVersion(c *gin.Context) {
	version, err := versionParam(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	out, err := h.Client.UndeployNodeVersion(c.Request.Context(), c.Param("node_id"), version)
	respond(c, http.StatusOK, out, err)
}

func (h *MediationHandler) AddNodeParameters(c *gin.Context) {
	version, err := versionParam(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	var req models.AddNodeParametersRequest
	if err := bindJSON(c, &req, false); err != nil {
		_ = c.Error(err)
		return
	}
	respond(c, http.StatusNoContent, nil, h.Client.AddParametersToNode(c.Request.Context(), c.Param("node_id"), version, req.Parameters))
}

// --- Subnodes ---

func (h *MediationHandler) ListSubnodes(c *gin.Context) {
	out, err := h.Client.ListSubnodes(c.Request.Context())
	respond(c, http.StatusOK, out, err)
}

func (h *MediationHandler) GetSubnode(c *gin.Context) {
	out, err := h.Client.GetSubnode(c.Request.Context(), c.Param("subnode_id"))
	respond(c, http.StatusOK, out, err)
}

func (h *MediationHandler) CreateSubnode(c *gin.Context) {
	var req models.CreateSubnodeRequest
	if err := bindJSON(c, &req, false); err != nil {
		_ = c.Error(err)
		return
	}
	out, err := h.Client.CreateSubnode(c.Request.Context(), mediation.SubnodeInput{Name: req.Name, Description: req.Description, Node: req.Node})
	respond(c, http.StatusCreated, out, err)
}

func (h *MediationHandler) UpdateSubnode(c *gin.Context) {
	var req mediation.SubnodeInput
	if err := bindJSON(c, &req, false); err != nil {
		_ = c.Error(err)
		return
	}
	out, err := h.Client.UpdateSubnode(c.Request.Context(), c.Param("subnode_id"), req)
	respond(c, http.StatusOK, out, err)
}

func (h *MediationHandler) DeleteSubnode(c *gin.Context) {
	respond(c, http.StatusNoContent, nil, h.Client.DeleteSubnode(c.Request.Context(), c.Param("subnode_id")))
}

func (h *MediationHandler) UpdateSubnodeParameterValues(c *gin.Context) {
	var req models.SubnodeParameterValuesRequest
	if err := bindJSON(c, &req, false); err != nil {
		_ = c.Error(err)
		return
	}
	respond(c, http.StatusNoContent, nil, h.Client.UpdateSubnodeParameterValues(c.Request.Context(), c.Param("subnode_id"), req.ParameterValues))
}

func (h *MediationHandler) EditSubnodeWithParameters(c *gin.Context) {
	var req mediation.EditWithParametersInput
	if err := bindJSON(c, &req, false); err != nil {
		_ = c.Error(err)
		return
	}
	respond(c, http.StatusNoContent, nil, h.Client.EditSubnodeWithParameters(c.Request.Context(), c.Param("subnode_id"), req))
}

func (h *MediationHandler) CreateEditableSubnodeVersion(c *gin.Context) {
	var req models.EditableVersionRequest
	if err := bindJSON(c, &req, true); err != nil {
		_ = c.Error(err)
		return
	}
	out, err := h.Client.CreateEditableSubnodeVersion(c.Request.Context(), c.Param("subnode_id"), req.VersionComment)
	respond(c, http.StatusCreated, out, err)
}

func (h *MediationHandler) ActivateSubnodeVersion(c *gin.Context) {
	version, err := versionParam(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	out, err := h.Client.ActivateSubnodeVersion(c.Request.Context(), c.Param("subnode_id"), version)
	respond(c, http.StatusOK, out, err)
}

func (h *MediationHandler) UndeploySubnodeVersion(c *gin.Context) {
	version, err := versionParam(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	out, err := h.Client.UndeploySubnodeVersion(c.Request.Context(), c.Param("subnode_id"), version)
	respond(c, http.StatusOK, out, err)
}

func (h *MediationHandler) DeleteSubnodeVersion(c *gin.Context) {
	version, err := versionParam(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	respond(c, http.StatusNoContent, nil, h.Client.DeleteSubnodeVersion(c.Request.Context(), c.Param("subnode_id"), version))
}

func (h *MediationHandler) DeleteAllSubnodeVersions(c *gin.Context) {
	respond(c, http.StatusNoContent, nil, h.Client.DeleteAllSubnodeVersions(c.Request.Context(), c.Param("subnode_id")))
}

func (h *MediationHandler) ExportSubnode(c *gin.Context) {
	out, err := h.Client.ExportSubnode(c.Request.Context(), c.Param("subnode_id"))
	respond(c, http.StatusOK, out, err)
}

// ImportSubnode forwards the export document as is.
func (h *MediationHandler) ImportSubnode(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil || !json.Valid(raw) {
		_ = c.Error(fmt.Errorf("%w: import body must be a JSON document", middleware.ErrBadRequest))
		return
	}
	out, err := h.Client.ImportSubnode(c.Request.Context(), raw)
	respond(c, http.StatusCreated, out, err)
}

func (h *MediationHandler) CloneSubnode(c *gin.Context) {
	var req models.CloneSubnodeRequest
	if err := bindJSON(c, &req, true); err != nil {
		_ = c.Error(err)
		return
	}
	out, err := h.Client.CloneSubnode(c.Request.Context(), c.Param("subnode_id"), req.Name)
	respond(c, http.StatusCreated, out, err)
}

// --- Parameters ---

func (h *MediationHandler) ListParameters(c *gin.Context) {
	out, err := h.Client.ListParameters(c.Request.Context())
	respond(c, http.StatusOK, out, err)
}

func (h *MediationHandler) GetParameter(c *gin.Context) {
	out, err := h.Client.GetParameter(c.Request.Context(), c.Param("parameter_id"))
	respond(c, http.StatusOK, out, err)
}

func (h *MediationHandler) CreateParameter(c *gin.Context) {
	var req models.CreateParameterRequest
	if err := bindJSON(c, &req, false); err != nil {
		_ = c.Error(err)
		return
	}
	out, err := h.Client.CreateParameter(c.Request.Context(), mediation.ParameterInput{
		Key:          req.Key,
		DefaultValue: req.DefaultValue,
		Required:     req.Required,
		Datatype:     req.Datatype,
	})
	respond(c, http.StatusCreated, out, err)
}

func (h *MediationHandler) UpdateParameter(c *gin.Context) {
	var req mediation.ParameterInput
	if err := bindJSON(c, &req, false); err != nil {
		_ = c.Error(err)
		return
	}
	out, err := h.Client.UpdateParameter(c.Request.Context(), c.Param("parameter_id"), req)
	respond(c, http.StatusOK, out, err)
}

func (h *MediationHandler) DeleteParameter(c *gin.Context) {
	respond(c, http.StatusNoContent, nil, h.Client.DeleteParameter(c.Request.Context(), c.Param("parameter_id")))
}

// --- Flows ---

func (h *MediationHandler) ListFlows(c *gin.Context) {
	out, err := h.Client.ListFlows(c.Request.Context())
	respond(c, http.StatusOK, out, err)
}

func (h *MediationHandler) GetFlow(c *gin.Context) {
	out, err := h.Client.GetFlow(c.Request.Context(), c.Param("flow_id"))
	respond(c, http.StatusOK, out, err)
}

func (h *MediationHandler) UpdateFlow(c *gin.Context) {
	var req mediation.FlowInput
	if err := bindJSON(c, &req, false); err != nil {
		_ = c.Error(err)
		return
	}
	out, err := h.Client.UpdateFlow(c.Request.Context(), c.Param("flow_id"), req)
	respond(c, http.StatusOK, out, err)
}

// FlowAction runs start, stop, deploy or undeploy on a flow.
func (h *MediationHandler) FlowAction(c *gin.Context) {
	ctx, id := c.Request.Context(), c.Param("flow_id")
	var (
		out *mediation.ActionStatus
		err error
	)
	switch action := c.Param("action"); action {
	case "start":
		out, err = h.Client.StartFlow(ctx, id)
	case "stop":
		out, err = h.Client.StopFlow(ctx, id)
	case "deploy":
		out, err = h.Client.DeployFlow(ctx, id)
	case "undeploy":
		out, err = h.Client.UndeployFlow(ctx, id)
	default:
		err = fmt.Errorf("%w: unknown flow action %q", middleware.ErrBadRequest, action)
	}
	if err == nil {
		customLog.Printf("Handler: Flow %s %s: %s", id, c.Param("action"), out.Status)
	}
	respond(c, http.StatusOK, out, err)
}

func (h *MediationHandler) UpdateFlowNode(c *gin.Context) {
	var req models.UpdateFlowNodeRequest
	if err := bindJSON(c, &req, false); err != nil {
		_ = c.Error(err)
		return
	}
	from := ""
	if req.FromNode != nil {
		from = *req.FromNode
	}
	out, err := h.Client.UpdateFlowNodeConnection(c.Request.Context(), c.Param("flow_node_id"), from)
	respond(c, http.StatusOK, out, err)
}
