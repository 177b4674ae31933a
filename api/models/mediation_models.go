// api/models/mediation_models.go
package models

import "github.com/Annany2002/cvm-baseprep/internal/mediation"

// --- Mediation Request Structs ---

type CreateNodeFamilyRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// CreateNodeVersionRequest copies an existing version into a new editable one.
type CreateNodeVersionRequest struct {
	FromVersion int `json:"from_version" binding:"required,min=1"`
}

type AddNodeParametersRequest struct {
	Parameters []mediation.VersionParameter `json:"parameters" binding:"required,min=1"`
}

type CreateSubnodeRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Node        string `json:"node" binding:"required"`
}

type SubnodeParameterValuesRequest struct {
	ParameterValues []mediation.ParameterValueInput `json:"parameter_values" binding:"required"`
}

type EditableVersionRequest struct {
	VersionComment string `json:"version_comment"`
}

// CloneSubnodeRequest lets the backend pick the name when Name is empty.
type CloneSubnodeRequest struct {
	Name string `json:"name"`
}

type CreateParameterRequest struct {
	Key          string `json:"key" binding:"required"`
	DefaultValue string `json:"default_value"`
	Required     *bool  `json:"required"`
	Datatype     string `json:"datatype" binding:"required"`
}

// UpdateFlowNodeRequest disconnects the flow node when FromNode is null or empty.
type UpdateFlowNodeRequest struct {
	FromNode *string `json:"from_node"`
}
