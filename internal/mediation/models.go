// internal/mediation/models.go
package mediation

// Node family types.

type NodeParameter struct {
	ID           string `json:"id"`
	Key          string `json:"key"`
	DefaultValue string `json:"default_value"`
	Datatype     string `json:"datatype"`
	IsActive     bool   `json:"is_active"`
}

type VersionParameter struct {
	ID          string `json:"id,omitempty"`
	ParameterID string `json:"parameter_id,omitempty"`
	Key         string `json:"key"`
	Value       string `json:"value"`
	Datatype    string `json:"datatype"`
}

type LinkedFamily struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	IsDeployed bool   `json:"is_deployed"`
}

type LinkedVersion struct {
	ID         string             `json:"id"`
	Version    int                `json:"version"`
	State      string             `json:"state"`
	Parameters []VersionParameter `json:"parameters"`
}

type SubnodeLink struct {
	LinkID  string        `json:"link_id"`
	Order   int           `json:"order"`
	Family  LinkedFamily  `json:"family"`
	Version LinkedVersion `json:"version"`
}

type NodeVersionDetail struct {
	ID         string             `json:"id"`
	Version    int                `json:"version"`
	State      string             `json:"state"`
	Changelog  string             `json:"changelog"`
	Family     string             `json:"family"`
	FamilyName string             `json:"family_name"`
	ScriptURL  string             `json:"script_url"`
	Parameters []VersionParameter `json:"parameters"`
	Subnodes   []SubnodeLink      `json:"subnodes"`
	CreatedAt  string             `json:"created_at"`
	CreatedBy  string             `json:"created_by"`
}

type NodeVersion struct {
	Version    int             `json:"version"`
	Parameters []NodeParameter `json:"parameters"`
	Subnodes   []Subnode       `json:"subnodes"`
}

type NodeFamily struct {
	ID               string             `json:"id"`
	Name             string             `json:"name"`
	Description      string             `json:"description"`
	CreatedAt        string             `json:"created_at,omitempty"`
	UpdatedAt        string             `json:"updated_at,omitempty"`
	CreatedBy        string             `json:"created_by,omitempty"`
	IsDeployed       bool               `json:"is_deployed"`
	PublishedVersion *NodeVersionDetail `json:"published_version,omitempty"`
	Versions         []NodeVersion      `json:"versions,omitempty"`
}

// NodeFamilyInput is the writable subset of a node family.
type NodeFamilyInput struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
}

// ActionStatus is the reply of deploy, start and similar actions.
type ActionStatus struct {
	Status  string `json:"status,omitempty"`
	Message string `json:"message,omitempty"`
}

// Subnode types.

type SubnodeParameterValue struct {
	ID           string `json:"id"`
	ParameterKey string `json:"parameter_key"`
	Value        string `json:"value"`
}

type SubnodeVersion struct {
	ID              string            `json:"id"`
	Version         int               `json:"version"`
	IsDeployed      bool              `json:"is_deployed"`
	IsEditable      bool              `json:"is_editable"`
	UpdatedAt       string            `json:"updated_at"`
	UpdatedBy       string            `json:"updated_by"`
	VersionComment  string            `json:"version_comment"`
	ParameterValues map[string]string `json:"parameter_values"`
}

type Subnode struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	Description     string           `json:"description"`
	Node            string           `json:"node"`
	ActiveVersion   *int             `json:"active_version"`
	OriginalVersion int              `json:"original_version"`
	VersionComment  *string          `json:"version_comment,omitempty"`
	CreatedAt       string           `json:"created_at"`
	UpdatedAt       string           `json:"updated_at,omitempty"`
	CreatedBy       string           `json:"created_by"`
	UpdatedBy       string           `json:"updated_by,omitempty"`
	Versions        []SubnodeVersion `json:"versions,omitempty"`
}

type SubnodeInput struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Node        string `json:"node,omitempty"`
}

type ParameterValueInput struct {
	ID    string `json:"id"`
	Value string `json:"value"`
}

type EditWithParametersInput struct {
	Name            string                `json:"name,omitempty"`
	Description     string                `json:"description,omitempty"`
	ParameterValues []ParameterValueInput `json:"parameter_values,omitempty"`
}

type EditableVersion struct {
	ID         string `json:"id"`
	Version    int    `json:"version"`
	IsDeployed bool   `json:"is_deployed"`
	Message    string `json:"message"`
}

// Parameter types.

type Parameter struct {
	ID           string `json:"id"`
	Key          string `json:"key"`
	DefaultValue string `json:"default_value"`
	Required     bool   `json:"required"`
	Datatype     string `json:"datatype"`
}

// ParameterInput is used for create and for partial update; unset fields are omitted.
type ParameterInput struct {
	Key          string `json:"key,omitempty"`
	DefaultValue string `json:"default_value,omitempty"`
	Required     *bool  `json:"required,omitempty"`
	Datatype     string `json:"datatype,omitempty"`
}

// Flow types.

type FlowParameterValue struct {
	ParameterKey string `json:"parameter_key"`
	Value        string `json:"value"`
}

type FlowSubnode struct {
	ID              string               `json:"id"`
	Name            string               `json:"name"`
	ParameterValues []FlowParameterValue `json:"parameter_values,omitempty"`
}

type FlowNodeRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Edge struct {
	ID        string `json:"id"`
	FromNode  string `json:"from_node"`
	ToNode    string `json:"to_node"`
	Condition string `json:"condition,omitempty"`
}

type FlowNode struct {
	ID              string       `json:"id"`
	Order           int          `json:"order"`
	Node            FlowNodeRef  `json:"node"`
	SelectedSubnode *FlowSubnode `json:"selected_subnode,omitempty"`
	OutgoingEdges   []Edge       `json:"outgoing_edges,omitempty"`
}

type Flow struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	IsDeployed  bool       `json:"is_deployed"`
	IsRunning   bool       `json:"is_running"`
	FlowNodes   []FlowNode `json:"flow_nodes"`
	CreatedAt   string     `json:"created_at"`
	UpdatedAt   string     `json:"updated_at"`
	CreatedBy   string     `json:"created_by"`
}

type FlowInput struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
}
